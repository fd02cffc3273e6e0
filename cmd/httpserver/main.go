package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"staticfromtcp/internal/server"
)

func main() {
	port := flag.Int("port", 42069, "port to listen on for both address families")
	ipv4 := flag.String("ipv4", "0.0.0.0", "IPv4 bind address, empty to disable")
	ipv6 := flag.String("ipv6", "::", "IPv6 bind address, empty to disable")
	root := flag.String("root", ".", "document root")
	logPath := flag.String("log", "", "diagnostic log file, truncated on start")
	confine := flag.Bool("confine", true, "refuse paths that resolve outside the document root")
	readTimeout := flag.Duration("read-timeout", server.DefaultReadTimeout, "how long to wait for a request, 0 to wait forever; clients that never send a blank line wait this long unless -line-grace is set")
	lineGrace := flag.Duration("line-grace", server.DefaultLineGrace, "how long to wait for headers after the request line, 0 to disable")
	useURing := flag.Bool("uring", false, "read files through io_uring (Linux only)")
	flag.Parse()

	srv, err := server.New(server.Config{
		Port:          *port,
		IPv4Addr:      *ipv4,
		IPv6Addr:      *ipv6,
		Root:          *root,
		ConfineToRoot: *confine,
		LogPath:       *logPath,
		ReadTimeout:   *readTimeout,
		LineGrace:     *lineGrace,
		UseIOUring:    *useURing,
	})
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
	defer srv.Close()
	go srv.Serve()
	for _, addr := range srv.Addrs() {
		log.Println("Serving", *root, "on", addr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Server gracefully stopped")
}
