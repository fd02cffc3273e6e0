package main

import (
	"flag"
	"log"
	"net"

	"staticfromtcp/internal/request"
)

// Accepts a single connection and prints the request line it sent.
func main() {
	addr := flag.String("addr", "127.0.0.1:42069", "address to listen on")
	flag.Parse()

	lsnr, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("could not listen: %s", err)
	}
	defer lsnr.Close()

	conn, err := lsnr.Accept()
	if err != nil {
		log.Fatalf("could not accept: %s", err)
	}
	defer conn.Close()

	req, err := request.RequestFromReader(conn)
	if err != nil {
		log.Fatalf("could not read request: %s", err)
	}

	request.PrintRequestLine(req)
}
