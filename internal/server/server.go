package server

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"staticfromtcp/internal/errors"
	"staticfromtcp/internal/fileio"
	"staticfromtcp/internal/fileroot"
	"staticfromtcp/internal/request"
	"staticfromtcp/internal/response"
)

const (
	DefaultReadTimeout = 5 * time.Second
	DefaultLineGrace   = 100 * time.Millisecond
	uringEntries       = 64
)

// Config describes one server. An empty bind address skips that family.
type Config struct {
	Port          int
	IPv4Addr      string
	IPv6Addr      string
	Root          string
	ConfineToRoot bool
	// LogPath is truncated on start. Diagnostics are dropped when it is
	// empty or cannot be opened.
	LogPath string
	// ReadTimeout bounds the wait for a request. Zero disables it.
	ReadTimeout time.Duration
	// LineGrace ends the wait early once a full request line has arrived
	// and no more bytes follow. Zero waits for a blank line, the client
	// closing its side or ReadTimeout.
	LineGrace  time.Duration
	UseIOUring bool
}

type Server struct {
	listeners []net.Listener
	resolver  *fileroot.Resolver
	fsys      fileio.FS
	ring      *fileio.UringFS
	logger    *slog.Logger
	logFile   *os.File
	timeout   time.Duration
	receiver  request.Receiver

	mu        sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	active    map[net.Conn]struct{} // guarded by mu
	loops     sync.WaitGroup        // accept loops
	conns     sync.WaitGroup        // in-flight connections
}

// New binds the IPv4 and IPv6 endpoints. Either family may fail on its own;
// the server needs at least one listening socket.
func New(cfg Config) (*Server, error) {
	srv := &Server{
		timeout:  cfg.ReadTimeout,
		receiver: request.Receiver{LineGrace: cfg.LineGrace},
		active:   make(map[net.Conn]struct{}),
	}
	srv.openLog(cfg.LogPath)

	var errs []error
	familyMissing := 0
	for _, ep := range []struct {
		network string
		host    string
	}{
		{"tcp4", cfg.IPv4Addr},
		{"tcp6", cfg.IPv6Addr},
	} {
		if ep.host == "" {
			familyMissing++
			continue
		}
		addr := net.JoinHostPort(ep.host, strconv.Itoa(cfg.Port))
		listener, err := net.Listen(ep.network, addr)
		if err != nil {
			if stderrors.Is(err, syscall.EAFNOSUPPORT) {
				familyMissing++
			}
			srv.logger.Warn("could not listen", "network", ep.network, "addr", addr, "err", err)
			errs = append(errs, err)
			continue
		}
		srv.logger.Info("listening", "network", ep.network, "addr", listener.Addr().String())
		srv.listeners = append(srv.listeners, listener)
	}

	if len(srv.listeners) == 0 {
		srv.Close()
		if familyMissing == 2 {
			return nil, errors.New(errors.SocketError, "no address family available", stderrors.Join(errs...))
		}
		return nil, errors.New(errors.ListenError, fmt.Sprintf("could not listen on port %d", cfg.Port), stderrors.Join(errs...))
	}

	srv.fsys = fileio.OSFS{}
	if cfg.UseIOUring {
		ring, err := fileio.NewUringFS(uringEntries)
		if err != nil {
			srv.logger.Warn("falling back to plain file reads", "err", err)
		} else {
			srv.ring = ring
			srv.fsys = ring
		}
	}
	srv.resolver = fileroot.NewResolver(cfg.Root, cfg.ConfineToRoot, srv.fsys)
	srv.logger.Info("serving", "root", srv.resolver.Root(), "confine", cfg.ConfineToRoot)
	return srv, nil
}

func (s *Server) openLog(path string) {
	out := io.Discard
	if path != "" {
		if f, err := os.Create(path); err == nil {
			s.logFile = f
			out = f
		}
	}
	s.logger = slog.New(slog.NewTextHandler(out, nil))
}

func (s *Server) Addrs() []net.Addr {
	addrs := make([]net.Addr, 0, len(s.listeners))
	for _, l := range s.listeners {
		addrs = append(addrs, l.Addr())
	}
	return addrs
}

// Serve accepts on every listener until Close. Each connection is handled
// on its own goroutine. Serve on a closed server returns at once.
func (s *Server) Serve() error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return nil
	}
	for _, l := range s.listeners {
		s.loops.Add(1)
		go func(l net.Listener) {
			defer s.loops.Done()
			s.listen(l)
		}(l)
	}
	s.mu.Unlock()

	s.loops.Wait()
	return nil
}

// Close stops accepting, drops every open connection and releases the
// server's resources. Responses still in flight are cut short. Calling it
// again is a no-op.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		for conn := range s.active {
			conn.Close()
		}
		s.mu.Unlock()

		for _, l := range s.listeners {
			if cerr := l.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		s.loops.Wait()
		s.conns.Wait()
		if s.ring != nil {
			s.ring.Close()
		}
		if s.logFile != nil {
			s.logFile.Close()
		}
	})
	return err
}

func (s *Server) listen(l net.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.logger.Warn("error accepting connection", "err", err)
			continue
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		go func() {
			defer s.untrack(conn)
			s.handle(conn)
		}()
	}
}

// track registers conn so Close can drop it. It fails once the server is
// closing.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.active[conn] = struct{}{}
	s.conns.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.active, conn)
	s.mu.Unlock()
	s.conns.Done()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	if s.timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
			s.logger.Warn("could not set read deadline", "remote", remote, "err", err)
			return
		}
	}
	w := response.NewWriter(conn)

	req, err := s.receiver.RequestFromReader(conn)
	if err != nil {
		s.logger.Info("bad request", "remote", remote, "err", err)
		s.respond(w, remote, response.StatusBadRequest)
		return
	}
	if req.Method != request.MethodGet {
		s.logger.Info("method not implemented", "remote", remote, "method", req.Method.String(), "path", req.Path)
		s.respond(w, remote, response.StatusNotImplemented)
		return
	}
	s.serveFile(w, remote, req.Path)
}

func (s *Server) serveFile(w *response.Writer, remote, path string) {
	target, err := s.resolver.Resolve(path)
	if err != nil {
		s.logger.Info("not found", "remote", remote, "path", path, "err", err)
		s.respond(w, remote, response.StatusNotFound)
		return
	}
	if !s.fsys.Exists(target) || s.fsys.IsDir(target) {
		s.logger.Info("not found", "remote", remote, "path", path, "target", target)
		s.respond(w, remote, response.StatusNotFound)
		return
	}
	f, err := s.fsys.Open(target)
	if err != nil {
		s.logger.Info("not found", "remote", remote, "path", path, "target", target, "err", err)
		s.respond(w, remote, response.StatusNotFound)
		return
	}
	defer f.Close()

	if !s.respond(w, remote, response.StatusOK) {
		return
	}
	n, err := w.StreamFile(f)
	if err != nil {
		s.logger.Warn("file stream aborted", "remote", remote, "target", target, "bytes", n, "err", err)
		return
	}
	s.logger.Info("served", "remote", remote, "path", path, "target", target, "bytes", n)
}

func (s *Server) respond(w *response.Writer, remote string, code response.StatusCode) bool {
	if err := w.WriteStatus(code); err != nil {
		s.logger.Warn("could not send status", "remote", remote, "status", int(code), "err", err)
		return false
	}
	return true
}
