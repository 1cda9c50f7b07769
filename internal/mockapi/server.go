package mockapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server is a Service bound to a TCP listener.
type Server struct {
	listener net.Listener
	srv      *http.Server
}

// Listen binds addr (use port 0 for an ephemeral port) and serves the mock
// in the background until Close is called.
func (s *Service) Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s}
	go func() { _ = srv.Serve(ln) }()
	s.log.InfoObj("mock api listening", "mock_addr", ln.Addr().String())
	return &Server{listener: ln, srv: srv}, nil
}

// BaseURL is the http root clients should target.
func (s *Server) BaseURL() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

// Close drains in-flight requests and releases the listener.
func (s *Server) Close() error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
