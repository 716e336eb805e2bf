package httpd

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/netutil"

	"example.com/spahttpd/internal/config"
	"example.com/spahttpd/internal/filestore"
	"example.com/spahttpd/internal/logger"
	"example.com/spahttpd/internal/util"
)

// Server owns the listening socket and the accept loop. By default it is the
// single dedicated worker of the original design: one connection is received,
// served, and closed before the next accept proceeds, so requests are handled
// strictly in acceptance order. With max_conns > 1 each connection gets its
// own goroutine instead, bounded by a limit listener; the per-request
// contract is the same in both modes.
type Server struct {
	address  string
	maxConns int
	handler  *ConnHandler
	log      *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// NewServer wires the pipeline out of a validated config and a mounted store.
func NewServer(cfg *config.Config, lg *logger.Logger, store *filestore.FileStore) (*Server, error) {
	if cfg == nil || cfg.Server == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("file store cannot be nil")
	}
	if lg == nil {
		lg = logger.NewDiscardLogger()
	}

	s := cfg.Server
	mime := NewMimeResolver(s.MimeTypes)
	responder := NewResponder(store, mime, lg, *s.FallbackFile, *s.ChunkSize)
	handler := NewConnHandler(responder, lg, store.Root(), *s.FallbackFile, *s.MaxRequestBytes, *s.MaxPathBytes)

	return &Server{
		address:  *s.Address,
		maxConns: *s.MaxConns,
		handler:  handler,
		log:      lg,
	}, nil
}

// Listen binds the server socket. It must be called before Serve.
func (srv *Server) Listen() error {
	ln, err := util.CreateListener("tcp", srv.address)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", srv.address, err)
	}
	if srv.maxConns > 1 {
		ln = netutil.LimitListener(ln, srv.maxConns)
	}

	srv.mu.Lock()
	srv.listener = ln
	srv.mu.Unlock()

	srv.log.Info("listening", logger.LogFields{
		"address": ln.Addr().String(), "max_conns": srv.maxConns,
	})
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (srv *Server) Addr() net.Addr {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Addr()
}

// Serve runs the accept loop until Stop closes the listener. An accept
// failure is logged and the loop continues; no request outcome terminates
// the server.
func (srv *Server) Serve() error {
	srv.mu.Lock()
	ln := srv.listener
	srv.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("server is not listening, call Listen first")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			srv.log.Warn("unable to accept connection", logger.LogFields{"error": err.Error()})
			continue
		}
		if srv.maxConns > 1 {
			go srv.handler.Handle(conn)
		} else {
			srv.handler.Handle(conn)
		}
	}
}

// Start binds and serves in one call, blocking until Stop.
func (srv *Server) Start() error {
	if err := srv.Listen(); err != nil {
		return err
	}
	return srv.Serve()
}

// Stop closes the listener, ending the accept loop. Safe to call more than
// once.
func (srv *Server) Stop() {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.closed || srv.listener == nil {
		srv.closed = true
		return
	}
	srv.closed = true
	srv.listener.Close()
}
