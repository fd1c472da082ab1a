package api

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"todo-api/internal/errors"
)

// DefaultShutdownTimeout bounds how long in-flight requests may run after
// shutdown starts.
const DefaultShutdownTimeout = 5 * time.Second

// Server runs the HTTP listener.
type Server struct {
	httpServer      *http.Server
	logger          *log.Logger
	shutdownTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	once     sync.Once
	closeErr error
}

// NewServer creates a server for handler on addr.
func NewServer(addr string, handler http.Handler, shutdownTimeout time.Duration, logger *log.Logger) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// Listen binds the listening socket. A port already in use gets its own
// log line before the error is returned.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		if stderrors.Is(err, syscall.EADDRINUSE) {
			s.logger.Error("Address already in use", "addr", s.httpServer.Addr)
		}
		return errors.NewInternalError("listen on "+s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Serve accepts connections until ctx is cancelled or Shutdown is called.
// It binds the socket first if Listen has not been called.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		s.mu.Lock()
		ln = s.listener
		s.mu.Unlock()
	}

	stop := context.AfterFunc(ctx, func() {
		s.Shutdown()
	})
	defer stop()

	s.logger.Info("Ready to accept connections", "addr", ln.Addr().String())
	err := s.httpServer.Serve(ln)
	if stderrors.Is(err, http.ErrServerClosed) {
		// Wait for the Shutdown that closed the listener to finish.
		return s.Shutdown()
	}
	return errors.NewInternalError("serve", err)
}

// Shutdown stops accepting connections and waits up to the shutdown timeout
// for in-flight requests. Calling it more than once is safe.
func (s *Server) Shutdown() error {
	s.once.Do(func() {
		s.logger.Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("Forced shutdown", "err", err)
			s.httpServer.Close()
			s.closeErr = err
		}
		s.logger.Info("Server stopped")
	})
	return s.closeErr
}
