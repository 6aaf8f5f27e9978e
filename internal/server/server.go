package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/budgetgrid/internal/discovery"
	"github.com/muurk/budgetgrid/internal/logging"
	"github.com/muurk/budgetgrid/internal/sink"
	"github.com/muurk/budgetgrid/internal/version"
)

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	Path     string // WebSocket path, defaults to /ws
	CertPath string // Serve TLS when both CertPath and KeyPath are set
	KeyPath  string
	Instance string // mDNS instance name; empty disables advertisement
}

// Server accepts commits from budgetgrid editors over WebSocket and persists
// them to a sink.Store
type Server struct {
	config    *Config
	store     sink.Store
	tlsConfig *tls.Config
	upgrader  websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener
	ready      chan struct{}

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn

	commits atomic.Uint64
	reverts atomic.Uint64
}

// New creates a Server. The store is owned by the server and closed on
// shutdown.
func New(config *Config, store sink.Store) (*Server, error) {
	if store == nil {
		return nil, errors.New("server requires a store")
	}
	if config.Path == "" {
		config.Path = discovery.DefaultPath
	}

	var tlsConfig *tls.Config
	if config.CertPath != "" || config.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	s := &Server{
		config:      config,
		store:       store,
		tlsConfig:   tlsConfig,
		ready:       make(chan struct{}),
		activeConns: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Editors are terminal programs, not browsers
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         tlsConfig,
	}
	return s, nil
}

// Addr returns the listening address once Run has bound the socket
func (s *Server) Addr() net.Addr {
	<-s.ready
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start runs the server until SIGINT or SIGTERM
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails. The HTTP server
// and the mDNS advertisement share one errgroup so either failing stops both.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		close(s.ready)
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
		logging.Info("TLS Configuration", zap.Any("tls_info", GetTLSInfo(s.tlsConfig)))
	}
	s.listener = listener
	close(s.ready)

	port := listener.Addr().(*net.TCPAddr).Port
	logging.Info("Starting budgetgrid sink server",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", s.config.Path),
		zap.Bool("tls", s.tlsConfig != nil),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.config.Instance != "" {
		g.Go(func() error {
			txt := []string{"path=" + s.config.Path, "version=" + version.Version}
			if s.tlsConfig != nil {
				txt = append(txt, "scheme=wss")
			}
			return discovery.Advertise(gctx, s.config.Instance, port, txt)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutdown requested, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops accepting connections, closes active WebSocket connections
// and closes the store once every handler has returned
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}

	// Hijacked connections are not tracked by http.Server
	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	err := s.store.Close()
	logging.Info("Server stopped",
		zap.Uint64("commits", s.commits.Load()),
		zap.Uint64("reverts", s.reverts.Load()),
	)
	logging.Sync()
	return err
}

// GetActiveConnections returns the number of connected editors
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

func (s *Server) track(remoteAddr string, conn *websocket.Conn) {
	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()
}

func (s *Server) untrack(remoteAddr string) {
	s.mu.Lock()
	delete(s.activeConns, remoteAddr)
	s.mu.Unlock()
}
