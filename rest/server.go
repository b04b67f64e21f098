package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	evoting "github.com/jicksta/evoting-mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultListenAddress   = ":5000"
	DefaultAllowedOrigin   = "https://localhost:3000"
	DefaultShutdownTimeout = 30 * time.Second
)

type Config struct {
	ListenAddress   string
	AllowedOrigin   string
	ShutdownTimeout time.Duration
	PromRegistry    *prometheus.Registry
}

// Server is the HTTP front of an ElectionStore.
type Server struct {
	config     Config
	store      evoting.ElectionStore
	logger     *slog.Logger
	engine     *gin.Engine
	metrics    *serverMetrics
	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	done       chan struct{}
}

func New(cfg Config, store evoting.ElectionStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With("component", "rest")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = DefaultAllowedOrigin
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.PromRegistry == nil {
		cfg.PromRegistry = prometheus.NewRegistry()
	}
	s := &Server{
		config: cfg,
		store:  store,
		logger: logger,
	}
	s.metrics = newServerMetrics(cfg.PromRegistry, store)
	s.engine = s.router()
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{s.config.AllowedOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(requestLogger(s.logger), s.metrics.instrument())

	r.POST("/eligibility_check", s.eligibilityCheck)
	r.POST("/register_election", s.registerElection)
	r.POST("/register_candidate", s.registerCandidate)
	r.POST("/sign_candidate", s.signCandidate)
	r.POST("/validate_candidate", s.validateCandidate)
	r.POST("/vote", s.vote)
	r.POST("/end_election", s.endElection)
	r.GET("/results", s.results)
	r.POST("/dispute", s.fileDispute)
	r.POST("/resolve_dispute", s.resolveDispute)

	r.GET("/elections", s.listElections)
	r.GET("/elections/:electionID", s.getElection)
	r.GET("/candidates", s.listCandidates)
	r.GET("/voters", s.listVoters)
	r.GET("/disputes", s.listDisputes)

	registerNodeSimulator(r)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.config.PromRegistry, promhttp.HandlerOpts{})))
	return r
}

// Handler exposes the routes without a listener, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listen address and serves in the background until Stop is called or ctx is
// cancelled. Port conflicts are reported immediately.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	server := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 60 * time.Second,
	}
	done := make(chan struct{})
	s.httpServer = server
	s.listener = ln
	s.done = done
	s.mu.Unlock()

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Debug("context cancelled, shutting down HTTP server")
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
			defer cancel()
			//nolint:contextcheck
			if err := s.Stop(shutdownCtx); err != nil {
				s.logger.Error("failed to shutdown HTTP server on context cancellation", "error", err)
			}
		case <-done:
		}
	}()

	s.logger.Info("HTTP listener started on " + ln.Addr().String())
	return nil
}

// Addr is the bound listen address, or "" when the server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	done := s.done
	s.httpServer = nil
	s.listener = nil
	s.done = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	close(done)
	s.logger.Debug("shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
