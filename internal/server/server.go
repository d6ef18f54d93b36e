package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dhanjo/project-guardian-2.0/internal/config"
	"github.com/dhanjo/project-guardian-2.0/internal/logger"
	"github.com/dhanjo/project-guardian-2.0/internal/metrics"
	"github.com/dhanjo/project-guardian-2.0/internal/privacy"
	"github.com/dhanjo/project-guardian-2.0/internal/websocket"
)

// Server exposes the PII scanner over HTTP: single-record scans, health and
// info endpoints, Prometheus metrics, and the WebSocket event stream.
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	detector *privacy.Detector
	metrics  *metrics.Metrics
	router   *mux.Router
	server   *http.Server
	wsHub    *websocket.Hub
	limiter  *rateLimiter
}

// New creates a new scanner server instance
func New(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Server, error) {
	detector := privacy.New(cfg.Privacy, log.WithComponent("privacy").Logger)

	hubConfig := &websocket.HubConfig{
		BroadcastDetections:  cfg.WebSocket.Events.BroadcastDetections,
		BroadcastProgress:    cfg.WebSocket.Events.BroadcastProgress,
		BroadcastSystem:      cfg.WebSocket.Events.BroadcastSystem,
		BroadcastConnections: cfg.WebSocket.Events.BroadcastConnections,
		AllowedOrigins:       cfg.WebSocket.AllowedOrigins,
	}
	wsHub := websocket.NewHub(hubConfig, log.WithComponent("websocket").Logger)

	server := &Server{
		config:   cfg,
		logger:   log.WithComponent("server"),
		detector: detector,
		metrics:  m,
		router:   mux.NewRouter(),
		wsHub:    wsHub,
	}

	if cfg.Server.RateLimit.Enabled {
		server.limiter = newRateLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst)
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.handleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/scan", s.handleScan).Methods("POST")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting scanner server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("rate_limit", s.config.Server.RateLimit.Enabled),
		zap.Bool("websocket", s.config.WebSocket.Enabled),
	)

	go s.wsHub.Run()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping scanner server")
	return s.server.Shutdown(ctx)
}

// handleWebSocket handles WebSocket connections for the event stream
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}

// GetWebSocketHub returns the WebSocket hub for broadcasting events
func (s *Server) GetWebSocketHub() *websocket.Hub {
	return s.wsHub
}
