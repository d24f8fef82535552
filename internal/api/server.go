package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/analysis"
	"github.com/nerrad567/gray-logic-simeval/internal/evaluation"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-simeval/internal/metrics"
	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// RunExecutor starts an analysis run. *analysis.Runner satisfies it.
type RunExecutor interface {
	Run(ctx context.Context, in analysis.Input) (*analysis.Result, error)
}

// ConnectionChecker reports broker connectivity. *mqtt.Client satisfies it.
type ConnectionChecker interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Runs      evaluation.Repository
	Timelines timeline.Repository // optional: enables /runs/{id}/events
	Runner    RunExecutor         // optional: enables POST /runs
	Metrics   *metrics.Manager    // optional: enables /metrics and request metrics
	MQTT      ConnectionChecker   // optional
	DB        *database.DB        // optional: database health and pool stats
	Version   string
}

// Server is the HTTP API server.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	runs      evaluation.Repository
	timelines timeline.Repository
	runner    RunExecutor
	metrics   *metrics.Manager
	mqtt      ConnectionChecker
	db        *database.DB
	version   string
	startTime time.Time
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Logger and Runs are required
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Runs == nil {
		return nil, fmt.Errorf("run repository is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		runs:      deps.Runs,
		timelines: deps.Timelines,
		runner:    deps.Runner,
		metrics:   deps.Metrics,
		mqtt:      deps.MQTT,
		db:        deps.DB,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
//
// Returns:
//   - error: Always nil; listener errors are logged
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
