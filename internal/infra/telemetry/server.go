package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
)

const observabilityShutdownTimeout = 5 * time.Second

// ObservabilityServer exposes /metrics and /healthz next to the MCP
// transport.
type ObservabilityServer struct {
	addr    string
	handler http.Handler
	logger  *zap.Logger
}

func NewObservabilityServer(cfg domain.ObservabilityConfig, gatherer prometheus.Gatherer, health *HealthTracker, logger *zap.Logger) *ObservabilityServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("observability")
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	addr := cfg.ListenAddress
	if addr == "" {
		addr = domain.DefaultObservabilityListenAddress
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger),
	}))
	mux.Handle("GET /healthz", healthHandler(health))

	return &ObservabilityServer{addr: addr, handler: mux, logger: logger}
}

func (s *ObservabilityServer) Handler() http.Handler {
	return s.handler
}

// Run binds the listen address and serves until ctx is canceled. Bind
// failures are returned immediately.
func (s *ObservabilityServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("observability listen %s: %w", s.addr, err)
	}
	return s.serve(ctx, listener)
}

func (s *ObservabilityServer) serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("observability server listening", zap.String("addr", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("observability server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), observabilityShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("observability server shutdown error", zap.Error(err))
		return err
	}
	s.logger.Info("observability server stopped")
	return nil
}

func healthHandler(tracker *HealthTracker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := tracker.Report(r.Context())
		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
	})
}
