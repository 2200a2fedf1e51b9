package app

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/gateway"
	"wpmcp/internal/infra/hooks"
	"wpmcp/internal/infra/telemetry"
)

// ServeConfig selects the configuration file to serve from.
type ServeConfig struct {
	ConfigPath string
	// ReloadDebounce overrides the config watcher debounce interval.
	ReloadDebounce time.Duration
}

// Application wires the tool host and its dependencies.
type Application struct {
	ctx           context.Context
	config        domain.Config
	logger        *zap.Logger
	registry      *prometheus.Registry
	health        *telemetry.HealthTracker
	tools         *gateway.ToolRegistry
	server        *mcp.Server
	authn         *gateway.Authenticator
	init          *hooks.Init
	reloadManager *ReloadManager
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Context       context.Context
	Config        domain.Config
	Logger        *zap.Logger
	Registry      *prometheus.Registry
	Health        *telemetry.HealthTracker
	Tools         *gateway.ToolRegistry
	Server        *mcp.Server
	Auth          *gateway.Authenticator
	Init          *hooks.Init
	ReloadManager *ReloadManager
}

func NewApplication(opts ApplicationOptions) *Application {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Application{
		ctx:           ctx,
		config:        opts.Config,
		logger:        logger.Named("app"),
		registry:      opts.Registry,
		health:        opts.Health,
		tools:         opts.Tools,
		server:        opts.Server,
		authn:         opts.Auth,
		init:          opts.Init,
		reloadManager: opts.ReloadManager,
	}
}

// Run registers the enabled tools, starts the background services and
// serves MCP until the context is canceled.
func (a *Application) Run() error {
	if err := a.init.Fire(a.tools); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}
	a.logger.Info("tools registered",
		zap.Int("tools", len(a.tools.Descriptors())),
		zap.String("transport", string(a.config.Server.Transport)),
	)

	if a.config.Observability.Metrics {
		go func() {
			err := telemetry.NewObservabilityServer(a.config.Observability, a.registry, a.health, a.logger).Run(a.ctx)
			if err != nil {
				a.logger.Warn("observability server failed", zap.Error(err))
			}
		}()
	}

	if a.reloadManager != nil {
		if err := a.reloadManager.Start(a.ctx); err != nil {
			a.logger.Warn("reload manager start failed", zap.Error(err))
		}
	}

	return gateway.Serve(a.ctx, a.config.Server, a.server, a.authn, a.logger)
}

// Tools returns the registry the application serves.
func (a *Application) Tools() *gateway.ToolRegistry {
	return a.tools
}
