package app

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/commentstore"
	"wpmcp/internal/infra/gateway"
	"wpmcp/internal/infra/hooks"
	"wpmcp/internal/infra/telemetry"
	"wpmcp/internal/infra/toolgen"
	"wpmcp/internal/tools"
)

const commentStoreProbe = "comment_store"

// NewConfig returns the configuration loaded at startup.
func NewConfig(provider *ConfigProvider) (domain.Config, error) {
	state, err := provider.Snapshot(context.Background())
	if err != nil {
		return domain.Config{}, err
	}
	return state.Config, nil
}

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

// NewHealthTracker reports the comment store as the host's health signal.
func NewHealthTracker(store domain.CommentStore) *telemetry.HealthTracker {
	health := telemetry.NewHealthTracker()
	health.Register(commentStoreProbe, store.Ping)
	return health
}

// NewCommentStore opens the configured backend. The cleanup closes it.
func NewCommentStore(ctx context.Context, config domain.Config, logger *zap.Logger) (domain.CommentStore, func(), error) {
	store, err := commentstore.Open(ctx, config.Comments, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close comment store failed", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func NewGenerator(config domain.Config, metrics domain.Metrics, logger *zap.Logger) *toolgen.Generator {
	return toolgen.NewGenerator(afero.NewOsFs(), toolgen.OptionsFromConfig(config.Generator), metrics, logger)
}

func NewAuthenticator(config domain.Config, logger *zap.Logger) *gateway.Authenticator {
	return gateway.NewAuthenticator(config.Auth, logger)
}

func NewMCPServer(config domain.Config) *mcp.Server {
	return gateway.NewMCPServer(config.Server)
}

func NewToolRegistry(server *mcp.Server, authn *gateway.Authenticator, metrics domain.Metrics, logger *zap.Logger) *gateway.ToolRegistry {
	return gateway.NewToolRegistry(server, authn, metrics, logger)
}

func NewToolDependencies(config domain.Config, store domain.CommentStore, generator *toolgen.Generator, logger *zap.Logger) tools.Dependencies {
	return tools.Dependencies{
		Host:      config.Host,
		Comments:  store,
		Generator: generator,
		Logger:    logger,
	}
}

// NewInitSignal subscribes the enabled tool sets to a fresh init signal.
func NewInitSignal(config domain.Config, deps tools.Dependencies, logger *zap.Logger) (*hooks.Init, error) {
	signal := hooks.NewInit(logger)
	if err := tools.Subscribe(signal, config.Tools, deps); err != nil {
		return nil, err
	}
	return signal, nil
}
