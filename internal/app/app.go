package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/catalog"
	"wpmcp/internal/infra/commentstore"
	"wpmcp/internal/infra/gateway"
	"wpmcp/internal/infra/hooks"
	"wpmcp/internal/infra/toolgen"
	"wpmcp/internal/tools"
)

// App runs the CLI entry points.
type App struct {
	logger *zap.Logger
	fs     afero.Fs
}

type ValidateConfig struct {
	ConfigPath string
}

type GenerateConfig struct {
	ConfigPath string
	SpecPath   string
}

type ImportConfig struct {
	ConfigPath string
	File       string
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{logger: logger.Named("app"), fs: afero.NewOsFs()}
}

// Serve runs the tool host until ctx is canceled.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	application, cleanup, err := InitializeApplication(ctx, cfg, LoggingConfig{Logger: a.logger})
	if err != nil {
		return err
	}
	defer cleanup()

	err = application.Run()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ValidateConfig loads the configuration and checks that the comment
// backend is reachable.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) error {
	config, err := catalog.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}

	store, err := commentstore.Open(ctx, config.Comments, a.logger)
	if err != nil {
		return fmt.Errorf("open comment store: %w", err)
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("comment store unreachable: %w", err)
	}

	a.logger.Info("configuration validated",
		zap.String("config", cfg.ConfigPath),
		zap.String("transport", string(config.Server.Transport)),
		zap.String("comments", string(config.Comments.Backend)),
	)
	return nil
}

// Generate scaffolds a tool from a specification file.
func (a *App) Generate(ctx context.Context, cfg GenerateConfig) (toolgen.Result, error) {
	config, err := catalog.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return toolgen.Result{}, err
	}
	args, err := toolgen.LoadSpecFile(a.fs, cfg.SpecPath)
	if err != nil {
		return toolgen.Result{}, err
	}
	spec, err := toolgen.ParseSpecification(args)
	if err != nil {
		return toolgen.Result{}, err
	}
	generator := toolgen.NewGenerator(a.fs, toolgen.OptionsFromConfig(config.Generator), nil, a.logger)
	return generator.Generate(ctx, spec)
}

// ListTools returns the descriptors of the tools the configuration enables,
// as a registry would expose them.
func (a *App) ListTools(ctx context.Context, configPath string) ([]domain.ToolDescriptor, error) {
	config, err := catalog.NewLoader(a.logger).Load(ctx, configPath)
	if err != nil {
		return nil, err
	}

	signal := hooks.NewInit(a.logger)
	deps := tools.Dependencies{Host: config.Host, Logger: a.logger}
	if err := tools.Subscribe(signal, config.Tools, deps); err != nil {
		return nil, err
	}
	registry := gateway.NewToolRegistry(nil, nil, nil, a.logger)
	if err := signal.Fire(registry); err != nil {
		return nil, err
	}
	return registry.Descriptors(), nil
}

// ImportComments loads a JSON array of comments into the configured store.
func (a *App) ImportComments(ctx context.Context, cfg ImportConfig) (int, error) {
	config, err := catalog.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return 0, err
	}

	data, err := afero.ReadFile(a.fs, cfg.File)
	if err != nil {
		return 0, fmt.Errorf("read comments file: %w", err)
	}
	var comments []domain.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return 0, fmt.Errorf("decode comments file: %w", err)
	}
	for i, c := range comments {
		if c.Status == "" {
			comments[i].Status = domain.CommentApproved
		}
		if c.Status == domain.CommentAll || !slices.Contains(domain.CommentStatuses, comments[i].Status) {
			return 0, fmt.Errorf("comment %d: %q is not a stored status", c.ID, c.Status)
		}
	}

	if config.Comments.Backend != domain.CommentBackendBolt {
		return 0, fmt.Errorf("comment backend %q does not persist imports", config.Comments.Backend)
	}
	store, err := commentstore.Open(ctx, config.Comments, a.logger)
	if err != nil {
		return 0, fmt.Errorf("open comment store: %w", err)
	}
	defer store.Close()

	writer, ok := store.(domain.CommentWriter)
	if !ok {
		return 0, fmt.Errorf("comment backend %q does not persist imports", config.Comments.Backend)
	}
	if err := writer.Put(ctx, comments); err != nil {
		return 0, err
	}
	a.logger.Info("comments imported", zap.Int("count", len(comments)), zap.String("file", cfg.File))
	return len(comments), nil
}
