package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"wpmcp/internal/app"
)

const configEnv = "WPMCP_CONFIG"

type rootOptions struct {
	configPath string
	logLevel   string
	logger     *zap.Logger
}

func main() {
	opts := &rootOptions{logger: zap.NewNop()}
	root := newRootCmd(opts)
	if err := root.Execute(); err != nil {
		opts.logger.Fatal("command failed", zap.Error(err))
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "wpmcp",
		Short:         "MCP tool host for WordPress sites, with a tool scaffolder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			applyEnvDefaults(cmd.Flags(), opts)
			cfg := zap.NewProductionConfig()
			if opts.logLevel != "" {
				level, err := zap.ParseAtomicLevel(opts.logLevel)
				if err != nil {
					return fmt.Errorf("invalid --log-level: %w", err)
				}
				cfg.Level = level
			}
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the wpmcp config file (defaults to $"+configEnv+", then built-in defaults)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "bootstrap log level used before the config is loaded")

	root.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newToolsCmd(opts),
		newCommentsCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the enabled tools over the configured MCP transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			return app.New(opts.logger).Serve(ctx, app.ServeConfig{ConfigPath: opts.configPath})
		},
	}
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var specPath string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a tool source file from a YAML, JSON or TOML specification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(specPath) == "" {
				return fmt.Errorf("--spec is required")
			}
			result, err := app.New(opts.logger).Generate(cmd.Context(), app.GenerateConfig{
				ConfigPath: opts.configPath,
				SpecPath:   specPath,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, result.Map())
		},
	}
	cmd.Flags().StringVar(&specPath, "spec", "", "tool specification file")
	return cmd
}

func newToolsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the descriptors of the enabled tools as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descriptors, err := app.New(opts.logger).ListTools(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			return writeJSON(cmd, descriptors)
		},
	}
}

func newCommentsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Manage the local comment store",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a JSON array of comments into the bolt comment store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := app.New(opts.logger).ImportComments(cmd.Context(), app.ImportConfig{
				ConfigPath: opts.configPath,
				File:       args[0],
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{"imported": count})
		},
	})
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and check the comment backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.New(opts.logger).ValidateConfig(cmd.Context(), app.ValidateConfig{ConfigPath: opts.configPath})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the wpmcp version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wpmcp %s (%s)\n", app.Version, app.Build)
		},
	}
}

// applyEnvDefaults fills flags the user did not set from the environment.
func applyEnvDefaults(flags *pflag.FlagSet, opts *rootOptions) {
	if flag := flags.Lookup("config"); flag != nil && flag.Changed {
		return
	}
	if value := strings.TrimSpace(os.Getenv(configEnv)); value != "" {
		opts.configPath = value
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
