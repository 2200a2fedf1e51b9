package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/mod/semver"

	"wpmcp/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setConfigDefaults(v)
	return v
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("server.name", domain.DefaultServerName)
	v.SetDefault("server.version", domain.DefaultServerVersion)
	v.SetDefault("server.transport", string(domain.DefaultTransport))
	v.SetDefault("server.httpAddr", domain.DefaultHTTPAddr)
	v.SetDefault("server.httpPath", domain.DefaultHTTPPath)
	v.SetDefault("auth.stdioPrincipal.id", "local")
	v.SetDefault("auth.stdioPrincipal.capabilities", []string{domain.CapManageOptions, domain.CapModerateComments})
	v.SetDefault("generator.outputDir", domain.DefaultGeneratorOutputDir)
	v.SetDefault("generator.packageName", domain.DefaultGeneratorPackageName)
	v.SetDefault("generator.filePrefix", domain.DefaultGeneratorFilePrefix)
	v.SetDefault("generator.domainImport", domain.DefaultGeneratorDomainImport)
	v.SetDefault("comments.backend", string(domain.DefaultCommentsBackend))
	v.SetDefault("comments.boltPath", domain.DefaultCommentsBoltPath)
	v.SetDefault("comments.tablePrefix", domain.DefaultCommentsTablePrefix)
	v.SetDefault("host.wordpressVersion", domain.DefaultWordPressVersion)
	v.SetDefault("host.phpVersion", domain.DefaultPHPVersion)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.metrics", false)
	v.SetDefault("logging.level", domain.DefaultLogLevel)
	v.SetDefault("logging.maxSizeMB", domain.DefaultLogMaxSizeMB)
	v.SetDefault("logging.maxBackups", domain.DefaultLogMaxBackups)
	v.SetDefault("logging.maxAgeDays", domain.DefaultLogMaxAgeDays)
	v.SetDefault("tools.site", true)
	v.SetDefault("tools.boilerplate", true)
}

type rawConfig struct {
	Server        rawServerConfig        `mapstructure:"server"`
	Auth          rawAuthConfig          `mapstructure:"auth"`
	Generator     rawGeneratorConfig     `mapstructure:"generator"`
	Comments      rawCommentsConfig      `mapstructure:"comments"`
	Host          rawHostConfig          `mapstructure:"host"`
	Observability rawObservabilityConfig `mapstructure:"observability"`
	Logging       rawLoggingConfig       `mapstructure:"logging"`
	Tools         rawToolSetConfig       `mapstructure:"tools"`
}

type rawServerConfig struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	Transport string `mapstructure:"transport"`
	HTTPAddr  string `mapstructure:"httpAddr"`
	HTTPPath  string `mapstructure:"httpPath"`
}

type rawAuthConfig struct {
	StdioPrincipal rawPrincipalConfig `mapstructure:"stdioPrincipal"`
	Tokens         []rawTokenConfig   `mapstructure:"tokens"`
}

type rawPrincipalConfig struct {
	ID           string   `mapstructure:"id"`
	Capabilities []string `mapstructure:"capabilities"`
}

type rawTokenConfig struct {
	Token        string   `mapstructure:"token"`
	PrincipalID  string   `mapstructure:"principalId"`
	Capabilities []string `mapstructure:"capabilities"`
}

type rawGeneratorConfig struct {
	OutputDir    string `mapstructure:"outputDir"`
	PackageName  string `mapstructure:"packageName"`
	FilePrefix   string `mapstructure:"filePrefix"`
	DomainImport string `mapstructure:"domainImport"`
}

type rawCommentsConfig struct {
	Backend     string `mapstructure:"backend"`
	BoltPath    string `mapstructure:"boltPath"`
	DSN         string `mapstructure:"dsn"`
	TablePrefix string `mapstructure:"tablePrefix"`
}

type rawHostConfig struct {
	WordPressVersion        string `mapstructure:"wordpressVersion"`
	PHPVersion              string `mapstructure:"phpVersion"`
	MinimumWordPressVersion string `mapstructure:"minimumWordPressVersion"`
}

type rawObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	Metrics       bool   `mapstructure:"metrics"`
}

type rawLoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

type rawToolSetConfig struct {
	Site        bool `mapstructure:"site"`
	Boilerplate bool `mapstructure:"boilerplate"`
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("catalog")}
}

// Load reads the config file at path. An empty path yields the defaults.
func (l *Loader) Load(ctx context.Context, path string) (domain.Config, error) {
	if path == "" {
		return l.decode(ctx, "")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing, err := expandConfigEnv(data)
	if err != nil {
		return domain.Config{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
	}
	return l.decode(ctx, expanded)
}

func (l *Loader) decode(ctx context.Context, expanded string) (domain.Config, error) {
	v := newConfigViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return domain.Config{}, fmt.Errorf("parse config: %w", err)
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	cfg, errs := normalizeConfig(raw)
	if len(errs) > 0 {
		return domain.Config{}, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}

func normalizeConfig(raw rawConfig) (domain.Config, []string) {
	var errs []string

	server, serverErrs := normalizeServerConfig(raw.Server)
	errs = append(errs, serverErrs...)
	auth, authErrs := normalizeAuthConfig(raw.Auth)
	errs = append(errs, authErrs...)
	generator, generatorErrs := normalizeGeneratorConfig(raw.Generator)
	errs = append(errs, generatorErrs...)
	comments, commentsErrs := normalizeCommentsConfig(raw.Comments)
	errs = append(errs, commentsErrs...)
	host, hostErrs := normalizeHostConfig(raw.Host)
	errs = append(errs, hostErrs...)
	observability, observabilityErrs := normalizeObservabilityConfig(raw.Observability)
	errs = append(errs, observabilityErrs...)
	logging, loggingErrs := normalizeLoggingConfig(raw.Logging)
	errs = append(errs, loggingErrs...)

	return domain.Config{
		Server:        server,
		Auth:          auth,
		Generator:     generator,
		Comments:      comments,
		Host:          host,
		Observability: observability,
		Logging:       logging,
		Tools: domain.ToolSetConfig{
			Site:        raw.Tools.Site,
			Boilerplate: raw.Tools.Boilerplate,
		},
	}, errs
}

func normalizeServerConfig(raw rawServerConfig) (domain.ServerConfig, []string) {
	var errs []string

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		errs = append(errs, "server.name is required")
	}

	transport := domain.TransportKind(strings.ToLower(strings.TrimSpace(raw.Transport)))
	if transport != domain.TransportStdio && transport != domain.TransportStreamableHTTP {
		errs = append(errs, "server.transport must be stdio or streamable-http")
	}

	httpPath := strings.TrimSpace(raw.HTTPPath)
	if !strings.HasPrefix(httpPath, "/") {
		errs = append(errs, "server.httpPath must start with /")
	}
	httpAddr := strings.TrimSpace(raw.HTTPAddr)
	if transport == domain.TransportStreamableHTTP && httpAddr == "" {
		errs = append(errs, "server.httpAddr is required for streamable-http transport")
	}

	return domain.ServerConfig{
		Name:      name,
		Version:   strings.TrimSpace(raw.Version),
		Transport: transport,
		HTTPAddr:  httpAddr,
		HTTPPath:  httpPath,
	}, errs
}

func normalizeAuthConfig(raw rawAuthConfig) (domain.AuthConfig, []string) {
	var errs []string

	cfg := domain.AuthConfig{
		StdioPrincipal: domain.PrincipalConfig{
			ID:           strings.TrimSpace(raw.StdioPrincipal.ID),
			Capabilities: normalizeCapabilities(raw.StdioPrincipal.Capabilities),
		},
	}

	seen := make(map[string]struct{}, len(raw.Tokens))
	for i, token := range raw.Tokens {
		value := strings.TrimSpace(token.Token)
		if value == "" {
			errs = append(errs, fmt.Sprintf("auth.tokens[%d]: token is required", i))
			continue
		}
		if _, ok := seen[value]; ok {
			errs = append(errs, fmt.Sprintf("auth.tokens[%d]: duplicate token", i))
			continue
		}
		seen[value] = struct{}{}

		principalID := strings.TrimSpace(token.PrincipalID)
		if principalID == "" {
			errs = append(errs, fmt.Sprintf("auth.tokens[%d]: principalId is required", i))
		}
		cfg.Tokens = append(cfg.Tokens, domain.TokenConfig{
			Token:        value,
			PrincipalID:  principalID,
			Capabilities: normalizeCapabilities(token.Capabilities),
		})
	}
	return cfg, errs
}

func normalizeCapabilities(caps []string) []string {
	if len(caps) == 0 {
		return nil
	}
	out := make([]string, 0, len(caps))
	seen := make(map[string]struct{}, len(caps))
	for _, c := range caps {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func normalizeGeneratorConfig(raw rawGeneratorConfig) (domain.GeneratorConfig, []string) {
	var errs []string

	cfg := domain.GeneratorConfig{
		OutputDir:    strings.TrimSpace(raw.OutputDir),
		PackageName:  strings.TrimSpace(raw.PackageName),
		FilePrefix:   strings.TrimSpace(raw.FilePrefix),
		DomainImport: strings.TrimSpace(raw.DomainImport),
	}
	if cfg.OutputDir == "" {
		errs = append(errs, "generator.outputDir is required")
	}
	if !token.IsIdentifier(cfg.PackageName) {
		errs = append(errs, fmt.Sprintf("generator.packageName %q is not a valid Go package name", cfg.PackageName))
	}
	if cfg.DomainImport == "" {
		errs = append(errs, "generator.domainImport is required")
	}
	if strings.ContainsAny(cfg.FilePrefix, `/\`) {
		errs = append(errs, "generator.filePrefix must not contain path separators")
	}
	return cfg, errs
}

func normalizeCommentsConfig(raw rawCommentsConfig) (domain.CommentsConfig, []string) {
	var errs []string

	cfg := domain.CommentsConfig{
		Backend:     domain.CommentBackend(strings.ToLower(strings.TrimSpace(raw.Backend))),
		BoltPath:    strings.TrimSpace(raw.BoltPath),
		DSN:         strings.TrimSpace(raw.DSN),
		TablePrefix: strings.TrimSpace(raw.TablePrefix),
	}
	switch cfg.Backend {
	case domain.CommentBackendMemory:
	case domain.CommentBackendBolt:
		if cfg.BoltPath == "" {
			errs = append(errs, "comments.boltPath is required for the bolt backend")
		}
	case domain.CommentBackendMySQL:
		if cfg.DSN == "" {
			errs = append(errs, "comments.dsn is required for the mysql backend")
		}
	default:
		errs = append(errs, "comments.backend must be memory, bolt or mysql")
	}
	return cfg, errs
}

func normalizeHostConfig(raw rawHostConfig) (domain.HostConfig, []string) {
	var errs []string

	cfg := domain.HostConfig{
		WordPressVersion:        strings.TrimSpace(raw.WordPressVersion),
		PHPVersion:              strings.TrimSpace(raw.PHPVersion),
		MinimumWordPressVersion: strings.TrimSpace(raw.MinimumWordPressVersion),
	}
	if cfg.MinimumWordPressVersion != "" && !semver.IsValid("v"+cfg.MinimumWordPressVersion) {
		errs = append(errs, fmt.Sprintf("host.minimumWordPressVersion %q is not a valid version", cfg.MinimumWordPressVersion))
	}
	return cfg, errs
}

func normalizeObservabilityConfig(raw rawObservabilityConfig) (domain.ObservabilityConfig, []string) {
	addr := strings.TrimSpace(raw.ListenAddress)
	if addr == "" {
		addr = domain.DefaultObservabilityListenAddress
	}
	return domain.ObservabilityConfig{
		ListenAddress: addr,
		Metrics:       raw.Metrics,
	}, nil
}

func normalizeLoggingConfig(raw rawLoggingConfig) (domain.LoggingConfig, []string) {
	var errs []string

	level := strings.ToLower(strings.TrimSpace(raw.Level))
	if _, err := zapcore.ParseLevel(level); err != nil {
		errs = append(errs, fmt.Sprintf("logging.level %q is not a valid level", raw.Level))
	}
	if raw.MaxSizeMB < 0 || raw.MaxBackups < 0 || raw.MaxAgeDays < 0 {
		errs = append(errs, "logging rotation limits must be >= 0")
	}
	return domain.LoggingConfig{
		Level:      level,
		File:       strings.TrimSpace(raw.File),
		MaxSizeMB:  raw.MaxSizeMB,
		MaxBackups: raw.MaxBackups,
		MaxAgeDays: raw.MaxAgeDays,
	}, errs
}
