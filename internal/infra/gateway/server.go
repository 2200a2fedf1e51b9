package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
)

// NewMCPServer builds the MCP server tools are registered on.
func NewMCPServer(cfg domain.ServerConfig) *mcp.Server {
	name := cfg.Name
	if name == "" {
		name = domain.DefaultServerName
	}
	version := cfg.Version
	if version == "" {
		version = domain.DefaultServerVersion
	}
	return mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, &mcp.ServerOptions{HasTools: true})
}

// Serve exposes server over the configured transport until ctx is done.
func Serve(ctx context.Context, cfg domain.ServerConfig, server *mcp.Server, authn *Authenticator, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("server")

	switch cfg.Transport {
	case domain.TransportStdio, "":
		logger.Info("mcp server starting (stdio transport)")
		err := server.Run(ctx, &mcp.StdioTransport{})
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	case domain.TransportStreamableHTTP:
		return serveHTTP(ctx, cfg, server, authn, logger)
	default:
		return fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

// HTTPHandler returns the streamable HTTP handler for server, guarded by
// bearer authentication when authn has tokens.
func HTTPHandler(cfg domain.ServerConfig, server *mcp.Server, authn *Authenticator) http.Handler {
	path := cfg.HTTPPath
	if path == "" {
		path = domain.DefaultHTTPPath
	}
	var handler http.Handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	if authn != nil {
		handler = authn.Middleware(handler)
	}
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	return mux
}

func serveHTTP(ctx context.Context, cfg domain.ServerConfig, server *mcp.Server, authn *Authenticator, logger *zap.Logger) error {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = domain.DefaultHTTPAddr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           HTTPHandler(cfg, server, authn),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("mcp server listening (streamable-http transport)",
			zap.String("addr", addr),
			zap.Bool("auth", authn != nil && authn.TokensConfigured()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("mcp http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("mcp http server shutdown error", zap.Error(err))
			return err
		}
		logger.Info("mcp http server stopped")
		return nil
	}
}
