package gateway

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/auth"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
)

// tokenLifetime bounds how long a verified token is trusted by the HTTP
// session layer. Tokens are re-verified on every request.
const tokenLifetime = time.Hour

// Authenticator maps bearer tokens and stdio sessions to principals. The
// auth configuration can be swapped at runtime.
type Authenticator struct {
	cfg    atomic.Pointer[domain.AuthConfig]
	logger *zap.Logger
}

func NewAuthenticator(cfg domain.AuthConfig, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Authenticator{logger: logger.Named("auth")}
	a.Update(cfg)
	return a
}

// Update replaces the auth configuration.
func (a *Authenticator) Update(cfg domain.AuthConfig) {
	a.cfg.Store(&cfg)
	a.logger.Info("auth configuration applied", zap.Int("tokens", len(cfg.Tokens)))
}

func (a *Authenticator) config() domain.AuthConfig {
	if cfg := a.cfg.Load(); cfg != nil {
		return *cfg
	}
	return domain.AuthConfig{}
}

// TokensConfigured reports whether HTTP requests must carry a bearer token.
func (a *Authenticator) TokensConfigured() bool {
	return len(a.config().Tokens) > 0
}

// Verify implements auth.TokenVerifier.
func (a *Authenticator) Verify(_ context.Context, token string, _ *http.Request) (*auth.TokenInfo, error) {
	for _, t := range a.config().Tokens {
		if t.Token != "" && subtle.ConstantTimeCompare([]byte(t.Token), []byte(token)) == 1 {
			return &auth.TokenInfo{
				Scopes:     append([]string(nil), t.Capabilities...),
				Expiration: time.Now().Add(tokenLifetime),
				UserID:     t.PrincipalID,
			}, nil
		}
	}
	a.logger.Warn("rejected bearer token")
	return nil, auth.ErrInvalidToken
}

// Resolve returns the token principal for authenticated HTTP requests and
// the stdio principal otherwise.
func (a *Authenticator) Resolve(_ context.Context, req *mcp.CallToolRequest) domain.Principal {
	if req != nil && req.Extra != nil && req.Extra.TokenInfo != nil {
		info := req.Extra.TokenInfo
		return domain.Principal{ID: info.UserID, Capabilities: append([]string(nil), info.Scopes...)}
	}
	return a.config().Principal()
}

// Middleware wraps an HTTP handler with bearer authentication when tokens
// are configured.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	protected := auth.RequireBearerToken(a.Verify, nil)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.TokensConfigured() {
			next.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})
}
