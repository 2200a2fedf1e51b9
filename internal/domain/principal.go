package domain

import (
	"context"
	"slices"
)

// Capabilities checked by the built-in tools.
const (
	CapManageOptions    = "manage_options"
	CapModerateComments = "moderate_comments"
)

// Principal is the caller a tool invocation runs on behalf of.
type Principal struct {
	ID           string
	Capabilities []string
}

// Can reports whether the principal holds the capability.
func (p Principal) Can(capability string) bool {
	return slices.Contains(p.Capabilities, capability)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx, or the zero
// principal (no capabilities) when none is set.
func PrincipalFromContext(ctx context.Context) Principal {
	if ctx == nil {
		return Principal{}
	}
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}
