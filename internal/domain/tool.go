package domain

import (
	"context"
	"slices"
)

// ToolType classifies what a tool does to its environment.
type ToolType string

const (
	ToolTypeRead    ToolType = "read"
	ToolTypeWrite   ToolType = "write"
	ToolTypeExecute ToolType = "execute"
)

// ToolTypes lists the accepted tool types in declaration order.
var ToolTypes = []ToolType{ToolTypeRead, ToolTypeWrite, ToolTypeExecute}

// ToolTypeNames returns ToolTypes as plain strings.
func ToolTypeNames() []string {
	out := make([]string, 0, len(ToolTypes))
	for _, t := range ToolTypes {
		out = append(out, string(t))
	}
	return out
}

func (t ToolType) Valid() bool {
	return slices.Contains(ToolTypes, t)
}

// Tool is the contract every tool implements, generated or hand-written.
type Tool interface {
	Name() string
	Description() string
	Type() ToolType
	InputSchema() map[string]any
	Annotations() map[string]any
	// Execute returns a result map; failures are returned as ErrorResult payloads.
	Execute(ctx context.Context, args map[string]any) map[string]any
	// Permission gates Execute for the principal carried by ctx.
	Permission(ctx context.Context) bool
}

// ExecuteFunc is the callback half of a Registration.
type ExecuteFunc func(ctx context.Context, args map[string]any) map[string]any

// PermissionFunc is the permission half of a Registration.
type PermissionFunc func(ctx context.Context) bool

// Registration is the record handed to a Registry. It is not modified after
// construction.
type Registration struct {
	Name               string
	Description        string
	Type               ToolType
	InputSchema        map[string]any
	Callback           ExecuteFunc
	PermissionCallback PermissionFunc
	Annotations        map[string]any
}

// Registry accepts tool registrations. The collection belongs to the registry.
type Registry interface {
	Register(reg Registration) error
}

// ToolDescriptor is the public view of a registered tool.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        ToolType       `json:"type"`
	InputSchema map[string]any `json:"inputSchema"`
	Annotations map[string]any `json:"annotations,omitempty"`
}
