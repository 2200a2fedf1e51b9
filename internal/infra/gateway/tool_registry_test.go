package gateway

import (
	"context"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/mcpcodec"
)

type recordingMetrics struct {
	mu         sync.Mutex
	calls      []domain.ToolCallMetric
	registered int
}

func (m *recordingMetrics) ObserveToolCall(metric domain.ToolCallMetric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, metric)
}

func (m *recordingMetrics) ObserveGeneration(string) {}

func (m *recordingMetrics) SetRegisteredTools(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = count
}

type fixedPrincipal domain.Principal

func (p fixedPrincipal) Resolve(context.Context, *mcp.CallToolRequest) domain.Principal {
	return domain.Principal(p)
}

func echoRegistration(name string) domain.Registration {
	return domain.Registration{
		Name:        name,
		Description: "echo input",
		Type:        domain.ToolTypeRead,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":  map[string]any{"type": "string"},
				"count": map[string]any{"type": "integer", "default": 2, "minimum": 1, "maximum": 3},
				"mode":  map[string]any{"type": "string", "enum": []any{"a", "b"}},
			},
			"required": []any{"text"},
		},
		Annotations: map[string]any{"title": "Echo", "readOnlyHint": true},
		Callback: func(ctx context.Context, args map[string]any) map[string]any {
			return map[string]any{
				"echo":      args["text"],
				"count":     args["count"],
				"principal": domain.PrincipalFromContext(ctx).ID,
			}
		},
	}
}

func TestToolRegistry_RegisterExposesTools(t *testing.T) {
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "wpmcp", Version: "0.1.0"}, &mcp.ServerOptions{HasTools: true})
	metrics := &recordingMetrics{}
	registry := NewToolRegistry(server, fixedPrincipal{ID: "admin"}, metrics, zap.NewNop())

	require.NoError(t, registry.Register(echoRegistration("echo")))

	_, session := connectClient(t, ctx, server)
	defer session.Close()

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)
	assert.Equal(t, "echo", res.Tools[0].Name)
	require.NotNil(t, res.Tools[0].Annotations)
	assert.True(t, res.Tools[0].Annotations.ReadOnlyHint)

	call, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": "hi"},
	})
	require.NoError(t, err)
	assert.False(t, call.IsError)

	out, err := mcpcodec.ResultFromMCP(call)
	require.NoError(t, err)
	assert.Equal(t, "hi", out["echo"])
	assert.Equal(t, float64(2), out["count"])
	assert.Equal(t, "admin", out["principal"])

	assert.Equal(t, 1, metrics.registered)
	require.Len(t, metrics.calls, 1)
	assert.Equal(t, domain.CallStatusSuccess, metrics.calls[0].Status)
}

func TestToolRegistry_RegisterRejectsInvalid(t *testing.T) {
	registry := NewToolRegistry(nil, nil, nil, nil)

	require.NoError(t, registry.Register(echoRegistration("echo")))
	err := registry.Register(echoRegistration("echo"))
	assert.ErrorIs(t, err, domain.ErrToolRegistered)

	noCallback := echoRegistration("missing")
	noCallback.Callback = nil
	assert.ErrorIs(t, registry.Register(noCallback), domain.ErrInvalidArguments)

	badSchema := echoRegistration("bad")
	badSchema.InputSchema = map[string]any{"type": "string"}
	assert.ErrorIs(t, registry.Register(badSchema), domain.ErrInvalidArguments)

	badType := echoRegistration("typed")
	badType.Type = "create"
	code, ok := domain.CodeFrom(registry.Register(badType))
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidEnum, code)

	assert.Len(t, registry.Descriptors(), 1)
}

func TestToolRegistry_InvokeErrors(t *testing.T) {
	ctx := context.Background()
	metrics := &recordingMetrics{}
	registry := NewToolRegistry(nil, nil, metrics, nil)

	denied := echoRegistration("denied")
	denied.PermissionCallback = func(ctx context.Context) bool {
		return domain.PrincipalFromContext(ctx).Can(domain.CapManageOptions)
	}
	require.NoError(t, registry.Register(denied))
	require.NoError(t, registry.Register(echoRegistration("echo")))

	panicky := echoRegistration("panicky")
	panicky.Callback = func(context.Context, map[string]any) map[string]any { panic("boom") }
	require.NoError(t, registry.Register(panicky))

	result := registry.Invoke(ctx, "missing", nil)
	assert.Equal(t, domain.CodeNotFound, domain.ErrorKind(result))

	result = registry.Invoke(ctx, "denied", map[string]any{"text": "x"})
	assert.Equal(t, domain.CodePermissionDenied, domain.ErrorKind(result))

	allowed := domain.WithPrincipal(ctx, domain.Principal{ID: "admin", Capabilities: []string{domain.CapManageOptions}})
	result = registry.Invoke(allowed, "denied", map[string]any{"text": "x"})
	assert.False(t, domain.IsErrorResult(result))

	result = registry.Invoke(ctx, "echo", map[string]any{"text": 42})
	assert.Equal(t, domain.CodeInvalidArgument, domain.ErrorKind(result))

	result = registry.Invoke(ctx, "panicky", map[string]any{"text": "x"})
	assert.Equal(t, domain.CodeInternal, domain.ErrorKind(result))

	statuses := make([]domain.CallStatus, 0, len(metrics.calls))
	for _, call := range metrics.calls {
		statuses = append(statuses, call.Status)
	}
	assert.Equal(t, []domain.CallStatus{
		domain.CallStatusInvalid,
		domain.CallStatusDenied,
		domain.CallStatusSuccess,
		domain.CallStatusInvalid,
		domain.CallStatusError,
	}, statuses)
}

func TestToolRegistry_SemanticChecksLeftToTools(t *testing.T) {
	registry := NewToolRegistry(nil, nil, nil, nil)
	require.NoError(t, registry.Register(echoRegistration("echo")))

	// Missing required fields, out-of-range numbers and unknown enum values
	// reach the callback, which reports them with its own error kinds.
	result := registry.Invoke(context.Background(), "echo", map[string]any{"count": 50, "mode": "z"})
	assert.False(t, domain.IsErrorResult(result))
	assert.Equal(t, 50, result["count"])
}

func TestToolRegistry_CallToolErrorResult(t *testing.T) {
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "wpmcp", Version: "0.1.0"}, &mcp.ServerOptions{HasTools: true})
	registry := NewToolRegistry(server, fixedPrincipal{ID: "guest"}, nil, nil)

	denied := echoRegistration("denied")
	denied.PermissionCallback = func(context.Context) bool { return false }
	require.NoError(t, registry.Register(denied))

	_, session := connectClient(t, ctx, server)
	defer session.Close()

	call, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "denied", Arguments: map[string]any{"text": "x"}})
	require.NoError(t, err)
	assert.True(t, call.IsError)

	out, err := mcpcodec.ResultFromMCP(call)
	require.NoError(t, err)
	assert.Equal(t, true, out["error"])
	assert.Equal(t, "PERMISSION_DENIED", out["kind"])
}

func TestToolRegistry_DescriptorsSorted(t *testing.T) {
	registry := NewToolRegistry(nil, nil, nil, nil)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, registry.Register(echoRegistration(name)))
	}
	descriptors := registry.Descriptors()
	require.Len(t, descriptors, 3)
	assert.Equal(t, "alpha", descriptors[0].Name)
	assert.Equal(t, "mid", descriptors[1].Name)
	assert.Equal(t, "zeta", descriptors[2].Name)
	assert.Equal(t, domain.ToolTypeRead, descriptors[0].Type)
}

func connectClient(t *testing.T, ctx context.Context, server *mcp.Server) (*mcp.Client, *mcp.ClientSession) {
	t.Helper()
	ct, st := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	return client, session
}
