package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/mcpcodec"
	"wpmcp/internal/infra/telemetry"
)

const tracerName = "wpmcp/internal/infra/gateway"

// PrincipalResolver identifies the caller of an MCP tool request.
type PrincipalResolver interface {
	Resolve(ctx context.Context, req *mcp.CallToolRequest) domain.Principal
}

type registeredTool struct {
	reg domain.Registration
	// full applies schema defaults; shape checks argument types only.
	full  *jsonschema.Resolved
	shape *jsonschema.Resolved
}

// ToolRegistry adapts registrations onto an MCP server. It owns the
// collection of registered tools; each registration is accepted once.
type ToolRegistry struct {
	server    *mcp.Server
	principal PrincipalResolver
	metrics   domain.Metrics
	logger    *zap.Logger

	mu    sync.RWMutex
	tools map[string]registeredTool
}

func NewToolRegistry(server *mcp.Server, principal PrincipalResolver, metrics domain.Metrics, logger *zap.Logger) *ToolRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	return &ToolRegistry{
		server:    server,
		principal: principal,
		metrics:   metrics,
		logger:    logger.Named("tool_registry"),
		tools:     make(map[string]registeredTool),
	}
}

func (r *ToolRegistry) Register(reg domain.Registration) error {
	const op = "gateway.Register"

	if strings.TrimSpace(reg.Name) == "" {
		return domain.E(domain.CodeInvalidArgument, op, "tool name is required", domain.ErrInvalidArguments)
	}
	if reg.Callback == nil {
		return domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("tool %q has no callback", reg.Name), domain.ErrInvalidArguments)
	}
	if !reg.Type.Valid() {
		return domain.InvalidEnumError(op, "type", string(reg.Type), domain.ToolTypeNames())
	}
	if !isObjectSchema(reg.InputSchema) {
		return domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("tool %q input schema must be an object schema", reg.Name), domain.ErrInvalidArguments)
	}
	full, err := resolveSchema(reg.InputSchema)
	if err != nil {
		return domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("tool %q input schema: %v", reg.Name, err), domain.ErrInvalidArguments)
	}
	shape, err := resolveSchema(shapeSchema(reg.InputSchema))
	if err != nil {
		return domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("tool %q input schema: %v", reg.Name, err), domain.ErrInvalidArguments)
	}

	reg.InputSchema = domain.CloneJSONMap(reg.InputSchema)
	reg.Annotations = domain.CloneJSONMap(reg.Annotations)
	if reg.PermissionCallback == nil {
		reg.PermissionCallback = func(context.Context) bool { return true }
	}

	r.mu.Lock()
	if _, exists := r.tools[reg.Name]; exists {
		r.mu.Unlock()
		return domain.E(domain.CodeAlreadyExists, op, fmt.Sprintf("tool %q already registered", reg.Name), domain.ErrToolRegistered)
	}
	r.tools[reg.Name] = registeredTool{reg: reg, full: full, shape: shape}
	count := len(r.tools)
	r.mu.Unlock()

	if r.server != nil {
		r.server.AddTool(mcpcodec.ToolToMCP(reg), r.handler(reg.Name))
	}
	r.metrics.SetRegisteredTools(count)
	r.logger.Info("tool registered",
		telemetry.EventField(telemetry.EventToolRegistered),
		telemetry.ToolField(reg.Name),
		telemetry.ToolTypeField(string(reg.Type)),
	)
	return nil
}

// Descriptors lists registered tools sorted by name.
func (r *ToolRegistry) Descriptors() []domain.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ToolDescriptor, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, domain.ToolDescriptor{
			Name:        tool.reg.Name,
			Description: tool.reg.Description,
			Type:        tool.reg.Type,
			InputSchema: domain.CloneJSONMap(tool.reg.InputSchema),
			Annotations: domain.CloneJSONMap(tool.reg.Annotations),
		})
	}
	slices.SortFunc(out, func(a, b domain.ToolDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Invoke runs a registered tool for the principal carried by ctx. Failures
// are returned as error payloads.
func (r *ToolRegistry) Invoke(ctx context.Context, name string, args map[string]any) map[string]any {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "tools/call "+name,
		trace.WithAttributes(attribute.String("mcp.tool.name", name)),
	)
	defer span.End()
	ctx, _ = telemetry.StartCall(ctx, "")
	logger := telemetry.CallLogger(ctx, r.logger).With(telemetry.ToolField(name))

	result, status := r.invoke(ctx, name, args, logger)
	metric := domain.ToolCallMetric{
		Tool:     name,
		Status:   status,
		Kind:     domain.ErrorKind(result),
		Duration: time.Since(start),
	}
	r.metrics.ObserveToolCall(metric)
	span.SetAttributes(attribute.String("mcp.tool.status", string(status)))

	if status == domain.CallStatusSuccess {
		logger.Debug("tool call finished",
			telemetry.EventField(telemetry.EventToolCall),
			telemetry.DurationField(metric.Duration),
		)
	} else {
		span.SetStatus(codes.Error, string(metric.Kind))
		logger.Info("tool call failed",
			telemetry.EventField(telemetry.EventToolCall),
			telemetry.StatusField(string(status)),
			telemetry.KindField(string(metric.Kind)),
			telemetry.DurationField(metric.Duration),
		)
	}
	return result
}

func (r *ToolRegistry) invoke(ctx context.Context, name string, args map[string]any, logger *zap.Logger) (result map[string]any, status domain.CallStatus) {
	const op = "gateway.Invoke"

	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return domain.ErrorResult(domain.E(domain.CodeNotFound, op, fmt.Sprintf("unknown tool %q", name), domain.ErrToolNotFound)), domain.CallStatusInvalid
	}

	if args == nil {
		args = map[string]any{}
	}
	if err := tool.full.ApplyDefaults(&args); err != nil {
		return domain.ErrorResult(domain.E(domain.CodeInvalidArgument, op, err.Error(), domain.ErrInvalidArguments)), domain.CallStatusInvalid
	}
	if err := tool.shape.Validate(args); err != nil {
		return domain.ErrorResult(domain.E(domain.CodeInvalidArgument, op, err.Error(), domain.ErrInvalidArguments)), domain.CallStatusInvalid
	}

	if !tool.reg.PermissionCallback(ctx) {
		principal := domain.PrincipalFromContext(ctx)
		logger.Warn("permission denied",
			telemetry.EventField(telemetry.EventPermissionDenied),
			telemetry.PrincipalField(principal.ID),
		)
		return domain.ErrorResult(domain.E(domain.CodePermissionDenied, op, "you do not have permission to use this tool", domain.ErrPermissionDenied)), domain.CallStatusDenied
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("tool panicked", telemetry.EventField(telemetry.EventToolPanic), zap.Any("panic", rec))
			result = domain.ErrorResult(domain.E(domain.CodeInternal, op, fmt.Sprintf("tool %q failed", name), nil))
			status = domain.CallStatusError
		}
	}()

	result = tool.reg.Callback(ctx, args)
	if result == nil {
		result = map[string]any{}
	}
	if domain.IsErrorResult(result) {
		return result, domain.CallStatusError
	}
	return result, domain.CallStatusSuccess
}

func (r *ToolRegistry) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		args, err := mcpcodec.DecodeArguments(raw)
		if err != nil {
			return mcpcodec.ResultToMCP(domain.ErrorResult(domain.E(domain.CodeInvalidArgument, "gateway.handler", err.Error(), domain.ErrInvalidArguments)))
		}

		if req != nil && req.Extra != nil && req.Extra.Header != nil {
			ctx, _ = telemetry.StartCall(ctx, req.Extra.Header.Get(telemetry.RequestIDHeader))
		}
		if r.principal != nil {
			ctx = domain.WithPrincipal(ctx, r.principal.Resolve(ctx, req))
		}
		return mcpcodec.ResultToMCP(r.Invoke(ctx, name, args))
	}
}

func resolveSchema(schema map[string]any) (*jsonschema.Resolved, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
}

// semanticKeywords are checked by the tools themselves, which report them
// with their own error kinds.
var semanticKeywords = []string{"required", "enum", "minimum", "maximum"}

// shapeSchema returns a copy of schema without semanticKeywords in any
// subschema.
func shapeSchema(schema map[string]any) map[string]any {
	out := domain.CloneJSONMap(schema)
	stripKeywords(out)
	return out
}

func stripKeywords(schema map[string]any) {
	for _, kw := range semanticKeywords {
		delete(schema, kw)
	}
	for _, key := range []string{"properties", "patternProperties", "$defs", "definitions"} {
		if sub, ok := schema[key].(map[string]any); ok {
			for _, item := range sub {
				if child, ok := item.(map[string]any); ok {
					stripKeywords(child)
				}
			}
		}
	}
	for _, key := range []string{"items", "additionalProperties", "not", "if", "then", "else"} {
		if child, ok := schema[key].(map[string]any); ok {
			stripKeywords(child)
		}
	}
	for _, key := range []string{"allOf", "anyOf", "oneOf", "prefixItems"} {
		if list, ok := schema[key].([]any); ok {
			for _, item := range list {
				if child, ok := item.(map[string]any); ok {
					stripKeywords(child)
				}
			}
		}
	}
}

func isObjectSchema(schema map[string]any) bool {
	if schema == nil {
		return false
	}
	if typ, ok := schema["type"].(string); ok {
		return strings.EqualFold(typ, "object")
	}
	return false
}
