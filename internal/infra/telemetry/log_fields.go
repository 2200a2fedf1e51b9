package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldTool       = "tool"
	FieldToolType   = "tool_type"
	FieldStatus     = "status"
	FieldKind       = "kind"
	FieldPrincipal  = "principal"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

const (
	EventToolRegistered   = "tool_registered"
	EventToolCall         = "tool_call"
	EventPermissionDenied = "permission_denied"
	EventToolPanic        = "tool_panic"
	EventToolGenerated    = "tool_generated"
	EventGenerationFailed = "generation_failed"
	EventConfigReloaded   = "config_reloaded"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ToolField(name string) zap.Field {
	return zap.String(FieldTool, name)
}

func ToolTypeField(toolType string) zap.Field {
	return zap.String(FieldToolType, toolType)
}

func StatusField(status string) zap.Field {
	return zap.String(FieldStatus, status)
}

func KindField(kind string) zap.Field {
	return zap.String(FieldKind, kind)
}

func PrincipalField(id string) zap.Field {
	return zap.String(FieldPrincipal, id)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}
