package telemetry

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader lets HTTP callers supply their own request id.
const RequestIDHeader = "X-Request-Id"

// Caller-supplied ids outside this pattern are replaced with a fresh one.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// CallMeta correlates the log lines and span of one tool call.
type CallMeta struct {
	RequestID string
	TraceID   string
	SpanID    string
}

type callMetaKey struct{}

// StartCall attaches call metadata to ctx. An id already carried by ctx
// wins over requestID; trace and span ids are always read from the span
// active in ctx.
func StartCall(ctx context.Context, requestID string) (context.Context, CallMeta) {
	if ctx == nil {
		ctx = context.Background()
	}
	meta, ok := CallMetaFrom(ctx)
	if !ok {
		meta.RequestID = normalizeRequestID(requestID)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		meta.TraceID = sc.TraceID().String()
		meta.SpanID = sc.SpanID().String()
	}
	return context.WithValue(ctx, callMetaKey{}, meta), meta
}

func CallMetaFrom(ctx context.Context) (CallMeta, bool) {
	if ctx == nil {
		return CallMeta{}, false
	}
	meta, ok := ctx.Value(callMetaKey{}).(CallMeta)
	return meta, ok && meta.RequestID != ""
}

// Fields renders the metadata as zap fields, skipping empty ids.
func (m CallMeta) Fields() []zap.Field {
	var fields []zap.Field
	for _, f := range []struct{ key, value string }{
		{FieldRequestID, m.RequestID},
		{FieldTraceID, m.TraceID},
		{FieldSpanID, m.SpanID},
	} {
		if f.value != "" {
			fields = append(fields, zap.String(f.key, f.value))
		}
	}
	return fields
}

// CallLogger returns base annotated with the call metadata in ctx.
func CallLogger(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	meta, ok := CallMetaFrom(ctx)
	if !ok {
		return base
	}
	return base.With(meta.Fields()...)
}

func normalizeRequestID(id string) string {
	if validRequestID.MatchString(id) {
		return id
	}
	return uuid.NewString()
}
