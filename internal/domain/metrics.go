package domain

import "time"

// CallStatus labels the outcome of a tool call.
type CallStatus string

const (
	CallStatusSuccess CallStatus = "success"
	CallStatusError   CallStatus = "error"
	CallStatusDenied  CallStatus = "denied"
	CallStatusInvalid CallStatus = "invalid"
)

// ToolCallMetric captures one tool invocation.
type ToolCallMetric struct {
	Tool     string
	Status   CallStatus
	Kind     ErrorCode
	Duration time.Duration
}

// Metrics records tool host activity.
type Metrics interface {
	ObserveToolCall(metric ToolCallMetric)
	ObserveGeneration(outcome string)
	SetRegisteredTools(count int)
}

// NoopMetrics discards every observation.
type NoopMetrics struct{}

func (NoopMetrics) ObserveToolCall(ToolCallMetric) {}
func (NoopMetrics) ObserveGeneration(string)       {}
func (NoopMetrics) SetRegisteredTools(int)         {}
