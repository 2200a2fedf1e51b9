package mcpcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"wpmcp/internal/domain"
)

// Annotation keys understood by MCP clients.
const (
	annotationTitle           = "title"
	annotationReadOnlyHint    = "readOnlyHint"
	annotationDestructiveHint = "destructiveHint"
	annotationIdempotentHint  = "idempotentHint"
	annotationOpenWorldHint   = "openWorldHint"
)

// ToolToMCP converts a registration into the tool advertised to clients.
func ToolToMCP(reg domain.Registration) *mcp.Tool {
	tool := &mcp.Tool{
		Name:        reg.Name,
		Description: reg.Description,
		InputSchema: domain.CloneJSONMap(reg.InputSchema),
		Annotations: ToolAnnotationsToMCP(reg.Annotations),
	}
	if tool.Annotations != nil {
		tool.Title = tool.Annotations.Title
	}
	return tool
}

// ToolAnnotationsToMCP maps annotation hints onto the typed MCP form.
// Unknown keys and mistyped values are dropped.
func ToolAnnotationsToMCP(ann map[string]any) *mcp.ToolAnnotations {
	if len(ann) == 0 {
		return nil
	}
	out := mcp.ToolAnnotations{}
	if title, ok := ann[annotationTitle].(string); ok {
		out.Title = title
	}
	if val, ok := ann[annotationReadOnlyHint].(bool); ok {
		out.ReadOnlyHint = val
	}
	if val, ok := ann[annotationIdempotentHint].(bool); ok {
		out.IdempotentHint = val
	}
	if val, ok := ann[annotationDestructiveHint].(bool); ok {
		out.DestructiveHint = &val
	}
	if val, ok := ann[annotationOpenWorldHint].(bool); ok {
		out.OpenWorldHint = &val
	}
	return &out
}

// ToolAnnotationsFromMCP is the inverse of ToolAnnotationsToMCP.
func ToolAnnotationsFromMCP(ann *mcp.ToolAnnotations) map[string]any {
	if ann == nil {
		return nil
	}
	out := map[string]any{
		annotationReadOnlyHint: ann.ReadOnlyHint,
	}
	if ann.Title != "" {
		out[annotationTitle] = ann.Title
	}
	if ann.IdempotentHint {
		out[annotationIdempotentHint] = true
	}
	if ann.DestructiveHint != nil {
		out[annotationDestructiveHint] = *ann.DestructiveHint
	}
	if ann.OpenWorldHint != nil {
		out[annotationOpenWorldHint] = *ann.OpenWorldHint
	}
	return out
}

// DecodeArguments parses raw call arguments. Empty or null input yields an
// empty map.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// ResultToMCP wraps a tool result map. Error payloads set IsError so clients
// can tell them apart without inspecting the body.
func ResultToMCP(result map[string]any) (*mcp.CallToolResult, error) {
	if result == nil {
		result = map[string]any{}
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(raw)}},
		StructuredContent: maps.Clone(result),
		IsError:           domain.IsErrorResult(result),
	}, nil
}

// ResultFromMCP decodes the text content of a tool result back into a map.
func ResultFromMCP(res *mcp.CallToolResult) (map[string]any, error) {
	if res == nil {
		return nil, fmt.Errorf("nil result")
	}
	for _, content := range res.Content {
		text, ok := content.(*mcp.TextContent)
		if !ok {
			continue
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("result has no text content")
}
