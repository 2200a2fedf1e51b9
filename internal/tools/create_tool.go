package tools

import (
	"context"

	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/toolgen"
)

// CreateToolTool scaffolds new tool source files from a specification.
type CreateToolTool struct {
	generator *toolgen.Generator
	logger    *zap.Logger
}

func NewCreateToolTool(generator *toolgen.Generator, logger *zap.Logger) *CreateToolTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateToolTool{generator: generator, logger: logger.Named("create_tool")}
}

func (t *CreateToolTool) Name() string { return domain.ToolNameCreateTool }

func (t *CreateToolTool) Description() string {
	return "Generate a new MCP tool class file based on provided specifications."
}

func (t *CreateToolTool) Type() domain.ToolType { return domain.ToolTypeWrite }

func (t *CreateToolTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tool_name": map[string]any{
				"type":        "string",
				"description": "The name of the tool (e.g., \"MyCustomTool\")",
			},
			"tool_identifier": map[string]any{
				"type":        "string",
				"description": "The unique identifier for the tool (e.g., \"wmb_my_custom_tool\")",
			},
			"tool_description": map[string]any{
				"type":        "string",
				"description": "Description of what the tool does",
			},
			"tool_type": map[string]any{
				"type":        "string",
				"description": "The type of tool (read, write, execute)",
				"enum":        enumValues(domain.ToolTypes),
				"default":     string(domain.ToolTypeRead),
			},
			"input_schema": map[string]any{
				"type":        "object",
				"description": "JSON schema for the tool input parameters",
				"default":     toolgen.DefaultInputSchema(),
			},
			"execute_logic": map[string]any{
				"type":        "string",
				"description": "Go statements for the tool body; args holds the call arguments and the block must return a map[string]any",
				"default":     toolgen.DefaultExecuteLogic,
			},
			"annotations": map[string]any{
				"type":        "object",
				"description": "Tool annotations for metadata",
				"default":     toolgen.DefaultAnnotations(),
			},
			"permission_logic": map[string]any{
				"type":        "string",
				"description": "Go statements for the permission check; ctx holds the caller and the block must return a bool",
				"default":     toolgen.DefaultPermissionLogic,
			},
		},
		"required": []any{"tool_name", "tool_identifier", "tool_description"},
	}
}

func (t *CreateToolTool) Annotations() map[string]any {
	return map[string]any{
		"title":         "Create MCP Tool",
		"readOnlyHint":  false,
		"openWorldHint": false,
	}
}

func (t *CreateToolTool) Permission(ctx context.Context) bool {
	return domain.PrincipalFromContext(ctx).Can(domain.CapManageOptions)
}

func (t *CreateToolTool) Execute(ctx context.Context, args map[string]any) map[string]any {
	const op = "tools.CreateTool"

	if t.generator == nil {
		return domain.ErrorResult(domain.E(domain.CodeUnavailable, op, "tool generator is not configured", nil))
	}
	spec, err := toolgen.ParseSpecification(args)
	if err != nil {
		return domain.ErrorResult(err)
	}
	result, err := t.generator.Generate(ctx, spec)
	if err != nil {
		t.logger.Warn("create tool failed", zap.String("tool", spec.Identifier), zap.Error(err))
		return domain.ErrorResult(err)
	}
	return result.Map()
}

var _ domain.Tool = (*CreateToolTool)(nil)
