package tools

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/toolgen"
)

func newCreateTool(fs afero.Fs) *CreateToolTool {
	opts := toolgen.OptionsFromConfig(domain.GeneratorConfig{
		OutputDir:  "generated",
		FilePrefix: domain.DefaultGeneratorFilePrefix,
	})
	return NewCreateToolTool(toolgen.NewGenerator(fs, opts, nil, nil), nil)
}

func TestCreateToolWritesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newCreateTool(fs)

	got := tool.Execute(asPrincipal(domain.CapManageOptions), map[string]any{
		"tool_name":        "Weather Tool",
		"tool_identifier":  "wmb_weather",
		"tool_description": "Gets weather",
		"tool_type":        "execute",
	})
	require.False(t, domain.IsErrorResult(got), "%v", got)

	assert.Equal(t, true, got["success"])
	assert.Equal(t, "WeatherTool", got["class_name"])
	assert.Equal(t, "class-weather-tool.go", got["file_name"])
	assert.Equal(t, "generated/class-weather-tool.go", got["file_path"])

	src, err := afero.ReadFile(fs, "generated/class-weather-tool.go")
	require.NoError(t, err)
	assert.Equal(t, len(src), got["file_size"])
	assert.Contains(t, string(src), "domain.ToolTypeExecute")

	again := tool.Execute(context.Background(), map[string]any{
		"tool_name":        "Weather Tool",
		"tool_identifier":  "wmb_weather_2",
		"tool_description": "Gets weather again",
	})
	assert.Equal(t, domain.CodeAlreadyExists, domain.ErrorKind(again))
}

func TestCreateToolReportsSpecificationErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newCreateTool(fs)

	missing := tool.Execute(context.Background(), map[string]any{"tool_name": "Only Name"})
	assert.Equal(t, domain.CodeMissingField, domain.ErrorKind(missing))
	assert.Contains(t, missing["message"], "tool_identifier, tool_description")

	complete := map[string]any{
		"tool_name":        "Weather Tool",
		"tool_identifier":  "wmb_weather",
		"tool_description": "Gets weather",
	}
	for field := range complete {
		args := map[string]any{}
		for k, v := range complete {
			if k != field {
				args[k] = v
			}
		}
		got := tool.Execute(context.Background(), args)
		assert.Equal(t, domain.CodeMissingField, domain.ErrorKind(got), field)
		assert.Contains(t, got["message"], field)
	}

	badType := tool.Execute(context.Background(), map[string]any{
		"tool_name":        "X",
		"tool_identifier":  "x",
		"tool_description": "x",
		"tool_type":        "delete",
	})
	assert.Equal(t, domain.CodeInvalidEnum, domain.ErrorKind(badType))

	exists, err := afero.DirExists(fs, "generated")
	require.NoError(t, err)
	assert.False(t, exists, "rejected specifications must not write anything")
}

func TestCreateToolWriteFailure(t *testing.T) {
	tool := newCreateTool(afero.NewReadOnlyFs(afero.NewMemMapFs()))

	got := tool.Execute(context.Background(), map[string]any{
		"tool_name":        "Weather Tool",
		"tool_identifier":  "wmb_weather",
		"tool_description": "Gets weather",
	})
	assert.Equal(t, domain.CodeWriteFailed, domain.ErrorKind(got))
}

func TestCreateToolPermissionAndSchema(t *testing.T) {
	tool := newCreateTool(afero.NewMemMapFs())
	assert.True(t, tool.Permission(asPrincipal(domain.CapManageOptions)))
	assert.False(t, tool.Permission(asPrincipal(domain.CapModerateComments)))
	assert.Equal(t, domain.ToolTypeWrite, tool.Type())

	schema := tool.InputSchema()
	assert.Equal(t, []any{"tool_name", "tool_identifier", "tool_description"}, schema["required"])
	props := schema["properties"].(map[string]any)
	assert.Equal(t, toolgen.DefaultExecuteLogic, props["execute_logic"].(map[string]any)["default"])
	assert.Equal(t, []any{"read", "write", "execute"}, props["tool_type"].(map[string]any)["enum"])

	assert.Equal(t, domain.CodeUnavailable, domain.ErrorKind(NewCreateToolTool(nil, nil).Execute(context.Background(), nil)))
}
