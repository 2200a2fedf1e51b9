package toolgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpmcp/internal/domain"
)

func TestParseSpecificationDefaults(t *testing.T) {
	spec, err := ParseSpecification(map[string]any{
		"tool_name":        "  Weather   Tool ",
		"tool_identifier":  "wmb_weather",
		"tool_description": "Gets weather",
	})
	require.NoError(t, err)

	want := ToolSpecification{
		Name:            "Weather Tool",
		Identifier:      "wmb_weather",
		Description:     "Gets weather",
		Type:            domain.ToolTypeRead,
		InputSchema:     DefaultInputSchema(),
		ExecuteLogic:    DefaultExecuteLogic,
		Annotations:     DefaultAnnotations(),
		PermissionLogic: DefaultPermissionLogic,
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Fatalf("unexpected spec (-want +got):\n%s", diff)
	}
	assert.False(t, spec.CustomLogic())
}

func TestParseSpecificationMissingFields(t *testing.T) {
	_, err := ParseSpecification(map[string]any{
		"tool_identifier": "wmb_weather",
		"tool_type":       "bogus",
	})
	require.Error(t, err)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeMissingField, code)
	assert.Contains(t, err.Error(), "tool_name, tool_description")

	_, err = ParseSpecification(map[string]any{
		"tool_name":        "",
		"tool_identifier":  "   ",
		"tool_description": nil,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool_name, tool_identifier, tool_description")
}

func TestParseSpecificationInvalidType(t *testing.T) {
	_, err := ParseSpecification(map[string]any{
		"tool_name":        "Weather",
		"tool_identifier":  "wmb_weather",
		"tool_description": "Gets weather",
		"tool_type":        "create",
	})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidEnum, code)
}

func TestParseSpecificationWrongShapes(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"tool_name":        "Weather",
			"tool_identifier":  "wmb_weather",
			"tool_description": "Gets weather",
		}
	}

	for field, value := range map[string]any{
		"tool_name":        42,
		"input_schema":     "object",
		"annotations":      []any{"x"},
		"execute_logic":    true,
		"permission_logic": 1,
	} {
		args := base()
		args[field] = value
		_, err := ParseSpecification(args)
		code, ok := domain.CodeFrom(err)
		require.True(t, ok, field)
		assert.Equal(t, domain.CodeInvalidArgument, code, field)
	}
}

func TestParseSpecificationCustomValues(t *testing.T) {
	schema := map[string]any{"type": "object", "properties": map[string]any{}}
	spec, err := ParseSpecification(map[string]any{
		"tool_name":        "Weather",
		"tool_identifier":  "wmb_weather",
		"tool_description": "Gets weather\nfor a city",
		"tool_type":        "execute",
		"input_schema":     schema,
		"annotations":      map[string]any{"title": "Weather"},
		"execute_logic":    "\nreturn args\n",
		"permission_logic": "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ToolTypeExecute, spec.Type)
	assert.Equal(t, "Gets weather\nfor a city", spec.Description)
	assert.Equal(t, schema, spec.InputSchema)
	assert.Equal(t, map[string]any{"title": "Weather"}, spec.Annotations)
	assert.Equal(t, "return args", spec.ExecuteLogic)
	assert.Equal(t, DefaultPermissionLogic, spec.PermissionLogic)
	assert.True(t, spec.CustomLogic())
}

func TestLoadSpecFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "specs/weather.yaml", []byte(`
tool_name: Weather
tool_identifier: wmb_weather
tool_description: Gets weather
input_schema:
  type: object
  properties:
    city:
      type: string
  required: [city]
`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "specs/weather.json", []byte(`{
  "tool_name": "Weather",
  "tool_identifier": "wmb_weather",
  "tool_description": "Gets weather",
  "input_schema": {"type": "object", "properties": {"city": {"type": "string"}}, "required": ["city"]}
}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "specs/weather.toml", []byte(`
tool_name = "Weather"
tool_identifier = "wmb_weather"
tool_description = "Gets weather"

[input_schema]
type = "object"
required = ["city"]

[input_schema.properties.city]
type = "string"
`), 0o644))

	for _, name := range []string{"specs/weather.yaml", "specs/weather.json", "specs/weather.toml"} {
		args, err := LoadSpecFile(fs, name)
		require.NoError(t, err, name)

		spec, err := ParseSpecification(args)
		require.NoError(t, err, name)
		assert.Equal(t, "wmb_weather", spec.Identifier, name)

		ok, err := roundTrips(spec.InputSchema)
		require.NoError(t, err, name)
		assert.True(t, ok, name)

		props, _ := spec.InputSchema["properties"].(map[string]any)
		assert.Contains(t, props, "city", name)
	}

	_, err := LoadSpecFile(fs, "specs/missing.yaml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "specs/weather.ini", []byte("x=1"), 0o644))
	_, err = LoadSpecFile(fs, "specs/weather.ini")
	require.Error(t, err)
}
