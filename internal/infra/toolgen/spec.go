package toolgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"wpmcp/internal/domain"
)

const (
	fieldToolName        = "tool_name"
	fieldToolIdentifier  = "tool_identifier"
	fieldToolDescription = "tool_description"
	fieldToolType        = "tool_type"
	fieldInputSchema     = "input_schema"
	fieldExecuteLogic    = "execute_logic"
	fieldAnnotations     = "annotations"
	fieldPermissionLogic = "permission_logic"
)

const (
	DefaultExecuteLogic    = "return map[string]any{\n\t\"message\": \"Tool executed successfully\",\n\t\"data\":    args,\n}"
	DefaultPermissionLogic = "return true"
)

// DefaultInputSchema is the single-string-parameter schema used when a
// specification omits input_schema.
func DefaultInputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"parameter": map[string]any{
				"type":        "string",
				"description": "Example parameter",
			},
		},
		"required": []any{"parameter"},
	}
}

func DefaultAnnotations() map[string]any {
	return map[string]any{
		"title":         "Custom Tool",
		"readOnlyHint":  false,
		"openWorldHint": false,
	}
}

// ToolSpecification describes a tool to scaffold. It is built by
// ParseSpecification and is complete: every optional field carries either
// the caller's value or its default.
type ToolSpecification struct {
	Name            string
	Identifier      string
	Description     string
	Type            domain.ToolType
	InputSchema     map[string]any
	ExecuteLogic    string
	Annotations     map[string]any
	PermissionLogic string
}

// CustomLogic reports whether either logic slot holds caller-supplied code.
func (s ToolSpecification) CustomLogic() bool {
	return s.ExecuteLogic != DefaultExecuteLogic || s.PermissionLogic != DefaultPermissionLogic
}

// ParseSpecification validates raw arguments and applies defaults. Missing
// required fields are reported before an invalid tool_type.
func ParseSpecification(args map[string]any) (ToolSpecification, error) {
	const op = "toolgen.ParseSpecification"

	var missing []string
	required := make(map[string]string, 3)
	for _, field := range []string{fieldToolName, fieldToolIdentifier, fieldToolDescription} {
		value, ok, err := stringArg(args, field)
		if err != nil {
			return ToolSpecification{}, domain.E(domain.CodeInvalidArgument, op, err.Error(), nil)
		}
		if !ok || value == "" {
			missing = append(missing, field)
			continue
		}
		required[field] = value
	}
	if len(missing) > 0 {
		return ToolSpecification{}, domain.MissingFieldError(op, missing...)
	}

	spec := ToolSpecification{
		Name:            collapseSpace(required[fieldToolName]),
		Identifier:      collapseSpace(required[fieldToolIdentifier]),
		Description:     required[fieldToolDescription],
		Type:            domain.ToolTypeRead,
		InputSchema:     DefaultInputSchema(),
		ExecuteLogic:    DefaultExecuteLogic,
		Annotations:     DefaultAnnotations(),
		PermissionLogic: DefaultPermissionLogic,
	}

	toolType, ok, err := stringArg(args, fieldToolType)
	if err != nil {
		return ToolSpecification{}, domain.E(domain.CodeInvalidArgument, op, err.Error(), nil)
	}
	if ok {
		spec.Type = domain.ToolType(toolType)
		if !spec.Type.Valid() {
			return ToolSpecification{}, domain.InvalidEnumError(op, fieldToolType, toolType, domain.ToolTypeNames())
		}
	}

	if schema, ok, err := mapArg(args, fieldInputSchema); err != nil {
		return ToolSpecification{}, domain.E(domain.CodeInvalidArgument, op, err.Error(), nil)
	} else if ok {
		spec.InputSchema = schema
	}
	if annotations, ok, err := mapArg(args, fieldAnnotations); err != nil {
		return ToolSpecification{}, domain.E(domain.CodeInvalidArgument, op, err.Error(), nil)
	} else if ok {
		spec.Annotations = annotations
	}

	if logic, ok, err := logicArg(args, fieldExecuteLogic); err != nil {
		return ToolSpecification{}, domain.E(domain.CodeInvalidArgument, op, err.Error(), nil)
	} else if ok {
		spec.ExecuteLogic = logic
	}
	if logic, ok, err := logicArg(args, fieldPermissionLogic); err != nil {
		return ToolSpecification{}, domain.E(domain.CodeInvalidArgument, op, err.Error(), nil)
	} else if ok {
		spec.PermissionLogic = logic
	}

	return spec, nil
}

// LoadSpecFile reads a specification document. The format follows the file
// extension: .yaml/.yml, .json or .toml.
func LoadSpecFile(fs afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read spec: %w", err)
	}

	var out map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&out)
	case ".toml":
		err = toml.Unmarshal(data, &out)
	default:
		return nil, fmt.Errorf("unsupported spec format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode spec %s: %w", path, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func stringArg(args map[string]any, field string) (string, bool, error) {
	raw, ok := args[field]
	if !ok || raw == nil {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("%s must be a string", field)
	}
	return strings.TrimSpace(value), true, nil
}

func mapArg(args map[string]any, field string) (map[string]any, bool, error) {
	raw, ok := args[field]
	if !ok || raw == nil {
		return nil, false, nil
	}
	value, ok := raw.(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("%s must be an object", field)
	}
	return maps.Clone(value), true, nil
}

// logicArg treats blank logic as absent so the rendered method always has a body.
func logicArg(args map[string]any, field string) (string, bool, error) {
	raw, ok := args[field]
	if !ok || raw == nil {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("%s must be a string", field)
	}
	value = strings.Trim(value, "\r\n")
	if strings.TrimSpace(value) == "" {
		return "", false, nil
	}
	return value, true, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
