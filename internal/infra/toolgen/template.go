package toolgen

import (
	"bytes"
	"fmt"
	"path"
	"strconv"
	"text/template"

	"wpmcp/internal/domain"
)

var toolTemplate = template.Must(template.New("tool").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`// {{.ClassName}} was scaffolded by wpmcp generate.

package {{.PackageName}}

import (
	"context"

	{{quote .DomainImport}}
)

// {{.ClassName}} implements the {{quote .Identifier}} tool.
type {{.ClassName}} struct{}

func (t *{{.ClassName}}) Name() string {
	return {{quote .Identifier}}
}

func (t *{{.ClassName}}) Description() string {
	return {{quote .Description}}
}

func (t *{{.ClassName}}) Type() {{.DomainPkg}}.ToolType {
	return {{.DomainPkg}}.{{.TypeConst}}
}

func (t *{{.ClassName}}) InputSchema() map[string]any {
	return {{.InputSchema}}
}

func (t *{{.ClassName}}) Annotations() map[string]any {
	return {{.Annotations}}
}

func (t *{{.ClassName}}) Execute(ctx context.Context, args map[string]any) map[string]any {
{{.ExecuteBody}}
}

func (t *{{.ClassName}}) Permission(ctx context.Context) bool {
{{.PermissionBody}}
}
`))

// logicDepth is the indentation of user logic: the statements of a method
// body, one level below file scope.
const logicDepth = 1

type templateData struct {
	ClassName      string
	PackageName    string
	DomainImport   string
	DomainPkg      string
	Identifier     string
	Description    string
	TypeConst      string
	InputSchema    string
	Annotations    string
	ExecuteBody    string
	PermissionBody string
}

var toolTypeConsts = map[domain.ToolType]string{
	domain.ToolTypeRead:    "ToolTypeRead",
	domain.ToolTypeWrite:   "ToolTypeWrite",
	domain.ToolTypeExecute: "ToolTypeExecute",
}

// renderSource fills the tool skeleton. The result is unformatted.
func renderSource(className, packageName, domainImport string, spec ToolSpecification) ([]byte, error) {
	typeConst, ok := toolTypeConsts[spec.Type]
	if !ok {
		return nil, fmt.Errorf("unknown tool type %q", spec.Type)
	}
	schema, err := Literal(spec.InputSchema, 1)
	if err != nil {
		return nil, fmt.Errorf("serialize input schema: %w", err)
	}
	annotations, err := Literal(spec.Annotations, 1)
	if err != nil {
		return nil, fmt.Errorf("serialize annotations: %w", err)
	}

	data := templateData{
		ClassName:      className,
		PackageName:    packageName,
		DomainImport:   domainImport,
		DomainPkg:      path.Base(domainImport),
		Identifier:     spec.Identifier,
		Description:    spec.Description,
		TypeConst:      typeConst,
		InputSchema:    schema,
		Annotations:    annotations,
		ExecuteBody:    Indent(spec.ExecuteLogic, logicDepth),
		PermissionBody: Indent(spec.PermissionLogic, logicDepth),
	}

	var buf bytes.Buffer
	if err := toolTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}
