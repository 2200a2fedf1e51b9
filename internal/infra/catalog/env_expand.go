package catalog

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// wholeReference matches a scalar that is exactly one ${NAME} or
// ${NAME:-fallback} reference.
var wholeReference = regexp.MustCompile(`^\$\{[A-Za-z_][A-Za-z0-9_]*(:-[^}]*)?\}$`)

// envExpander substitutes environment references in YAML string scalars
// and records the variables it could not resolve.
type envExpander struct {
	lookup  func(string) (string, bool)
	missing map[string][]string
}

// expandConfigEnv expands ${NAME} and ${NAME:-fallback} references in raw
// YAML. Missing variables are reported as "NAME (key.path)".
func expandConfigEnv(raw []byte) (string, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}

	e := &envExpander{lookup: os.LookupEnv, missing: make(map[string][]string)}
	e.walk(&root, "")

	expanded, err := yaml.Marshal(&root)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}
	return string(expanded), e.report(), nil
}

func (e *envExpander) walk(node *yaml.Node, path string) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			e.walk(child, path)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			e.walk(node.Content[i+1], joinPath(path, node.Content[i].Value))
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			e.walk(child, fmt.Sprintf("%s[%d]", path, i))
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			e.walk(node.Alias, path)
		}
	case yaml.ScalarNode:
		e.scalar(node, path)
	}
}

func (e *envExpander) scalar(node *yaml.Node, path string) {
	if node.Tag != "" && node.Tag != "!!str" {
		return
	}
	if !strings.Contains(node.Value, "$") {
		return
	}

	whole := wholeReference.MatchString(node.Value)
	expanded := os.Expand(node.Value, func(ref string) string {
		return e.resolve(ref, path)
	})
	if expanded == node.Value {
		return
	}

	// Quoted scalars and interpolated strings stay strings; a bare
	// reference takes the type of its value so booleans and ports decode.
	if node.Style != 0 || !whole {
		node.Tag = "!!str"
		node.Value = expanded
		return
	}
	node.Tag, node.Value = scalarTag(expanded)
}

func (e *envExpander) resolve(ref, path string) string {
	name, fallback, hasFallback := strings.Cut(ref, ":-")
	if value, ok := e.lookup(name); ok && (value != "" || !hasFallback) {
		return value
	}
	if hasFallback {
		return fallback
	}
	if !slices.Contains(e.missing[name], path) {
		e.missing[name] = append(e.missing[name], path)
	}
	return ""
}

func (e *envExpander) report() []string {
	if len(e.missing) == 0 {
		return nil
	}
	out := make([]string, 0, len(e.missing))
	for name, paths := range e.missing {
		out = append(out, fmt.Sprintf("%s (%s)", name, strings.Join(paths, ", ")))
	}
	slices.Sort(out)
	return out
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// scalarTag picks the YAML tag for an expanded value.
func scalarTag(value string) (tag, normalized string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "!!str", value
	}
	if b, err := strconv.ParseBool(trimmed); err == nil && (trimmed == "true" || trimmed == "false") {
		return "!!bool", strconv.FormatBool(b)
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return "!!int", strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && strings.ContainsAny(trimmed, ".eE") {
		return "!!float", strconv.FormatFloat(f, 'f', -1, 64)
	}
	if trimmed == "null" || trimmed == "~" {
		return "!!null", "null"
	}
	return "!!str", value
}
