package tools

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"

	"wpmcp/internal/domain"
)

// VersionInfoTool reports the WordPress and PHP versions of the configured
// host environment.
type VersionInfoTool struct {
	host domain.HostConfig
}

func NewVersionInfoTool(host domain.HostConfig) *VersionInfoTool {
	return &VersionInfoTool{host: host}
}

func (t *VersionInfoTool) Name() string { return domain.ToolNameVersionInfo }

func (t *VersionInfoTool) Description() string {
	return "Get WordPress version and PHP version used on the site."
}

func (t *VersionInfoTool) Type() domain.ToolType { return domain.ToolTypeRead }

func (t *VersionInfoTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"no_parameters": map[string]any{
				"type":        "string",
				"description": "No parameters",
			},
		},
	}
}

func (t *VersionInfoTool) Annotations() map[string]any {
	return map[string]any{
		"title":         "Get Version Info",
		"readOnlyHint":  true,
		"openWorldHint": false,
	}
}

func (t *VersionInfoTool) Execute(_ context.Context, _ map[string]any) map[string]any {
	result := map[string]any{
		"wordpress_version": t.host.WordPressVersion,
		"php_version":       t.host.PHPVersion,
		"go_version":        runtime.Version(),
	}
	if compatible, ok := atLeast(t.host.WordPressVersion, t.host.MinimumWordPressVersion); ok {
		result["compatible"] = compatible
	}
	return result
}

func (t *VersionInfoTool) Permission(context.Context) bool { return true }

// atLeast reports whether version >= minimum. ok is false when minimum is
// unset or either side is not a valid version.
func atLeast(version, minimum string) (result bool, ok bool) {
	if minimum == "" {
		return false, false
	}
	v, m := semverOf(version), semverOf(minimum)
	if !semver.IsValid(v) || !semver.IsValid(m) {
		return false, false
	}
	return semver.Compare(v, m) >= 0, true
}

func semverOf(version string) string {
	version = strings.TrimSpace(version)
	if version == "" || strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

var _ domain.Tool = (*VersionInfoTool)(nil)
