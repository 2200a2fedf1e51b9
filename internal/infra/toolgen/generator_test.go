package toolgen

import (
	"context"
	"go/parser"
	"go/token"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpmcp/internal/domain"
)

type recordingMetrics struct {
	domain.NoopMetrics
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) ObserveGeneration(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func newTestGenerator(t *testing.T, fs afero.Fs) (*Generator, *recordingMetrics) {
	t.Helper()
	metrics := &recordingMetrics{}
	opts := OptionsFromConfig(domain.GeneratorConfig{
		OutputDir:  "tools/generated",
		FilePrefix: domain.DefaultGeneratorFilePrefix,
	})
	return NewGenerator(fs, opts, metrics, nil), metrics
}

func weatherSpec(t *testing.T) ToolSpecification {
	t.Helper()
	spec, err := ParseSpecification(map[string]any{
		"tool_name":        "Weather Tool",
		"tool_identifier":  "wmb_weather",
		"tool_description": "Gets weather",
	})
	require.NoError(t, err)
	return spec
}

func TestGenerateWritesTool(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen, metrics := newTestGenerator(t, fs)

	result, err := gen.Generate(context.Background(), weatherSpec(t))
	require.NoError(t, err)

	assert.Equal(t, "WeatherTool", result.ClassName)
	assert.Equal(t, "class-weather-tool.go", result.FileName)
	assert.Equal(t, "tools/generated/class-weather-tool.go", result.FilePath)

	content, err := afero.ReadFile(fs, result.FilePath)
	require.NoError(t, err)
	assert.Equal(t, len(content), result.FileSize)

	src := string(content)
	assert.Contains(t, src, "package generated")
	assert.Contains(t, src, "type WeatherTool struct{}")
	assert.Contains(t, src, `"wmb_weather"`)
	assert.Contains(t, src, `"Gets weather"`)
	assert.Contains(t, src, "domain.ToolTypeRead")
	assert.Contains(t, src, `"Tool executed successfully"`)
	assert.Contains(t, src, "return true")
	assert.Contains(t, src, `"Example parameter"`)
	assert.Contains(t, src, `"Custom Tool"`)

	_, err = parser.ParseFile(token.NewFileSet(), result.FileName, content, parser.AllErrors)
	require.NoError(t, err)

	info, err := fs.Stat(result.FilePath)
	require.NoError(t, err)
	assert.Equal(t, generatedFileMode, info.Mode().Perm())

	entries, err := afero.ReadDir(fs, "tools/generated")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")

	assert.Equal(t, []string{OutcomeCreated}, metrics.outcomes)

	payload := result.Map()
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "MCP tool created successfully!", payload["message"])
	assert.Len(t, payload["next_steps"], 3)
}

func TestGenerateRefusesExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen, metrics := newTestGenerator(t, fs)
	existing := []byte("package generated\n")
	require.NoError(t, afero.WriteFile(fs, "tools/generated/class-weather-tool.go", existing, 0o644))

	_, err := gen.Generate(context.Background(), weatherSpec(t))
	require.Error(t, err)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeAlreadyExists, code)
	assert.Contains(t, err.Error(), "class-weather-tool.go")

	content, err := afero.ReadFile(fs, "tools/generated/class-weather-tool.go")
	require.NoError(t, err)
	assert.Equal(t, existing, content)
	assert.Equal(t, []string{OutcomeExists}, metrics.outcomes)
}

func TestGenerateWriteFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	gen, metrics := newTestGenerator(t, fs)

	_, err := gen.Generate(context.Background(), weatherSpec(t))
	require.Error(t, err)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeWriteFailed, code)
	assert.Equal(t, []string{OutcomeWriteFailed}, metrics.outcomes)
}

func TestGenerateRejectsInvalidType(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen, _ := newTestGenerator(t, fs)
	spec := weatherSpec(t)
	spec.Type = "create"

	_, err := gen.Generate(context.Background(), spec)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidEnum, code)

	exists, err := afero.DirExists(fs, "tools/generated")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerateConcurrentRequestsWriteOnce(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen, _ := newTestGenerator(t, fs)
	spec := weatherSpec(t)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = gen.Generate(context.Background(), spec)
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		code, _ := domain.CodeFrom(err)
		assert.Equal(t, domain.CodeAlreadyExists, code)
	}
	assert.Equal(t, 1, created)
}

func TestRenderKeepsMalformedLogic(t *testing.T) {
	gen, _ := newTestGenerator(t, afero.NewMemMapFs())
	spec := weatherSpec(t)
	spec.ExecuteLogic = "return {{{"

	artifact, err := gen.Render(spec)
	require.NoError(t, err)
	assert.False(t, artifact.Formatted)
	assert.Contains(t, string(artifact.Content), "\treturn {{{")
}

func TestRenderCustomLogicAndType(t *testing.T) {
	gen, _ := newTestGenerator(t, afero.NewMemMapFs())
	spec := weatherSpec(t)
	spec.Type = domain.ToolTypeWrite
	spec.ExecuteLogic = "city, _ := args[\"city\"].(string)\n\nreturn map[string]any{\"city\": city}"
	spec.PermissionLogic = "return ctx != nil"

	artifact, err := gen.Render(spec)
	require.NoError(t, err)

	src := string(artifact.Content)
	assert.Contains(t, src, "domain.ToolTypeWrite")
	assert.Contains(t, src, "city, _ := args[\"city\"].(string)")
	assert.Contains(t, src, "return ctx != nil")

	_, err = parser.ParseFile(token.NewFileSet(), artifact.FileName, artifact.Content, 0)
	require.NoError(t, err)
}

func TestRenderIndentsLogicAsMethodBody(t *testing.T) {
	gen, _ := newTestGenerator(t, afero.NewMemMapFs())
	spec := weatherSpec(t)
	spec.ExecuteLogic = "city := \"Paris\"\n\nreturn map[string]any{\"city\": city}"

	artifact, err := gen.Render(spec)
	require.NoError(t, err)
	require.True(t, artifact.Formatted)

	src := string(artifact.Content)
	assert.Contains(t, src, "func (t *WeatherTool) Execute(ctx context.Context, args map[string]any) map[string]any {\n"+
		"\tcity := \"Paris\"\n"+
		"\n"+
		"\treturn map[string]any{\"city\": city}\n"+
		"}\n")
	assert.Contains(t, src, "func (t *WeatherTool) Permission(ctx context.Context) bool {\n\treturn true\n}\n")
}
