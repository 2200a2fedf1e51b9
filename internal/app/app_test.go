package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/commentstore"
)

func TestApp_ValidateConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wpmcp.yaml")
	writeConfig(t, path, `
comments:
	backend: bolt
	boltPath: `+filepath.Join(dir, "comments.db")+`
`)

	require.NoError(t, New(zap.NewNop()).ValidateConfig(context.Background(), ValidateConfig{ConfigPath: path}))

	writeConfig(t, path, `
server:
	transport: smoke-signal
`)
	assert.Error(t, New(nil).ValidateConfig(context.Background(), ValidateConfig{ConfigPath: path}))
}

func TestApp_Generate(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "wpmcp.yaml")
	writeConfig(t, configPath, `
generator:
	outputDir: `+filepath.Join(dir, "out")+`
`)
	specPath := filepath.Join(dir, "weather.yaml")
	writeConfig(t, specPath, `
tool_name: Weather Tool
tool_identifier: wmb_weather
tool_description: Gets weather
tool_type: read
`)

	result, err := New(nil).Generate(context.Background(), GenerateConfig{ConfigPath: configPath, SpecPath: specPath})
	require.NoError(t, err)
	assert.Equal(t, "WeatherTool", result.ClassName)
	assert.Equal(t, filepath.Join(dir, "out", "class-weather-tool.go"), result.FilePath)

	src, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(src), "type WeatherTool struct{}")

	_, err = New(nil).Generate(context.Background(), GenerateConfig{ConfigPath: configPath, SpecPath: specPath})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeAlreadyExists, code)
}

func TestApp_ListTools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wpmcp.yaml")
	writeConfig(t, path, `
tools:
	boilerplate: false
`)

	descriptors, err := New(nil).ListTools(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, domain.ToolNameVersionInfo, descriptors[0].Name)

	all, err := New(nil).ListTools(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestApp_ImportComments(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "comments.db")
	configPath := filepath.Join(dir, "wpmcp.yaml")
	writeConfig(t, configPath, `
comments:
	backend: bolt
	boltPath: `+dbPath+`
`)
	file := filepath.Join(dir, "comments.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
  {"id": 1, "post_id": 10, "author_name": "Ann", "content": "<p>hi</p>", "date": "2025-03-01T10:00:00Z", "date_gmt": "2025-03-01T10:00:00Z"},
  {"id": 2, "post_id": 10, "author_name": "Bob", "content": "spam!", "status": "spam", "date": "2025-03-01T11:00:00Z", "date_gmt": "2025-03-01T11:00:00Z"}
]`), 0o600))

	count, err := New(nil).ImportComments(context.Background(), ImportConfig{ConfigPath: configPath, File: file})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	store, err := commentstore.OpenBoltStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	page, err := store.List(context.Background(), domain.CommentQuery{Status: domain.CommentApproved, PerPage: 10, Page: 1})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Ann", page.Comments[0].AuthorName)
}

func TestApp_ImportCommentsRejectsMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "comments.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"id": 1}]`), 0o600))

	_, err := New(nil).ImportComments(context.Background(), ImportConfig{File: file})
	assert.ErrorContains(t, err, "does not persist imports")

	require.NoError(t, os.WriteFile(file, []byte(`[{"id": 1, "status": "all"}]`), 0o600))
	_, err = New(nil).ImportComments(context.Background(), ImportConfig{File: file})
	assert.ErrorContains(t, err, "not a stored status")
}

func TestApp_ImportCommentsRejectsMySQLWithoutConnecting(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "wpmcp.yaml")
	writeConfig(t, configPath, `
comments:
	backend: mysql
	dsn: wp:wp@tcp(127.0.0.1:1)/wordpress
`)
	file := filepath.Join(dir, "comments.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"id": 1}]`), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := New(nil).ImportComments(ctx, ImportConfig{ConfigPath: configPath, File: file})
	require.Error(t, err)
	assert.ErrorContains(t, err, "does not persist imports")
	assert.NotContains(t, err.Error(), "open comment store")
}
