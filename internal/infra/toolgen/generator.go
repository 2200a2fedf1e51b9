package toolgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"wpmcp/internal/domain"
)

// Generation outcomes reported to metrics.
const (
	OutcomeCreated     = "created"
	OutcomeExists      = "exists"
	OutcomeInvalid     = "invalid"
	OutcomeWriteFailed = "write_failed"
)

const generatedFileMode os.FileMode = 0o644

// Options locate and shape generated files.
type Options struct {
	OutputDir    string
	PackageName  string
	FilePrefix   string
	DomainImport string
}

// OptionsFromConfig fills unset generator settings with defaults.
func OptionsFromConfig(cfg domain.GeneratorConfig) Options {
	opts := Options{
		OutputDir:    cfg.OutputDir,
		PackageName:  cfg.PackageName,
		FilePrefix:   cfg.FilePrefix,
		DomainImport: cfg.DomainImport,
	}
	if opts.OutputDir == "" {
		opts.OutputDir = domain.DefaultGeneratorOutputDir
	}
	if opts.PackageName == "" {
		opts.PackageName = domain.DefaultGeneratorPackageName
	}
	if opts.DomainImport == "" {
		opts.DomainImport = domain.DefaultGeneratorDomainImport
	}
	return opts
}

// Artifact is a rendered tool source file that has not been written yet.
type Artifact struct {
	ClassName string
	FileName  string
	Path      string
	Content   []byte
	Formatted bool
}

// Result describes a written tool file.
type Result struct {
	ClassName string
	FileName  string
	FilePath  string
	FileSize  int
}

// NextSteps are the follow-up instructions returned with every created tool.
var NextSteps = []string{
	"1. Add the new tool to the tool catalog so it is registered at startup",
	"2. Rebuild and restart the wpmcp server",
	"3. Test the tool functionality",
}

// Map returns the tool result payload.
func (r Result) Map() map[string]any {
	steps := make([]any, len(NextSteps))
	for i, step := range NextSteps {
		steps[i] = step
	}
	return map[string]any{
		"success":    true,
		"message":    "MCP tool created successfully!",
		"class_name": r.ClassName,
		"file_name":  r.FileName,
		"file_path":  r.FilePath,
		"file_size":  r.FileSize,
		"next_steps": steps,
	}
}

// Generator renders tool specifications into Go source files under a single
// output directory. Existing files are never overwritten.
type Generator struct {
	fs      afero.Fs
	opts    Options
	metrics domain.Metrics
	logger  *zap.Logger

	// mu serializes the existence check and the rename.
	mu sync.Mutex
}

func NewGenerator(fs afero.Fs, opts Options, metrics domain.Metrics, logger *zap.Logger) *Generator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		fs:      fs,
		opts:    opts,
		metrics: metrics,
		logger:  logger.Named("toolgen"),
	}
}

func (g *Generator) Options() Options {
	return g.opts
}

// Render produces the artifact for spec without touching the filesystem.
// Source that gofmt rejects is returned unformatted with Formatted=false.
func (g *Generator) Render(spec ToolSpecification) (Artifact, error) {
	className := ClassName(spec.Name)
	fileName := FileName(g.opts.FilePrefix, className)

	src, err := renderSource(className, g.opts.PackageName, g.opts.DomainImport, spec)
	if err != nil {
		return Artifact{}, domain.E(domain.CodeInvalidArgument, "toolgen.Render", "", err)
	}

	artifact := Artifact{
		ClassName: className,
		FileName:  fileName,
		Path:      filepath.Join(g.opts.OutputDir, fileName),
		Content:   src,
	}

	formatted, err := imports.Process(fileName, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		g.logger.Warn("generated source does not parse; writing it unformatted",
			zap.String("tool", spec.Identifier),
			zap.String("file", fileName),
			zap.Error(err),
		)
		return artifact, nil
	}
	artifact.Content = formatted
	artifact.Formatted = true
	return artifact, nil
}

// Generate renders spec and writes it to the output directory.
func (g *Generator) Generate(ctx context.Context, spec ToolSpecification) (Result, error) {
	const op = "toolgen.Generate"

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !spec.Type.Valid() {
		g.metrics.ObserveGeneration(OutcomeInvalid)
		return Result{}, domain.InvalidEnumError(op, fieldToolType, string(spec.Type), domain.ToolTypeNames())
	}
	if spec.CustomLogic() {
		g.logger.Warn("embedding caller supplied logic into generated source",
			zap.String("tool", spec.Identifier),
		)
	}

	artifact, err := g.Render(spec)
	if err != nil {
		g.metrics.ObserveGeneration(OutcomeInvalid)
		return Result{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	exists, err := afero.Exists(g.fs, artifact.Path)
	if err != nil {
		g.metrics.ObserveGeneration(OutcomeWriteFailed)
		return Result{}, domain.E(domain.CodeWriteFailed, op, "failed to check for existing tool file", err)
	}
	if exists {
		g.metrics.ObserveGeneration(OutcomeExists)
		return Result{}, domain.E(domain.CodeAlreadyExists, op, fmt.Sprintf("tool file already exists: %s", artifact.FileName), nil).
			WithMeta("file", artifact.FileName)
	}

	if err := g.writeAtomic(artifact); err != nil {
		g.metrics.ObserveGeneration(OutcomeWriteFailed)
		g.logger.Error("write generated tool failed", zap.String("path", artifact.Path), zap.Error(err))
		return Result{}, domain.E(domain.CodeWriteFailed, op, "failed to create tool file, check file permissions", err).
			WithMeta("file", artifact.FileName)
	}

	g.metrics.ObserveGeneration(OutcomeCreated)
	g.logger.Info("generated tool",
		zap.String("tool", spec.Identifier),
		zap.String("class", artifact.ClassName),
		zap.String("path", artifact.Path),
		zap.Bool("formatted", artifact.Formatted),
	)
	return Result{
		ClassName: artifact.ClassName,
		FileName:  artifact.FileName,
		FilePath:  artifact.Path,
		FileSize:  len(artifact.Content),
	}, nil
}

func (g *Generator) writeAtomic(artifact Artifact) (err error) {
	dir := filepath.Dir(artifact.Path)
	if err := g.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := afero.TempFile(g.fs, dir, "."+artifact.FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = g.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(artifact.Content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := g.fs.Chmod(tmpName, generatedFileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := g.fs.Rename(tmpName, artifact.Path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
