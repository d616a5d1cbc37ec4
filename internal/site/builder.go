// Package site implements the build pipeline: load the shared partials,
// discover page templates, substitute the marker comments, and write the
// assembled pages to a mirrored path under the output root.
package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	siteerrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/partials"
)

// Report summarizes a completed build run.
type Report struct {
	BuildID     string        `json:"build_id"`
	SourceDir   string        `json:"source_dir"`
	PartialsDir string        `json:"partials_dir"`
	OutputDir   string        `json:"output_dir"`
	Pages       []string      `json:"pages"` // relative paths in build order
	Count       int           `json:"count"`
	Commit      string        `json:"commit,omitempty"` // source HEAD when the tree is a git checkout
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Status      string        `json:"status"` // success | failed
}

// RunRecorder persists build reports. Implemented by the history store.
type RunRecorder interface {
	Record(ctx context.Context, report *Report) error
}

// Notifier publishes build completion events. Implemented by the NATS publisher.
type Notifier interface {
	PublishBuildCompleted(ctx context.Context, report *Report) error
}

// Builder assembles a site from a source tree and a partials directory.
type Builder struct {
	sourceDir   string
	partialsDir string
	outputDir   string

	metrics  metrics.Recorder
	recorder RunRecorder
	notifier Notifier
	commitFn func(string) (string, error)
}

// Option configures optional Builder collaborators.
type Option func(*Builder)

// WithMetrics attaches a metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(b *Builder) { b.metrics = r }
}

// WithRunRecorder attaches a build history recorder.
func WithRunRecorder(r RunRecorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithNotifier attaches a build event notifier.
func WithNotifier(n Notifier) Option {
	return func(b *Builder) { b.notifier = n }
}

// WithCommitReader attaches a function resolving the source tree's git HEAD.
func WithCommitReader(fn func(repoPath string) (string, error)) Option {
	return func(b *Builder) { b.commitFn = fn }
}

// NewBuilder creates a Builder for the given directories.
func NewBuilder(sourceDir, partialsDir, outputDir string, opts ...Option) *Builder {
	b := &Builder{
		sourceDir:   sourceDir,
		partialsDir: partialsDir,
		outputDir:   outputDir,
		metrics:     metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs one full build pass. Partials are loaded before any file is
// written, so a missing partial aborts with no output. Pages already written
// when a later page fails are left on disk; there is no rollback.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	report := &Report{
		BuildID:     uuid.NewString(),
		SourceDir:   b.sourceDir,
		PartialsDir: b.partialsDir,
		OutputDir:   b.outputDir,
		StartedAt:   time.Now(),
	}

	slog.Info("Starting site build",
		logfields.BuildID(report.BuildID),
		logfields.Source(b.sourceDir),
		logfields.Partials(b.partialsDir),
		logfields.Output(b.outputDir))

	if b.commitFn != nil {
		if commit, err := b.commitFn(b.sourceDir); err == nil && commit != "" {
			report.Commit = commit
			slog.Debug("Resolved source commit", logfields.Commit(commit))
		}
	}

	set, err := partials.Load(b.partialsDir)
	if err != nil {
		return b.finish(ctx, report, err)
	}

	files, err := Discover(b.sourceDir)
	if err != nil {
		return b.finish(ctx, report, err)
	}

	for _, file := range files {
		select {
		case <-ctx.Done():
			return b.finish(ctx, report, ctx.Err())
		default:
		}

		if err := b.buildPage(file, set); err != nil {
			return b.finish(ctx, report, err)
		}

		report.Pages = append(report.Pages, file.RelativePath)
		report.Count++
		slog.Info("Built page", logfields.Path(file.RelativePath))
	}

	slog.Info("Site build completed", logfields.BuildID(report.BuildID), logfields.Files(report.Count))
	return b.finish(ctx, report, nil)
}

// buildPage assembles and writes a single page.
func (b *Builder) buildPage(file SourceFile, set *partials.Set) error {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return siteerrors.FileSystemError(err, "read source file").WithContext("path", file.Path)
	}

	content := Assemble(string(data), set)

	destPath := filepath.Join(b.outputDir, file.RelativePath)
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return siteerrors.FileSystemError(err, "create output directory").WithContext("path", filepath.Dir(destPath))
	}
	if err := os.WriteFile(destPath, []byte(content), 0o644); err != nil {
		return siteerrors.FileSystemError(err, "write output file").WithContext("path", destPath)
	}
	return nil
}

// Assemble performs the marker substitution for one page. Replacement is
// plain literal substring substitution: every occurrence is replaced, nothing
// is expanded recursively, and unknown comments pass through untouched.
func Assemble(content string, set *partials.Set) string {
	content = strings.ReplaceAll(content, partials.HeaderMarker, set.Header.Content)
	content = strings.ReplaceAll(content, partials.FooterMarker, set.Footer.Content)
	return content
}

// finish closes out the report, emits metrics, and runs the optional
// persistence and notification hooks. Hook failures are logged but never fail
// an otherwise successful build.
func (b *Builder) finish(ctx context.Context, report *Report, buildErr error) (*Report, error) {
	report.Duration = time.Since(report.StartedAt)
	report.Status = metrics.OutcomeSuccess
	if buildErr != nil {
		report.Status = metrics.OutcomeFailed
		slog.Error("Site build failed", logfields.BuildID(report.BuildID), logfields.Error(buildErr))
	}

	b.metrics.ObserveBuildDuration(report.Duration)
	b.metrics.IncBuildOutcome(report.Status)
	b.metrics.AddPagesBuilt(report.Count)

	if b.recorder != nil {
		if err := b.recorder.Record(ctx, report); err != nil {
			slog.Warn("Failed to record build history", logfields.BuildID(report.BuildID), logfields.Error(err))
		}
	}
	if b.notifier != nil {
		if err := b.notifier.PublishBuildCompleted(ctx, report); err != nil {
			slog.Warn("Failed to publish build event", logfields.BuildID(report.BuildID), logfields.Error(err))
		}
	}

	if buildErr != nil {
		return report, buildErr
	}
	return report, nil
}
