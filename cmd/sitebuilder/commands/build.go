package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	"git.home.luguber.info/inful/sitebuilder/internal/git"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source   string `short:"s" help:"Source directory containing page templates"`
	Partials string `short:"p" help:"Directory containing header.html and footer.html"`
	Output   string `short:"o" help:"Output directory for the assembled site"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ApplyPathOverrides(cfg, b.Source, b.Partials, b.Output)

	report, err := RunBuild(context.Background(), cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Built %d file(s)\n", report.Count)
	return nil
}

// RunBuild performs one build run with all configured collaborators wired in:
// optional git source clone, build history, and event publishing.
func RunBuild(ctx context.Context, cfg *config.Config) (*site.Report, error) {
	sourceDir := cfg.Source

	// Clone the remote source first when one is configured; the configured
	// source path is then relative to the checkout.
	if cfg.Git != nil {
		workspace, err := os.MkdirTemp("", "sitebuilder-*")
		if err != nil {
			return nil, fmt.Errorf("create workspace: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(workspace); err != nil {
				slog.Warn("Failed to cleanup workspace", logfields.Error(err))
			}
		}()

		checkout, err := git.NewClient(workspace).CloneSource(cfg.Git)
		if err != nil {
			return nil, err
		}
		sourceDir = filepath.Join(checkout, cfg.Source)
	}

	opts := []site.Option{
		site.WithCommitReader(git.ReadHead),
	}

	if cfg.History.Path != "" {
		store, err := history.NewStore(cfg.History.Path)
		if err != nil {
			slog.Warn("Build history unavailable", logfields.Error(err))
		} else {
			defer func() { _ = store.Close() }()
			opts = append(opts, site.WithRunRecorder(store))
		}
	}

	if cfg.Events.Enabled {
		publisher, err := events.NewPublisher(&cfg.Events)
		if err != nil {
			slog.Warn("Event publishing unavailable", logfields.Error(err))
		} else {
			defer publisher.Close()
			opts = append(opts, site.WithNotifier(publisher))
		}
	}

	builder := site.NewBuilder(sourceDir, cfg.Partials, cfg.Output, opts...)
	return builder.Build(ctx)
}
