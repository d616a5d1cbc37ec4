package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sitebuilder/internal/daemon"
	"git.home.luguber.info/inful/sitebuilder/internal/git"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// WatchCmd implements the 'watch' command: rebuild on change, no server.
type WatchCmd struct {
	Source   string `short:"s" help:"Source directory containing page templates"`
	Partials string `short:"p" help:"Directory containing header.html and footer.html"`
	Output   string `short:"o" help:"Output directory for the assembled site"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ApplyPathOverrides(cfg, w.Source, w.Partials, w.Output)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := []site.Option{site.WithCommitReader(git.ReadHead)}
	if cfg.History.Path != "" {
		store, err := history.NewStore(cfg.History.Path)
		if err != nil {
			slog.Warn("Build history unavailable", logfields.Error(err))
		} else {
			defer func() { _ = store.Close() }()
			opts = append(opts, site.WithRunRecorder(store))
		}
	}

	builder := site.NewBuilder(cfg.Source, cfg.Partials, cfg.Output, opts...)
	d := daemon.New(cfg, builder, false, nil)
	return d.Run(ctx)
}
