package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/daemon"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	"git.home.luguber.info/inful/sitebuilder/internal/git"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// ServeCmd implements the 'serve' command: watch plus a local preview server.
type ServeCmd struct {
	Source       string `short:"s" help:"Source directory containing page templates"`
	Partials     string `short:"p" help:"Directory containing header.html and footer.html"`
	Output       string `short:"o" help:"Output directory for the assembled site"`
	Port         int    `help:"Preview server port (overrides config)"`
	NoLiveReload bool   `name:"no-live-reload" help:"Disable live reload script injection"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ApplyPathOverrides(cfg, s.Source, s.Partials, s.Output)
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if s.NoLiveReload {
		cfg.Serve.LiveReload = false
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := []site.Option{site.WithCommitReader(git.ReadHead)}

	var registry *prom.Registry
	if cfg.Serve.Metrics.Enabled {
		registry = prom.NewRegistry()
		opts = append(opts, site.WithMetrics(metrics.NewPrometheusRecorder(registry)))
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

	fmt.Printf("Serving site on http://localhost:%d\n", cfg.Serve.Port)

	builder := site.NewBuilder(cfg.Source, cfg.Partials, cfg.Output, opts...)
	d := daemon.New(cfg, builder, true, registry)
	return d.Run(ctx)
}
