// Package daemon runs the long-lived surfaces: rebuild-on-change watching,
// optional scheduled rebuilds, and the local preview server.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// Daemon coordinates the watcher, scheduler, and preview server around the
// builder. A single goroutine performs all builds, so runs never overlap.
type Daemon struct {
	cfg     *config.Config
	builder *site.Builder
	hub     *server.LiveReloadHub
	srv     *server.Server

	buildCh chan string // build trigger reasons
}

// New creates a daemon. When serve is true the preview server (and, when
// enabled, live reload and metrics endpoints) is started; otherwise only the
// watch loop runs. registry may be nil when metrics are disabled.
func New(cfg *config.Config, builder *site.Builder, serve bool, registry *prom.Registry) *Daemon {
	d := &Daemon{
		cfg:     cfg,
		builder: builder,
		buildCh: make(chan string, 1),
	}
	if serve {
		if cfg.Serve.LiveReload {
			d.hub = server.NewLiveReloadHub()
		}
		d.srv = server.New(cfg, cfg.Output, d.hub, registry)
	}
	return d
}

// Run performs an initial build and then blocks, rebuilding on filesystem
// changes and scheduled ticks, until ctx is done. Unlike a one-shot build, a
// failed rebuild keeps the daemon alive; the error is logged and the next
// change triggers another attempt.
func (d *Daemon) Run(ctx context.Context) error {
	if report, err := d.builder.Build(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	} else if d.hub != nil {
		d.hub.Broadcast(report.BuildID)
	}

	watcher, err := watch.NewWatcher(
		[]string{d.cfg.Source, d.cfg.Partials},
		500*time.Millisecond,
		func() { d.trigger("fs-change") },
	)
	if err != nil {
		return err
	}
	defer watcher.Close()

	var scheduler gocron.Scheduler
	if interval := d.cfg.Serve.RebuildIntervalDuration(); interval > 0 {
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() { d.trigger("scheduled") }),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("failed to create periodic rebuild job: %w", err)
		}
		scheduler.Start()
		slog.Info("Periodic rebuild scheduled", "interval", interval.String())
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown", logfields.Error(err))
			}
		}()
	}

	errChan := make(chan error, 2)
	go func() { errChan <- watcher.Start(ctx) }()
	if d.srv != nil {
		go func() { errChan <- d.srv.Start(ctx) }()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errChan:
			if err != nil {
				return err
			}
		case reason := <-d.buildCh:
			slog.Info("Rebuilding", "reason", reason)
			report, err := d.builder.Build(ctx)
			if err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
				continue
			}
			if d.hub != nil {
				d.hub.Broadcast(report.BuildID)
			}
		}
	}
}

func (d *Daemon) trigger(reason string) {
	select {
	case d.buildCh <- reason:
	default: // a rebuild is already pending
	}
}
