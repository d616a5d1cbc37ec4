// Package events publishes build completion events to NATS so external
// consumers (deploy hooks, dashboards) can react to finished builds.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// BuildCompletedEvent is the wire payload published after every build run.
type BuildCompletedEvent struct {
	BuildID   string    `json:"build_id"`
	Status    string    `json:"status"`
	Pages     int       `json:"pages"`
	Commit    string    `json:"commit,omitempty"`
	OutputDir string    `json:"output_dir"`
	Duration  string    `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher manages the NATS connection for build event publishing.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS using the events configuration.
func NewPublisher(cfg *config.EventsConfig) (*Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("events are disabled")
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("sitebuilder"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", cfg.URL, "subject", cfg.Subject)
	return &Publisher{conn: conn, subject: cfg.Subject}, nil
}

// PublishBuildCompleted publishes a build report as a BuildCompletedEvent.
func (p *Publisher) PublishBuildCompleted(_ context.Context, report *site.Report) error {
	event := BuildCompletedEvent{
		BuildID:   report.BuildID,
		Status:    report.Status,
		Pages:     report.Count,
		Commit:    report.Commit,
		OutputDir: report.OutputDir,
		Duration:  report.Duration.String(),
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published build event", "build_id", report.BuildID, "subject", p.subject)
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.conn.Close()
		}
	}
}
