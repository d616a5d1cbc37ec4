package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Maximum number of builds to list" default:"20"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open build history: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.List(context.Background(), h.Limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No builds recorded yet")
		return nil
	}

	for _, r := range records {
		commit := r.Commit
		if commit == "" {
			commit = "-"
		} else if len(commit) > 8 {
			commit = commit[:8]
		}
		fmt.Printf("%s  %-7s  %3d page(s)  %8s  commit %s  %s\n",
			r.StartedAt.Format(time.DateTime), r.Status, r.Count,
			r.Duration.Round(time.Millisecond), commit, r.BuildID)
	}
	return nil
}
