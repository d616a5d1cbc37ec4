// Package git fetches a remote source tree before building and resolves the
// commit recorded in build reports.
package git

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Client handles Git operations against a workspace directory.
type Client struct {
	workspaceDir string
}

// NewClient creates a new Git client with the specified workspace directory
func NewClient(workspaceDir string) *Client { return &Client{workspaceDir: workspaceDir} }

// CloneSource clones the configured source repository into the workspace and
// returns the checkout path. Any previous checkout is removed first.
func (c *Client) CloneSource(cfg *config.GitConfig) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, "source")
	slog.Debug("Cloning source repository", slog.String("url", cfg.URL), slog.String("branch", cfg.Branch), logfields.Path(repoPath))

	if err := os.RemoveAll(repoPath); err != nil {
		return "", fmt.Errorf("failed to remove existing checkout: %w", err)
	}

	cloneOptions := &gogit.CloneOptions{URL: cfg.URL, Depth: 1}
	if cfg.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + cfg.Branch)
		cloneOptions.SingleBranch = true
	}

	repository, err := gogit.PlainClone(repoPath, false, cloneOptions)
	if err != nil {
		return "", fmt.Errorf("failed to clone source repository %s: %w", cfg.URL, err)
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Source repository cloned", slog.String("url", cfg.URL), logfields.Commit(ref.Hash().String()[:8]), logfields.Path(repoPath))
	} else {
		slog.Info("Source repository cloned", slog.String("url", cfg.URL), logfields.Path(repoPath))
	}

	return repoPath, nil
}
