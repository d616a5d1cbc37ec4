package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Build the site from source pages and partials"`
	Init    InitCmd    `cmd:"" help:"Initialize a new project (config, partials, starter page)"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild automatically when source or partials change"`
	Serve   ServeCmd   `cmd:"" help:"Watch and serve the site locally with live reload"`
	Check   CheckCmd   `cmd:"" help:"Check generated pages for leftover markers and broken links"`
	History HistoryCmd `cmd:"" help:"List recorded build runs"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig loads the configuration file named by the root flags. A missing
// file at the default path falls back to built-in defaults so a scaffolded
// tree still builds without a config file on disk.
func LoadConfig(root *CLI) (*config.Config, error) {
	if _, err := os.Stat(root.Config); os.IsNotExist(err) && root.Config == "sitebuilder.yaml" {
		slog.Debug("No configuration file found, using defaults")
		return config.Default(), nil
	}
	return config.Load(root.Config)
}

// ApplyPathOverrides replaces configured paths with CLI flag values when set.
func ApplyPathOverrides(cfg *config.Config, source, partialsDir, output string) {
	if source != "" {
		cfg.Source = source
	}
	if partialsDir != "" {
		cfg.Partials = partialsDir
	}
	if output != "" {
		cfg.Output = output
	}
}
