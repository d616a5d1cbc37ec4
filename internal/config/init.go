package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content. title becomes
// the site title; when empty a placeholder is used.
func Init(configPath, title string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if title == "" {
		title = "My Site"
	}

	exampleConfig := Config{
		Source:   "./src",
		Partials: "./partials",
		Output:   "./public",
		Site: SiteConfig{
			Title:   title,
			BaseURL: "https://example.com",
		},
		Serve: ServeConfig{
			Port:       8080,
			LiveReload: true,
			Metrics: MetricsConfig{
				Enabled: false,
				Path:    "/metrics",
			},
		},
		History: HistoryConfig{
			Path: ".sitebuilder/history.db",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
