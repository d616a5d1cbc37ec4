// Package scaffold writes the starter files for a new project: the two
// partials and an example page wired with the marker comments. Templates use
// fasttemplate with double-brace delimiters for the site variables.
package scaffold

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/valyala/fasttemplate"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

const headerTemplate = `<nav class="site-nav">
  <a href="/" class="site-title">{{title}}</a>
</nav>
`

const footerTemplate = `<footer class="site-footer">
  <p>&copy; {{title}}</p>
</footer>
`

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{title}}</title>
</head>
<body>
<!-- HEADER -->
<main>
  <h1>Welcome to {{title}}</h1>
  <p>Edit src/index.html and run sitebuilder to rebuild.</p>
</main>
<!-- FOOTER -->
</body>
</html>
`

// Write creates the starter source tree and partials in dir. Existing files
// are left alone unless force is set.
func Write(dir string, cfg *config.Config, force bool) error {
	vars := map[string]any{
		"title":    cfg.Site.Title,
		"base_url": cfg.Site.BaseURL,
	}

	files := []struct {
		relPath  string
		template string
	}{
		{filepath.Join(cfg.Partials, "header.html"), headerTemplate},
		{filepath.Join(cfg.Partials, "footer.html"), footerTemplate},
		{filepath.Join(cfg.Source, "index.html"), indexTemplate},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.relPath)
		if _, err := os.Stat(path); err == nil && !force {
			slog.Info("Skipping existing file", logfields.Path(path))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create scaffold directory: %w", err)
		}

		content := fasttemplate.ExecuteString(f.template, "{{", "}}", vars)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write scaffold file %s: %w", path, err)
		}
		slog.Info("Created", logfields.Path(path))
	}

	return nil
}
