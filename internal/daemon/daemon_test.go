package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func setupProject(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Source = filepath.Join(root, "src")
	cfg.Partials = filepath.Join(root, "partials")
	cfg.Output = filepath.Join(root, "public")

	if err := os.MkdirAll(cfg.Source, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(cfg.Partials, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(cfg.Partials, "header.html"), "<nav>H</nav>")
	writeFile(t, filepath.Join(cfg.Partials, "footer.html"), "<footer>F</footer>")
	writeFile(t, filepath.Join(cfg.Source, "index.html"), "<!-- HEADER --><p>v1</p><!-- FOOTER -->")
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDaemonRebuildsOnChange(t *testing.T) {
	cfg := setupProject(t)
	builder := site.NewBuilder(cfg.Source, cfg.Partials, cfg.Output)
	d := New(cfg, builder, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	outPath := filepath.Join(cfg.Output, "index.html")
	waitForContent(t, outPath, "<p>v1</p>")

	// Give the watcher time to register before mutating the tree.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(cfg.Source, "index.html"), "<!-- HEADER --><p>v2</p><!-- FOOTER -->")
	waitForContent(t, outPath, "<p>v2</p>")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop on context cancel")
	}
}

func TestDaemonFailsWhenInitialBuildFails(t *testing.T) {
	cfg := setupProject(t)
	if err := os.Remove(filepath.Join(cfg.Partials, "footer.html")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	builder := site.NewBuilder(cfg.Source, cfg.Partials, cfg.Output)
	d := New(cfg, builder, false, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Run(ctx); err == nil {
		t.Fatal("expected initial build failure to be returned")
	}
}

func waitForContent(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		data, err := os.ReadFile(path)
		if err == nil && strings.Contains(string(data), want) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %q in %s (last: %q, err: %v)", want, path, data, err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}
