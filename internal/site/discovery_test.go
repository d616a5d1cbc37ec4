package site

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverFindsOnlyHTML(t *testing.T) {
	src := t.TempDir()
	for _, rel := range []string{"index.html", "style.css", filepath.Join("sub", "page.html"), filepath.Join("sub", "data.json")} {
		path := filepath.Join(src, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	files, err := Discover(src)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %+v", len(files), files)
	}
	if files[0].RelativePath != "index.html" {
		t.Errorf("files[0] = %q", files[0].RelativePath)
	}
	if files[1].RelativePath != filepath.Join("sub", "page.html") {
		t.Errorf("files[1] = %q", files[1].RelativePath)
	}
}

func TestDiscoverMissingSource(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Error("expected error for missing source directory")
	}
}
