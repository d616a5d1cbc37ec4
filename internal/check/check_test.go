package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunReportsLeftoverMarker(t *testing.T) {
	out := t.TempDir()
	writePage(t, out, "index.html", "<html><body><!-- HEADER --><p>Hi</p></body></html>")

	issues, err := Run(out)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, KindLeftoverMarker, issues[0].Kind)
	assert.Equal(t, "index.html", issues[0].Page)
}

func TestRunReportsBrokenInternalLink(t *testing.T) {
	out := t.TempDir()
	writePage(t, out, "index.html", `<html><body><a href="about.html">About</a></body></html>`)

	issues, err := Run(out)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, KindBrokenLink, issues[0].Kind)
	assert.Equal(t, "about.html", issues[0].Detail)
}

func TestRunResolvesRelativeAndRootLinks(t *testing.T) {
	out := t.TempDir()
	writePage(t, out, "index.html", `<html><body><a href="/docs/">Docs</a><img src="img/logo.png"></body></html>`)
	writePage(t, out, "docs/index.html", `<html><body><a href="../index.html">Home</a></body></html>`)
	require.NoError(t, os.MkdirAll(filepath.Join(out, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "img", "logo.png"), []byte{0x89}, 0o644))

	issues, err := Run(out)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRunIgnoresExternalLinks(t *testing.T) {
	out := t.TempDir()
	writePage(t, out, "index.html",
		`<html><body><a href="https://example.com/x">X</a><a href="mailto:a@b.c">M</a><a href="#top">T</a></body></html>`)

	issues, err := Run(out)
	require.NoError(t, err)
	assert.Empty(t, issues)
}
