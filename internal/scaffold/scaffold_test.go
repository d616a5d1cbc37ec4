package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

func TestWriteScaffold(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Site.Title = "Belforge"

	require.NoError(t, Write(dir, cfg, false))

	header, err := os.ReadFile(filepath.Join(dir, "partials", "header.html"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "Belforge")

	index, err := os.ReadFile(filepath.Join(dir, "src", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<!-- HEADER -->")
	assert.Contains(t, string(index), "<!-- FOOTER -->")
	assert.NotContains(t, string(index), "{{title}}")
}

func TestWritePreservesExisting(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()

	headerPath := filepath.Join(dir, "partials", "header.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(headerPath), 0o755))
	require.NoError(t, os.WriteFile(headerPath, []byte("mine"), 0o644))

	require.NoError(t, Write(dir, cfg, false))
	content, err := os.ReadFile(headerPath)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(content), "existing file must survive without --force")

	require.NoError(t, Write(dir, cfg, true))
	content, err = os.ReadFile(headerPath)
	require.NoError(t, err)
	assert.NotEqual(t, "mine", string(content), "--force must overwrite")
}
