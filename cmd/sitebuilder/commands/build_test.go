package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
)

func projectConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Source = filepath.Join(root, "src")
	cfg.Partials = filepath.Join(root, "partials")
	cfg.Output = filepath.Join(root, "public")
	cfg.History.Path = filepath.Join(root, ".sitebuilder", "history.db")

	require.NoError(t, os.MkdirAll(cfg.Source, 0o755))
	require.NoError(t, os.MkdirAll(cfg.Partials, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Partials, "header.html"), []byte("<nav>H</nav>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Partials, "footer.html"), []byte("<footer>F</footer>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Source, "index.html"),
		[]byte("<!-- HEADER -->\n<p>Hi</p>\n<!-- FOOTER -->"), 0o644))
	return cfg
}

func TestRunBuildEndToEnd(t *testing.T) {
	cfg := projectConfig(t)

	report, err := RunBuild(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)

	out, err := os.ReadFile(filepath.Join(cfg.Output, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<nav>H</nav>\n<p>Hi</p>\n<footer>F</footer>", string(out))

	// The run lands in the history store.
	store, err := history.NewStore(cfg.History.Path)
	require.NoError(t, err)
	defer store.Close()
	records, err := store.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, report.BuildID, records[0].BuildID)
	assert.Equal(t, "success", records[0].Status)
}

func TestRunBuildFailsOnMissingPartials(t *testing.T) {
	cfg := projectConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Partials, "footer.html")))

	_, err := RunBuild(context.Background(), cfg)
	require.Error(t, err)

	// Nothing was written.
	_, statErr := os.Stat(filepath.Join(cfg.Output, "index.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestApplyPathOverrides(t *testing.T) {
	cfg := config.Default()
	ApplyPathOverrides(cfg, "a", "", "c")
	assert.Equal(t, "a", cfg.Source)
	assert.Equal(t, "./partials", cfg.Partials)
	assert.Equal(t, "c", cfg.Output)
}
