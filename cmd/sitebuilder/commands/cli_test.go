package commands

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *kong.Context {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx
}

func TestBareInvocationRunsBuild(t *testing.T) {
	ctx := parse(t)
	assert.Equal(t, "build", ctx.Command())
}

func TestBuildFlagOverrides(t *testing.T) {
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"build", "-s", "pages", "-o", "dist"})
	require.NoError(t, err)
	assert.Equal(t, "pages", cli.Build.Source)
	assert.Equal(t, "dist", cli.Build.Output)
}

func TestServeCommandParses(t *testing.T) {
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"serve", "--port", "9000", "--no-live-reload"})
	require.NoError(t, err)
	assert.Equal(t, 9000, cli.Serve.Port)
	assert.True(t, cli.Serve.NoLiveReload)
}

func TestConfigFlagDefault(t *testing.T) {
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"history"})
	require.NoError(t, err)
	assert.Equal(t, "sitebuilder.yaml", cli.Config)
}
