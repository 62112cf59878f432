package convert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/guardrails/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedOutlines(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"partials/general/b.org":      "* B",
		"partials/general/a.org":      "* A",
		"partials/general/skip.md":    "not an outline",
		"partials/roles/lead.org":     "* Lead",
		"partials/roles/nested/x.org": "* not scanned",
	})
	return root
}

func TestFiles_OrderedByDirThenName(t *testing.T) {
	root := seedOutlines(t)
	c := &Converter{Root: root, Dirs: []string{"partials/roles", "partials/general", "partials/missing"}}

	files, err := c.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "partials/roles/lead.org"),
		filepath.Join(root, "partials/general/a.org"),
		filepath.Join(root, "partials/general/b.org"),
	}, files)
}

func TestRun_InvokesPandocOncePerFile(t *testing.T) {
	root := seedOutlines(t)
	runner := &testutil.RecordingRunner{}
	c := &Converter{
		Root:   root,
		Dirs:   []string{"partials/general"},
		Runner: runner,
		Logger: quietLogger(),
	}

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	a := filepath.Join(root, "partials/general/a.org")
	b := filepath.Join(root, "partials/general/b.org")
	assert.Equal(t, []testutil.Call{
		{Name: "pandoc", Args: []string{"--wrap=none", "-s", "-f", "org", "-t", "markdown+yaml_metadata_block", a, "-o", OutputPath(a)}},
		{Name: "pandoc", Args: []string{"--wrap=none", "-s", "-f", "org", "-t", "markdown+yaml_metadata_block", b, "-o", OutputPath(b)}},
	}, runner.Calls())
	assert.Equal(t, []string{OutputPath(a), OutputPath(b)}, result.Converted)
	assert.Empty(t, result.Failed)
}

func TestRun_CustomPandocBinary(t *testing.T) {
	root := seedOutlines(t)
	runner := &testutil.RecordingRunner{}
	c := &Converter{Root: root, Dirs: []string{"partials/roles"}, Pandoc: "/opt/pandoc", Runner: runner, Logger: quietLogger()}

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, runner.Calls(), 1)
	assert.Equal(t, "/opt/pandoc", runner.Calls()[0].Name)
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	root := seedOutlines(t)
	a := filepath.Join(root, "partials/general/a.org")
	boom := errors.New("pandoc exploded")
	runner := &testutil.RecordingRunner{FailOn: map[string]error{a: boom}}
	c := &Converter{Root: root, Dirs: []string{"partials/general"}, Runner: runner, Logger: quietLogger()}

	result, err := c.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), a)

	assert.Len(t, runner.Calls(), 2)
	assert.Equal(t, []string{a}, result.Failed)
	assert.Equal(t, []string{OutputPath(filepath.Join(root, "partials/general/b.org"))}, result.Converted)
}

func TestRun_NoFiles(t *testing.T) {
	runner := &testutil.RecordingRunner{}
	c := &Converter{Root: t.TempDir(), Dirs: []string{"nothing/here"}, Runner: runner, Logger: quietLogger()}

	result, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runner.Calls())
	assert.NotNil(t, result.Converted)
	assert.Empty(t, result.Converted)
}

func TestRun_CancelledContext(t *testing.T) {
	root := seedOutlines(t)
	runner := &testutil.RecordingRunner{}
	c := &Converter{Root: root, Dirs: []string{"partials/general"}, Runner: runner, Logger: quietLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.Calls())
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b.md"), OutputPath(filepath.Join("a", "b.org")))
	assert.Equal(t, "noext.md", OutputPath("noext"))
}
