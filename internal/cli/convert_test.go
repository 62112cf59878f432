package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/guardrails/internal/convert"
	"github.com/roach88/guardrails/internal/testutil"
)

func TestConvert_RunsPandocPerFile(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"partials/general/a.org": "* A",
		"partials/roles/b.org":   "* B",
		"partials/roles/skip.md": "not an outline",
	})
	runner := &testutil.RecordingRunner{}
	opts := &RootOptions{ConvertRunner: runner}

	stdout, _, err := execute(t, opts, "--ops-dir", t.TempDir(), "convert", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 converted, 0 failed")

	calls := runner.Calls()
	require.Len(t, calls, 2)
	in := filepath.Join(root, "partials", "general", "a.org")
	assert.Equal(t, "pandoc", calls[0].Name)
	assert.Equal(t, convert.Args(in, convert.OutputPath(in)), calls[0].Args)
}

func TestConvert_ConfiguredDirsAndPandoc(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"notes/x.org":            "* X",
		"partials/general/a.org": "* A",
	})
	cfgPath := filepath.Join(t.TempDir(), "guardrails.yaml")
	cfg := "convert:\n  pandoc: /opt/pandoc\n  root: " + root + "\n  dirs:\n    - notes\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	runner := &testutil.RecordingRunner{}
	_, _, err := execute(t, &RootOptions{ConvertRunner: runner}, "--config", cfgPath, "convert")
	require.NoError(t, err)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/opt/pandoc", calls[0].Name)
	assert.Contains(t, calls[0].Args, filepath.Join(root, "notes", "x.org"))
}

func TestConvert_FailureContinues(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"partials/general/a.org": "* A",
		"partials/general/b.org": "* B",
	})
	bad := filepath.Join(root, "partials", "general", "a.org")
	runner := &testutil.RecordingRunner{FailOn: map[string]error{bad: errors.New("exit status 64")}}

	stdout, _, err := execute(t, &RootOptions{ConvertRunner: runner},
		"--ops-dir", t.TempDir(), "convert", "--root", root)
	require.Error(t, err)
	assert.Equal(t, ErrCodeConvertFailed, ErrorCode(err))
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "1 converted, 1 failed")
	assert.Len(t, runner.Calls(), 2)
}

func TestConvert_NothingToDo(t *testing.T) {
	runner := &testutil.RecordingRunner{}

	stdout, _, err := execute(t, &RootOptions{ConvertRunner: runner},
		"--ops-dir", t.TempDir(), "convert", "--root", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 converted, 0 failed")
	assert.Empty(t, runner.Calls())
}
