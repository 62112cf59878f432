package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/guardrails/internal/store"
)

// execute runs the root command built from opts with args and returns what
// was written to stdout and stderr.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	if opts == nil {
		opts = &RootOptions{}
	}
	if opts.Registry == nil {
		opts.Registry = store.NewRegistry()
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// executeJSON runs args with --format json against opsDir and decodes the
// response envelope.
func executeJSON(t *testing.T, opsDir string, args ...string) CLIResponse {
	t.Helper()
	full := append([]string{"--format", "json", "--ops-dir", opsDir}, args...)
	stdout, _, err := execute(t, nil, full...)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "ok", resp.Status)
	return resp
}

// decodeData re-decodes the Data field of resp into v.
func decodeData(t *testing.T, resp CLIResponse, v any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

// initOpsDir creates an ops directory with an empty database.
func initOpsDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "ops")
	_, _, err := execute(t, nil, "--ops-dir", dir, "init")
	require.NoError(t, err)
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "guardrails", cmd.Use)
	assert.Contains(t, cmd.Short, "Guardrails")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"init"},
		{"story", "list"},
		{"story", "add"},
		{"story", "delete"},
		{"story", "tasks"},
		{"task", "add"},
		{"task", "story"},
		{"questions"},
		{"answers"},
		{"convert"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "guardrails.yaml", configFlag.DefValue)

	opsFlag := cmd.PersistentFlags().Lookup("ops-dir")
	require.NotNil(t, opsFlag)
	assert.Equal(t, "", opsFlag.DefValue)
}

func TestQuestionsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	questionsCmd, _, err := cmd.Find([]string{"questions"})
	require.NoError(t, err)

	for _, name := range []string{"story", "task", "for", "output"} {
		assert.NotNil(t, questionsCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "o", questionsCmd.Flags().Lookup("output").Shorthand)
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := execute(t, nil, "--format", "invalid", "--ops-dir", t.TempDir(), "story", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, _, err := execute(t, nil, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "story", "list")
	require.Error(t, err)
	assert.Equal(t, ErrCodeConfig, ErrorCode(err))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigOpsDir(t *testing.T) {
	dir := t.TempDir()
	ops := filepath.Join(dir, "from-config")
	cfgPath := filepath.Join(dir, "guardrails.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ops_dir: "+ops+"\n"), 0o644))

	_, _, err := execute(t, nil, "--config", cfgPath, "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(ops, store.FileName))
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "ops")

	stdout, _, err := execute(t, nil, "--ops-dir", dir, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Initialized")
	assert.FileExists(t, filepath.Join(dir, store.FileName))

	// Second run leaves the database in place.
	_, _, err = execute(t, nil, "--ops-dir", dir, "init")
	require.NoError(t, err)
}

func TestStoreUnavailableWithoutInit(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, _, err := execute(t, nil, "--ops-dir", missing, "story", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMain_ReportsErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing")

	code := Main(context.Background(), []string{"--format", "json", "--ops-dir", missing, "story", "list"}, &stdout, &stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, stdout.String())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(lastLine(stderr.Bytes()), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStorageUnavailable, resp.Error.Code)
}

func TestMain_Success(t *testing.T) {
	var stdout, stderr bytes.Buffer
	dir := t.TempDir()

	code := Main(context.Background(), []string{"--ops-dir", dir, "story", "add", "S1"}, &stdout, &stderr)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout.String(), "Created story")
}

func lastLine(b []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	return lines[len(lines)-1]
}
