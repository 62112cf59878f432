package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/guardrails/internal/store"
)

func TestStoryAddAndList(t *testing.T) {
	dir := initOpsDir(t)

	resp := executeJSON(t, dir, "story", "add", "S1", "-d", "first story")
	var created store.Story
	decodeData(t, resp, &created)
	assert.Equal(t, "S1", created.Name)
	assert.Equal(t, "first story", created.Description)
	assert.NotZero(t, created.ID)

	executeJSON(t, dir, "story", "add", "S2")

	var stories []store.Story
	decodeData(t, executeJSON(t, dir, "story", "list"), &stories)
	require.Len(t, stories, 2)
	assert.Equal(t, "S1", stories[0].Name)
	assert.Equal(t, "S2", stories[1].Name)
}

func TestStoryList_Empty(t *testing.T) {
	dir := initOpsDir(t)

	stdout, _, err := execute(t, nil, "--ops-dir", dir, "story", "list")
	require.NoError(t, err)
	assert.Equal(t, "No stories.\n", stdout)

	var stories []store.Story
	decodeData(t, executeJSON(t, dir, "story", "list"), &stories)
	assert.Empty(t, stories)
}

func TestStoryAdd_Duplicate(t *testing.T) {
	dir := initOpsDir(t)
	executeJSON(t, dir, "story", "add", "S1")

	_, _, err := execute(t, nil, "--ops-dir", dir, "story", "add", "S1")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrDuplicateName)
	assert.Equal(t, ErrCodeDuplicateName, ErrorCode(err))
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestStoryAdd_BlankName(t *testing.T) {
	dir := initOpsDir(t)

	_, _, err := execute(t, nil, "--ops-dir", dir, "story", "add", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidName)
}

func TestStoryTasks_FirstMatch(t *testing.T) {
	dir := initOpsDir(t)
	executeJSON(t, dir, "story", "add", "S1")
	executeJSON(t, dir, "task", "add", "S1", "T1")
	executeJSON(t, dir, "task", "add", "S1", "T2")

	var first []store.Task
	decodeData(t, executeJSON(t, dir, "story", "tasks", "S1"), &first)
	require.Len(t, first, 1)
	assert.Equal(t, "T1", first[0].Name)

	var all []store.Task
	decodeData(t, executeJSON(t, dir, "story", "tasks", "S1", "--all"), &all)
	require.Len(t, all, 2)
	assert.Equal(t, "T1", all[0].Name)
	assert.Equal(t, "T2", all[1].Name)
}

func TestStoryTasks_None(t *testing.T) {
	dir := initOpsDir(t)
	executeJSON(t, dir, "story", "add", "S1")

	stdout, _, err := execute(t, nil, "--ops-dir", dir, "story", "tasks", "S1")
	require.NoError(t, err)
	assert.Equal(t, "Story S1 has no tasks.\n", stdout)

	var tasks []store.Task
	decodeData(t, executeJSON(t, dir, "story", "tasks", "S1"), &tasks)
	assert.Empty(t, tasks)
}

func TestStoryDelete_CascadesTasks(t *testing.T) {
	dir := initOpsDir(t)
	executeJSON(t, dir, "story", "add", "S1")
	executeJSON(t, dir, "task", "add", "S1", "T1")

	stdout, _, err := execute(t, nil, "--ops-dir", dir, "story", "delete", "S1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted story S1")

	_, _, err = execute(t, nil, "--ops-dir", dir, "task", "story", "T1")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = execute(t, nil, "--ops-dir", dir, "story", "delete", "S1")
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, ErrorCode(err))
}
