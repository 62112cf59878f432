package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

// discardLogger suppresses store logs in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	s, err := Open(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreateStory inserts a story or fails the test.
func mustCreateStory(t *testing.T, s *Store, name string) *Story {
	t.Helper()
	story, err := s.CreateStory(context.Background(), name, name+" description")
	if err != nil {
		t.Fatalf("CreateStory(%q) failed: %v", name, err)
	}
	return story
}

// mustCreateTask inserts a task or fails the test.
func mustCreateTask(t *testing.T, s *Store, storyID int64, name string) *Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), storyID, name, name+" description")
	if err != nil {
		t.Fatalf("CreateTask(%q) failed: %v", name, err)
	}
	return task
}
