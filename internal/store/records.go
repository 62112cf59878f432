package store

import (
	"context"
	"errors"
	"fmt"
)

// Story is a named story owning a collection of tasks.
type Story struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	owner *Store
}

// Task is a named task belonging to one story.
type Task struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StoryID     int64  `json:"story_id"`

	owner *Store
}

func (st *Story) bind(s *Store) {
	if st != nil {
		st.owner = s
	}
}

func (t *Task) bind(s *Store) {
	if t != nil {
		t.owner = s
	}
}

// Owner returns the Store that loaded the story, or nil if it is detached.
func (st *Story) Owner() *Store {
	return st.owner
}

// Owner returns the Store that loaded the task, or nil if it is detached.
func (t *Task) Owner() *Store {
	return t.owner
}

// Tasks returns the first task (lowest id) belonging to the story, or nil if
// the story has none.
//
// Only the first match is returned. Use ListTasks for the full collection.
func (st *Story) Tasks(ctx context.Context) (*Task, error) {
	if st.owner == nil {
		return nil, fmt.Errorf("story %q tasks: %w", st.Name, ErrDetachedRecord)
	}
	task, err := st.owner.firstTask(ctx, st.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return task, err
}

// ListTasks returns every task belonging to the story, ordered by id.
func (st *Story) ListTasks(ctx context.Context) ([]*Task, error) {
	if st.owner == nil {
		return nil, fmt.Errorf("story %q tasks: %w", st.Name, ErrDetachedRecord)
	}
	return st.owner.tasksForStory(ctx, st.ID)
}

// Story returns the story the task belongs to, or nil if it no longer exists.
func (t *Task) Story(ctx context.Context) (*Story, error) {
	if t.owner == nil {
		return nil, fmt.Errorf("task %q story: %w", t.Name, ErrDetachedRecord)
	}
	story, err := t.owner.StoryByID(ctx, t.StoryID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return story, err
}
