package store

import (
	"context"
	"fmt"
	"strings"
)

// CreateStory inserts a story and returns it bound to this Store.
// The name is trimmed and NFC-normalised; an existing name returns
// ErrDuplicateName.
func (s *Store) CreateStory(ctx context.Context, name, description string) (*Story, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}

	var story *Story
	err = s.update(ctx, func(sess *Session) error {
		res, err := sess.execContext(ctx, `
			INSERT INTO stories (name, description)
			VALUES (?, ?)
		`, name, strings.TrimSpace(description))
		if err != nil {
			return classify("insert story", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return classify("insert story", err)
		}

		story, err = scanStory(sess, sess.queryRowContext(ctx, `
			SELECT id, name, description FROM stories WHERE id = ?
		`, id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create story %q: %w", name, err)
	}

	s.logger.Debug("story created", "id", story.ID, "name", story.Name)
	return story, nil
}

// CreateTask inserts a task under storyID and returns it bound to this Store.
// Returns ErrNotFound if the story does not exist and ErrDuplicateName if the
// task name is taken.
func (s *Store) CreateTask(ctx context.Context, storyID int64, name, description string) (*Task, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	var task *Task
	err = s.update(ctx, func(sess *Session) error {
		res, err := sess.execContext(ctx, `
			INSERT INTO tasks (name, description, story_id)
			VALUES (?, ?, ?)
		`, name, strings.TrimSpace(description), storyID)
		if err != nil {
			return classify("insert task", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return classify("insert task", err)
		}

		task, err = scanTask(sess, sess.queryRowContext(ctx, `
			SELECT id, name, description, story_id FROM tasks WHERE id = ?
		`, id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create task %q: %w", name, err)
	}

	s.logger.Debug("task created", "id", task.ID, "name", task.Name, "story_id", task.StoryID)
	return task, nil
}

// DeleteStory removes a story. Its tasks are removed by the ON DELETE CASCADE
// foreign key. Returns ErrNotFound if the story does not exist.
func (s *Store) DeleteStory(ctx context.Context, id int64) error {
	err := s.update(ctx, func(sess *Session) error {
		return deleteByID(ctx, sess, "stories", id)
	})
	if err != nil {
		return fmt.Errorf("delete story %d: %w", id, err)
	}
	s.logger.Debug("story deleted", "id", id)
	return nil
}

// DeleteTask removes a task. Returns ErrNotFound if it does not exist.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	err := s.update(ctx, func(sess *Session) error {
		return deleteByID(ctx, sess, "tasks", id)
	})
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.logger.Debug("task deleted", "id", id)
	return nil
}

// deleteByID deletes one row from table. table is always a constant from
// this package.
func deleteByID(ctx context.Context, sess *Session, table string, id int64) error {
	res, err := sess.execContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return classify("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("delete", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
