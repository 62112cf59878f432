package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ListStories returns all stories in insertion order.
// The result is a snapshot; it is empty (not nil) when there are no stories.
func (s *Store) ListStories(ctx context.Context) ([]*Story, error) {
	var stories []*Story
	err := s.view(ctx, func(sess *Session) error {
		rows, err := sess.queryContext(ctx, `
			SELECT id, name, description
			FROM stories
			ORDER BY id ASC
		`)
		if err != nil {
			return classify("query stories", err)
		}
		defer rows.Close()

		for rows.Next() {
			story, err := scanStory(sess, rows)
			if err != nil {
				return err
			}
			stories = append(stories, story)
		}
		if err := rows.Err(); err != nil {
			return classify("iterate stories", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stories == nil {
		stories = []*Story{}
	}
	return stories, nil
}

// StoryByID returns the story with the given id.
// Returns ErrNotFound if it does not exist.
func (s *Store) StoryByID(ctx context.Context, id int64) (*Story, error) {
	var story *Story
	err := s.view(ctx, func(sess *Session) error {
		row := sess.queryRowContext(ctx, `
			SELECT id, name, description
			FROM stories
			WHERE id = ?
		`, id)
		var err error
		story, err = scanStory(sess, row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("story %d: %w", id, err)
	}
	return story, nil
}

// StoryByName returns the story with the given name.
// Returns ErrNotFound if it does not exist.
func (s *Store) StoryByName(ctx context.Context, name string) (*Story, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	var story *Story
	err = s.view(ctx, func(sess *Session) error {
		row := sess.queryRowContext(ctx, `
			SELECT id, name, description
			FROM stories
			WHERE name = ?
		`, name)
		var err error
		story, err = scanStory(sess, row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("story %q: %w", name, err)
	}
	return story, nil
}

// TaskByName returns the task with the given name.
// Returns ErrNotFound if it does not exist.
func (s *Store) TaskByName(ctx context.Context, name string) (*Task, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	var task *Task
	err = s.view(ctx, func(sess *Session) error {
		row := sess.queryRowContext(ctx, `
			SELECT id, name, description, story_id
			FROM tasks
			WHERE name = ?
		`, name)
		var err error
		task, err = scanTask(sess, row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", name, err)
	}
	return task, nil
}

// firstTask returns the lowest-id task of a story, or ErrNotFound.
func (s *Store) firstTask(ctx context.Context, storyID int64) (*Task, error) {
	var task *Task
	err := s.view(ctx, func(sess *Session) error {
		row := sess.queryRowContext(ctx, `
			SELECT id, name, description, story_id
			FROM tasks
			WHERE story_id = ?
			ORDER BY id ASC
			LIMIT 1
		`, storyID)
		var err error
		task, err = scanTask(sess, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// tasksForStory returns every task of a story ordered by id.
func (s *Store) tasksForStory(ctx context.Context, storyID int64) ([]*Task, error) {
	var tasks []*Task
	err := s.view(ctx, func(sess *Session) error {
		rows, err := sess.queryContext(ctx, `
			SELECT id, name, description, story_id
			FROM tasks
			WHERE story_id = ?
			ORDER BY id ASC
		`, storyID)
		if err != nil {
			return classify("query tasks", err)
		}
		defer rows.Close()

		for rows.Next() {
			task, err := scanTask(sess, rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
		}
		if err := rows.Err(); err != nil {
			return classify("iterate tasks", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tasks == nil {
		tasks = []*Task{}
	}
	return tasks, nil
}

// scanStory scans one row and passes the story through the load hook.
func scanStory(sess *Session, row rowScanner) (*Story, error) {
	var story Story
	if err := row.Scan(&story.ID, &story.Name, &story.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify("scan story", err)
	}
	return hydrate(sess, &story), nil
}

// scanTask scans one row and passes the task through the load hook.
func scanTask(sess *Session, row rowScanner) (*Task, error) {
	var task Task
	var storyID sql.NullInt64
	if err := row.Scan(&task.ID, &task.Name, &task.Description, &storyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify("scan task", err)
	}
	task.StoryID = storyID.Int64
	return hydrate(sess, &task), nil
}
