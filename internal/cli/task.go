package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/guardrails/internal/store"
)

// TaskOptions holds flags for the task subcommands.
type TaskOptions struct {
	*RootOptions
	Description string
}

// NewTaskCommand creates the task command group.
func NewTaskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TaskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	add := &cobra.Command{
		Use:   "add <story> <name>",
		Short: "Create a task under a story",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addTask(opts, cmd, args[0], args[1])
		},
	}
	add.Flags().StringVarP(&opts.Description, "description", "d", "", "task description")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "story <name>",
		Short: "Show the story a task belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return taskStory(opts, cmd, args[0])
		},
	})

	return cmd
}

func addTask(opts *TaskOptions, cmd *cobra.Command, storyName, name string) error {
	return opts.withStore(func(st *store.Store) error {
		story, err := st.StoryByName(cmd.Context(), storyName)
		if err != nil {
			return err
		}
		task, err := st.CreateTask(cmd.Context(), story.ID, name, opts.Description)
		if err != nil {
			return err
		}
		return opts.formatter(cmd).Success(task,
			fmt.Sprintf("Created task %s in story %s", taskLine(task), story.Name))
	})
}

func taskStory(opts *TaskOptions, cmd *cobra.Command, name string) error {
	return opts.withStore(func(st *store.Store) error {
		task, err := st.TaskByName(cmd.Context(), name)
		if err != nil {
			return err
		}
		story, err := task.Story(cmd.Context())
		if err != nil {
			return err
		}
		if story == nil {
			return fmt.Errorf("story of task %q: %w", task.Name, store.ErrNotFound)
		}
		return opts.formatter(cmd).Success(story, storyLine(story))
	})
}
