package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/guardrails/internal/store"
)

// StoryOptions holds flags for the story subcommands.
type StoryOptions struct {
	*RootOptions
	Description string
	All         bool
}

// NewStoryCommand creates the story command group.
func NewStoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage stories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listStories(opts, cmd)
		},
	})

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addStory(opts, cmd, args[0])
		},
	}
	add.Flags().StringVarP(&opts.Description, "description", "d", "", "story description")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a story and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteStory(opts, cmd, args[0])
		},
	})

	tasks := &cobra.Command{
		Use:   "tasks <name>",
		Short: "Show the first task of a story",
		Long: `Show the first task (lowest id) of a story.

Only the first task is shown unless --all is given.

Example:
  guardrails story tasks S1
  guardrails story tasks S1 --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storyTasks(opts, cmd, args[0])
		},
	}
	tasks.Flags().BoolVar(&opts.All, "all", false, "list every task of the story")
	cmd.AddCommand(tasks)

	return cmd
}

func listStories(opts *StoryOptions, cmd *cobra.Command) error {
	return opts.withStore(func(st *store.Store) error {
		stories, err := st.ListStories(cmd.Context())
		if err != nil {
			return err
		}

		lines := make([]string, 0, len(stories))
		for _, s := range stories {
			lines = append(lines, storyLine(s))
		}
		if len(lines) == 0 {
			lines = append(lines, "No stories.")
		}
		return opts.formatter(cmd).Success(stories, lines...)
	})
}

func addStory(opts *StoryOptions, cmd *cobra.Command, name string) error {
	return opts.withStore(func(st *store.Store) error {
		story, err := st.CreateStory(cmd.Context(), name, opts.Description)
		if err != nil {
			return err
		}
		return opts.formatter(cmd).Success(story, "Created story "+storyLine(story))
	})
}

func deleteStory(opts *StoryOptions, cmd *cobra.Command, name string) error {
	return opts.withStore(func(st *store.Store) error {
		story, err := st.StoryByName(cmd.Context(), name)
		if err != nil {
			return err
		}
		if err := st.DeleteStory(cmd.Context(), story.ID); err != nil {
			return err
		}
		return opts.formatter(cmd).Success(story, "Deleted story "+story.Name)
	})
}

func storyTasks(opts *StoryOptions, cmd *cobra.Command, name string) error {
	return opts.withStore(func(st *store.Store) error {
		story, err := st.StoryByName(cmd.Context(), name)
		if err != nil {
			return err
		}

		var tasks []*store.Task
		if opts.All {
			tasks, err = story.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
		} else {
			first, err := story.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			if first != nil {
				tasks = append(tasks, first)
			}
		}

		if tasks == nil {
			tasks = []*store.Task{}
		}
		lines := make([]string, 0, len(tasks))
		for _, t := range tasks {
			lines = append(lines, taskLine(t))
		}
		if len(lines) == 0 {
			lines = append(lines, fmt.Sprintf("Story %s has no tasks.", story.Name))
		}
		return opts.formatter(cmd).Success(tasks, lines...)
	})
}

func storyLine(s *store.Story) string {
	return strings.TrimRight(fmt.Sprintf("%d\t%s\t%s", s.ID, s.Name, s.Description), "\t")
}

func taskLine(t *store.Task) string {
	return strings.TrimRight(fmt.Sprintf("%d\t%s\t%s", t.ID, t.Name, t.Description), "\t")
}
