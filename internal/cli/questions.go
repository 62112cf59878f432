package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/guardrails/internal/questions"
	"github.com/roach88/guardrails/internal/store"
)

// DocOptions holds the --story/--task type selection shared by the
// questions and answers commands.
type DocOptions struct {
	*RootOptions
	StoryType string
	TaskType  string
	For       string // questions: story a task pattern is filed under
	Output    string // questions: write the document here instead of stdout
}

// kindAndType returns the selected record kind and type.
func (o *DocOptions) kindAndType() (questions.Kind, string) {
	if o.TaskType != "" {
		return questions.KindTask, o.TaskType
	}
	return questions.KindStory, o.StoryType
}

func addTypeFlags(cmd *cobra.Command, opts *DocOptions) {
	cmd.Flags().StringVarP(&opts.StoryType, "story", "s", "",
		"story type: study | pathfinder | forming | compliance | user")
	cmd.Flags().StringVarP(&opts.TaskType, "task", "t", "",
		"task type: step | review | handoff")
	cmd.MarkFlagsMutuallyExclusive("story", "task")
	cmd.MarkFlagsOneRequired("story", "task")
}

// NewQuestionsCommand creates the questions command.
func NewQuestionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Produce a JSON document detailing the question pattern",
		Long: `Produce the JSON question document for a story or task type.

Fill in the "answer" fields and pass the file to "guardrails answers".

Examples:
  guardrails questions --story study
  guardrails questions --task review --for S1 -o review.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuestions(opts, cmd)
		},
	}
	addTypeFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.For, "for", "", "story the task will belong to")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to a file")

	return cmd
}

func runQuestions(opts *DocOptions, cmd *cobra.Command) error {
	kind, typ := opts.kindAndType()
	doc, err := questions.Pattern(kind, typ, opts.For)
	if err != nil {
		return err
	}

	data, err := questions.Marshal(doc)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write question document", err)
		}
		return opts.formatter(cmd).Success(
			map[string]string{"path": opts.Output},
			fmt.Sprintf("Wrote %s %s questions to %s", typ, kind, opts.Output),
		)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(doc)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// AnswersResult is the JSON payload of the answers command.
type AnswersResult struct {
	Story      *store.Story `json:"story,omitempty"`
	Task       *store.Task  `json:"task,omitempty"`
	ProcessDoc string       `json:"process_doc"`
}

// NewAnswersCommand creates the answers command.
func NewAnswersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "answers <file>",
		Short: "Load a JSON QandA file and produce a process doc",
		Long: `Load an answered question document, record it in the store and write
a markdown process document to the ops directory.

With --story the document creates a story. With --task it creates a task
under the story named in the document's "story" field.

Examples:
  guardrails answers study.json --story study
  guardrails answers review.json --task review`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnswers(opts, cmd, args[0])
		},
	}
	addTypeFlags(cmd, opts)

	return cmd
}

func runAnswers(opts *DocOptions, cmd *cobra.Command, path string) error {
	doc, err := questions.LoadAnswers(path)
	if err != nil {
		return err
	}

	out := opts.formatter(cmd)
	out.VerboseLog("Loaded %s %s answers from %s", doc.Type, doc.Kind, path)

	kind, typ := opts.kindAndType()
	if doc.Kind != kind || doc.Type != typ {
		return fmt.Errorf("%w: document is a %s %s, expected %s %s",
			questions.ErrInvalidAnswers, doc.Type, doc.Kind, typ, kind)
	}

	rendered, err := questions.RenderProcessDoc(doc)
	if err != nil {
		return err
	}

	return opts.withStore(func(st *store.Store) error {
		ctx := cmd.Context()
		result := AnswersResult{
			ProcessDoc: filepath.Join(opts.Config.OpsDir, questions.FileName(doc)),
		}

		if kind == questions.KindTask {
			story, err := st.StoryByName(ctx, doc.Story)
			if err != nil {
				return err
			}
			result.Task, err = st.CreateTask(ctx, story.ID, doc.Name(), doc.Description())
			if err != nil {
				return err
			}
		} else {
			result.Story, err = st.CreateStory(ctx, doc.Name(), doc.Description())
			if err != nil {
				return err
			}
		}

		if err := os.WriteFile(result.ProcessDoc, rendered, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write process document", err)
		}

		return out.Success(result,
			fmt.Sprintf("Recorded %s %s %q", typ, kind, doc.Name()),
			"Process document: "+result.ProcessDoc,
		)
	})
}
