package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/guardrails/internal/convert"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Root string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert outline files to markdown with pandoc",
		Long: `Convert every *.org file in the configured directories to a sibling
markdown file, running pandoc once per file.

Example:
  guardrails convert --root ./docs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Root, "root", "", "directory the configured dirs are relative to")

	return cmd
}

func runConvert(opts *ConvertOptions, cmd *cobra.Command) error {
	cfg := opts.Config.Convert
	root := cfg.Root
	if opts.Root != "" {
		root = opts.Root
	}

	runner := opts.ConvertRunner
	if runner == nil {
		runner = convert.ExecRunner{Stdout: cmd.ErrOrStderr(), Stderr: cmd.ErrOrStderr()}
	}

	c := &convert.Converter{
		Root:   root,
		Dirs:   cfg.Dirs,
		Pandoc: cfg.Pandoc,
		Runner: runner,
		Logger: slog.Default().With("component", "convert"),
	}

	result, err := c.Run(cmd.Context())

	lines := make([]string, 0, len(result.Converted)+1)
	for _, out := range result.Converted {
		lines = append(lines, "wrote "+out)
	}
	lines = append(lines, fmt.Sprintf("%d converted, %d failed", len(result.Converted), len(result.Failed)))
	if outErr := opts.formatter(cmd).Success(result, lines...); outErr != nil {
		return outErr
	}

	if err != nil {
		return fmt.Errorf("%w: %w", errConvertFailed, err)
	}
	return nil
}
