package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/guardrails/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the ops directory and database",
		Long: `Create the ops directory (if missing) and the guardrails database in it.

Running init against an existing database leaves it unchanged.

Example:
  guardrails init --ops-dir ./ops`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	if err := os.MkdirAll(opts.Config.OpsDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create ops directory",
			fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err))
	}

	return opts.withStore(func(st *store.Store) error {
		return opts.formatter(cmd).Success(
			map[string]string{"path": st.Path()},
			fmt.Sprintf("Initialized %s", st.Path()),
		)
	})
}
