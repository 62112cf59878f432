package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/guardrails/internal/config"
	"github.com/roach88/guardrails/internal/convert"
	"github.com/roach88/guardrails/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	OpsDir     string

	// Config is loaded in PersistentPreRunE and available to every command.
	Config *config.Config

	// Registry is shared by every store the process opens.
	Registry *store.Registry

	// ConvertRunner replaces pandoc execution when set.
	ConvertRunner convert.Runner
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the guardrails CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Registry: store.NewRegistry()}
	return newRootCommand(opts)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guardrails",
		Short: "Guardrails Commander",
		Long:  "Manage guardrails stories and tasks, their question/answer documents, and outline conversion.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if err := opts.loadConfig(cmd); err != nil {
				return err
			}
			opts.setupLogging(cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultPath, "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.OpsDir, "ops-dir", "", "directory holding guardrails.db (overrides ops_dir)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewStoryCommand(opts))
	cmd.AddCommand(NewTaskCommand(opts))
	cmd.AddCommand(NewQuestionsCommand(opts))
	cmd.AddCommand(NewAnswersCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))

	return cmd
}

// Main runs the CLI with args and returns the process exit code. Errors are
// reported on stderr in the selected output format.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{Registry: store.NewRegistry()}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	format := opts.Format
	if !slices.Contains(ValidFormats, format) {
		format = "text"
	}
	formatter := &OutputFormatter{Format: format, Writer: stderr, Verbose: opts.Verbose}
	_ = formatter.Error(ErrorCode(err), err.Error(), nil)
	return GetExitCode(err)
}

// loadConfig reads the config file. An explicitly named file must exist;
// the default one is optional.
func (o *RootOptions) loadConfig(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		cfg, err = config.LoadOrDefault(o.ConfigPath)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", fmt.Errorf("%w: %w", errConfig, err))
	}
	if o.OpsDir != "" {
		cfg.OpsDir = o.OpsDir
	}
	o.Config = cfg
	return nil
}

// setupLogging installs the default slog handler on w.
func (o *RootOptions) setupLogging(w io.Writer) {
	level, err := config.ParseLevel(o.Config.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if o.Config.Logging.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore opens the store in the configured ops directory.
func (o *RootOptions) openStore() (*store.Store, error) {
	st, err := store.Open(o.Config.OpsDir,
		store.WithRegistry(o.Registry),
		store.WithBusyTimeout(o.Config.Store.BusyTimeout),
		store.WithLogger(slog.Default().With("component", "store")),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return st, nil
}

// withStore opens the store, runs fn and closes the store.
func (o *RootOptions) withStore(fn func(*store.Store) error) error {
	st, err := o.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()
	return fn(st)
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
