package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/guardrails/internal/questions"
	"github.com/roach88/guardrails/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failed (duplicate name, missing record, invalid answers...)
	ExitCommandError = 2 // Command error (bad flags, config, store unavailable)
)

// Error codes reported in CLI error output.
const (
	ErrCodeGeneric            = "E001" // Generic/unknown error
	ErrCodeConfig             = "E002" // Config file unreadable or invalid
	ErrCodeStorageUnavailable = "E010" // Database cannot be opened or is locked
	ErrCodeSchemaBootstrap    = "E011" // Schema creation failed
	ErrCodeNotFound           = "E012" // Story or task not found
	ErrCodeDuplicateName      = "E013" // Name already taken
	ErrCodeInvalidName        = "E014" // Empty name
	ErrCodeDetachedRecord     = "E015" // Navigation on a detached record
	ErrCodeInvalidAnswers     = "E020" // QandA document failed validation
	ErrCodeUnknownType        = "E021" // No question template for type
	ErrCodeConvertFailed      = "E030" // One or more outline conversions failed
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode maps an error to the code shown in CLI output.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrStorageUnavailable):
		return ErrCodeStorageUnavailable
	case errors.Is(err, store.ErrSchemaBootstrap):
		return ErrCodeSchemaBootstrap
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, store.ErrDuplicateName):
		return ErrCodeDuplicateName
	case errors.Is(err, store.ErrInvalidName):
		return ErrCodeInvalidName
	case errors.Is(err, store.ErrDetachedRecord):
		return ErrCodeDetachedRecord
	case errors.Is(err, questions.ErrInvalidAnswers):
		return ErrCodeInvalidAnswers
	case errors.Is(err, questions.ErrUnknownType):
		return ErrCodeUnknownType
	case errors.Is(err, errConvertFailed):
		return ErrCodeConvertFailed
	case errors.Is(err, errConfig):
		return ErrCodeConfig
	}
	return ErrCodeGeneric
}

var (
	errConvertFailed = errors.New("conversion failed")
	errConfig        = errors.New("config error")
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E010", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. In text
// mode, text is printed instead of data when it is non-empty.
func (f *OutputFormatter) Success(data any, text ...string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if len(text) > 0 {
		for _, line := range text {
			fmt.Fprintln(f.Writer, line)
		}
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
