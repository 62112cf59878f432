// Package convert turns outline (org) files into markdown by running pandoc
// once per file. Each input gets a sibling .md output.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts name with args and waits for it to exit.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

// Converter converts every *.org file found directly under Root/<dir> for
// each of Dirs. Missing directories are skipped.
type Converter struct {
	Root   string
	Dirs   []string
	Pandoc string // defaults to "pandoc"
	Runner Runner // defaults to ExecRunner with no output
	Logger *slog.Logger
}

// Result lists the outputs written and the inputs that failed.
type Result struct {
	Converted []string `json:"converted"`
	Failed    []string `json:"failed"`
}

// Files returns the outline files to convert, grouped by directory in Dirs
// order and sorted within each directory.
func (c *Converter) Files() ([]string, error) {
	var files []string
	for _, dir := range c.Dirs {
		matches, err := filepath.Glob(filepath.Join(c.Root, dir, "*.org"))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// Args returns the pandoc arguments converting in to out.
func Args(in, out string) []string {
	return []string{
		"--wrap=none",
		"-s",
		"-f", "org",
		"-t", "markdown+yaml_metadata_block",
		in,
		"-o", out,
	}
}

// OutputPath is in with its extension replaced by .md.
func OutputPath(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".md"
}

// Run converts every file returned by Files. A failing file does not stop
// the run; all failures are joined into the returned error.
func (c *Converter) Run(ctx context.Context) (Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default().With("component", "convert")
	}
	pandoc := c.Pandoc
	if pandoc == "" {
		pandoc = "pandoc"
	}
	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	result := Result{Converted: []string{}, Failed: []string{}}

	files, err := c.Files()
	if err != nil {
		return result, err
	}

	var errs []error
	for _, in := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		out := OutputPath(in)
		logger.Debug("converting", "input", in, "output", out)
		if err := runner.Run(ctx, pandoc, Args(in, out)...); err != nil {
			logger.Warn("conversion failed", "input", in, "error", err)
			result.Failed = append(result.Failed, in)
			errs = append(errs, fmt.Errorf("convert %s: %w", in, err))
			continue
		}
		result.Converted = append(result.Converted, out)
	}

	logger.Info("conversion finished", "converted", len(result.Converted), "failed", len(result.Failed))
	return result, errors.Join(errs...)
}
