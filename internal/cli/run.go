package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/yartsul/internal/demo"
	"github.com/roach88/yartsul/internal/harness"
	"github.com/roach88/yartsul/internal/journal"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Filter   string // glob matched against scenario file names

	// IDGenerator overrides the run ID source. Nil means UUIDv7.
	IDGenerator harness.IDGenerator
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Model  string   `json:"model,omitempty"`
	RunID  string   `json:"run_id,omitempty"`
	Pass   bool     `json:"pass"`
	Steps  int      `json:"steps"`
	Final  any      `json:"final,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// RunSummary is the outcome of a run command.
type RunSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml|dir>...",
		Short: "Run reducer scenarios",
		Long: `Run scenario files against the built-in models.

Each scenario dispatches its steps through the model's reducer, checks the
per-step expectations and the final assertions, and records every step in
the journal.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing paths, unreadable journal, etc.)

Examples:
  yartsul run ./testdata/scenarios
  yartsul run --db ./runs.db counter_basics.yaml
  yartsul run ./scenarios --filter "todo_*" --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", opts.DBPath, "journal database path (:memory: for none)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	files, err := harness.FindScenarios(paths...)
	if err != nil {
		var nf *harness.ScenarioNotFoundError
		if errors.As(err, &nf) {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "scenario not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	files, err = filterScenarios(files, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = ":memory:"
	}
	j, err := journal.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	hopts := []harness.Option{
		harness.WithJournal(j),
		harness.WithLogger(newLogger(cmd.ErrOrStderr(), opts.Verbose)),
	}
	if opts.IDGenerator != nil {
		hopts = append(hopts, harness.WithIDGenerator(opts.IDGenerator))
	}
	h, err := harness.New(demo.Models(), hopts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create harness", err)
	}

	summary := RunSummary{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		res := runScenario(cmd, h, file)
		if res.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.Scenarios = append(summary.Scenarios, res)
		if !formatter.JSON() {
			printScenarioResult(formatter, res)
		}
	}

	return outputRunSummary(formatter, summary)
}

func runScenario(cmd *cobra.Command, h *harness.Harness, file string) ScenarioResult {
	sc, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
			File:   file,
			Errors: []string{fmt.Sprintf("load scenario: %v", err)},
		}
	}

	out := ScenarioResult{Name: sc.Name, File: file, Model: sc.Model}
	result, err := h.Run(cmd.Context(), sc)
	if err != nil {
		out.Errors = []string{err.Error()}
		return out
	}

	out.RunID = result.RunID
	out.Pass = result.Pass
	out.Steps = len(result.Trace)
	out.Errors = result.Errors
	if len(result.Final) > 0 {
		out.Final = result.Final
	}
	return out
}

func filterScenarios(files []string, pattern string) ([]string, error) {
	if pattern == "" {
		return files, nil
	}
	var out []string
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func printScenarioResult(f *OutputFormatter, res ScenarioResult) {
	if res.Pass {
		fmt.Fprintf(f.Writer, "✓ %s (%d steps)\n", res.Name, res.Steps)
		f.VerboseLog("  run %s", res.RunID)
		return
	}
	fmt.Fprintf(f.Writer, "✗ %s\n", res.Name)
	for _, e := range res.Errors {
		for _, line := range strings.Split(e, "\n") {
			fmt.Fprintf(f.Writer, "  %s\n", line)
		}
	}
}

func outputRunSummary(f *OutputFormatter, summary RunSummary) error {
	if summary.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", summary.Failed)
		if f.JSON() {
			if err := f.Fail(ErrCodeFailed, msg, summary); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(f.Writer, "\nSummary: %d passed, %d failed, %d total\n",
				summary.Passed, summary.Failed, summary.Total)
		}
		return NewExitError(ExitFailure, msg)
	}

	if f.JSON() {
		return f.Success(summary)
	}
	if summary.Total == 0 {
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return nil
	}
	fmt.Fprintf(f.Writer, "\nSummary: %d passed, %d failed, %d total\n",
		summary.Passed, summary.Failed, summary.Total)
	fmt.Fprintln(f.Writer, "✓ All scenarios passed")
	return nil
}
