package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/yartsul/internal/canonical"
	"github.com/roach88/yartsul/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Tag      string // optional - only steps with this tag
}

// TraceResult is a journaled run with its steps.
type TraceResult struct {
	Run   journal.Run    `json:"run"`
	Steps []journal.Step `json:"steps"`
	Stats TraceStats     `json:"stats"`
}

// TraceStats summarises a run.
type TraceStats struct {
	TotalSteps int `json:"total_steps"`
	Changed    int `json:"changed"`
	Unchanged  int `json:"unchanged"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "List journaled runs or show one run's steps",
		Long: `Without a run ID, list every run in the journal in the order they
were recorded. With a run ID, print the run's initial state and each
dispatched action with the state it produced.

Examples:
  yartsul trace --db ./runs.db
  yartsul trace --db ./runs.db run-counter
  yartsul trace --db ./runs.db run-todo --tag todo/toggle --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.DBPath, "journal database path")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "only show steps with this action tag")

	return cmd
}

func runTrace(opts *TraceOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	j, err := openExistingJournal(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	if len(args) == 0 {
		return listRuns(ctx, formatter, j)
	}
	return showRun(ctx, formatter, j, args[0], opts.Tag)
}

// openExistingJournal opens a journal file that must already exist.
func openExistingJournal(f *OutputFormatter, path string) (*journal.Journal, error) {
	if err := requireFileDB(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), nil)
		return nil, WrapExitError(ExitCommandError, "journal not found", err)
	}
	j, err := journal.Open(path)
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

func listRuns(ctx context.Context, f *OutputFormatter, j *journal.Journal) error {
	runs, err := j.ListRuns(ctx)
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if f.JSON() {
		if runs == nil {
			runs = []journal.RunSummary{}
		}
		return f.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs found in journal.")
		return nil
	}
	fmt.Fprintf(f.Writer, "Runs: %d\n\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(f.Writer, "  %s  %s (%s, %d steps)\n", truncateID(r.ID), r.Scenario, r.Model, r.Steps)
		f.VerboseLog("    id: %s", r.ID)
	}
	return nil
}

func showRun(ctx context.Context, f *OutputFormatter, j *journal.Journal, runID, tag string) error {
	run, err := j.ReadRun(ctx, runID)
	if errors.Is(err, journal.ErrRunNotFound) {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	steps, err := j.ReadSteps(ctx, runID)
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := TraceResult{Run: run, Steps: filterSteps(steps, tag)}
	for _, s := range result.Steps {
		if s.Changed {
			result.Stats.Changed++
		} else {
			result.Stats.Unchanged++
		}
	}
	result.Stats.TotalSteps = len(result.Steps)

	if f.JSON() {
		return f.Success(result)
	}
	return outputTraceText(f, result)
}

func filterSteps(steps []journal.Step, tag string) []journal.Step {
	if tag == "" {
		return steps
	}
	out := []journal.Step{}
	for _, s := range steps {
		if s.Tag == tag {
			out = append(out, s)
		}
	}
	return out
}

func outputTraceText(f *OutputFormatter, result TraceResult) error {
	w := f.Writer
	run := result.Run

	fmt.Fprintf(w, "Trace for Run: %s\n", run.ID)
	fmt.Fprintf(w, "Scenario: %s  Model: %s\n", run.Scenario, run.Model)
	fmt.Fprintf(w, "Initial: %s\n", compactJSON(run.InitialState))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Steps ===")
	if len(result.Steps) == 0 {
		fmt.Fprintln(w, "  (no steps)")
	}
	for _, s := range result.Steps {
		line := fmt.Sprintf("  [%d] %s", s.Seq, s.Tag)
		if s.Payload != nil {
			line += " " + compactJSON(s.Payload)
		}
		if s.Changed {
			line += " -> " + compactJSON(s.State)
		} else {
			line += " (unchanged)"
		}
		fmt.Fprintln(w, line)
		f.VerboseLog("       dispatch: %s hash: %s", s.DispatchID, truncateID(s.StateHash))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Steps:     %d\n", result.Stats.TotalSteps)
	fmt.Fprintf(w, "  Changed:   %d\n", result.Stats.Changed)
	fmt.Fprintf(w, "  Unchanged: %d\n", result.Stats.Unchanged)
	return nil
}

// compactJSON renders journal JSON on one line in canonical form.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	out, err := canonical.Canonicalize(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// truncateID shortens long IDs and hashes for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
