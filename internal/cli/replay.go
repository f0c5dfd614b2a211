package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/yartsul/internal/demo"
	"github.com/roach88/yartsul/internal/harness"
	"github.com/roach88/yartsul/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplaySummary is the outcome of a replay command.
type ReplaySummary struct {
	Runs             []*harness.ReplayResult `json:"runs"`
	TotalRuns        int                     `json:"total_runs"`
	AllDeterministic bool                    `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Replay journaled runs and verify determinism",
		Long: `Re-dispatch the recorded actions of a run through the model it was
recorded with and compare every state hash against the journal.

Without a run ID every run in the journal is replayed.

Exit codes:
  0 - All replays matched the journal
  1 - A replay diverged
  2 - Command error (journal or run not found, unknown model, etc.)

Examples:
  yartsul replay --db ./runs.db
  yartsul replay --db ./runs.db run-counter --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.DBPath, "journal database path")

	return cmd
}

func runReplay(opts *ReplayOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	j, err := openExistingJournal(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	runIDs, err := replayTargets(ctx, j, args)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summary := ReplaySummary{
		Runs:             make([]*harness.ReplayResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}
	for _, id := range runIDs {
		res, err := replayRun(ctx, j, id)
		if err != nil {
			code := ErrCodeGeneric
			if errors.Is(err, journal.ErrRunNotFound) {
				code = ErrCodeNotFound
			}
			_ = formatter.Error(code, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}
		formatter.VerboseLog("Replayed %s: %d step(s)", id, res.Steps)
		summary.Runs = append(summary.Runs, res)
		if !res.Deterministic() {
			summary.AllDeterministic = false
		}
	}

	if formatter.JSON() {
		if summary.AllDeterministic {
			return formatter.Success(summary)
		}
		if err := formatter.Fail(ErrCodeNonDeterminism, "determinism verification failed", summary); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return outputReplayText(formatter, summary)
}

func replayTargets(ctx context.Context, j *journal.Journal, args []string) ([]string, error) {
	if len(args) == 1 {
		return args, nil
	}
	runs, err := j.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids, nil
}

func replayRun(ctx context.Context, j *journal.Journal, runID string) (*harness.ReplayResult, error) {
	run, err := j.ReadRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	model, ok := demo.Lookup(run.Model)
	if !ok {
		return nil, fmt.Errorf("run %s uses unknown model %q", runID, run.Model)
	}
	return harness.Replay(ctx, j, model, runID)
}

func outputReplayText(f *OutputFormatter, summary ReplaySummary) error {
	w := f.Writer
	if summary.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in journal.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n\n", summary.TotalRuns)
	for _, res := range summary.Runs {
		if res.Deterministic() {
			fmt.Fprintf(w, "✓ Run: %s (%s, %d steps)\n", res.RunID, res.Model, res.Steps)
			continue
		}
		d := res.Divergence
		fmt.Fprintf(w, "✗ Run: %s (%s)\n", res.RunID, res.Model)
		if d.Seq == 0 {
			fmt.Fprintf(w, "  diverged at initial state: %s\n", d.Reason)
		} else {
			fmt.Fprintf(w, "  diverged at step %d (%s): %s\n", d.Seq, d.Tag, d.Reason)
		}
		if d.ExpectedHash != "" {
			f.VerboseLog("  expected %s, got %s", d.ExpectedHash, d.ActualHash)
		}
	}
	fmt.Fprintln(w)

	if summary.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
		return nil
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
