package harness_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yartsul/action"
	"github.com/roach88/yartsul/internal/demo"
	"github.com/roach88/yartsul/internal/demo/counter"
	"github.com/roach88/yartsul/internal/harness"
	"github.com/roach88/yartsul/internal/journal"
	"github.com/roach88/yartsul/reducer"
)

func recordScenario(t *testing.T, j *journal.Journal, file string) *harness.Result {
	t.Helper()
	sc, err := harness.LoadScenario(filepath.Join(scenarioDir, file))
	require.NoError(t, err)

	result, err := newHarness(t, harness.WithJournal(j)).Run(context.Background(), sc)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	return result
}

func TestReplay_Deterministic(t *testing.T) {
	for _, tt := range []struct{ file, model string }{
		{"counter_basics.yaml", "counter"},
		{"todo_lifecycle.yaml", "todo"},
	} {
		t.Run(tt.model, func(t *testing.T) {
			j := openJournal(t)
			result := recordScenario(t, j, tt.file)

			model, ok := demo.Lookup(tt.model)
			require.True(t, ok)

			res, err := harness.Replay(context.Background(), j, model, result.RunID)
			require.NoError(t, err)
			assert.True(t, res.Deterministic(), "divergence: %+v", res.Divergence)
			assert.Equal(t, len(result.Trace), res.Steps)
		})
	}
}

func TestReplay_DetectsDivergentModel(t *testing.T) {
	j := openJournal(t)
	result := recordScenario(t, j, "counter_basics.yaml")

	// Same name and actions, but add counts double.
	r := counter.NewReducer(counter.Initial())
	var doubled reducer.Reducer[counter.State] = func(s *counter.State, a action.Action) (*counter.State, error) {
		if n, ok := counter.Add.Match(a); ok {
			return &counter.State{Count: s.Count + 2*n}, nil
		}
		return r(s, a)
	}
	model := harness.Bind("counter", doubled, counter.Registry())

	res, err := harness.Replay(context.Background(), j, model, result.RunID)
	require.NoError(t, err)

	require.False(t, res.Deterministic())
	assert.Equal(t, int64(2), res.Divergence.Seq)
	assert.Equal(t, "add", res.Divergence.Tag)
	assert.Equal(t, "state differs", res.Divergence.Reason)
	assert.Equal(t, result.Trace[1].StateHash, res.Divergence.ExpectedHash)
	assert.NotEqual(t, res.Divergence.ExpectedHash, res.Divergence.ActualHash)
	assert.Equal(t, 2, res.Steps)
}

func TestReplay_DetectsChangedFlag(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	_, err := j.WriteRun(ctx, journal.Run{
		ID:           "forged",
		Scenario:     "forged",
		Model:        "counter",
		InitialState: json.RawMessage(`{"count":0}`),
	})
	require.NoError(t, err)
	require.NoError(t, j.WriteStep(ctx, journal.Step{
		RunID:      "forged",
		Seq:        1,
		DispatchID: "forged/1",
		Tag:        "noop",
		State:      json.RawMessage(`{"count":0}`),
		Changed:    true,
	}))

	model, _ := demo.Lookup("counter")
	res, err := harness.Replay(ctx, j, model, "forged")
	require.NoError(t, err)

	require.NotNil(t, res.Divergence)
	assert.Equal(t, "changed = false, recorded true", res.Divergence.Reason)
}

func TestReplay_InitialStateDiffers(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	_, err := j.WriteRun(ctx, journal.Run{
		ID:           "r",
		Scenario:     "s",
		Model:        "counter",
		InitialState: json.RawMessage(`{"count":10}`),
	})
	require.NoError(t, err)

	model, _ := demo.Lookup("counter")
	res, err := harness.Replay(ctx, j, model, "r")
	require.NoError(t, err)

	require.NotNil(t, res.Divergence)
	assert.Equal(t, int64(0), res.Divergence.Seq)
	assert.Equal(t, "initial state differs", res.Divergence.Reason)
}

func TestReplay_WrongModel(t *testing.T) {
	j := openJournal(t)
	result := recordScenario(t, j, "counter_basics.yaml")

	model, _ := demo.Lookup("todo")
	_, err := harness.Replay(context.Background(), j, model, result.RunID)
	assert.ErrorContains(t, err, `recorded with model "counter"`)
}

func TestReplay_UnknownRun(t *testing.T) {
	model, _ := demo.Lookup("counter")
	_, err := harness.Replay(context.Background(), openJournal(t), model, "nope")
	assert.ErrorIs(t, err, journal.ErrRunNotFound)
}
