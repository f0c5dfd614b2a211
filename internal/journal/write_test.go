package journal

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yartsul/internal/canonical"
)

func TestWriteRun_AssignsSeqAndHash(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	first := writeTestRun(t, j, "run-a")
	second := writeTestRun(t, j, "run-b")

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)

	want, err := canonical.StateHash(map[string]int{"count": 0})
	require.NoError(t, err)
	assert.Equal(t, want, first.InitialHash)

	got, err := j.ReadRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestWriteRun_CanonicalizesState(t *testing.T) {
	j := createTestJournal(t)

	run, err := j.WriteRun(context.Background(), Run{
		ID:           "r",
		Scenario:     "s",
		Model:        "m",
		InitialState: json.RawMessage(`{ "b": 1, "a": [true, null] }`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[true,null],"b":1}`, string(run.InitialState))
	assert.Equal(t, `{"a":[true,null],"b":1}`, string(run.InitialState))
}

func TestWriteRun_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	first := writeTestRun(t, j, "run-a")

	again, err := j.WriteRun(ctx, Run{
		ID:           "run-a",
		Scenario:     "other",
		Model:        "other",
		InitialState: json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, first, again)

	runs, err := j.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestCreateRun_RejectsExistingID(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	first := writeTestRun(t, j, "run-a")

	_, err := j.CreateRun(ctx, Run{
		ID:           "run-a",
		Scenario:     "other",
		Model:        "other",
		InitialState: json.RawMessage(`{}`),
	})
	require.ErrorIs(t, err, ErrRunExists)

	got, err := j.ReadRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	created, err := j.CreateRun(ctx, Run{ID: "run-b", Scenario: "s", Model: "m", InitialState: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.Seq)
}

func TestWriteRun_InvalidState(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.WriteRun(context.Background(), Run{ID: "r", InitialState: json.RawMessage(`{`)})
	assert.ErrorContains(t, err, "initial state")
}

func TestWriteStep_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	writeTestRun(t, j, "run-a")

	step := testStep("run-a", 1, "increment", `{"count":1}`)
	require.NoError(t, j.WriteStep(ctx, step))
	require.NoError(t, j.WriteStep(ctx, step))

	steps, err := j.ReadSteps(ctx, "run-a")
	require.NoError(t, err)
	assert.Len(t, steps, 1)
}

func TestWriteStep_RequiresRun(t *testing.T) {
	j := createTestJournal(t)

	err := j.WriteStep(context.Background(), testStep("missing", 1, "increment", `{}`))
	assert.Error(t, err)
}

func TestWriteStep_PayloadAndHash(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	writeTestRun(t, j, "run-a")

	step := testStep("run-a", 1, "add", `{"count":2}`)
	step.Payload = json.RawMessage(`2`)
	require.NoError(t, j.WriteStep(ctx, step))

	steps, err := j.ReadSteps(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, steps, 1)

	assert.Equal(t, `2`, string(steps[0].Payload))
	want, err := canonical.StateHash(map[string]int{"count": 2})
	require.NoError(t, err)
	assert.Equal(t, want, steps[0].StateHash)
}
