package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestJournal opens a journal in a temp directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func writeTestRun(t *testing.T, j *Journal, id string) Run {
	t.Helper()
	run, err := j.WriteRun(context.Background(), Run{
		ID:           id,
		Scenario:     "counter_basics",
		Model:        "counter",
		InitialState: json.RawMessage(`{"count":0}`),
	})
	require.NoError(t, err)
	return run
}

func testStep(runID string, seq int64, tag, state string) Step {
	return Step{
		RunID:      runID,
		Seq:        seq,
		DispatchID: fmt.Sprintf("%s/%d", runID, seq),
		Tag:        tag,
		State:      json.RawMessage(state),
		Changed:    true,
	}
}
