package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var (
	scenariosDir = filepath.Join("..", "..", "testdata", "scenarios")
	catalogsDir  = filepath.Join("..", "..", "testdata", "catalogs")
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// recordRuns runs the demo scenarios into a fresh journal file and
// returns its path.
func recordRuns(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	_, err := execute(cmd, "--db", dbPath, scenariosDir)
	require.NoError(t, err)
	return dbPath
}
