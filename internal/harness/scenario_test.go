package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: basic
description: "A basic scenario"
model: counter
catalog: counter.cue
steps:
  - dispatch: increment
  - dispatch: add
    payload: 2
    expect: { count: 3 }
  - dispatch: noop
    expect_unchanged: true
assertions:
  - type: final_state
    state: { count: 3 }
  - type: trace_count
    tag: add
    count: 1
`)

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "basic", sc.Name)
	assert.Equal(t, "counter", sc.Model)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, 2, sc.Steps[1].Payload)
	assert.Equal(t, map[string]any{"count": 3}, sc.Steps[1].Expect)
	assert.True(t, sc.Steps[2].ExpectUnchanged)
	assert.Len(t, sc.Assertions, 2)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "counter.cue"), sc.CatalogPath())
}

func TestLoadScenario_NotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: d
model: counter
step:
  - dispatch: increment
`))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nmodel: m\nsteps: [{dispatch: a}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nmodel: m\nsteps: [{dispatch: a}]",
			wantErr: "description is required",
		},
		{
			name:    "missing model",
			yaml:    "name: n\ndescription: d\nsteps: [{dispatch: a}]",
			wantErr: "model is required",
		},
		{
			name:    "no steps",
			yaml:    "name: n\ndescription: d\nmodel: m",
			wantErr: "steps list is required",
		},
		{
			name:    "empty dispatch",
			yaml:    "name: n\ndescription: d\nmodel: m\nsteps: [{payload: 1}]",
			wantErr: "steps[0]: dispatch is required",
		},
		{
			name:    "conflicting expectations",
			yaml:    "name: n\ndescription: d\nmodel: m\nsteps: [{dispatch: a, expect_unchanged: true, expect: {x: 1}}]",
			wantErr: "mutually exclusive",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nmodel: m\nsteps: [{dispatch: a}]\nassertions: [{type: magic}]",
			wantErr: `unknown assertion type "magic"`,
		},
		{
			name:    "final_state without state",
			yaml:    "name: n\ndescription: d\nmodel: m\nsteps: [{dispatch: a}]\nassertions: [{type: final_state}]",
			wantErr: "state is required",
		},
		{
			name:    "trace_count without tag",
			yaml:    "name: n\ndescription: d\nmodel: m\nsteps: [{dispatch: a}]\nassertions: [{type: trace_count, count: 1}]",
			wantErr: "tag is required for trace_count",
		},
		{
			name:    "negative count",
			yaml:    "name: n\ndescription: d\nmodel: m\nsteps: [{dispatch: a}]\nassertions: [{type: trace_count, tag: a, count: -1}]",
			wantErr: "count must be non-negative",
		},
		{
			name:    "trace_order without tags",
			yaml:    "name: n\ndescription: d\nmodel: m\nsteps: [{dispatch: a}]\nassertions: [{type: trace_order}]",
			wantErr: "tags list is required",
		},
		{
			name:    "unchanged without tag",
			yaml:    "name: n\ndescription: d\nmodel: m\nsteps: [{dispatch: a}]\nassertions: [{type: unchanged}]",
			wantErr: "tag is required for unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogPath(t *testing.T) {
	assert.Equal(t, "", (&Scenario{}).CatalogPath())
	assert.Equal(t, "/abs/c.cue", (&Scenario{Catalog: "/abs/c.cue", dir: "x"}).CatalogPath())
	assert.Equal(t, filepath.Join("dir", "c.cue"), (&Scenario{Catalog: "c.cue", dir: "dir"}).CatalogPath())
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", filepath.Join("sub", "c.yaml")} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
	single := filepath.Join(dir, "notes.txt")

	got, err := FindScenarios(dir, single)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yaml"),
		single,
	}, got)
}

func TestFindScenarios_Missing(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "nope"))

	var nf *ScenarioNotFoundError
	assert.ErrorAs(t, err, &nf)
}
