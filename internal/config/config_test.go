package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("YARTSUL_FORMAT", "")
	t.Setenv("YARTSUL_VERBOSE", "")
	t.Setenv("YARTSUL_DB", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Format: "text", Verbose: false, DBPath: ":memory:"}, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("YARTSUL_FORMAT", "json")
	t.Setenv("YARTSUL_VERBOSE", "true")
	t.Setenv("YARTSUL_DB", "/tmp/runs.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Format: "json", Verbose: true, DBPath: "/tmp/runs.db"}, cfg)
}

func TestLoad_InvalidFormat(t *testing.T) {
	t.Setenv("YARTSUL_FORMAT", "xml")

	_, err := Load()
	assert.ErrorContains(t, err, `invalid format "xml"`)
}

func TestParseEnv_Error(t *testing.T) {
	t.Setenv("YARTSUL_VERBOSE", "not-a-bool")

	var cfg Config
	err := ParseEnv(&cfg)
	assert.ErrorContains(t, err, "parse env:")
}
