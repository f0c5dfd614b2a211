package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateHash_Deterministic(t *testing.T) {
	a, err := StateHash(map[string]int{"x": 1, "y": 2})
	require.NoError(t, err)
	b, err := StateHash(map[string]int{"y": 2, "x": 1})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestStateHash_MatchesDomainFormula(t *testing.T) {
	got, err := StateHash(map[string]int{"count": 3})
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("yartsul/state/v1\x00" + `{"count":3}`))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
	assert.Equal(t, got, StateHashCanonical([]byte(`{"count":3}`)))
}

func TestHash_DomainSeparation(t *testing.T) {
	s, err := StateHash(2)
	require.NoError(t, err)
	p, err := PayloadHash(2)
	require.NoError(t, err)

	assert.NotEqual(t, s, p)
}

func TestPayloadHash_Error(t *testing.T) {
	_, err := PayloadHash(func() {})
	assert.ErrorContains(t, err, "PayloadHash")
}
