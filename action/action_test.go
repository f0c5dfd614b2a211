package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answer struct {
	TheAnswer int `json:"the_answer"`
}

func TestDefineVoid_CreatesEmptyAction(t *testing.T) {
	def := DefineVoid("TEST_ACTION")

	assert.Equal(t, "TEST_ACTION", def.Tag())
	assert.Equal(t, Action{Tag: "TEST_ACTION", Payload: nil}, def.New())
	assert.True(t, def.Void())
}

func TestDefine_ExplicitVoidPayload(t *testing.T) {
	def := Define[Void]("TEST_ACTION")

	a := def.New(Void{})
	assert.Equal(t, "TEST_ACTION", a.Tag)
	assert.Equal(t, Void{}, a.Payload)
	assert.False(t, def.Void())
}

func TestDefine_CreatesActionWithPayload(t *testing.T) {
	payload := answer{TheAnswer: 42}
	def := Define[answer]("TEST_ACTION")

	assert.Equal(t, "TEST_ACTION", def.Tag())
	assert.Equal(t, Action{Tag: "TEST_ACTION", Payload: payload}, def.New(payload))
}

func TestDefine_InterfacePayload(t *testing.T) {
	def := Define[any]("TEST_ACTION")

	for _, payload := range []any{"foo", 42, true} {
		assert.Equal(t, Action{Tag: "TEST_ACTION", Payload: payload}, def.New(payload))
	}
}

func TestDefine_TagRoundTrip(t *testing.T) {
	tags := []string{"a", "counter/add", "TEST_ACTION", "with space", "ünïcödé"}
	for _, tag := range tags {
		t.Run(tag, func(t *testing.T) {
			assert.Equal(t, tag, Define[int](tag).New(1).Tag)
			assert.Equal(t, tag, DefineVoid(tag).New().Tag)
		})
	}
}

func TestIs(t *testing.T) {
	def := DefineVoid("TYPE_A")

	tests := []struct {
		name string
		in   Action
		want bool
	}{
		{"same tag", Action{Tag: "TYPE_A"}, true},
		{"same tag with extra payload", Action{Tag: "TYPE_A", Payload: map[string]any{"x": 1}}, true},
		{"different tag", Action{Tag: "TYPE_B"}, false},
		{"prefix", Action{Tag: "TYPE_"}, false},
		{"suffix", Action{Tag: "TYPE_AA"}, false},
		{"case differs", Action{Tag: "type_a"}, false},
		{"trailing space", Action{Tag: "TYPE_A "}, false},
		{"empty", Action{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, def.Is(tt.in))
		})
	}
}

func TestIs_DefinitionsSharingTagAcceptEachOther(t *testing.T) {
	a := Define[int]("shared")
	b := DefineVoid("shared")

	assert.True(t, a.Is(b.New()))
	assert.True(t, b.Is(a.New(1)))
}

func TestMatch_NarrowsPayload(t *testing.T) {
	add := Define[int]("add")

	n, ok := add.Match(add.New(7))
	require.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = add.Match(Action{Tag: "other", Payload: 7})
	assert.False(t, ok)

	_, ok = add.Match(Action{Tag: "add", Payload: "seven"})
	assert.False(t, ok, "payload of the wrong type must not narrow")
}

func TestDefinition_Decode(t *testing.T) {
	def := Define[answer]("answer")

	a, err := def.Decode([]byte(`{"the_answer":42}`))
	require.NoError(t, err)
	assert.Equal(t, Action{Tag: "answer", Payload: answer{TheAnswer: 42}}, a)

	_, err = def.Decode(nil)
	var pe *PayloadError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "answer", pe.Tag)

	_, err = def.Decode([]byte(`"not an object"`))
	require.ErrorAs(t, err, &pe)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestVoidDefinition_Decode(t *testing.T) {
	def := DefineVoid("ping")

	for _, raw := range []string{"", "null", "  null\n"} {
		a, err := def.Decode([]byte(raw))
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, def.New(), a)
	}

	_, err := def.Decode([]byte(`1`))
	var pe *PayloadError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "takes no payload")
}
