package action

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Action is a tagged value optionally carrying a payload.
//
// Actions built by a Definition carry a payload of the definition's static
// type. Actions arriving from elsewhere (a store, a file, the journal) may
// carry anything; only Tag is consulted when routing them.
type Action struct {
	Tag     string `json:"tag"`
	Payload any    `json:"payload,omitempty"`
}

// Void stands in for "no payload" in generic code.
type Void = struct{}

// Definition declares an action kind whose actions carry a payload of type P.
type Definition[P any] struct {
	tag string
}

// Define creates a Definition for tag with payload type P.
func Define[P any](tag string) Definition[P] {
	return Definition[P]{tag: tag}
}

// Tag returns the definition's tag.
func (d Definition[P]) Tag() string {
	return d.tag
}

// New creates an action of this kind carrying payload.
func (d Definition[P]) New(payload P) Action {
	return Action{Tag: d.tag, Payload: payload}
}

// Is reports whether a has this definition's tag.
// Only the tag is compared; the payload is not inspected.
func (d Definition[P]) Is(a Action) bool {
	return a.Tag == d.tag
}

// Match narrows a to this definition's payload type.
// It returns false if the tag differs or the payload is not a P.
func (d Definition[P]) Match(a Action) (P, bool) {
	var zero P
	if !d.Is(a) {
		return zero, false
	}
	p, ok := a.Payload.(P)
	if !ok {
		return zero, false
	}
	return p, true
}

// Void reports whether actions of this kind carry no payload.
func (d Definition[P]) Void() bool {
	return false
}

// Decode builds an action of this kind from a JSON-encoded payload.
// A missing or null payload is an error.
func (d Definition[P]) Decode(raw []byte) (Action, error) {
	if isEmptyJSON(raw) {
		return Action{}, &PayloadError{Tag: d.tag, Message: "payload is required"}
	}
	var p P
	if err := json.Unmarshal(raw, &p); err != nil {
		return Action{}, &PayloadError{Tag: d.tag, Message: "decode payload", Err: err}
	}
	return d.New(p), nil
}

// VoidDefinition declares an action kind whose actions carry no payload.
type VoidDefinition struct {
	tag string
}

// DefineVoid creates a VoidDefinition for tag.
func DefineVoid(tag string) VoidDefinition {
	return VoidDefinition{tag: tag}
}

// Tag returns the definition's tag.
func (d VoidDefinition) Tag() string {
	return d.tag
}

// New creates an action of this kind. Its payload is nil.
func (d VoidDefinition) New() Action {
	return Action{Tag: d.tag}
}

// Is reports whether a has this definition's tag.
func (d VoidDefinition) Is(a Action) bool {
	return a.Tag == d.tag
}

// Void reports whether actions of this kind carry no payload.
func (d VoidDefinition) Void() bool {
	return true
}

// Decode builds an action of this kind. raw must be empty or null.
func (d VoidDefinition) Decode(raw []byte) (Action, error) {
	if !isEmptyJSON(raw) {
		return Action{}, &PayloadError{Tag: d.tag, Message: "action takes no payload"}
	}
	return d.New(), nil
}

// PayloadError reports a payload that does not fit its action kind.
type PayloadError struct {
	Tag     string
	Message string
	Err     error
}

func (e *PayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("action %q: %s: %v", e.Tag, e.Message, e.Err)
	}
	return fmt.Sprintf("action %q: %s", e.Tag, e.Message)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

func isEmptyJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
