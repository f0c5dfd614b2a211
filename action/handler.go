package action

import (
	"fmt"
	"reflect"
)

// Transition computes the next state for a payload-carrying action.
//
// It receives a mutable draft of the current state. It either mutates the
// draft and returns nil, or returns a replacement state. Returning the draft
// itself counts as mutating it.
type Transition[S, P any] func(draft *S, payload P) (*S, error)

// VoidTransition is a Transition for actions without a payload.
type VoidTransition[S any] func(draft *S) (*S, error)

// Handler pairs a tag with the transition applied when an action with that
// tag is dispatched. Handlers are consumed by reducer.Create.
type Handler[S any] struct {
	tag   string
	apply func(draft *S, payload any) (*S, error)
}

// NewHandler builds a Handler from an untyped transition.
// Prefer Handle and HandleVoid, which derive the tag from a definition.
func NewHandler[S any](tag string, fn func(draft *S, payload any) (*S, error)) Handler[S] {
	return Handler[S]{tag: tag, apply: fn}
}

// Handle builds the Handler for d. The payload passed to fn is the
// dispatched action's payload converted to P.
func Handle[S, P any](d Definition[P], fn Transition[S, P]) Handler[S] {
	tag := d.Tag()
	return Handler[S]{
		tag: tag,
		apply: func(draft *S, payload any) (*S, error) {
			p, err := payloadAs[P](tag, payload)
			if err != nil {
				return nil, err
			}
			return fn(draft, p)
		},
	}
}

// HandleVoid builds the Handler for d. Any payload on the dispatched action
// is ignored.
func HandleVoid[S any](d VoidDefinition, fn VoidTransition[S]) Handler[S] {
	return Handler[S]{
		tag: d.Tag(),
		apply: func(draft *S, _ any) (*S, error) {
			return fn(draft)
		},
	}
}

// Tag returns the tag this handler is bound to.
func (h Handler[S]) Tag() string {
	return h.tag
}

// Apply runs the transition against draft.
func (h Handler[S]) Apply(draft *S, payload any) (*S, error) {
	if h.apply == nil {
		return nil, nil
	}
	return h.apply(draft, payload)
}

// PayloadTypeError is returned when a dispatched payload does not have the
// type its handler was declared with.
type PayloadTypeError struct {
	Tag  string
	Want string
	Got  string
}

func (e *PayloadTypeError) Error() string {
	return fmt.Sprintf("action %q: payload is %s, want %s", e.Tag, e.Got, e.Want)
}

// payloadAs converts payload to P. A nil payload becomes the zero P.
func payloadAs[P any](tag string, payload any) (P, error) {
	var zero P
	if payload == nil {
		return zero, nil
	}
	p, ok := payload.(P)
	if !ok {
		return zero, &PayloadTypeError{
			Tag:  tag,
			Want: reflect.TypeFor[P]().String(),
			Got:  fmt.Sprintf("%T", payload),
		}
	}
	return p, nil
}
