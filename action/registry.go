package action

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnregistered is returned by Registry.Decode for tags with no decoder.
var ErrUnregistered = errors.New("action not registered")

// Decoder is implemented by Definition and VoidDefinition.
type Decoder interface {
	Tag() string
	Void() bool
	Decode(raw []byte) (Action, error)
}

// Registry maps tags to the definitions able to decode them.
//
// Tooling that reads actions from outside the program (scenario files, the
// journal) uses a Registry to rebuild typed actions. Reducers do not need one.
type Registry struct {
	decoders map[string]Decoder
	order    []string
}

// NewRegistry creates a Registry holding defs.
// It panics if two definitions share a tag.
func NewRegistry(defs ...Decoder) *Registry {
	r := &Registry{decoders: make(map[string]Decoder, len(defs))}
	if err := r.Register(defs...); err != nil {
		panic(err)
	}
	return r
}

// Register adds defs in order. It fails on the first tag already present;
// definitions before it stay registered.
func (r *Registry) Register(defs ...Decoder) error {
	for _, d := range defs {
		tag := d.Tag()
		if _, exists := r.decoders[tag]; exists {
			return fmt.Errorf("register %q: tag already registered", tag)
		}
		r.decoders[tag] = d
		r.order = append(r.order, tag)
	}
	return nil
}

// Decode rebuilds the action for tag from a JSON payload.
// Unknown tags return an error wrapping ErrUnregistered.
func (r *Registry) Decode(tag string, raw []byte) (Action, error) {
	d, ok := r.decoders[tag]
	if !ok {
		return Action{}, fmt.Errorf("decode %q: %w", tag, ErrUnregistered)
	}
	return d.Decode(raw)
}

// Lookup returns the decoder registered for tag.
func (r *Registry) Lookup(tag string) (Decoder, bool) {
	d, ok := r.decoders[tag]
	return d, ok
}

// Tags returns the registered tags in registration order.
func (r *Registry) Tags() []string {
	return slices.Clone(r.order)
}
