package catalog

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/yartsul/action"
)

// Validate checks the catalog's entries against each other.
// Returns all errors found (does not fail-fast).
func (c *Catalog) Validate() []ValidationError {
	var errs []ValidationError
	seen := make(map[string]string)

	for _, e := range c.Entries {
		field := "action." + e.Label
		if e.Tag == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "tag must not be empty",
				Code:    ErrEmptyTag,
				Line:    e.Pos.Line(),
			})
			continue
		}
		if prev, dup := seen[e.Tag]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("tag %q already declared by action.%s", e.Tag, prev),
				Code:    ErrDuplicateTag,
				Line:    e.Pos.Line(),
			})
			continue
		}
		seen[e.Tag] = e.Label
	}
	return errs
}

// CheckRegistry compares the catalog with a model's registry. Every
// declared tag must be registered with the same kind, and every registered
// tag must be declared.
func (c *Catalog) CheckRegistry(reg *action.Registry) []ValidationError {
	var errs []ValidationError

	for _, e := range c.Entries {
		field := "action." + e.Label
		d, ok := reg.Lookup(e.Tag)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("tag %q is not registered", e.Tag),
				Code:    ErrUnregisteredTag,
				Line:    e.Pos.Line(),
			})
			continue
		}
		if d.Void() == e.HasPayload {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("tag %q: catalog %s, registry %s", e.Tag, kind(!e.HasPayload), kind(d.Void())),
				Code:    ErrKindMismatch,
				Line:    e.Pos.Line(),
			})
		}
	}

	for _, tag := range reg.Tags() {
		if _, ok := c.Lookup(tag); !ok {
			errs = append(errs, ValidationError{
				Field:   tag,
				Message: fmt.Sprintf("registered tag %q is not declared", tag),
				Code:    ErrUndeclaredTag,
			})
		}
	}
	return errs
}

// CheckPayload checks payload against the schema declared for tag.
// Undeclared tags always pass.
func (c *Catalog) CheckPayload(tag string, payload any) error {
	e, ok := c.Lookup(tag)
	if !ok {
		return nil
	}

	field := "action." + e.Label
	invalid := func(msg string) error {
		return ValidationError{Field: field, Message: msg, Code: ErrPayloadInvalid, Line: e.Pos.Line()}
	}

	if !e.HasPayload {
		if payload != nil {
			return invalid("action takes no payload")
		}
		return nil
	}
	if payload == nil {
		return invalid("payload is required")
	}

	v := c.ctx.Encode(payload)
	if err := v.Err(); err != nil {
		return invalid(fmt.Sprintf("encode payload: %v", err))
	}
	if err := e.Schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return invalid(err.Error())
	}
	return nil
}

func kind(void bool) string {
	if void {
		return "void"
	}
	return "payload"
}
