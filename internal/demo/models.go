// Package demo collects the example models shipped with the CLI.
package demo

import (
	"github.com/roach88/yartsul/internal/demo/counter"
	"github.com/roach88/yartsul/internal/demo/todo"
	"github.com/roach88/yartsul/internal/harness"
)

// Models returns a fresh harness model for each demo.
func Models() []harness.Model {
	return []harness.Model{
		harness.Bind("counter", counter.NewReducer(counter.Initial()), counter.Registry()),
		harness.Bind("todo", todo.NewReducer(todo.Initial()), todo.Registry()),
	}
}

// Lookup returns the demo model called name.
func Lookup(name string) (harness.Model, bool) {
	for _, m := range Models() {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// Names returns the demo model names.
func Names() []string {
	ms := Models()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}
