package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// Entry is one declared action.
type Entry struct {
	Tag        string    `json:"tag"`
	Label      string    `json:"label"`
	HasPayload bool      `json:"has_payload"`
	Schema     cue.Value `json:"-"`
	Pos        token.Pos `json:"-"`
}

// Catalog is a compiled set of entries, in source order.
//
// A Catalog is not safe for concurrent use: CUE values share their context.
type Catalog struct {
	Name    string
	Entries []Entry

	ctx *cue.Context
}

// Load compiles the catalog at path. A directory is loaded as a CUE
// package; anything else is compiled as a single file.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if !info.IsDir() {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		return Compile(path, src)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return nil, &CompileError{Field: "load", Message: fmt.Sprintf("no CUE instances in %s", path)}
	}
	if inst := instances[0]; inst.Err != nil {
		return nil, formatCUEError("load", inst.Err)
	}
	return CompileValue(filepath.Base(path), ctx.BuildInstance(instances[0]))
}

// Compile compiles catalog source. name is used in positions.
func Compile(name string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	return CompileValue(name, ctx.CompileBytes(src, cue.Filename(name)))
}

// CompileValue builds a Catalog from an evaluated CUE value whose "action"
// field holds the entries.
func CompileValue(name string, v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	actions := v.LookupPath(cue.ParsePath("action"))
	if !actions.Exists() {
		return nil, &CompileError{
			Field:   "action",
			Message: "action is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := actions.Fields()
	if err != nil {
		return nil, formatCUEError("action", err)
	}

	c := &Catalog{Name: name, ctx: v.Context()}
	for iter.Next() {
		e, err := compileEntry(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

func compileEntry(label string, v cue.Value) (Entry, error) {
	field := "action." + label
	e := Entry{Tag: label, Label: label, Pos: v.Pos()}

	if v.IncompleteKind() != cue.StructKind {
		return Entry{}, &CompileError{
			Field:   field,
			Message: "entry must be a struct",
			Pos:     v.Pos(),
		}
	}

	if tv := v.LookupPath(cue.ParsePath("tag")); tv.Exists() {
		tag, err := tv.String()
		if err != nil {
			return Entry{}, formatCUEError(field+".tag", err)
		}
		e.Tag = tag
	}

	if pv := v.LookupPath(cue.ParsePath("payload")); pv.Exists() {
		if err := pv.Err(); err != nil {
			return Entry{}, formatCUEError(field+".payload", err)
		}
		e.HasPayload = true
		e.Schema = pv
	}

	return e, nil
}

// Lookup returns the entry declaring tag.
func (c *Catalog) Lookup(tag string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Tag == tag {
			return e, true
		}
	}
	return Entry{}, false
}

// Tags returns the declared tags in source order.
func (c *Catalog) Tags() []string {
	tags := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		tags[i] = e.Tag
	}
	return tags
}
