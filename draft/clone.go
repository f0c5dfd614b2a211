package draft

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// visit identifies a pointer already copied.
type visit struct {
	ptr uintptr
	typ reflect.Type
}

type cloner struct {
	seen map[visit]reflect.Value

	// strict makes the cloner record the first struct type whose unexported
	// fields can reach shared memory.
	strict bool
	err    error
}

func (c *cloner) clone(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		key := visit{ptr: v.Pointer(), typ: v.Type()}
		if p, ok := c.seen[key]; ok {
			return p
		}
		p := reflect.New(v.Type().Elem())
		c.seen[key] = p
		p.Elem().Set(c.clone(v.Elem()))
		return p

	case reflect.Struct:
		t := v.Type()
		if c.strict && c.err == nil && t != timeType {
			c.err = checkUnexported(t)
		}
		out := reflect.New(t).Elem()
		out.Set(v)
		for i := range v.NumField() {
			if !t.Field(i).IsExported() {
				continue
			}
			out.Field(i).Set(c.clone(v.Field(i)))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), c.clone(iter.Value()))
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(c.clone(v.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			out.Index(i).Set(c.clone(v.Index(i)))
		}
		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(c.clone(v.Elem()))
		return out

	default:
		return v
	}
}

// timeType is exempt from checkUnexported: its location pointer is never
// written through.
var timeType = reflect.TypeFor[time.Time]()

// unexportedChecks caches checkUnexported by struct type.
var unexportedChecks sync.Map

// checkUnexported fails when an unexported field of t holds a pointer, map,
// slice or interface, directly or inside a nested array or struct. Such
// fields are copied shallowly, so writes through them would reach the base.
func checkUnexported(t reflect.Type) error {
	if v, ok := unexportedChecks.Load(t); ok {
		err, _ := v.(error)
		return err
	}
	var err error
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() && holdsReference(f.Type) {
			err = fmt.Errorf("%w: %s.%s", ErrUnexportedReference, t, f.Name)
			break
		}
	}
	unexportedChecks.Store(t, err)
	return err
}

func holdsReference(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	case reflect.Array:
		return holdsReference(t.Elem())
	case reflect.Struct:
		if t == timeType {
			return false
		}
		for i := range t.NumField() {
			if holdsReference(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
