package draft

import (
	"math"
	"reflect"
)

// pair identifies a (base, draft) pointer pair during reconciliation.
type pair struct {
	base  uintptr
	draft uintptr
	typ   reflect.Type
}

type outcome struct {
	v       reflect.Value
	changed bool
}

type reconciler struct {
	active map[pair]bool
	done   map[pair]outcome
}

// reconcile returns the value to keep in place of d and whether it differs
// from base. Unchanged sub-values are always taken from base.
func (r *reconciler) reconcile(base, d reflect.Value) (reflect.Value, bool) {
	switch base.Kind() {
	case reflect.Pointer:
		if base.IsNil() || d.IsNil() {
			return nilness(base, d)
		}
		key := pair{base: base.Pointer(), draft: d.Pointer(), typ: base.Type()}
		if o, ok := r.done[key]; ok {
			return o.v, o.changed
		}
		if r.active[key] {
			return base, false
		}
		r.active[key] = true
		elem, changed := r.reconcile(base.Elem(), d.Elem())
		delete(r.active, key)

		out := base
		if changed {
			out = reflect.New(base.Type().Elem())
			out.Elem().Set(elem)
		}
		r.done[key] = outcome{v: out, changed: changed}
		return out, changed

	case reflect.Struct:
		t := base.Type()
		changed := false
		fields := make([]reflect.Value, base.NumField())
		for i := range base.NumField() {
			if !t.Field(i).IsExported() {
				if !equal(base.Field(i), d.Field(i)) {
					changed = true
				}
				continue
			}
			f, c := r.reconcile(base.Field(i), d.Field(i))
			fields[i] = f
			changed = changed || c
		}
		if !changed {
			return base, false
		}
		out := reflect.New(t).Elem()
		out.Set(d)
		for i, f := range fields {
			if f.IsValid() {
				out.Field(i).Set(f)
			}
		}
		return out, true

	case reflect.Map:
		if base.IsNil() || d.IsNil() {
			return nilness(base, d)
		}
		changed := base.Len() != d.Len()
		out := reflect.MakeMapWithSize(base.Type(), d.Len())
		iter := d.MapRange()
		for iter.Next() {
			k := iter.Key()
			bv := base.MapIndex(k)
			if !bv.IsValid() {
				out.SetMapIndex(k, iter.Value())
				changed = true
				continue
			}
			v, c := r.reconcile(bv, iter.Value())
			out.SetMapIndex(k, v)
			changed = changed || c
		}
		if !changed {
			return base, false
		}
		return out, true

	case reflect.Slice:
		if base.IsNil() || d.IsNil() {
			return nilness(base, d)
		}
		changed := base.Len() != d.Len()
		out := reflect.MakeSlice(base.Type(), d.Len(), d.Len())
		for i := range d.Len() {
			if i >= base.Len() {
				out.Index(i).Set(d.Index(i))
				changed = true
				continue
			}
			v, c := r.reconcile(base.Index(i), d.Index(i))
			out.Index(i).Set(v)
			changed = changed || c
		}
		if !changed {
			return base, false
		}
		return out, true

	case reflect.Array:
		changed := false
		out := reflect.New(base.Type()).Elem()
		for i := range base.Len() {
			v, c := r.reconcile(base.Index(i), d.Index(i))
			out.Index(i).Set(v)
			changed = changed || c
		}
		if !changed {
			return base, false
		}
		return out, true

	case reflect.Interface:
		if base.IsNil() || d.IsNil() {
			return nilness(base, d)
		}
		if base.Elem().Type() != d.Elem().Type() {
			return d, true
		}
		v, changed := r.reconcile(base.Elem(), d.Elem())
		if !changed {
			return base, false
		}
		out := reflect.New(base.Type()).Elem()
		out.Set(v)
		return out, true

	default:
		if equal(base, d) {
			return base, false
		}
		return d, true
	}
}

// nilness handles the case where at least one side is nil.
func nilness(base, d reflect.Value) (reflect.Value, bool) {
	if base.IsNil() && d.IsNil() {
		return base, false
	}
	return d, true
}

// equal compares two values of the same type without copying them.
// Reference kinds compare by identity. It only reads, so it is safe on
// unexported fields.
func equal(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		x, y := a.Float(), b.Float()
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return a.Elem().Type() == b.Elem().Type() && equal(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := range a.NumField() {
			if !equal(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := range a.Len() {
			if !equal(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
