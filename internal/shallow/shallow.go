// Package shallow implements identity-style equality for arbitrary values:
// comparable values compare with ==, reference values (slices, maps, funcs)
// compare by identity.
package shallow

import "reflect"

// Equal reports whether a and b are shallowly equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	}
	return compare(a, b)
}

// compare falls back to ==, treating a runtime comparison panic (a struct
// holding an uncomparable interface value) as inequality.
func compare(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// Deps reports whether two dependency lists are equal element-wise. A nil
// list never equals anything, including another nil list.
func Deps(prev, next []any) bool {
	if prev == nil || next == nil {
		return false
	}
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !Equal(prev[i], next[i]) {
			return false
		}
	}
	return true
}
