package arena

import (
	"fmt"
	"reflect"
)

// IsPlainRecord reports whether t holds only value data: no pointers, slices, maps,
// strings, interfaces, funcs or channels at any depth. Arena records are copied by
// value into and out of parallel passes, so they must not share memory.
func IsPlainRecord(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Slice, reflect.Map, reflect.Interface,
		reflect.Func, reflect.Chan, reflect.String:
		return false
	case reflect.Array:
		return IsPlainRecord(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !IsPlainRecord(t.Field(i).Type) {
				return false
			}
		}
	}
	return true
}

func mustBePlainRecord[T any]() {
	t := reflect.TypeFor[T]()
	if !IsPlainRecord(t) {
		panic(fmt.Sprintf("arena: record type %v must not contain pointers, slices, maps, strings or interfaces", t))
	}
}
