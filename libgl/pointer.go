package libgl

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Pointer returns the address of the first element of a slice or array
// pointer. Empty slices give nil.
func Pointer(data any) unsafe.Pointer {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice:
		if v.Len() == 0 {
			return nil
		}
		return v.UnsafePointer()
	case reflect.Ptr:
		return v.UnsafePointer()
	}
	panic(fmt.Errorf("cannot take the address of %s, must be a slice or pointer", v.Type()))
}
