package register

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// ErrNotCopyable is returned when the guarded type carries references a
// reader could follow after the owner has moved on.
var ErrNotCopyable = errors.New("register: value type is not trivially copyable")

// CheckCopyable validates T for use as a guarded value.
//
// Accepted: booleans, numbers, strings, and arrays/structs built only from
// those. Strings qualify because their bytes are immutable; copying the
// header is a complete snapshot.
func CheckCopyable[T any]() error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return checkType(t, t.String())
}

func checkType(t reflect.Type, path string) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return nil
	case reflect.Array:
		return checkType(t.Elem(), path+"[]")
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if err := checkType(f.Type, path+"."+f.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(ErrNotCopyable, "%s is a %s", path, t.Kind())
	}
}
