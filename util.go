package di

import (
	"context"
	"reflect"

	"github.com/sectrean/inject-kit/internal/errors"
)

// These are commonly used types.
var (
	typeError    = reflect.TypeFor[error]()
	typeContext  = reflect.TypeFor[context.Context]()
	typeResolver = reflect.TypeFor[Resolver]()
)

// isSupplied reports whether a dependency of type t is supplied by the resolver
// rather than looked up in the registry.
func isSupplied(t reflect.Type) bool {
	return t == typeContext || t == typeResolver
}

func safeReflectValue(t reflect.Type, val any) reflect.Value {
	if val == nil {
		return reflect.Zero(t)
	}

	return reflect.ValueOf(val)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// Apply functional options and join any errors together.
func applyOptions[O any](opts []O, f func(O) error) error {
	var errs errors.MultiError

	for _, o := range opts {
		errs = errs.Append(f(o))
	}

	return errs.Join()
}
