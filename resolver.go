package di

import (
	"context"
	"reflect"
	"sync/atomic"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Resolver allows you to resolve instances.
//
// A Resolver can be injected into constructor functions. However,
// it cannot be used within the constructor function. It can be stored in a struct or
// used in a closure after the constructor function has returned.
//
// Resolver is implemented by *Container and *Scope.
type Resolver interface {
	// Contains returns true if a binding exists for the given type.
	//
	// Available options:
	// 	- [WithTag] specifies the tag associated with the binding.
	Contains(t reflect.Type, opts ...ResolveOption) bool

	// Resolve returns an instance of the given type.
	//
	// Available options:
	// 	- [WithTag] specifies the tag associated with the binding.
	Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error)
}

// Resolve an instance of type T from the [Resolver].
func Resolve[T any](ctx context.Context, r Resolver, opts ...ResolveOption) (T, error) {
	var val T
	anyVal, err := r.Resolve(ctx, reflect.TypeFor[T](), opts...)
	if err != nil {
		return val, err
	}

	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, nil
}

// MustResolve resolves an instance of type T from the [Resolver].
//
// If the instance cannot be resolved, this function will panic.
func MustResolve[T any](ctx context.Context, r Resolver, opts ...ResolveOption) T {
	val, err := Resolve[T](ctx, r, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

func newInjectedResolver(s *Scope, key Key) (*injectedResolver, func()) {
	r := &injectedResolver{
		key:   key,
		scope: s,
	}

	return r, r.setReady
}

// injectedResolver wraps a Scope to be injected as a Resolver dependency.
type injectedResolver struct {
	// key is the binding the Resolver is getting injected into
	key   Key
	scope *Scope
	ready atomic.Bool
}

func (r *injectedResolver) setReady() {
	r.ready.Store(true)
}

func (r *injectedResolver) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return r.scope.Contains(t, opts...)
}

func (r *injectedResolver) Resolve(
	ctx context.Context,
	t reflect.Type,
	opts ...ResolveOption,
) (any, error) {
	if !r.ready.Load() {
		return nil, errors.Errorf(
			"resolve %v: "+
				"resolve not supported on di.Resolver while resolving %s: "+
				"the resolver must be stored and used later",
			t, r.key,
		)
	}

	return r.scope.Resolve(ctx, t, opts...)
}

var _ Resolver = (*injectedResolver)(nil)
