package di

import (
	"context"
	"reflect"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Invoker calls a function with parameters resolved immediately before each call.
//
// Parameters are resolved from the [Resolver] passed to [Invoker.Invoke], so a
// request binding is resolved from the request scope that is active at call time.
// Parameters of type [context.Context] and [Resolver] are supplied directly.
//
// A method expression can be used to resolve the receiver on every call:
//
//	show, err := di.NewInvoker((*UserController).Show)
//	// ...
//	results, err := show.Invoke(ctx, scope)
type Invoker struct {
	fn   reflect.Value
	deps []Key
}

// NewInvoker analyses the signature of fn once so it can be invoked many times.
//
// Available options:
//   - [WithTagged] specifies a tag for a parameter.
func NewInvoker(fn any, opts ...InvokeOption) (*Invoker, error) {
	if isNil(fn) {
		return nil, errors.New("di.NewInvoker: fn is nil")
	}

	fnType := reflect.TypeOf(fn)

	// Make sure fn is a function
	if fnType.Kind() != reflect.Func {
		return nil, errors.Errorf("di.NewInvoker %T: fn must be a function", fn)
	}

	if fnType.IsVariadic() {
		return nil, errors.Errorf("di.NewInvoker %T: variadic functions are not supported", fn)
	}

	deps := make([]Key, fnType.NumIn())
	for i := range fnType.NumIn() {
		deps[i] = Key{Type: fnType.In(i)}
	}

	i := &Invoker{
		fn:   reflect.ValueOf(fn),
		deps: deps,
	}

	err := applyOptions(opts, func(opt InvokeOption) error {
		return opt.applyInvoker(i)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "di.NewInvoker %T", fn)
	}

	return i, nil
}

// InvokeOption is used to configure an [Invoker].
//
// Available options:
//   - [WithTagged]
type InvokeOption interface {
	applyInvoker(*Invoker) error
}

// Dependencies returns the keys of the parameters, in declaration order.
func (i *Invoker) Dependencies() []Key {
	return append([]Key(nil), i.deps...)
}

// Invoke resolves the parameters from r and calls the function.
//
// It returns every result of the function. The error is the first error result
// of the function, returned as-is, or an error resolving a parameter.
func (i *Invoker) Invoke(ctx context.Context, r Resolver) ([]any, error) {
	if r == nil {
		return nil, errors.Errorf("invoke %s: resolver is nil", i.fn.Type())
	}

	// Resolve parameters in declaration order
	in := make([]reflect.Value, len(i.deps))
	for idx, dep := range i.deps {
		var depVal any
		var depErr error

		switch {
		case dep.Type == typeContext:
			depVal = ctx
		case dep.Type == typeResolver:
			depVal = r
		case dep.Tag != nil:
			depVal, depErr = r.Resolve(ctx, dep.Type, WithTag(dep.Tag))
		default:
			depVal, depErr = r.Resolve(ctx, dep.Type)
		}

		if depErr != nil {
			// Stop at the first error
			return nil, errors.Wrapf(depErr, "invoke %s", i.fn.Type())
		}
		in[idx] = safeReflectValue(dep.Type, depVal)
	}

	// Check for a context error before we invoke the function
	if ctx.Err() != nil {
		return nil, errors.Wrapf(ctx.Err(), "invoke %s", i.fn.Type())
	}

	out := i.fn.Call(in)

	results := make([]any, len(out))
	var err error
	for idx, v := range out {
		results[idx] = v.Interface()

		if err == nil && i.fn.Type().Out(idx) == typeError {
			err, _ = results[idx].(error)
		}
	}

	return results, err
}

// Invoke calls the given function with parameters resolved from the provided [Resolver].
//
// The function may take any number of parameters which will be resolved,
// and may return any number of results.
// An [error] result will be passed along and any other results are ignored.
func Invoke(ctx context.Context, r Resolver, fn any, opts ...InvokeOption) error {
	i, err := NewInvoker(fn, opts...)
	if err != nil {
		return err
	}

	_, err = i.Invoke(ctx, r)
	return err
}
