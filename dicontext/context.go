package dicontext

import (
	"context"
	"reflect"

	"github.com/sectrean/inject-kit"
	"github.com/sectrean/inject-kit/internal/errors"
)

type resolverContextKey struct{}

// WithResolver returns a new [context.Context] that carries the provided [di.Resolver].
//
// This is usually a request [di.Scope].
func WithResolver(ctx context.Context, r di.Resolver) context.Context {
	return context.WithValue(ctx, resolverContextKey{}, r)
}

// Resolver returns the [di.Resolver] stored on the [context.Context], if present.
func Resolver(ctx context.Context) di.Resolver {
	if r, ok := ctx.Value(resolverContextKey{}).(di.Resolver); ok {
		return r
	}
	return nil
}

// Resolve an instance of type T from the [di.Resolver] stored on the [context.Context].
func Resolve[T any](ctx context.Context, opts ...di.ResolveOption) (T, error) {
	var val T

	r := Resolver(ctx)
	if r == nil {
		return val, errors.Errorf("resolve %s from context: resolver not found on context", reflect.TypeFor[T]())
	}

	val, err := di.Resolve[T](ctx, r, opts...)
	return val, errors.Wrap(err, "resolve from context")
}

// MustResolve resolves an instance of type T from the [di.Resolver] stored on the
// [context.Context].
//
// If the instance cannot be resolved, this function will panic.
func MustResolve[T any](ctx context.Context, opts ...di.ResolveOption) T {
	val, err := Resolve[T](ctx, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// Invoke calls fn with parameters resolved from the [di.Resolver] stored on the
// [context.Context]. See [di.Invoke].
func Invoke(ctx context.Context, fn any, opts ...di.InvokeOption) error {
	r := Resolver(ctx)
	if r == nil {
		return errors.Errorf("invoke %T from context: resolver not found on context", fn)
	}

	return di.Invoke(ctx, r, fn, opts...)
}

// RunScoped runs fn in a new request [di.Scope].
//
// The scope is stored on the context passed to fn. It is exited when fn returns,
// even if fn returns an error or panics. An error exiting the scope is joined
// with the error returned by fn.
//
// Example:
//
//	err := dicontext.RunScoped(ctx, c, func(ctx context.Context) error {
//		users := dicontext.MustResolve[*UserModel](ctx)
//		return users.Process(ctx)
//	})
func RunScoped(ctx context.Context, c *di.Container, fn func(ctx context.Context) error) (err error) {
	if c == nil {
		return errors.New("dicontext.RunScoped: container is nil")
	}

	s, err := c.NewScope()
	if err != nil {
		return errors.Wrap(err, "dicontext.RunScoped")
	}

	defer func() {
		// Instances are closed even if ctx has been canceled
		exitErr := s.Exit(context.WithoutCancel(ctx))
		err = errors.Join(err, errors.Wrap(exitErr, "dicontext.RunScoped"))
	}()

	return fn(WithResolver(ctx, s))
}
