package di

import (
	"context"
	"reflect"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Closer is used to close an instance when the [Scope] that owns it is exited,
// or when the [Container] is closed.
//
// If a constructed instance implements Closer, or one of the other compatible signatures,
// it will be closed in the reverse order of construction.
//
// Any of these Close method signatures are supported:
//
//	Close(context.Context) error
//	Close(context.Context)
//	Close() error
//	Close()
//
// See related options:
//   - [IgnoreCloser]
//   - [WithCloser]
//   - [WithCloseFunc]
type Closer interface {
	Close(ctx context.Context) error
}

// WithCloser is used to close instances when the owning scope is exited.
//
// Value bindings are not closed by default. Use this option to close them with the Container.
func WithCloser() BindOption {
	return bindOption(func(b *Binding) error {
		b.closerFactory = getCloser
		return nil
	})
}

// IgnoreCloser is used when an instance that implements [Closer], or another supported
// Close signature, should not be closed by its scope.
func IgnoreCloser() BindOption {
	return bindOption(func(b *Binding) error {
		b.closerFactory = nil
		return nil
	})
}

type closerFactory func(val any) Closer

// WithCloseFunc sets a custom function to call for an instance when its scope is exited.
//
// Example:
//
//	di.WithCloseFunc(func(ctx context.Context, s *http.Server) error {
//		return s.Shutdown(ctx)
//	})
//
// This option will return an error if the binding type is not assignable to T.
func WithCloseFunc[T any](f func(context.Context, T) error) BindOption {
	return bindOption(func(b *Binding) error {
		closerType := reflect.TypeFor[T]()
		if !b.t.AssignableTo(closerType) {
			return errors.Errorf("with close func: type %s is not assignable to %s", b.t, closerType)
		}

		b.closerFactory = func(val any) Closer {
			return closeFunc(func(ctx context.Context) error {
				return f(ctx, val.(T))
			})
		}
		return nil
	})
}

// getCloser returns the Closer interface if the given value implements it,
// or any of the compatible Close function signatures.
func getCloser(val any) Closer {
	switch c := val.(type) {
	case Closer:
		return c
	case closerWithContextNoError:
		return closerWithContextNoErrorWrapper{c}
	case closerNoContextWithError:
		return closerNoContextWithErrorWrapper{c}
	case closerNoContextNoError:
		return closerNoContextNoErrorWrapper{c}

	default:
		return nil
	}
}

type closerWithContextNoError interface {
	Close(ctx context.Context)
}

type closerNoContextWithError interface {
	Close() error
}

type closerNoContextNoError interface {
	Close()
}

type closerNoContextNoErrorWrapper struct {
	c closerNoContextNoError
}

func (w closerNoContextNoErrorWrapper) Close(context.Context) error {
	w.c.Close()
	return nil
}

type closerWithContextNoErrorWrapper struct {
	c closerWithContextNoError
}

func (w closerWithContextNoErrorWrapper) Close(ctx context.Context) error {
	w.c.Close(ctx)
	return nil
}

type closerNoContextWithErrorWrapper struct {
	c closerNoContextWithError
}

func (w closerNoContextWithErrorWrapper) Close(context.Context) error {
	return w.c.Close()
}

type closeFunc func(context.Context) error

func (f closeFunc) Close(ctx context.Context) error {
	return f(ctx)
}
