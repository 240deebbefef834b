package di

import (
	"context"
	"reflect"

	"github.com/sectrean/inject-kit/internal/errors"
)

func (s *Scope) resolveKey(ctx context.Context, key Key, visitor *resolveVisitor) (any, error) {
	b := s.c.registry.lookup(key)
	if b == nil {
		return nil, ErrUnboundKey
	}

	return s.resolveBinding(ctx, b, visitor)
}

// targetFor returns the scope that owns instances of the binding when s is the active scope.
func (s *Scope) targetFor(b *Binding) (*Scope, error) {
	switch b.lifetime {
	case SingletonLifetime:
		return s.c.root, nil
	case RequestLifetime:
		if s.kind != RequestLifetime {
			return nil, ErrNoRequestScope
		}
		return s, nil
	default:
		return s, nil
	}
}

func (s *Scope) resolveBinding(
	ctx context.Context,
	b *Binding,
	visitor *resolveVisitor,
) (any, error) {
	// Check context for errors
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	target, err := s.targetFor(b)
	if err != nil {
		return nil, err
	}

	if target != s {
		// The active scope is already locked by the caller
		target.mu.RLock()
		defer target.mu.RUnlock()

		if target.exited {
			return nil, target.errExited()
		}
	}

	cache := target.cache
	if b.lifetime == TransientLifetime {
		cache = transientCache{}
	}

	// See if this binding has already been resolved
	if val, ok := cache.Load(b); ok {
		return val, nil
	}

	if !visitor.Enter(b) {
		return nil, errors.Errorf("%w: %s", ErrCyclicDependency, visitor.Trail(b))
	}
	defer visitor.Leave(b)

	// Recursively resolve dependencies in declaration order.
	// This happens before the cache entry is locked so no lock is held across nested resolution.
	var depVals []reflect.Value

	deps := b.provider.Dependencies()
	if len(deps) > 0 {
		depVals = make([]reflect.Value, len(deps))
		for i, dep := range deps {
			var depVal any
			var depErr error

			switch dep.Type {
			case typeContext:
				// Pass along the context
				depVal = ctx

			case typeResolver:
				var ready func()
				depVal, ready = newInjectedResolver(target, b.Key())
				defer ready()

			default:
				// Recursive call
				depVal, depErr = target.resolveKey(ctx, dep, visitor)
			}

			if depErr != nil {
				// Stop at the first error
				return nil, errors.Wrapf(depErr, "dependency %s", dep)
			}
			depVals[i] = safeReflectValue(dep.Type, depVal)
		}
	}

	// Check the context again before we create the instance
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	val, created, err := cache.GetOrCreate(b, func() (any, error) {
		val, err := b.provider.New(depVals)
		if err != nil {
			return nil, err
		}

		_, err = attachInjectionPoints(ctx, target, val, visitor)
		return val, err
	})
	if err != nil {
		return nil, err
	}

	if created {
		if closer := b.closerFor(val); closer != nil {
			target.addCloser(closer)
		}
	}

	return val, nil
}
