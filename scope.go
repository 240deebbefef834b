package di

import (
	"context"
	"reflect"
	"sync"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Scope is a handle to a live instance cache.
//
// Each [Container] has a permanent singleton Scope that lasts until [Container.Close].
// Request scopes are created with [Container.Enter] or [Container.NewScope] and must be
// exited with [Scope.Exit] when the unit of work ends, even if it fails or is canceled.
//
// A request Scope is owned by a single unit of work and must not be shared
// by concurrent goroutines. The singleton Scope is safe for concurrent use.
type Scope struct {
	c         *Container
	kind      Lifetime
	cache     instanceCache
	closers   []Closer
	closersMu sync.Mutex
	mu        sync.RWMutex
	exited    bool
}

var _ Resolver = (*Scope)(nil)

func newScope(c *Container, kind Lifetime) *Scope {
	s := &Scope{
		c:    c,
		kind: kind,
	}

	switch kind {
	case SingletonLifetime:
		s.cache = newSharedCache()
	case RequestLifetime:
		s.cache = newLocalCache()
	default:
		s.cache = transientCache{}
	}

	return s
}

// Kind returns the lifetime this scope caches instances for.
func (s *Scope) Kind() Lifetime {
	return s.kind
}

// Container returns the [Container] the scope belongs to.
func (s *Scope) Container() *Container {
	return s.c
}

// Len returns the number of instances cached by the scope.
func (s *Scope) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cache.Len()
}

// Exited returns true once the scope has been exited.
func (s *Scope) Exited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.exited
}

// Contains returns true if a binding exists for the given type.
//
// Available options:
//   - [WithTag] specifies the tag associated with the binding.
func (s *Scope) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return s.c.registry.Contains(newKey(t, opts))
}

// Resolve an instance of the given type using this scope as the active scope.
//
// Available options:
//   - [WithTag] specifies the tag associated with the binding.
func (s *Scope) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	return s.ResolveKey(ctx, newKey(t, opts))
}

// ResolveKey resolves an instance for the key using this scope as the active scope.
func (s *Scope) ResolveKey(ctx context.Context, key Key) (any, error) {
	val, err := s.resolve(ctx, key, newResolveVisitor())
	if err != nil {
		return nil, errors.Wrapf(err, "di.Scope.Resolve %s", key)
	}

	return val, nil
}

// resolve starts a resolution with this scope as the active scope.
// The visitor is finished when the resolution returns.
func (s *Scope) resolve(ctx context.Context, key Key, visitor *resolveVisitor) (any, error) {
	defer visitor.Finish()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.exited {
		return nil, s.errExited()
	}

	return s.resolveKey(ctx, key, visitor)
}

// Exit discards the scope's instance cache.
//
// Instances owned by the scope are closed in the reverse order they were created.
// Errors returned from closing instances are joined together.
//
// The singleton scope cannot be exited. Use [Container.Close] instead.
// Exit will return an error if called more than once.
func (s *Scope) Exit(ctx context.Context) error {
	if s.kind == SingletonLifetime {
		return errors.Wrap(ErrScopeNotExitable, "di.Scope.Exit")
	}

	return errors.Wrap(s.exit(ctx), "di.Scope.Exit")
}

func (s *Scope) exit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exited {
		return s.errExited()
	}
	s.exited = true

	s.closersMu.Lock()
	closers := s.closers
	s.closers = nil
	s.closersMu.Unlock()

	// Close instances in LIFO order
	// Dependents are closed before their dependencies
	var errs errors.MultiError
	for i := len(closers) - 1; i >= 0; i-- {
		errs = errs.Append(closers[i].Close(ctx))
	}

	s.cache.Clear()

	err := errs.Join()
	if err != nil {
		s.c.logger.ErrorContext(ctx, "error closing scope instances",
			"kind", s.kind.String(),
			"error", err,
		)
	}

	s.c.logger.DebugContext(ctx, "scope exited",
		"kind", s.kind.String(),
		"closed", len(closers),
	)

	return err
}

func (s *Scope) errExited() error {
	if s.kind == SingletonLifetime {
		return ErrContainerClosed
	}

	return ErrScopeExited
}

func (s *Scope) addCloser(closer Closer) {
	s.closersMu.Lock()
	defer s.closersMu.Unlock()

	s.closers = append(s.closers, closer)
}
