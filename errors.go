package di

import (
	"github.com/sectrean/inject-kit/internal/errors"
)

var (
	// ErrUnboundKey is returned when no binding exists for a requested key.
	ErrUnboundKey = errors.New("unbound key")

	// ErrInvalidBinding is returned when a provider cannot be bound.
	ErrInvalidBinding = errors.New("invalid binding")

	// ErrCyclicDependency is returned when a resolution chain revisits a key
	// that is already being resolved.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrNoRequestScope is returned when a request binding is resolved
	// without an active request scope.
	ErrNoRequestScope = errors.New("no active request scope")

	// ErrScopeExited is returned when using a [Scope] after it has been exited.
	ErrScopeExited = errors.New("scope exited")

	// ErrScopeNotExitable is returned when exiting the singleton scope directly.
	// Use [Container.Close] instead.
	ErrScopeNotExitable = errors.New("singleton scope cannot be exited")

	// ErrContainerClosed is returned when using a [Container] after it has been closed.
	ErrContainerClosed = errors.New("container closed")
)
