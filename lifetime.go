package di

import (
	"fmt"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Lifetime specifies how instances of a binding are cached when resolved.
//
// Available lifetimes:
//   - [SingletonLifetime] one instance for the life of the [Container].
//   - [RequestLifetime] one instance per request [Scope].
//   - [TransientLifetime] a new instance for every resolution.
//
// The lifetime never changes which binding is used for a key.
type Lifetime uint8

const (
	// SingletonLifetime specifies that an instance is created once and shared by every resolution.
	//
	// This is the default lifetime for bindings.
	SingletonLifetime Lifetime = iota

	// RequestLifetime specifies that an instance is created once per request [Scope]
	// and discarded when the scope is exited.
	RequestLifetime

	// TransientLifetime specifies that a new instance is created for every resolution.
	TransientLifetime
)

func (l Lifetime) applyBinding(b *Binding) error {
	if l > TransientLifetime {
		return errors.Errorf("lifetime: unknown %d", uint8(l))
	}

	b.lifetime = l
	return nil
}

var _ BindOption = SingletonLifetime

func (l Lifetime) String() string {
	switch l {
	case SingletonLifetime:
		return "Singleton"
	case RequestLifetime:
		return "Request"
	case TransientLifetime:
		return "Transient"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", l)
	}
}
