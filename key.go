package di

import (
	"fmt"
	"reflect"
)

// Key identifies an abstract dependency: a type and an optional tag.
//
// A Key is comparable and is used as the lookup key for bindings.
type Key struct {
	Type reflect.Type
	Tag  any
}

// KeyFor returns the [Key] for type T.
//
// Available options:
//   - [WithTag] specifies the tag associated with the key.
func KeyFor[T any](opts ...ResolveOption) Key {
	return newKey(reflect.TypeFor[T](), opts)
}

func newKey(t reflect.Type, opts []ResolveOption) Key {
	key := Key{Type: t}
	for _, opt := range opts {
		key = opt.applyKey(key)
	}
	return key
}

func (k Key) String() string {
	if k.Type == nil {
		return "<nil>"
	}
	if k.Tag == nil {
		return k.Type.String()
	}
	return fmt.Sprintf("%s (Tag %v)", k.Type, k.Tag)
}

// ResolveOption can be used when calling [Resolve], [MustResolve], [KeyFor],
// [Resolver.Resolve], or [Resolver.Contains].
//
// Available options:
//   - [WithTag]
type ResolveOption interface {
	applyKey(Key) Key
}
