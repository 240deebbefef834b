package di

import (
	"reflect"

	"github.com/sectrean/inject-kit/internal/errors"
)

// BindOption is used to configure a binding when calling [Registry.Bind], [Container.Bind],
// or [WithBinding].
//
// Available options:
//   - [Lifetime] specifies how instances are cached when resolved.
//   - [As] registers the binding under an alias type.
//   - [WithTag] specifies the tag associated with the binding.
//   - [WithTagged] specifies a tag for a dependency of the provider.
//   - [WithCloseFunc] specifies a function to be called when the instance is closed.
//   - [IgnoreCloser] specifies that instances should not be closed by their scope.
//   - [WithCloser] specifies that instances should be closed by their scope.
type BindOption interface {
	applyBinding(b *Binding) error
}

type bindOption func(*Binding) error

func (o bindOption) applyBinding(b *Binding) error {
	return o(b)
}

// As registers the binding under type T instead of the provider's return type.
//
// This can be used multiple times. All aliases share the same instance.
//
// Example:
//
//	di.WithBinding(NewFakeDatabasePool, di.As[DatabasePool]())
func As[T any]() BindOption {
	return bindOption(func(b *Binding) error {
		return errors.Wrapf(b.addAlias(reflect.TypeFor[T]()), "as %s", reflect.TypeFor[T]())
	})
}

// WithTag is used to specify the tag associated with a binding.
//
// Bindings with different tags are distinct keys.
//
// WithTag can be used with:
//   - [Registry.Bind], [Container.Bind], [WithBinding]
//   - [Resolve], [MustResolve], [KeyFor]
//   - [Resolver.Resolve], [Resolver.Contains]
func WithTag(tag any) TagOption {
	return tagOption{tag: tag}
}

// TagOption is used to specify the tag associated with a binding or a key.
type TagOption interface {
	BindOption
	ResolveOption
}

type tagOption struct {
	tag any
}

func (o tagOption) applyBinding(b *Binding) error {
	b.tag = o.tag
	return nil
}

func (o tagOption) applyKey(key Key) Key {
	return Key{
		Type: key.Type,
		Tag:  o.tag,
	}
}

var _ TagOption = tagOption{}

// WithTagged is used to specify a tag for a dependency of a provider or an invoked function.
//
// This option can be used multiple times to tag several parameters of the same type.
//
// Example:
//
//	c, err := di.NewContainer(
//		di.WithBinding(db.NewPrimaryPool, di.WithTag(db.Primary)),
//		di.WithBinding(db.NewReplicaPool, di.WithTag(db.Replica)),
//		di.WithBinding(storage.NewReadWriteStore,
//			di.WithTagged[*db.Pool](db.Primary),
//		),
//	)
//
// This option will return an error if there is no untagged parameter of type Dependency.
func WithTagged[Dependency any](tag any) DependencyTagOption {
	return depTagOption{
		t:   reflect.TypeFor[Dependency](),
		tag: tag,
	}
}

// DependencyTagOption is used to specify a tag for a dependency when binding a provider
// or creating an [Invoker].
type DependencyTagOption interface {
	BindOption
	InvokeOption
}

type depTagOption struct {
	t   reflect.Type
	tag any
}

// applyDeps assigns the tag to the first dependency of the right type that does not already have a tag.
//
// The slice is modified in place.
func (o depTagOption) applyDeps(deps []Key) error {
	for i := range deps {
		if deps[i].Type == o.t && deps[i].Tag == nil {
			deps[i].Tag = o.tag
			return nil
		}
	}
	return errors.Errorf("with tagged %s: parameter not found", o.t)
}

func (o depTagOption) applyBinding(b *Binding) error {
	return o.applyDeps(b.provider.Dependencies())
}

func (o depTagOption) applyInvoker(i *Invoker) error {
	return o.applyDeps(i.deps)
}

var _ DependencyTagOption = depTagOption{}
