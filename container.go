package di

import (
	"cmp"
	"context"
	"log/slog"
	"reflect"
	"slices"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Container is a dependency injection container.
//
// It owns a [Registry] of bindings and the singleton [Scope], and creates
// request scopes. It is used to resolve instances by first resolving their dependencies.
type Container struct {
	registry *Registry
	root     *Scope
	logger   *slog.Logger
}

var _ Resolver = (*Container)(nil)

// NewContainer creates a new [Container] with the provided options.
//
// Available options:
//   - [WithBinding] binds a constructor function or a value.
//   - [WithModule] applies a group of options.
//   - [WithLogger] sets the logger used by the Container.
//   - [WithDependencyValidation] validates bindings after they are registered.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := &Container{
		registry: NewRegistry(),
		logger:   slog.Default(),
	}
	c.root = newScope(c, SingletonLifetime)

	err := c.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.NewContainer")
	}

	return c, nil
}

// ContainerOption is used to configure a new [Container] when calling [NewContainer].
type ContainerOption interface {
	order() optionOrder
	applyContainer(*Container) error
}

func (c *Container) applyOptions(opts []ContainerOption) error {
	// Flatten any modules before sorting and applying options
	opts = flattenModules(opts)

	// Sort options by precedence
	// Use stable sort because the binding order matters
	slices.SortStableFunc(opts, func(a, b ContainerOption) int {
		return cmp.Compare(a.order(), b.order())
	})

	return applyOptions(opts, func(o ContainerOption) error {
		return o.applyContainer(c)
	})
}

// WithBinding binds the provided function or value when calling [NewContainer].
//
// See [Registry.Bind] for details.
//
// Available options:
//   - [Lifetime] is used to specify how instances are cached when resolved.
//   - [As] registers the binding under an alias type.
//   - [WithTag] specifies the tag associated with the binding.
//   - [WithTagged] specifies a tag for a dependency of the provider.
//   - [WithCloseFunc], [IgnoreCloser], [WithCloser] control closing instances.
func WithBinding(provider any, opts ...BindOption) ContainerOption {
	return newContainerOption(orderBinding, func(c *Container) error {
		_, err := c.registry.Bind(provider, opts...)
		return err
	})
}

// WithLogger sets the logger used by the [Container].
//
// Bindings and scope lifecycles are logged at debug level.
// The default is [slog.Default].
func WithLogger(logger *slog.Logger) ContainerOption {
	return newContainerOption(orderConfig, func(c *Container) error {
		if logger == nil {
			return errors.New("with logger: logger is nil")
		}

		c.logger = logger
		c.registry.logger = logger
		return nil
	})
}

// WithDependencyValidation validates bindings on [Container] creation.
//
// See [Registry.Validate] for details.
func WithDependencyValidation() ContainerOption {
	return newContainerOption(orderValidation, func(c *Container) error {
		return errors.Wrap(c.registry.Validate(), "with dependency validation")
	})
}

// Bind registers or replaces a binding after the Container has been created.
//
// See [Registry.Bind] for details.
func (c *Container) Bind(provider any, opts ...BindOption) (*Binding, error) {
	return c.registry.Bind(provider, opts...)
}

// Lookup returns the current binding for the key.
//
// Returns an error matching [ErrUnboundKey] if the key is not bound.
func (c *Container) Lookup(key Key) (*Binding, error) {
	return c.registry.Lookup(key)
}

// Registry returns the [Registry] used by the Container.
func (c *Container) Registry() *Registry {
	return c.registry
}

// Contains returns true if the [Container] has a binding for the given type.
//
// Available options:
//   - [WithTag] specifies the tag associated with the binding.
func (c *Container) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return c.registry.Contains(newKey(t, opts))
}

// Enter begins a new scope of the given kind.
//
//   - [RequestLifetime] returns a new request [Scope] with an empty cache.
//     It must be exited with [Scope.Exit] or [Container.Exit].
//   - [SingletonLifetime] returns the permanent singleton [Scope].
//   - [TransientLifetime] returns a [Scope] that never caches request instances,
//     so request bindings cannot be resolved from it.
//
// Returns an error if the Container has been closed.
func (c *Container) Enter(kind Lifetime) (*Scope, error) {
	if kind > TransientLifetime {
		return nil, errors.Errorf("di.Container.Enter: unknown %s", kind)
	}

	c.root.mu.RLock()
	defer c.root.mu.RUnlock()

	if c.root.exited {
		return nil, errors.Wrap(ErrContainerClosed, "di.Container.Enter")
	}

	if kind == SingletonLifetime {
		return c.root, nil
	}

	c.logger.Debug("scope entered", "kind", kind.String())

	return newScope(c, kind), nil
}

// NewScope begins a new request [Scope].
//
// It is the same as calling Enter(RequestLifetime).
func (c *Container) NewScope() (*Scope, error) {
	return c.Enter(RequestLifetime)
}

// Exit exits a scope created by this Container. See [Scope.Exit].
func (c *Container) Exit(ctx context.Context, s *Scope) error {
	if s == nil || s.c != c {
		return errors.New("di.Container.Exit: scope does not belong to this container")
	}

	return s.Exit(ctx)
}

// Resolve an instance of the given type with the singleton scope as the active scope.
//
// Request bindings cannot be resolved from the Container. Use a request [Scope].
// This will return an error if the [Container] has been closed.
//
// Available options:
//   - [WithTag] specifies the tag associated with the binding.
func (c *Container) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	return c.ResolveKey(ctx, newKey(t, opts))
}

// ResolveKey resolves an instance for the key with the singleton scope as the active scope.
func (c *Container) ResolveKey(ctx context.Context, key Key) (any, error) {
	val, err := c.root.resolve(ctx, key, newResolveVisitor())
	if err != nil {
		return nil, errors.Wrapf(err, "di.Container.Resolve %s", key)
	}

	return val, nil
}

// Close the [Container] and the singleton instances.
//
// Instances are closed in the reverse order they were created.
// Errors returned from closing instances are joined together.
//
// Request scopes must still be exited by their owners.
// Close will return an error if called more than once.
func (c *Container) Close(ctx context.Context) error {
	return errors.Wrap(c.root.exit(ctx), "di.Container.Close")
}

type optionOrder int8

const (
	orderConfig optionOrder = iota
	orderBinding
	orderValidation
)

func newContainerOption(order optionOrder, fn func(*Container) error) ContainerOption {
	return containerOption{fn: fn, ord: order}
}

type containerOption struct {
	fn  func(*Container) error
	ord optionOrder
}

func (o containerOption) order() optionOrder {
	return o.ord
}

func (o containerOption) applyContainer(c *Container) error {
	return o.fn(c)
}
