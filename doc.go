/*
Package di is a dependency injection container with scoped instance lifetimes.

Bindings map a [Key] (a type and an optional tag) to a provider: a constructor
function or a value. Each binding has a [Lifetime]:

  - [SingletonLifetime] one instance for the life of the [Container].
  - [RequestLifetime] one instance per request [Scope], discarded on [Scope.Exit].
  - [TransientLifetime] a new instance for every resolution.

Example:

	c, err := di.NewContainer(
		di.WithBinding(NewDatabasePool, di.As[DatabasePool]()),
		di.WithBinding(NewUserModel, di.RequestLifetime),
	)
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	scope, err := c.NewScope()
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)

	users, err := di.Resolve[*UserModel](ctx, scope)

Consumers can declare injection points instead of resolving directly:
[Inject] struct fields are resolved lazily on first use, and an [Invoker] resolves
a function's parameters immediately before each call.

In tests, rebind a key to swap an implementation:

	c.Bind(NewFakeDatabasePool, di.As[DatabasePool]())
*/
package di
