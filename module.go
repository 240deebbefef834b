package di

// A Module is a collection of container options.
// It can be used to export a re-usable group of related bindings.
//
// Example:
//
//	var DatabaseModule = di.Module{
//		di.WithBinding(NewDatabasePool, di.As[DatabasePool]()),
//		di.WithBinding(NewUserModel, di.RequestLifetime),
//	}
type Module []ContainerOption

func (Module) applyContainer(*Container) error { return nil }
func (Module) order() optionOrder              { return orderBinding }

// WithModule applies the options in a [Module] when calling [NewContainer].
//
// Example:
//
//	c, err := di.NewContainer(
//		di.WithModule(DatabaseModule),
//		di.WithBinding(NewHandler),
//	)
func WithModule(m Module) ContainerOption {
	return m
}

// flattenModules expands nested modules in place, preserving order.
func flattenModules(opts []ContainerOption) []ContainerOption {
	flat := make([]ContainerOption, 0, len(opts))
	for _, opt := range opts {
		if mod, ok := opt.(Module); ok {
			flat = append(flat, flattenModules(mod)...)
			continue
		}
		flat = append(flat, opt)
	}

	return flat
}
