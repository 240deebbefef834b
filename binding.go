package di

import (
	"reflect"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Binding maps one or more [Key]s to a provider and a [Lifetime].
//
// Bindings are created with [Registry.Bind], [Container.Bind], or [WithBinding].
// A Binding is immutable once registered.
type Binding struct {
	t             reflect.Type
	tag           any
	aliases       []reflect.Type
	lifetime      Lifetime
	provider      provider
	closerFactory closerFactory
}

// provider creates instances for a binding.
type provider interface {
	// Type returns the type of the instances created.
	Type() reflect.Type

	// Dependencies returns the keys of the values passed to New, in declaration order.
	Dependencies() []Key

	// New creates an instance from resolved dependency values.
	New(deps []reflect.Value) (any, error)
}

func newBinding(p any, opts []BindOption) (*Binding, error) {
	if isNil(p) {
		return nil, errors.New("provider is nil")
	}

	if _, ok := p.(BindOption); ok {
		return nil, errors.Errorf("unexpected BindOption %T as provider", p)
	}

	var prov provider
	var err error
	var closers closerFactory

	switch t := reflect.TypeOf(p); t.Kind() {
	case reflect.Func:
		prov, err = newFuncProvider(p)
		// Constructed instances are closed by default
		closers = getCloser
	case reflect.Ptr, reflect.Struct, reflect.Interface:
		prov, err = newValueProvider(p)
	default:
		err = errors.Errorf("unsupported kind %v", t.Kind())
	}
	if err != nil {
		return nil, err
	}

	b := &Binding{
		t:             prov.Type(),
		provider:      prov,
		closerFactory: closers,
	}

	err = applyOptions(opts, func(opt BindOption) error {
		return opt.applyBinding(b)
	})
	if err != nil {
		return nil, err
	}

	if _, ok := prov.(*valueProvider); ok && b.lifetime != SingletonLifetime {
		return nil, errors.Errorf("value must have %s lifetime, got %s", SingletonLifetime, b.lifetime)
	}

	return b, nil
}

// Key returns the primary key of the binding.
func (b *Binding) Key() Key {
	keys := b.Keys()
	return keys[0]
}

// Keys returns every key the binding is registered under.
//
// If aliases were specified with [As], the binding is only registered under the aliases.
func (b *Binding) Keys() []Key {
	if len(b.aliases) == 0 {
		return []Key{{Type: b.t, Tag: b.tag}}
	}

	keys := make([]Key, len(b.aliases))
	for i, alias := range b.aliases {
		keys[i] = Key{Type: alias, Tag: b.tag}
	}
	return keys
}

// Type returns the type of the instances created by the binding's provider.
func (b *Binding) Type() reflect.Type {
	return b.t
}

// Lifetime returns the lifetime of the binding.
func (b *Binding) Lifetime() Lifetime {
	return b.lifetime
}

// Dependencies returns the keys the provider depends on, in declaration order.
func (b *Binding) Dependencies() []Key {
	deps := b.provider.Dependencies()
	if len(deps) == 0 {
		return nil
	}

	return append([]Key(nil), deps...)
}

func (b *Binding) String() string {
	return b.Key().String() + " (" + b.lifetime.String() + ")"
}

func (b *Binding) closerFor(val any) Closer {
	if isNil(val) || b.closerFactory == nil {
		return nil
	}

	return b.closerFactory(val)
}

func (b *Binding) addAlias(alias reflect.Type) error {
	if !b.t.AssignableTo(alias) {
		return errors.Errorf("type %s not assignable to %s", b.t, alias)
	}

	b.aliases = append(b.aliases, alias)
	return nil
}

func validateServiceType(t reflect.Type) error {
	switch t {
	// These types are supplied by the resolver and cannot be bound.
	case typeContext,
		typeResolver,
		typeError:
		return errors.Errorf("invalid service type %s", t)
	}

	switch t.Kind() {
	case reflect.Interface,
		reflect.Ptr,
		reflect.Struct:
		return nil
	}

	return errors.Errorf("invalid service type %s", t)
}

type funcProvider struct {
	t    reflect.Type
	fn   reflect.Value
	deps []Key
}

func newFuncProvider(fn any) (*funcProvider, error) {
	fnType := reflect.TypeOf(fn)

	if fnType.IsVariadic() {
		return nil, errors.New("variadic functions are not supported")
	}

	// Get the return type
	var t reflect.Type
	switch {
	case fnType.NumOut() == 1:
		t = fnType.Out(0)
	case fnType.NumOut() == 2 && fnType.Out(1) == typeError:
		t = fnType.Out(0)
	default:
		return nil, errors.New("function must return T or (T, error)")
	}

	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	var deps []Key
	if fnType.NumIn() > 0 {
		deps = make([]Key, fnType.NumIn())
		for i := range fnType.NumIn() {
			deps[i] = Key{Type: fnType.In(i)}
		}
	}

	return &funcProvider{
		t:    t,
		fn:   reflect.ValueOf(fn),
		deps: deps,
	}, nil
}

func (p *funcProvider) Type() reflect.Type {
	return p.t
}

func (p *funcProvider) Dependencies() []Key {
	return p.deps
}

func (p *funcProvider) New(deps []reflect.Value) (any, error) {
	// Call the function
	out := p.fn.Call(deps)

	// Extract the return value and error, if any
	val := out[0].Interface()

	var err error
	if len(out) == 2 {
		err, _ = out[1].Interface().(error)
	}

	return val, err
}

type valueProvider struct {
	t   reflect.Type
	val any
}

func newValueProvider(val any) (*valueProvider, error) {
	t := reflect.TypeOf(val)
	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	return &valueProvider{
		t:   t,
		val: val,
	}, nil
}

func (p *valueProvider) Type() reflect.Type {
	return p.t
}

func (*valueProvider) Dependencies() []Key {
	return nil
}

func (p *valueProvider) New([]reflect.Value) (any, error) {
	return p.val, nil
}

var (
	_ provider = (*funcProvider)(nil)
	_ provider = (*valueProvider)(nil)
)
