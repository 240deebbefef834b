package di

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Inject is an injection point declared as a struct field.
//
// The value is resolved lazily on the first call to [Inject.Get] and the same
// instance is returned for the life of the owning struct.
//
// Fields are attached when the owning struct is created by a provider, or with
// [InjectInto]. Only exported fields are attached. Use the inject struct tag to
// specify a tag or to skip a field:
//
//	type UserModel struct {
//		Pool    di.Inject[DatabasePool]
//		Replica di.Inject[DatabasePool] `inject:"tag=replica"`
//		Manual  di.Inject[Cache]        `inject:"-"`
//	}
//
// Because resolution is deferred, an Inject field may refer back to the type that owns it.
type Inject[T any] struct {
	mu       sync.Mutex
	ctx      context.Context
	r        Resolver
	opts     []ResolveOption
	visitor  *resolveVisitor
	val      T
	resolved bool
}

// Get returns the injected value, resolving it on first use.
//
// Errors are returned to the caller and are not cached, so a later call will try again.
//
// Get may be called from a provider. If the value depends on an instance that is
// still being created, Get returns an error wrapping [ErrCyclicDependency].
func (i *Inject[T]) Get() (T, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.resolved {
		return i.val, nil
	}

	var zero T
	if i.r == nil {
		return zero, errors.Errorf("inject %s: not attached to a resolver", reflect.TypeFor[T]())
	}

	val, err := i.resolve()
	if err != nil {
		return zero, errors.Wrapf(err, "inject %s", reflect.TypeFor[T]())
	}

	i.val = val
	i.resolved = true
	return val, nil
}

func (i *Inject[T]) resolve() (T, error) {
	s, ok := i.r.(*Scope)
	if !ok || i.visitor == nil || i.visitor.Done() {
		return Resolve[T](i.ctx, i.r, i.opts...)
	}

	// The owning struct was created by a resolution that has not returned yet.
	// Continue its chain.
	var val T
	key := newKey(reflect.TypeFor[T](), i.opts)
	anyVal, err := s.resolve(i.ctx, key, i.visitor.Fork())
	if err != nil {
		return val, errors.Wrapf(err, "di.Scope.Resolve %s", key)
	}

	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, nil
}

// MustGet returns the injected value, resolving it on first use.
//
// If the value cannot be resolved, this function will panic.
func (i *Inject[T]) MustGet() T {
	val, err := i.Get()
	if err != nil {
		panic(err)
	}
	return val
}

// Set assigns the value directly. Get will return it without resolving.
func (i *Inject[T]) Set(val T) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.val = val
	i.resolved = true
}

func (i *Inject[T]) attach(ctx context.Context, r Resolver, opts []ResolveOption, visitor *resolveVisitor) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.ctx = ctx
	i.r = r
	i.opts = opts
	i.visitor = visitor
}

type injectionPoint interface {
	attach(ctx context.Context, r Resolver, opts []ResolveOption, visitor *resolveVisitor)
}

var typeInjectionPoint = reflect.TypeFor[injectionPoint]()

// InjectInto attaches the [Inject] fields of the struct pointed to by ptr to the [Resolver].
//
// Use this for consumers that are not created by a provider.
// The fields are resolved lazily with a context that is not canceled when ctx is.
func InjectInto(ctx context.Context, r Resolver, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("di.InjectInto %T: ptr must be a non-nil pointer to a struct", ptr)
	}

	if r == nil {
		return errors.Errorf("di.InjectInto %T: resolver is nil", ptr)
	}

	_, err := attachInjectionPoints(ctx, r, ptr, nil)
	return errors.Wrapf(err, "di.InjectInto %T", ptr)
}

// attachInjectionPoints attaches every injection point field of val, if val is a pointer to a struct.
// It returns the number of fields attached.
// The visitor is nil when val was not created by a resolution.
func attachInjectionPoints(ctx context.Context, r Resolver, val any, visitor *resolveVisitor) (int, error) {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return 0, nil
	}
	rv = rv.Elem()

	fields, err := injectFieldsFor(rv.Type())
	if err != nil || len(fields) == 0 {
		return 0, err
	}

	// Lazy fields outlive the resolution that created the struct
	ctx = context.WithoutCancel(ctx)

	for _, f := range fields {
		ip := rv.Field(f.index).Addr().Interface().(injectionPoint)
		ip.attach(ctx, r, f.opts, visitor)
	}

	return len(fields), nil
}

type injectField struct {
	index int
	opts  []ResolveOption
}

type injectFields struct {
	fields []injectField
	err    error
}

// injectFieldCache caches the injection point fields of each struct type.
var injectFieldCache = xsync.NewMapOf[reflect.Type, injectFields]()

func injectFieldsFor(t reflect.Type) ([]injectField, error) {
	cached, _ := injectFieldCache.LoadOrCompute(t, func() injectFields {
		fields, err := scanInjectFields(t)
		return injectFields{fields: fields, err: err}
	})

	return cached.fields, cached.err
}

func scanInjectFields(t reflect.Type) ([]injectField, error) {
	var fields []injectField

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || !reflect.PointerTo(f.Type).Implements(typeInjectionPoint) {
			continue
		}

		opts, skip, err := parseInjectTag(f.Tag.Get("inject"))
		if err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", t, f.Name)
		}
		if skip {
			continue
		}

		fields = append(fields, injectField{index: i, opts: opts})
	}

	return fields, nil
}

// parseInjectTag parses an inject struct tag.
// Supported formats:
//   - `inject:""` or no tag - inject by type
//   - `inject:"-"` - skip the field
//   - `inject:"tag=primary"` - inject the binding with the given tag
func parseInjectTag(tag string) ([]ResolveOption, bool, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, false, nil
	}

	if tag == "-" {
		return nil, true, nil
	}

	var opts []ResolveOption
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)

		name, value, ok := strings.Cut(part, "=")
		if !ok || name != "tag" || value == "" {
			return nil, false, errors.Errorf("invalid inject tag option %q", part)
		}

		opts = append(opts, WithTag(value))
	}

	return opts, false, nil
}
