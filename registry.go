package di

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/sectrean/inject-kit/internal/errors"
)

// Registry stores the bindings from keys to providers.
//
// Bind takes an exclusive lock and lookups take a shared lock, so a Registry
// is safe for concurrent use. Rebinding while resolving is allowed, but a
// resolution that already looked up a binding will finish with it.
type Registry struct {
	mu       sync.RWMutex
	bindings map[Key]*Binding
	logger   *slog.Logger
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Key]*Binding),
		logger:   slog.Default(),
	}
}

// Bind registers the provided function or value.
//
// If a function is provided, it will be called to create instances when resolved.
// Its parameters are its dependencies and will be resolved first, in declaration order.
// The function may also accept a [context.Context] or a [Resolver].
// The function must return an instance, or the instance and an error.
//
// If a value is provided, it will be returned as the instance when resolved.
// The value can be a struct or pointer and always has [SingletonLifetime].
//
// Binding a key that is already bound replaces the prior binding.
//
// Errors returned by Bind match [ErrInvalidBinding].
func (r *Registry) Bind(provider any, opts ...BindOption) (*Binding, error) {
	b, err := newBinding(provider, opts)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, ErrInvalidBinding), "bind %T", provider)
	}

	r.add(b)
	return b, nil
}

func (r *Registry) add(b *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range b.Keys() {
		if prev, ok := r.bindings[key]; ok {
			r.logger.Debug("binding replaced",
				"key", key.String(),
				"lifetime", b.lifetime.String(),
				"previous", prev.String(),
			)
		} else {
			r.logger.Debug("binding registered",
				"key", key.String(),
				"lifetime", b.lifetime.String(),
			)
		}

		r.bindings[key] = b
	}
}

// Lookup returns the current binding for the key.
//
// Returns an error matching [ErrUnboundKey] if the key is not bound.
func (r *Registry) Lookup(key Key) (*Binding, error) {
	b := r.lookup(key)
	if b == nil {
		return nil, errors.Wrapf(ErrUnboundKey, "lookup %s", key)
	}

	return b, nil
}

func (r *Registry) lookup(key Key) *Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.bindings[key]
}

// Contains returns true if the key is bound.
func (r *Registry) Contains(key Key) bool {
	return r.lookup(key) != nil
}

// Bindings returns the distinct bindings currently registered, sorted by key.
func (r *Registry) Bindings() []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Binding]struct{}, len(r.bindings))
	bindings := make([]*Binding, 0, len(r.bindings))

	for _, b := range r.bindings {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		bindings = append(bindings, b)
	}

	slices.SortFunc(bindings, func(a, b *Binding) int {
		return strings.Compare(a.String(), b.String())
	})

	return bindings
}

// Validate checks every binding before anything is resolved.
//
// It reports dependencies that are not bound, dependency cycles, and singleton bindings
// that depend on request bindings. All problems are joined into the returned error.
func (r *Registry) Validate() error {
	var errs errors.MultiError
	problems := make(map[validateKey]string)

	for _, b := range r.Bindings() {
		prob := r.validateBinding(b, b.lifetime == SingletonLifetime, problems, newResolveVisitor())
		if prob != "" {
			errs = errs.Append(errors.Errorf("binding %s: %s", b, prob))
		}
	}

	return errs.Join()
}

type validateKey struct {
	b        *Binding
	rootOnly bool
}

// validateBinding returns the problems found with a binding and its dependencies.
//
// rootOnly is set when the binding is resolved on behalf of a singleton,
// where request bindings are not available.
func (r *Registry) validateBinding(
	b *Binding,
	rootOnly bool,
	problems map[validateKey]string,
	visitor *resolveVisitor,
) string {
	vk := validateKey{b: b, rootOnly: rootOnly}
	if prob, ok := problems[vk]; ok {
		return prob
	}

	if !visitor.Enter(b) {
		return fmt.Sprintf("%s: %s", ErrCyclicDependency, visitor.Trail(b))
	}
	defer visitor.Leave(b)

	if b.lifetime == SingletonLifetime {
		rootOnly = true
	}

	var probs []string
	for _, dep := range b.provider.Dependencies() {
		if isSupplied(dep.Type) {
			continue
		}

		depBinding := r.lookup(dep)
		if depBinding == nil {
			probs = append(probs, fmt.Sprintf("dependency %s: %s", dep, ErrUnboundKey))
			continue
		}

		if rootOnly && depBinding.lifetime == RequestLifetime {
			probs = append(probs, fmt.Sprintf("dependency %s: %s", dep, ErrNoRequestScope))
			continue
		}

		if prob := r.validateBinding(depBinding, rootOnly, problems, visitor); prob != "" {
			probs = append(probs, fmt.Sprintf("dependency %s: %s", dep, prob))
		}
	}

	prob := strings.Join(probs, "; ")
	problems[vk] = prob
	return prob
}
