package di

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// instanceCache stores the instances created for a scope.
type instanceCache interface {
	// Load returns a cached instance, if present.
	Load(b *Binding) (any, bool)

	// GetOrCreate returns a cached instance if present. Otherwise it calls factory
	// and stores the result. created is true if factory was called and succeeded.
	//
	// Errors from factory are returned and never stored.
	GetOrCreate(b *Binding, factory func() (any, error)) (val any, created bool, err error)

	// Len returns the number of cached instances.
	Len() int

	// Clear discards every cached instance.
	Clear()
}

// sharedCache is used for the singleton scope. It is shared by all concurrent resolutions,
// and guarantees that factory is called at most once per binding by locking a single entry.
type sharedCache struct {
	entries *xsync.MapOf[*Binding, *cacheEntry]
}

type cacheEntry struct {
	mu   sync.Mutex
	done atomic.Bool
	val  any
}

func newSharedCache() *sharedCache {
	return &sharedCache{
		entries: xsync.NewMapOf[*Binding, *cacheEntry](),
	}
}

func (c *sharedCache) Load(b *Binding) (any, bool) {
	e, ok := c.entries.Load(b)
	if !ok || !e.done.Load() {
		return nil, false
	}

	return e.val, true
}

func (c *sharedCache) GetOrCreate(b *Binding, factory func() (any, error)) (any, bool, error) {
	e, _ := c.entries.LoadOrCompute(b, func() *cacheEntry {
		return &cacheEntry{}
	})

	if e.done.Load() {
		return e.val, false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check if another goroutine created the instance while we waited
	if e.done.Load() {
		return e.val, false, nil
	}

	val, err := factory()
	if err != nil {
		return val, false, err
	}

	e.val = val
	e.done.Store(true)

	return val, true, nil
}

func (c *sharedCache) Len() int {
	n := 0
	c.entries.Range(func(_ *Binding, e *cacheEntry) bool {
		if e.done.Load() {
			n++
		}
		return true
	})
	return n
}

func (c *sharedCache) Clear() {
	c.entries.Clear()
}

// localCache is used for a request scope. It is owned by a single unit of work
// and is not safe for concurrent use.
type localCache struct {
	instances map[*Binding]any
}

func newLocalCache() *localCache {
	return &localCache{
		instances: make(map[*Binding]any),
	}
}

func (c *localCache) Load(b *Binding) (any, bool) {
	val, ok := c.instances[b]
	return val, ok
}

func (c *localCache) GetOrCreate(b *Binding, factory func() (any, error)) (any, bool, error) {
	if val, ok := c.instances[b]; ok {
		return val, false, nil
	}

	val, err := factory()
	if err != nil {
		return val, false, err
	}

	c.instances[b] = val
	return val, true, nil
}

func (c *localCache) Len() int {
	return len(c.instances)
}

func (c *localCache) Clear() {
	clear(c.instances)
}

// transientCache never stores anything.
type transientCache struct{}

func (transientCache) Load(*Binding) (any, bool) {
	return nil, false
}

func (transientCache) GetOrCreate(_ *Binding, factory func() (any, error)) (any, bool, error) {
	val, err := factory()
	if err != nil {
		return val, false, err
	}

	return val, true, nil
}

func (transientCache) Len() int {
	return 0
}

func (transientCache) Clear() {}

var (
	_ instanceCache = (*sharedCache)(nil)
	_ instanceCache = (*localCache)(nil)
	_ instanceCache = transientCache{}
)
