package di

import (
	"strings"
	"sync"
	"sync/atomic"
)

// resolveVisitor tracks the bindings in the current resolution chain.
//
// Injection points attached during a resolution keep a reference to its visitor.
// Until the resolution finishes they continue the chain so a cycle closed through
// an injection point is reported instead of waiting on an instance that is still being created.
type resolveVisitor struct {
	mu      sync.Mutex
	visited map[*Binding]struct{}
	trail   []*Binding
	done    atomic.Bool
}

func newResolveVisitor() *resolveVisitor {
	return &resolveVisitor{
		visited: make(map[*Binding]struct{}),
	}
}

// Enter returns false if the binding is already in the chain.
func (v *resolveVisitor) Enter(b *Binding) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.visited[b]; ok {
		return false
	}

	v.visited[b] = struct{}{}
	v.trail = append(v.trail, b)
	return true
}

func (v *resolveVisitor) Leave(b *Binding) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.visited, b)
	v.trail = v.trail[:len(v.trail)-1]
}

// Trail returns the chain of keys ending with b, e.g. "A -> B -> A".
func (v *resolveVisitor) Trail(b *Binding) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	keys := make([]string, 0, len(v.trail)+1)
	for _, visited := range v.trail {
		keys = append(keys, visited.Key().String())
	}
	keys = append(keys, b.Key().String())

	return strings.Join(keys, " -> ")
}

// Fork returns a new visitor that starts with a copy of the current chain.
func (v *resolveVisitor) Fork() *resolveVisitor {
	v.mu.Lock()
	defer v.mu.Unlock()

	fork := &resolveVisitor{
		visited: make(map[*Binding]struct{}, len(v.visited)),
		trail:   make([]*Binding, len(v.trail)),
	}
	for b := range v.visited {
		fork.visited[b] = struct{}{}
	}
	copy(fork.trail, v.trail)

	return fork
}

// Finish marks the resolution as complete.
func (v *resolveVisitor) Finish() {
	v.done.Store(true)
}

// Done returns true once the resolution that owns the visitor has returned.
func (v *resolveVisitor) Done() bool {
	return v.done.Load()
}
