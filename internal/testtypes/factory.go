package testtypes

import "sync/atomic"

// Factory counts the instances it creates.
type Factory struct {
	count atomic.Int64
}

func (f *Factory) NewStructA() *StructA {
	n := f.count.Add(1)
	return &StructA{
		Tag: int(n - 1),
	}
}

func (f *Factory) NewInterfaceA() InterfaceA {
	return f.NewStructA()
}

// Calls returns the number of instances created.
func (f *Factory) Calls() int {
	return int(f.count.Load())
}
