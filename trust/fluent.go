package trust

import "sync"

// Fluent holds builder state which is shared by all aliases of a builder.
// Setters may be called from any goroutine. Snapshot copies the state, so later setter calls don't affect it.
type Fluent[S any] struct {
	mu    sync.RWMutex
	state S
}

func NewFluent[S any]() *Fluent[S] {
	return &Fluent[S]{}
}

// Update runs f under the write lock and returns the receiver for chaining.
func (f *Fluent[S]) Update(fn func(*S)) *Fluent[S] {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.state)
	return f
}

// Snapshot returns a copy of the state. Snapshot types must not contain slices or maps which setters modify in place.
func (f *Fluent[S]) Snapshot() S {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Reset unsets every field.
func (f *Fluent[S]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero S
	f.state = zero
}
