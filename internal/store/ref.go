package store

import "sync"

// Ref is a reactive cell. Watchers run synchronously after each change, on
// the goroutine that made it.
type Ref[T any] struct {
	mu       sync.RWMutex
	value    T
	watchers map[uint64]func(T)
	seq      uint64
}

// NewRef creates a Ref holding v.
func NewRef[T any](v T) *Ref[T] {
	return &Ref[T]{value: v, watchers: make(map[uint64]func(T))}
}

// Get returns the current value. Slices and maps are shared, never mutate
// them in place.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set replaces the value and notifies watchers.
func (r *Ref[T]) Set(v T) {
	r.mu.Lock()
	r.value = v
	watchers := r.snapshot()
	r.mu.Unlock()

	for _, fn := range watchers {
		fn(v)
	}
}

// Update replaces the value with fn(current) atomically and notifies watchers.
func (r *Ref[T]) Update(fn func(T) T) {
	r.mu.Lock()
	v := fn(r.value)
	r.value = v
	watchers := r.snapshot()
	r.mu.Unlock()

	for _, w := range watchers {
		w(v)
	}
}

// Watch registers fn to be called with every new value. The returned
// function stops watching.
func (r *Ref[T]) Watch(fn func(T)) (cancel func()) {
	r.mu.Lock()
	r.seq++
	id := r.seq
	r.watchers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.watchers, id)
		r.mu.Unlock()
	}
}

func (r *Ref[T]) snapshot() []func(T) {
	if len(r.watchers) == 0 {
		return nil
	}
	out := make([]func(T), 0, len(r.watchers))
	for _, fn := range r.watchers {
		out = append(out, fn)
	}
	return out
}
