package preview

import "sync"

// Property holds a comparable value and notifies subscribers only when Set
// replaces it with a different value.
//
// Set calls are serialized, so subscribers observe changes in the order they
// were made. A subscriber must not call Set on the same property.
type Property[T comparable] struct {
	setMu sync.Mutex
	mu    sync.Mutex
	value T
	subs  []subscriber[T]
	next  int
}

type subscriber[T comparable] struct {
	id int
	fn func(old, new T)
}

// Get returns the current value.
func (p *Property[T]) Get() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Set stores v and reports whether it differed from the previous value.
func (p *Property[T]) Set(v T) bool {
	p.setMu.Lock()
	defer p.setMu.Unlock()

	p.mu.Lock()
	old := p.value
	if old == v {
		p.mu.Unlock()
		return false
	}
	p.value = v
	subs := make([]subscriber[T], len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, s := range subs {
		s.fn(old, v)
	}
	return true
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (p *Property[T]) Subscribe(fn func(old, new T)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.next
	p.next++
	p.subs = append(p.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, s := range p.subs {
				if s.id == id {
					p.subs = append(p.subs[:i], p.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// clear drops every subscriber.
func (p *Property[T]) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = nil
}
