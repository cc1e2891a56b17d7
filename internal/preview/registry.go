package preview

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Definition binds a tag name to a card constructor and its renderer.
type Definition struct {
	Tag      string
	New      func(opts ...Option) *Card
	Renderer *Renderer
}

// Registry maps tag names to definitions. It is populated explicitly at
// bootstrap; redefining a tag is an error.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Define registers d. It fails with ErrInvalidTag or ErrAlreadyRegistered.
func (r *Registry) Define(d Definition) error {
	if !validTag(d.Tag) {
		return fmt.Errorf("%w: %q", ErrInvalidTag, d.Tag)
	}
	if d.New == nil || d.Renderer == nil {
		return fmt.Errorf("definition for %q is incomplete", d.Tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[d.Tag]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, d.Tag)
	}
	r.defs[d.Tag] = d
	return nil
}

// Lookup returns the definition for tag.
func (r *Registry) Lookup(tag string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[tag]
	return d, ok
}

// Tags lists registered tag names in order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.defs))
	for tag := range r.defs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// validTag applies the custom element naming rule: lowercase ASCII, starts
// with a letter and contains a hyphen.
func validTag(tag string) bool {
	if tag == "" || !strings.Contains(tag, "-") {
		return false
	}
	if tag[0] < 'a' || tag[0] > 'z' {
		return false
	}
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
		default:
			return false
		}
	}
	return true
}

// DefineCard registers the link preview card with fetcher f and renderer rnd.
// Options in base apply to every card created through the definition.
func DefineCard(reg *Registry, f Fetcher, rnd *Renderer, base ...Option) error {
	return reg.Define(Definition{
		Tag: Tag,
		New: func(opts ...Option) *Card {
			all := make([]Option, 0, len(base)+len(opts))
			all = append(all, base...)
			all = append(all, opts...)
			return New(f, all...)
		},
		Renderer: rnd,
	})
}
