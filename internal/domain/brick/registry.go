package brick

import (
	"sort"
	"sync"

	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// Registry is the in-process brick registry: bricks are registered once
// at startup and live for the process, per spec.md §3 ("Lifecycle").
type Registry struct {
	mu     sync.RWMutex
	bricks map[string]*Brick
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bricks: make(map[string]*Brick)}
}

// Register validates and adds a brick descriptor. Registering a brick id
// twice replaces the prior descriptor — callers typically register all
// builtin packs once during process startup.
func (r *Registry) Register(b *Brick) error {
	if err := b.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bricks[b.ID] = b
	return nil
}

// MustRegister panics if Register fails — used for builtin packs whose
// descriptors are known-good at compile time.
func (r *Registry) MustRegister(b *Brick) {
	if err := r.Register(b); err != nil {
		panic(err)
	}
}

// Lookup finds a brick by id.
func (r *Registry) Lookup(id string) (*Brick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bricks[id]
	if !ok {
		return nil, errors.NotFound("brick", id)
	}
	return b, nil
}

// All enumerates all registered bricks, sorted by id for deterministic
// output (used by the registry-listing HTTP endpoint and the CLI).
func (r *Registry) All() []*Brick {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Brick, 0, len(r.bricks))
	for _, b := range r.bricks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
