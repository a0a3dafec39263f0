package templates

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry errors.
var (
	ErrDuplicateTemplate = errors.New("duplicate template")
	ErrUnknownTemplate   = errors.New("unknown template")
	ErrTemplateIntegrity = errors.New("template integrity violation")
)

// Registry holds the available template variants.
// It is populated at startup and read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	variants map[string]*Variant
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{variants: make(map[string]*Variant)}
}

// Register adds a variant to the registry.
// It returns ErrDuplicateTemplate if the id is already present and
// ErrTemplateIntegrity if the variant fails validation.
func (r *Registry) Register(variant *Variant) error {
	if variant == nil {
		return fmt.Errorf("%w: nil variant", ErrTemplateIntegrity)
	}
	if err := variant.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.variants[variant.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTemplate, variant.ID)
	}

	r.variants[variant.ID] = variant
	r.order = append(r.order, variant.ID)
	return nil
}

// Get returns the variant with the given id.
func (r *Registry) Get(id string) (*Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variant, ok := r.variants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return variant, nil
}

// List returns all registered variants sorted by id.
func (r *Registry) List() []*Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	sort.Strings(ids)

	variants := make([]*Variant, 0, len(ids))
	for _, id := range ids {
		variants = append(variants, r.variants[id])
	}
	return variants
}
