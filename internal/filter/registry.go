package filter

import (
	"fmt"

	"github.com/absoluteAquarian/monosound/internal/monoerr"
)

// Registry maps filter IDs to their Definition singletons. The engine
// owns exactly one Registry, pre-populated with the three built-in
// kinds at construction.
type Registry struct {
	definitions map[ID]*Definition
}

// NewRegistry builds a Registry pre-populated with BiquadResonant,
// Echo, and Freeverb.
func NewRegistry() *Registry {
	r := &Registry{definitions: make(map[ID]*Definition, 3)}
	r.Register(NewBiquadDefinition())
	r.Register(NewEchoDefinition())
	r.Register(NewFreeverbDefinition())
	return r
}

// Register adds or replaces a filter definition.
func (r *Registry) Register(def *Definition) {
	r.definitions[def.ID()] = def
}

// Get looks up a registered definition by ID.
func (r *Registry) Get(id ID) (*Definition, error) {
	def, ok := r.definitions[id]
	if !ok {
		return nil, fmt.Errorf("filter: unknown filter id %v: %w", id, monoerr.ErrInvalidParameter)
	}
	return def, nil
}

// CreateInstance looks up id and creates a fresh Instance from its
// singleton in one call.
func (r *Registry) CreateInstance(id ID) (Instance, error) {
	def, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return def.CreateInstance(), nil
}

// IsSingleton reports whether inst is a Definition's singleton
// template rather than a CreateInstance clone. The stream package uses
// this to reject `applyFilters` calls passed a singleton directly
// (§4.6: "Singleton instances are rejected").
func (r *Registry) IsSingleton(inst Instance) bool {
	for _, def := range r.definitions {
		if def.singleton == inst {
			return true
		}
	}
	return false
}
