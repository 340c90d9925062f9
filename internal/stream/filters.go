package stream

import (
	"fmt"

	"github.com/absoluteAquarian/monosound/internal/filter"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
)

// ApplyFilters replaces the stream's filter chain wholesale. A
// singleton instance (a Definition's configuration template, never
// meant to process audio directly) is rejected (§4.6).
func (p *Package) ApplyFilters(registry *filter.Registry, chain []filter.Instance) error {
	for _, inst := range chain {
		if registry.IsSingleton(inst) {
			return fmt.Errorf("stream %s: applyFilters given a filter singleton instead of a CreateInstance clone: %w",
				p.name, monoerr.ErrInvalidParameter)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]filter.Instance, len(chain))
	copy(cp, chain)
	p.filterChain = cp
	return nil
}
