package adapters

import (
	"fmt"

	"variant-tracker/internal/types"
)

// Registry holds the full set of registered retailer adapters. It is
// read-only after construction and safe to share across concurrent order
// processing.
type Registry struct {
	adapters []types.RetailerAdapter
}

// NewRegistry builds a registry over the given adapters, resolved in
// registration order.
func NewRegistry(adapters ...types.RetailerAdapter) *Registry {
	return &Registry{adapters: adapters}
}

// DefaultRegistry registers every supported retailer.
func DefaultRegistry(config *types.Config, logger types.Logger) *Registry {
	return NewRegistry(
		NewLululemonAdapter(config, logger),
		NewUnderArmourAdapter(config, logger),
	)
}

// Resolve returns the first adapter that claims retailerID. Deterministic:
// the same id always resolves to the same instance. An unmatched id is a
// configuration defect and yields ErrNoAdapter.
func (r *Registry) Resolve(retailerID string) (types.RetailerAdapter, error) {
	for _, adapter := range r.adapters {
		if adapter.Matches(retailerID) {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", types.ErrNoAdapter, retailerID)
}

// Close releases the resources of every registered adapter.
func (r *Registry) Close() {
	for _, adapter := range r.adapters {
		adapter.Close()
	}
}
