package adapter

import "github.com/gocyclic/fieldservo/pkg/config"

// Registry holds a sequence of adapters queried by (vendor id, product
// code). It is a handle passed to bootstrap rather than a process-wide
// singleton (spec.md §9's explicit design note), mirroring the teacher's
// can.RegisterInterface/interfaceRegistry pattern generalized from
// "registered at init() time" to "constructed per test/run".
type Registry struct {
	adapters []Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an adapter. Registration order is insertion order;
// duplicates are allowed and Find returns the first match.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Find returns the first registered adapter whose Supports predicate is
// true for (vendorId, productCode), or nil if none match.
func (r *Registry) Find(vendorId, productCode uint32) Adapter {
	for _, a := range r.adapters {
		if a.Supports(vendorId, productCode) {
			return a
		}
	}
	return nil
}

// Clear removes every registered adapter. Used by tests; there is no
// removal API beyond this bulk clear (spec.md §4.3).
func (r *Registry) Clear() {
	r.adapters = nil
}

// Len reports how many adapters are registered.
func (r *Registry) Len() int {
	return len(r.adapters)
}

// DefaultRegistry returns a Registry pre-populated with the Standard, EYOU
// and Panasonic adapters for the well-known identities this controller
// ships with, tunables as given. Convenience for callers that don't need a
// substitute registry.
func DefaultRegistry(tun config.Tunables) *Registry {
	r := NewRegistry()
	r.Register(NewEyou(MotorIdentity{
		VendorId:    0x00001097,
		ProductCode: 0x00002406,
		Name:        "EYOU EDA servo drive",
	}, tun))
	r.Register(NewPanasonic(MotorIdentity{
		VendorId:    0x00000003,
		ProductCode: 0x11223344,
		Name:        "Panasonic MINAS A6",
	}))
	r.Register(NewStandard(MotorIdentity{
		VendorId:    0x000116c7,
		ProductCode: 0x003e0402,
		Name:        "generic CiA-402 drive",
	}))
	return r
}
