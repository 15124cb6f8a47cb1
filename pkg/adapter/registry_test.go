package adapter

import (
	"testing"

	"github.com/gocyclic/fieldservo/pkg/config"
	"github.com/stretchr/testify/require"
)

// Scenario 6 (spec.md §8): adapter match by (vendor id, product code).
func TestDefaultRegistryMatchesKnownIdentities(t *testing.T) {
	r := DefaultRegistry(config.Default())

	eyou := r.Find(0x00001097, 0x00002406)
	require.NotNil(t, eyou)
	require.Equal(t, "eyou", eyou.Name())

	panasonic := r.Find(0x00000003, 0x11223344)
	require.NotNil(t, panasonic)
	require.Equal(t, "panasonic", panasonic.Name())

	standard := r.Find(0x000116c7, 0x003e0402)
	require.NotNil(t, standard)
	require.Equal(t, "standard", standard.Name())
}

func TestRegistryFindUnknownReturnsNil(t *testing.T) {
	r := DefaultRegistry(config.Default())
	require.Nil(t, r.Find(0xdeadbeef, 0xcafef00d))
}

func TestRegistryFindReturnsFirstMatch(t *testing.T) {
	r := NewRegistry()
	first := NewStandard(MotorIdentity{VendorId: 1, ProductCode: 1})
	second := NewStandard(MotorIdentity{VendorId: 1, ProductCode: 1})
	r.Register(first)
	r.Register(second)

	require.Same(t, first, r.Find(1, 1))
	require.Equal(t, 2, r.Len())

	r.Clear()
	require.Equal(t, 0, r.Len())
	require.Nil(t, r.Find(1, 1))
}
