// Package axis holds the controller's per-drive record: identity, adapter,
// assigned PDO offsets, and the cycle-to-cycle runtime state the
// state-machine driver reads and writes (spec.md §3 "Axis slot").
package axis

import (
	"github.com/gocyclic/fieldservo/pkg/adapter"
	"github.com/gocyclic/fieldservo/pkg/objdict"
)

// Axis is one configured drive. Its runtime fields are touched only by the
// tick thread (spec.md §5); no locking is needed around them.
type Axis struct {
	BusPosition int
	VendorId    uint32
	ProductCode uint32

	Adapter adapter.Adapter

	RxOffsets []int64
	TxOffsets []int64

	// Runtime state, advanced once per cycle by the state-machine driver.
	OpMode        uint8
	LastStatus    uint16
	CSPTarget     int32
	CSPWarmup     int
	ServoEnabled  bool
	SeenEnabled   bool
	LastActualPos int32
	RunEnable     bool

	// FaultCycles counts consecutive cycles the fault bit has stayed set,
	// for the FaultPersistent observable error.
	FaultCycles int
}

// New builds an axis slot in its initial, not-yet-enabled state.
func New(busPosition int, a adapter.Adapter) *Axis {
	identity := a.MotorInfo()
	return &Axis{
		BusPosition: busPosition,
		VendorId:    identity.VendorId,
		ProductCode: identity.ProductCode,
		Adapter:     a,
		OpMode:      objdict.ModeCyclicSyncPosition,
	}
}

// Name is the adapter's short name, used by the status(handle, axis)
// surface's adapter_name query.
func (a *Axis) Name() string { return a.Adapter.Name() }

// MotorInfoString renders a one-line identity summary for the motor_info query.
func (a *Axis) MotorInfoString() string {
	id := a.Adapter.MotorInfo()
	if id.Name != "" {
		return id.Name
	}
	return "unknown drive"
}
