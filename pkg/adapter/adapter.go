// Package adapter implements the vendor-adapter abstraction described in
// spec.md §4.2/§4.3: a capability object per (vendor id, product code) pair
// that supplies motor identity, PDO descriptors, synchronous-manager
// programming, status/control codecs, and an optional override of the
// standard CiA-402 state-machine step.
//
// The shape mirrors the teacher's Bus interface + registry pattern
// (pkg/can/bus.go's Bus interface plus RegisterInterface/interfaceRegistry),
// generalized from "named CAN backend" to "named servo drive adapter".
package adapter

import (
	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/gocyclic/fieldservo/pkg/pimage"
)

// MotorIdentity identifies one physical drive (spec.md DATA MODEL).
type MotorIdentity struct {
	VendorId       uint32
	ProductCode    uint32
	Revision       uint32
	Serial         uint32
	Name           string
	SupportsDC     bool
	BusPosition    int
}

// MotorStatus is the decoded input (Tx) side of a drive for one cycle.
type MotorStatus struct {
	StatusWord    uint16
	ActualPos     int32
	ActualVel     int32
	ActualTor     int16
	OpMode        uint8
	ErrorCode     uint16
}

// MotorControl is the encoded output (Rx) side of a drive for one cycle.
type MotorControl struct {
	ControlWord uint16
	OpMode      uint8
	TargetPos   int32
	ProbeFunc   uint16
}

// Offsets maps each entry of an adapter's Rx/Tx descriptor (in registration
// order) to its assigned byte offset within the process image. Gap entries
// have no offset and are represented by a negative value.
type Offsets struct {
	Rx []int64
	Tx []int64
}

// SlaveConfig is the narrow slice of the external bus-master's
// slave-configuration handle that an adapter needs in order to program
// synchronous managers. It is supplied by pkg/busmaster and is intentionally
// minimal: this package never talks to real hardware (spec.md §1, out of
// scope).
type SlaveConfig interface {
	// ConfigurePDOs programs SM2 (Rx, watchdog on) and SM3 (Tx, watchdog
	// off) using the entries supplied.
	ConfigurePDOs(rx, tx []objdict.Entry) error
}

// Adapter is the per-vendor capability object (spec.md §4.2).
type Adapter interface {
	// MotorInfo returns the static identity this adapter represents.
	MotorInfo() MotorIdentity
	// Supports reports whether this adapter handles the given
	// (vendor id, product code) pair.
	Supports(vendorId, productCode uint32) bool
	// Name is a short human-readable adapter name (e.g. "standard",
	// "eyou", "panasonic").
	Name() string
	// RxPDO returns the output entries (controller -> drive), possibly
	// containing gaps.
	RxPDO() []objdict.Entry
	// TxPDO returns the input entries (drive -> controller), possibly
	// containing gaps.
	TxPDO() []objdict.Entry
	// ConfigurePDOs programs the drive's synchronous managers for this
	// adapter's Rx/Tx descriptors.
	ConfigurePDOs(cfg SlaveConfig) error
	// ReadStatus decodes the drive's Tx block out of the process image at
	// the given offsets.
	ReadStatus(img *pimage.Image, offsets []int64) (MotorStatus, error)
	// WriteControl encodes ctrl into the drive's Rx block in the process
	// image at the given offsets.
	WriteControl(img *pimage.Image, offsets []int64, ctrl MotorControl) error
	// MakeControl is the per-cycle state-machine step: given the last read
	// status word, the adapter decides the next control word to emit and
	// flags any side effects the driver must apply (seeding the CSP
	// target, entering the warmup phase). Most adapters reuse
	// StandardMakeControl. Deterministic, no I/O (spec.md §4.2).
	MakeControl(statusWord uint16) Transition
}

// Transition is the result of one CiA-402 state-machine step (spec.md
// §4.5's transition table). It carries enough information for the driver to
// apply side effects that require data the adapter itself does not hold
// (the freshly read actual position, the axis's servo_enabled flag).
type Transition struct {
	// ControlWord is the value to write to the drive's control word this
	// cycle.
	ControlWord uint16
	// SeedTarget requests that the driver set the cached CSP target to the
	// actual position read this cycle.
	SeedTarget bool
	// EnterOperationEnabled requests that the driver latch
	// servo_enabled := true and restart the warmup countdown.
	EnterOperationEnabled bool
	// RunEnableOverride, when non-nil, sets the axis's run-enable flag
	// (spec.md DATA MODEL's Axis slot runtime field distinct from
	// servo_enabled). Only vendor overrides such as EYOU's following-error
	// and repeat-reset handling touch this; nil means "leave unchanged".
	RunEnableOverride *bool
}

// FaultPersistent is the observable error condition named in spec.md §4.5:
// the fault bit stayed set for more cycles than a reset attempt should take.
type FaultPersistent struct {
	AxisBusPosition int
	Cycles          int
}

func (f *FaultPersistent) Error() string {
	return "servo: fault persists after reset attempts"
}
