// Package busmaster declares the external collaborator interfaces the core
// requires from the underlying fieldbus master library: open a bus, create a
// domain, slave-configure, program PDOs and distributed clocks, register the
// domain, activate, and transfer the process image each cycle (spec.md §1,
// out of scope for this module's implementation — specified only by the
// shape of the interface).
//
// The split mirrors the teacher's pkg/can.Bus interface: a narrow surface
// the core programs against, with a real implementation living outside this
// module (see pkg/busmock for the in-memory test double used here).
package busmaster

import (
	"time"

	"github.com/gocyclic/fieldservo/pkg/objdict"
)

// RegisterEntry is one row of the domain registration list built in
// bootstrap step 6: one per non-gap PDO entry, recording where the master
// should write the resolved byte offset once the domain is registered
// (spec.md §4.7/§9's "offsets-by-reference" design note).
type RegisterEntry struct {
	Alias       uint16
	Position    uint16
	VendorId    uint32
	ProductCode uint32
	Index       uint16
	SubIndex    uint8
	// OffsetSlot receives the resolved byte offset on Domain.Register.
	OffsetSlot *int64
}

// SyncManagerEntries is the four synchronous-manager configuration emitted
// in bootstrap step 5 (spec.md §4.7): SM0/SM1 are fixed no-PDO watchdog-off
// managers, SM2 carries the Rx (output) PDOs with watchdog on, SM3 the Tx
// (input) PDOs with watchdog off.
type SyncManagerEntries struct {
	SM2Rx []objdict.Entry
	SM3Tx []objdict.Entry
}

// InitParams are the service-data writes bootstrap step 4 attempts on each
// axis. Failures here are warnings, not fatal (spec.md §4.7).
type InitParams struct {
	InterpolationExponent int8
	InterpolationBaseMs   uint32
	ProfileVelocity       uint32
	ProfileAcceleration   uint32
	ProfileDeceleration   uint32
}

// SlaveConfig is a handle to one slave's configuration surface, obtained by
// (bus position, vendor id, product code) in bootstrap step 3.
type SlaveConfig interface {
	// WriteInitParams performs the bootstrap step-4 service-data writes.
	WriteInitParams(p InitParams) error
	// ConfigureSyncManagers programs SM0-3 per sm.
	ConfigureSyncManagers(sm SyncManagerEntries) error
	// ConfigureDCSync0 programs the distributed-clock sync0 period and
	// shift for this slave (bootstrap step 8). Only called on slaves that
	// support distributed clocks.
	ConfigureDCSync0(shift int32, periodNs int64) error
}

// Domain is the registered set of process-image entries the master
// transfers each cycle.
type Domain interface {
	// Register appends entries to the domain registration list, resolving
	// each entry's OffsetSlot in place (spec.md §4.7 step 7).
	Register(entries []RegisterEntry) error
	// Process drains the most recently received frame into the process
	// image (spec.md §4.9's process_domain()).
	Process() error
	// Queue marks the process image's output region ready to send.
	Queue() error
}

// Master is the single entry point the bootstrapper acquires in step 1.
type Master interface {
	// CreateDomain allocates a new Domain (bootstrap step 2).
	CreateDomain() (Domain, error)
	// SlaveConfig obtains a configuration handle for one slave (step 3).
	SlaveConfig(position uint16, vendorId, productCode uint32) (SlaveConfig, error)
	// SelectReferenceClock designates one slave as the distributed-clock
	// reference (bootstrap step 8).
	SelectReferenceClock(position uint16) error
	// Activate brings the bus into OPERATIONAL state (step 9).
	Activate() error
	// ProcessImage returns the shared buffer the master fills on Receive
	// and drains on Send (step 9).
	ProcessImage() []byte
	// SetApplicationTime sets the master's notion of now (spec.md §4.9).
	SetApplicationTime(now time.Time)
	// Receive pulls the latest frame off the wire into internal state.
	Receive() error
	// SyncSlaveClocks distributes the reference clock to all slaves.
	SyncSlaveClocks() error
	// Send transmits the process image's output region.
	Send() error
	// Release tears down the bus connection (on destroy).
	Release() error
}
