// Package objdict holds the canonical CiA-402 object dictionary entries used
// by this controller: control/status words, CSP target/actual position,
// operation mode, probe objects, and the diagnostic block (error code,
// following error, digital inputs, servo error). See spec.md §4.1 and §6.
package objdict

// Entry describes a single CiA-402 object dictionary entry as it appears in
// a PDO mapping: (index, sub-index, bit length). An entry with Index == 0 is
// a gap/padding entry and is never registered with the bus master.
type Entry struct {
	Index    uint16
	SubIndex uint8
	BitLen   uint8
	Name     string
}

// IsGap reports whether the entry is padding rather than a real mapped
// object.
func (e Entry) IsGap() bool {
	return e.Index == 0
}

// Direction distinguishes the two PDO flows from the controller's point of
// view.
type Direction int

const (
	// Rx: output, controller -> drive.
	Rx Direction = iota
	// Tx: input, drive -> controller.
	Tx
)

// Descriptor is an ordered list of entries making up one PDO, keyed by its
// CiA-402 PDO index (Rx in the 0x1600 range, Tx in the 0x1A00 range).
type Descriptor struct {
	PdoIndex  uint16
	Direction Direction
	Entries   []Entry
}

// Well-known CiA-402 object indices used by the default layout. Vendor
// adapters may reference additional indices (velocity/torque targets and
// actuals, reserved bytes) not listed here.
const (
	ControlWord      uint16 = 0x6040
	OperationMode    uint16 = 0x6060
	TargetPosition   uint16 = 0x607A
	TargetVelocity   uint16 = 0x60FF
	TargetTorque     uint16 = 0x6071
	ProbeFunction    uint16 = 0x60B8
	Reserved60C2     uint16 = 0x60C2
	ErrorCode        uint16 = 0x603F
	StatusWord       uint16 = 0x6041
	ActualPosition   uint16 = 0x6064
	ActualVelocity   uint16 = 0x606C
	ActualTorque     uint16 = 0x6077
	OperationModeDsp uint16 = 0x6061
	ProbeStatus      uint16 = 0x60B9
	ProbePosition    uint16 = 0x60BA
	FollowingError   uint16 = 0x60F4
	DigitalInputs    uint16 = 0x60FD
	ServoError       uint16 = 0x213F

	RxPdoBase = 0x1600
	TxPdoBase = 0x1A00
)

// DefaultRx is the standard output block emitted output-first, matching the
// wire layout table in spec.md §6: control word, operation mode, target
// position, touch probe function.
func DefaultRx() []Entry {
	return []Entry{
		{Index: ControlWord, SubIndex: 0, BitLen: 16, Name: "control word"},
		{Index: OperationMode, SubIndex: 0, BitLen: 8, Name: "operation mode"},
		{Index: TargetPosition, SubIndex: 0, BitLen: 32, Name: "target position"},
		{Index: ProbeFunction, SubIndex: 0, BitLen: 16, Name: "touch probe function"},
	}
}

// DefaultTx is the standard input block: error code, status word, actual
// position, mode display, probe status/position, following error, digital
// inputs, servo error.
func DefaultTx() []Entry {
	return []Entry{
		{Index: ErrorCode, SubIndex: 0, BitLen: 16, Name: "error code"},
		{Index: StatusWord, SubIndex: 0, BitLen: 16, Name: "status word"},
		{Index: ActualPosition, SubIndex: 0, BitLen: 32, Name: "actual position"},
		{Index: OperationModeDsp, SubIndex: 0, BitLen: 8, Name: "operation mode display"},
		{Index: ProbeStatus, SubIndex: 0, BitLen: 16, Name: "touch probe status"},
		{Index: ProbePosition, SubIndex: 0, BitLen: 32, Name: "touch probe position"},
		{Index: FollowingError, SubIndex: 0, BitLen: 32, Name: "following error"},
		{Index: DigitalInputs, SubIndex: 0, BitLen: 32, Name: "digital inputs"},
		{Index: ServoError, SubIndex: 0, BitLen: 16, Name: "servo error"},
	}
}

// Gap returns a padding entry carrying PDO index 0 and bit length 0. The
// bitLen argument is ignored.
func Gap(bitLen uint8) Entry {
	return Entry{Index: 0, SubIndex: 0, BitLen: 0}
}

// ByteWidth returns how many whole bytes an entry occupies. Entries are
// expected to be byte-aligned (8/16/32 bits); sub-byte bit lengths are not
// supported by this controller.
func (e Entry) ByteWidth() int {
	return int(e.BitLen) / 8
}

// Operation modes, CiA-402 standard values (spec.md §6).
const (
	ModeProfilePosition    uint8 = 1
	ModeVelocity           uint8 = 2
	ModeProfileVelocity    uint8 = 3
	ModeProfileTorque      uint8 = 4
	ModeHoming             uint8 = 6
	ModeInterpolatedPos    uint8 = 7
	ModeCyclicSyncPosition uint8 = 8 // CSP, default for this controller
	ModeCyclicSyncVelocity uint8 = 9
	ModeCyclicSyncTorque   uint8 = 10
)

// Control word values (spec.md §6).
const (
	ControlResetSentinel   uint16 = 0x0000
	ControlDisableQuickStp uint16 = 0x0002
	ControlShutdown        uint16 = 0x0006
	ControlSwitchOn        uint16 = 0x0007
	ControlEnableOperation uint16 = 0x000F
	ControlFaultReset      uint16 = 0x0080
)

// Status word bit masks (spec.md §6).
const (
	StatusReadyToSwitchOn  uint16 = 0x0001
	StatusSwitchedOn       uint16 = 0x0002
	StatusOperationEnabled uint16 = 0x0004
	StatusFault            uint16 = 0x0008
	StatusVoltageEnabled   uint16 = 0x0010
	StatusQuickStop        uint16 = 0x0020
	StatusSwitchOnDisabled uint16 = 0x0040
	StatusWarning          uint16 = 0x0080
	StatusTargetReached    uint16 = 0x0400
	StatusSetpointAck      uint16 = 0x1000

	// StateMask selects the CiA-402 state bits (spec.md §4.5).
	StateMask uint16 = 0x6F

	StateNotReadyToSwitchOn uint16 = 0x00
	StateSwitchOnDisabled   uint16 = 0x40
	StateReadyToSwitchOn    uint16 = 0x21
	StateSwitchedOn         uint16 = 0x23
	StateOperationEnabled   uint16 = 0x27
)
