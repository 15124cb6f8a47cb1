package adapter

import (
	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/gocyclic/fieldservo/pkg/pimage"
)

// StandardMakeControl implements the default CiA-402 transition table from
// spec.md §4.5: it checks the fault and ready-to-switch-on bits directly,
// then selects the transition from `status & 0x6F`. The state-machine
// driver emits whatever this returns for a standard adapter; the cold-start
// tests of both packages expect the same control-word sequence.
func StandardMakeControl(statusWord uint16) Transition {
	ready := statusWord&objdict.StatusReadyToSwitchOn != 0
	fault := statusWord&objdict.StatusFault != 0

	if fault && !ready {
		// Fault-reset pulse: the driver writes 0x0000 immediately before
		// this value, so the bit-7 reset edge is always seen by the drive.
		return Transition{ControlWord: objdict.ControlFaultReset}
	}

	switch statusWord & objdict.StateMask {
	case objdict.StateNotReadyToSwitchOn, objdict.StateSwitchOnDisabled:
		return Transition{ControlWord: objdict.ControlShutdown}
	case objdict.StateReadyToSwitchOn:
		return Transition{ControlWord: objdict.ControlSwitchOn, SeedTarget: true}
	case objdict.StateSwitchedOn:
		return Transition{ControlWord: objdict.ControlEnableOperation}
	case objdict.StateOperationEnabled:
		return Transition{
			ControlWord:           objdict.ControlEnableOperation,
			SeedTarget:            true,
			EnterOperationEnabled: true,
		}
	default:
		return Transition{ControlWord: objdict.ControlShutdown}
	}
}

// Standard is the default CiA-402 adapter. It implements the layout and
// transition table from spec.md §4.1/§4.5/§4.2 and is embedded by name-only
// vendor variants that need no structural change.
type Standard struct {
	identity MotorIdentity
	rx       []objdict.Entry
	tx       []objdict.Entry
}

// NewStandard builds the standard adapter for the given identity, using the
// default RxPDO/TxPDO layout (spec.md §4.1) unless overridden.
func NewStandard(identity MotorIdentity) *Standard {
	return &Standard{
		identity: identity,
		rx:       objdict.DefaultRx(),
		tx:       objdict.DefaultTx(),
	}
}

func (s *Standard) MotorInfo() MotorIdentity { return s.identity }

func (s *Standard) Supports(vendorId, productCode uint32) bool {
	return vendorId == s.identity.VendorId && productCode == s.identity.ProductCode
}

func (s *Standard) Name() string { return "standard" }

func (s *Standard) RxPDO() []objdict.Entry { return s.rx }
func (s *Standard) TxPDO() []objdict.Entry { return s.tx }

func (s *Standard) ConfigurePDOs(cfg SlaveConfig) error {
	return cfg.ConfigurePDOs(s.rx, s.tx)
}

// findOffset returns the byte offset assigned to the first non-gap entry
// matching index, or -1 if absent (e.g. this adapter's Tx layout doesn't
// carry the object at all).
func findOffset(entries []objdict.Entry, offsets []int64, index uint16) int64 {
	for i, e := range entries {
		if e.Index == index {
			if i < len(offsets) {
				return offsets[i]
			}
			return -1
		}
	}
	return -1
}

func (s *Standard) ReadStatus(img *pimage.Image, offsets []int64) (MotorStatus, error) {
	var status MotorStatus
	var err error

	if off := findOffset(s.tx, offsets, objdict.StatusWord); off >= 0 {
		status.StatusWord, err = img.ReadU16(uint32(off))
		if err != nil {
			return status, err
		}
	}
	if off := findOffset(s.tx, offsets, objdict.ActualPosition); off >= 0 {
		status.ActualPos, err = img.ReadS32(uint32(off))
		if err != nil {
			return status, err
		}
	}
	if off := findOffset(s.tx, offsets, objdict.ActualVelocity); off >= 0 {
		status.ActualVel, err = img.ReadS32(uint32(off))
		if err != nil {
			return status, err
		}
	}
	if off := findOffset(s.tx, offsets, objdict.ActualTorque); off >= 0 {
		status.ActualTor, err = img.ReadS16(uint32(off))
		if err != nil {
			return status, err
		}
	}
	if off := findOffset(s.tx, offsets, objdict.OperationModeDsp); off >= 0 {
		status.OpMode, err = img.ReadU8(uint32(off))
		if err != nil {
			return status, err
		}
	}
	if off := findOffset(s.tx, offsets, objdict.ErrorCode); off >= 0 {
		status.ErrorCode, err = img.ReadU16(uint32(off))
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

func (s *Standard) WriteControl(img *pimage.Image, offsets []int64, ctrl MotorControl) error {
	if off := findOffset(s.rx, offsets, objdict.ControlWord); off >= 0 {
		if err := img.WriteU16(uint32(off), ctrl.ControlWord); err != nil {
			return err
		}
	}
	if off := findOffset(s.rx, offsets, objdict.OperationMode); off >= 0 {
		if err := img.WriteU8(uint32(off), ctrl.OpMode); err != nil {
			return err
		}
	}
	if off := findOffset(s.rx, offsets, objdict.TargetPosition); off >= 0 {
		if err := img.WriteS32(uint32(off), ctrl.TargetPos); err != nil {
			return err
		}
	}
	if off := findOffset(s.rx, offsets, objdict.ProbeFunction); off >= 0 {
		if err := img.WriteU16(uint32(off), ctrl.ProbeFunc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Standard) MakeControl(statusWord uint16) Transition {
	return StandardMakeControl(statusWord)
}
