// Package statemachine steps one axis through the CiA-402 power-state
// machine each cycle (spec.md §4.5), handing off to CSP target advancement
// once the drive reaches Operation-enabled. It is grounded in the teacher's
// LocalNode.ProcessPDO/ProcessSYNC style (pkg/node/local.go): a small,
// allocation-free per-object Process step called once per cycle from the
// pipeline, with no sleeps or blocking I/O inside it.
package statemachine

import (
	"github.com/gocyclic/fieldservo/pkg/adapter"
	"github.com/gocyclic/fieldservo/pkg/axis"
	"github.com/gocyclic/fieldservo/pkg/config"
	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/gocyclic/fieldservo/pkg/pimage"
)

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

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Step advances one axis by exactly one cycle. motionStarted and
// (direction, step) come from the barrier and the current Command; Step
// clamps the resulting per-cycle delta to ±tun.MaxDeltaPerCycle itself
// (spec.md §5's allocation-free, suspension-free tick requirement).
//
// Returns a non-nil error only to surface an observable condition
// (adapter.FaultPersistent); the cycle pipeline never aborts on it, per
// spec.md §7's "errors are never propagated to the caller" rule.
func Step(img *pimage.Image, ax *axis.Axis, tun config.Tunables, motionStarted bool, direction, step int32) error {
	status, err := ax.Adapter.ReadStatus(img, ax.TxOffsets)
	if err != nil {
		return err
	}
	ax.LastStatus = status.StatusWord
	ax.LastActualPos = status.ActualPos
	ax.SeenEnabled = status.StatusWord&objdict.StateMask == objdict.StateOperationEnabled

	if status.StatusWord&objdict.StatusFault != 0 {
		ax.FaultCycles++
	} else {
		ax.FaultCycles = 0
	}

	var fault *adapter.FaultPersistent
	if ax.FaultCycles > tun.FaultPersistentCycles {
		fault = &adapter.FaultPersistent{AxisBusPosition: ax.BusPosition, Cycles: ax.FaultCycles}
	}

	switch {
	case !ax.ServoEnabled:
		if err := stepNotEnabled(img, ax, status.StatusWord, tun); err != nil {
			return err
		}
	case !motionStarted:
		ax.CSPTarget = status.ActualPos
		if err := writeCSP(img, ax, objdict.ControlEnableOperation); err != nil {
			return err
		}
	default:
		if ax.CSPWarmup > 0 {
			ax.CSPTarget = status.ActualPos
			ax.CSPWarmup--
		} else {
			delta := clamp(direction*step, -tun.MaxDeltaPerCycle, tun.MaxDeltaPerCycle)
			ax.CSPTarget += delta
		}
		if err := writeCSP(img, ax, objdict.ControlEnableOperation); err != nil {
			return err
		}
	}

	if fault != nil {
		return fault
	}
	return nil
}

// stepNotEnabled runs the standard/adapter transition table while the axis
// has not yet reached Operation-enabled. It implements the fault-reset
// pulse (write 0x0000 immediately before the adapter's chosen control word)
// named in spec.md §4.5/§9's write-ordering guarantee.
func stepNotEnabled(img *pimage.Image, ax *axis.Axis, statusWord uint16, tun config.Tunables) error {
	ctrlOff := findOffset(ax.Adapter.RxPDO(), ax.RxOffsets, objdict.ControlWord)

	fault := statusWord&objdict.StatusFault != 0
	ready := statusWord&objdict.StatusReadyToSwitchOn != 0
	if fault && !ready && ctrlOff >= 0 {
		if err := img.WriteU16(uint32(ctrlOff), 0x0000); err != nil {
			return err
		}
	}

	t := ax.Adapter.MakeControl(statusWord)

	if t.SeedTarget {
		ax.CSPTarget = ax.LastActualPos
	}
	if t.EnterOperationEnabled {
		ax.ServoEnabled = true
		ax.CSPWarmup = tun.CSPWarmupCycles
	}
	if t.RunEnableOverride != nil {
		ax.RunEnable = *t.RunEnableOverride
	}

	return ax.Adapter.WriteControl(img, ax.RxOffsets, adapter.MotorControl{
		ControlWord: t.ControlWord,
		OpMode:      ax.OpMode,
		TargetPos:   ax.CSPTarget,
	})
}

// writeCSP writes the steady-state CSP control word (0x000F), the
// configured operation mode, and the cached target.
func writeCSP(img *pimage.Image, ax *axis.Axis, controlWord uint16) error {
	return ax.Adapter.WriteControl(img, ax.RxOffsets, adapter.MotorControl{
		ControlWord: controlWord,
		OpMode:      ax.OpMode,
		TargetPos:   ax.CSPTarget,
	})
}
