package adapter

import (
	"github.com/gocyclic/fieldservo/pkg/config"
	"github.com/gocyclic/fieldservo/pkg/objdict"
)

// Eyou is the vendor override named in spec.md §4.2: it adds
// following-error-specific fault diagnosis, a bounded repeat-reset policy,
// quick-stop handling, and an initial-zero special case on top of the
// standard CiA-402 transition table. It embeds *Standard for layout and
// codecs, overriding only MakeControl.
type Eyou struct {
	*Standard

	damperCycles   int
	resetThreshold int

	cyclesSinceTransition int
	resetAttempts         int
	lastControlWord       uint16
}

// NewEyou builds the EYOU adapter for the given identity, pulling its two ad
// hoc tunables (damper cycles, reset-attempt threshold) from Tunables per
// spec.md §9's instruction to document rather than hard-code them.
func NewEyou(identity MotorIdentity, tun config.Tunables) *Eyou {
	return &Eyou{
		Standard:       NewStandard(identity),
		damperCycles:   tun.EyouFaultDamperCycles,
		resetThreshold: tun.EyouResetAttemptsBeforeForce,
		// cyclesSinceTransition starts high so the very first observed
		// fault condition is always treated, not damped. Quick-stop
		// handling is never damped.
		cyclesSinceTransition: tun.EyouFaultDamperCycles,
		lastControlWord:       objdict.ControlShutdown,
	}
}

func (e *Eyou) Name() string { return "eyou" }

// applyResetPolicy implements the 10-attempts-then-force escalation: the
// first resetThreshold attempts keep re-issuing the fault-reset pulse; the
// next attempt gives up and forces a fresh shutdown/prepare sequence with
// run-enable restored.
func (e *Eyou) applyResetPolicy(t *Transition) {
	e.resetAttempts++
	if e.resetAttempts > e.resetThreshold {
		t.ControlWord = objdict.ControlShutdown
		enable := true
		t.RunEnableOverride = &enable
		e.resetAttempts = 0
	}
}

func (e *Eyou) MakeControl(statusWord uint16) Transition {
	e.cyclesSinceTransition++
	highByte := uint8(statusWord >> 8)
	// The ready/switched-on/operation-enabled states carry the quick-stop
	// bit as well; they go through the standard table, not the quick-stop case.
	state := statusWord & objdict.StateMask
	enableSequence := state == objdict.StateReadyToSwitchOn ||
		state == objdict.StateSwitchedOn || state == objdict.StateOperationEnabled

	switch {
	case statusWord == 0x0000:
		// Initial-zero status: drive hasn't reported anything meaningful
		// yet, start the normal shutdown sequence.
		e.lastControlWord = objdict.ControlShutdown
		e.resetAttempts = 0
		return Transition{ControlWord: objdict.ControlShutdown}

	case highByte == 0x08 || highByte == 0x09:
		// Following-error fault codes: halt, reset, clear run-enable.
		if e.cyclesSinceTransition < e.damperCycles {
			return Transition{ControlWord: e.lastControlWord}
		}
		e.cyclesSinceTransition = 0
		disable := false
		t := Transition{ControlWord: objdict.ControlFaultReset, RunEnableOverride: &disable}
		e.applyResetPolicy(&t)
		e.lastControlWord = t.ControlWord
		return t

	case statusWord&objdict.StatusFault != 0 && statusWord&objdict.StatusReadyToSwitchOn == 0:
		// Generic fault, not a following-error: same repeat-reset policy,
		// without forcing the run-enable interlock off.
		if e.cyclesSinceTransition < e.damperCycles {
			return Transition{ControlWord: e.lastControlWord}
		}
		e.cyclesSinceTransition = 0
		t := Transition{ControlWord: objdict.ControlFaultReset}
		e.applyResetPolicy(&t)
		e.lastControlWord = t.ControlWord
		return t

	case statusWord&objdict.StatusQuickStop != 0 && statusWord&objdict.StatusFault == 0 && !enableSequence:
		ready := statusWord&objdict.StatusReadyToSwitchOn != 0
		switched := statusWord&objdict.StatusSwitchedOn != 0
		cw := objdict.ControlDisableQuickStp
		if ready && !switched {
			cw = objdict.ControlSwitchOn
		}
		e.lastControlWord = cw
		e.resetAttempts = 0
		return Transition{ControlWord: cw}

	default:
		t := StandardMakeControl(statusWord)
		e.lastControlWord = t.ControlWord
		e.resetAttempts = 0
		return t
	}
}
