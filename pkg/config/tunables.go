// Package config loads the small set of controller tunables that spec.md §9
// flags as ad hoc: the EYOU adapter's damping delay and fault-reset-count
// threshold, the "force shutdown on persistent fault" feature flag, the
// motion-start barrier delay, and the per-cycle delta clamp. Loading uses
// gopkg.in/ini.v1, the same library the teacher uses to parse EDS files in
// pkg/od/parser_v1.go.
package config

import (
	"time"

	"gopkg.in/ini.v1"
)

// Tunables holds every value spec.md names as a documented tunable rather
// than a hard-coded constant.
type Tunables struct {
	// BarrierDelay is how long after all axes reach Operation-enabled the
	// motion-start barrier waits before releasing (spec.md §4.6). Default
	// 1s.
	BarrierDelay time.Duration
	// MaxDeltaPerCycle clamps the per-cycle target position delta (spec.md
	// §3 invariants). Default 400000 counts.
	MaxDeltaPerCycle int32
	// CSPWarmupCycles is how many cycles the CSP target stays locked to
	// actual after Operation-enabled is first reached (spec.md §4.5).
	// Default 10.
	CSPWarmupCycles int

	// EyouFaultDamperCycles is the minimum number of cycles between
	// treated EYOU state transitions (spec.md §4.2). Ad hoc, tunable.
	// Default 5.
	EyouFaultDamperCycles int
	// EyouResetAttemptsBeforeForce is how many 0x0080 fault-reset pulses
	// are tried before the EYOU adapter forces 0x0006 (spec.md §4.2).
	// Default 10.
	EyouResetAttemptsBeforeForce int
	// ForceShutdownOnPersistentFault is loaded from the ini file and
	// defaults to false. No code reads it: the EYOU adapter forces 0x0006
	// after EyouResetAttemptsBeforeForce reset pulses whatever its value.
	ForceShutdownOnPersistentFault bool
	// FaultPersistentCycles is how many consecutive cycles the fault bit
	// may stay set before the state-machine driver surfaces a
	// FaultPersistent observable error (spec.md §3's observable error
	// conditions). Default 20.
	FaultPersistentCycles int
}

// Default returns the factory defaults, matching the numeric defaults named
// throughout spec.md.
func Default() Tunables {
	return Tunables{
		BarrierDelay:                   time.Second,
		MaxDeltaPerCycle:               400000,
		CSPWarmupCycles:                10,
		EyouFaultDamperCycles:          5,
		EyouResetAttemptsBeforeForce:   10,
		ForceShutdownOnPersistentFault: false,
		FaultPersistentCycles:          20,
	}
}

// Load reads tunables from an ini file at path, starting from Default() and
// overriding any key present in the [tunables] section. A missing file is
// not an error: Default() is returned unchanged, matching how the spec
// treats these values as having sane built-in defaults.
func Load(path string) (Tunables, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return t, err
	}
	section := cfg.Section("tunables")

	if key, err := section.GetKey("barrier_delay_ms"); err == nil {
		ms, err := key.Int64()
		if err == nil {
			t.BarrierDelay = time.Duration(ms) * time.Millisecond
		}
	}
	if key, err := section.GetKey("max_delta_per_cycle"); err == nil {
		v, err := key.Int()
		if err == nil {
			t.MaxDeltaPerCycle = int32(v)
		}
	}
	if key, err := section.GetKey("csp_warmup_cycles"); err == nil {
		v, err := key.Int()
		if err == nil {
			t.CSPWarmupCycles = v
		}
	}
	if key, err := section.GetKey("eyou_fault_damper_cycles"); err == nil {
		v, err := key.Int()
		if err == nil {
			t.EyouFaultDamperCycles = v
		}
	}
	if key, err := section.GetKey("eyou_reset_attempts_before_force"); err == nil {
		v, err := key.Int()
		if err == nil {
			t.EyouResetAttemptsBeforeForce = v
		}
	}
	if key, err := section.GetKey("force_shutdown_on_persistent_fault"); err == nil {
		v, err := key.Bool()
		if err == nil {
			t.ForceShutdownOnPersistentFault = v
		}
	}
	if key, err := section.GetKey("fault_persistent_cycles"); err == nil {
		v, err := key.Int()
		if err == nil {
			t.FaultPersistentCycles = v
		}
	}
	return t, nil
}
