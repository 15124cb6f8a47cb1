// Package barrier implements the multi-axis synchronized motion-start gate
// described in spec.md §4.6: once every axis has been seen in
// Operation-enabled and the operator has requested run, arm a monotonic
// delay; when it elapses, release all axes together from hold-at-actual
// into CSP target advancement.
package barrier

import (
	"time"

	"github.com/gocyclic/fieldservo/pkg/config"
)

// State is one of the barrier's three phases (spec.md §4.6).
type State int

const (
	Disarmed State = iota
	Armed
	MotionStarted
)

// Barrier tracks the three-state motion-start gate for one controller
// instance. Touched only by the tick thread (spec.md §5).
type Barrier struct {
	state   State
	delay   time.Duration
	armedAt time.Time
	nowFunc func() time.Time
}

// New builds a disarmed barrier with the given release delay.
func New(tun config.Tunables) *Barrier {
	return &Barrier{state: Disarmed, delay: tun.BarrierDelay, nowFunc: time.Now}
}

// Evaluate advances the barrier by one tick given whether run has been
// requested and whether every configured axis currently reports
// seen-enabled. It returns true once motion has started (including on every
// subsequent call: the barrier never re-arms for the session).
func (b *Barrier) Evaluate(run bool, allSeenEnabled bool) bool {
	now := b.nowFunc()
	switch b.state {
	case Disarmed:
		if run && allSeenEnabled {
			b.armedAt = now
			b.state = Armed
		}
	case MotionStarted:
		// Terminal: a stop command only halts target advancement
		// upstream, it does not disarm the barrier (spec.md §4.6).
	}
	// The delay is checked on the arming tick too, so a zero delay releases
	// in the same tick that arms.
	if b.state == Armed && now.Sub(b.armedAt) >= b.delay {
		b.state = MotionStarted
	}
	return b.state == MotionStarted
}

// State reports the current phase, mainly for tests and status queries.
func (b *Barrier) State() State { return b.state }

// SetNowFunc overrides the barrier's clock source; used by tests to
// simulate elapsed time deterministically (spec.md §8 Scenario 3).
func (b *Barrier) SetNowFunc(f func() time.Time) { b.nowFunc = f }
