package statemachine

import (
	"testing"

	"github.com/gocyclic/fieldservo/pkg/adapter"
	"github.com/gocyclic/fieldservo/pkg/axis"
	"github.com/gocyclic/fieldservo/pkg/config"
	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/gocyclic/fieldservo/pkg/pimage"
	"github.com/stretchr/testify/require"
)

func newFixture() (*pimage.Image, *axis.Axis) {
	img := pimage.New(make([]byte, 64))
	ax := axis.New(0, adapter.NewStandard(adapter.MotorIdentity{VendorId: 1, ProductCode: 1}))
	ax.RxOffsets = []int64{0, 2, 3, 7}
	ax.TxOffsets = []int64{32, 34, 36, 40, 41, 43, 47, 51, 55}
	return img, ax
}

func writeStatus(t *testing.T, img *pimage.Image, ax *axis.Axis, status uint16, actualPos int32) {
	t.Helper()
	off := findOffset(ax.Adapter.TxPDO(), ax.TxOffsets, objdict.StatusWord)
	require.NoError(t, img.WriteU16(uint32(off), status))
	off = findOffset(ax.Adapter.TxPDO(), ax.TxOffsets, objdict.ActualPosition)
	require.NoError(t, img.WriteS32(uint32(off), actualPos))
}

func readControl(t *testing.T, img *pimage.Image, ax *axis.Axis) uint16 {
	t.Helper()
	off := findOffset(ax.Adapter.RxPDO(), ax.RxOffsets, objdict.ControlWord)
	v, err := img.ReadU16(uint32(off))
	require.NoError(t, err)
	return v
}

// Scenario 1 (spec.md §8): single-axis cold start -> enabled.
func TestStepColdStartSequence(t *testing.T) {
	img, ax := newFixture()
	tun := config.Default()

	statuses := []uint16{0x40, 0x40, 0x21, 0x23, 0x27}
	wantControl := []uint16{0x06, 0x06, 0x07, 0x0F, 0x0F}

	for i, s := range statuses {
		writeStatus(t, img, ax, s, 1000)
		require.NoError(t, Step(img, ax, tun, false, 0, 0))
		require.Equal(t, wantControl[i], readControl(t, img, ax), "tick %d", i)
	}

	require.True(t, ax.ServoEnabled)
	require.Equal(t, tun.CSPWarmupCycles, ax.CSPWarmup)
	require.Equal(t, int32(1000), ax.CSPTarget)
}

// Scenario 2 (spec.md §8): fault and recovery.
func TestStepFaultResetPulse(t *testing.T) {
	img, ax := newFixture()
	tun := config.Default()

	writeStatus(t, img, ax, 0x0008, 0)
	require.NoError(t, Step(img, ax, tun, false, 0, 0))
	require.Equal(t, objdict.ControlFaultReset, readControl(t, img, ax))

	writeStatus(t, img, ax, 0x40, 0)
	require.NoError(t, Step(img, ax, tun, false, 0, 0))
	require.Equal(t, objdict.ControlShutdown, readControl(t, img, ax))
}

// Hold-at-actual invariant (spec.md §8): once enabled but before motion
// starts, target tracks actual every tick.
func TestStepHoldsAtActualBeforeMotionStarted(t *testing.T) {
	img, ax := newFixture()
	tun := config.Default()
	ax.ServoEnabled = true
	ax.CSPWarmup = 0

	writeStatus(t, img, ax, objdict.StateOperationEnabled, 55555)
	require.NoError(t, Step(img, ax, tun, false, 1, 1000))
	require.Equal(t, int32(55555), ax.CSPTarget)
}

// Delta clamp (spec.md §8 Scenario 4).
func TestStepClampsDeltaAfterWarmup(t *testing.T) {
	img, ax := newFixture()
	tun := config.Default()
	ax.ServoEnabled = true
	ax.CSPWarmup = 0
	ax.CSPTarget = 0

	writeStatus(t, img, ax, objdict.StateOperationEnabled, 0)
	require.NoError(t, Step(img, ax, tun, true, 1, 1_000_000))
	require.Equal(t, tun.MaxDeltaPerCycle, ax.CSPTarget)

	require.NoError(t, Step(img, ax, tun, true, 1, 1_000_000))
	require.Equal(t, 2*tun.MaxDeltaPerCycle, ax.CSPTarget)
}

func TestStepWarmupHoldsTargetBeforeAdvancing(t *testing.T) {
	img, ax := newFixture()
	tun := config.Default()
	ax.ServoEnabled = true
	ax.CSPWarmup = 2

	writeStatus(t, img, ax, objdict.StateOperationEnabled, 42)
	require.NoError(t, Step(img, ax, tun, true, 1, 1000))
	require.Equal(t, int32(42), ax.CSPTarget)
	require.Equal(t, 1, ax.CSPWarmup)
}

func TestStepSurfacesFaultPersistentAfterThreshold(t *testing.T) {
	img, ax := newFixture()
	tun := config.Default()
	tun.FaultPersistentCycles = 2

	for i := 0; i < 3; i++ {
		writeStatus(t, img, ax, 0x0008, 0)
		err := Step(img, ax, tun, false, 0, 0)
		if i < 2 {
			require.NoError(t, err)
		} else {
			require.Error(t, err)
			var fp *adapter.FaultPersistent
			require.ErrorAs(t, err, &fp)
		}
	}
}
