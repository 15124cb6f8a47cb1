package servo

import (
	"testing"

	"github.com/gocyclic/fieldservo/pkg/adapter"
	"github.com/gocyclic/fieldservo/pkg/barrier"
	"github.com/gocyclic/fieldservo/pkg/bootstrap"
	"github.com/gocyclic/fieldservo/pkg/busmock"
	"github.com/gocyclic/fieldservo/pkg/config"
	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T) (*Controller, *busmock.Master) {
	t.Helper()
	tun := config.Default()
	registry := adapter.DefaultRegistry(tun)
	master := busmock.NewMaster(256)

	specs := []bootstrap.SlaveSpec{
		{Position: 0, VendorId: 0x000116c7, ProductCode: 0x003e0402},
	}
	c, count, err := Create(master, registry, specs, 4000, tun)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	return c, master
}

func writeStatusWord(t *testing.T, c *Controller, master *busmock.Master, axisIdx int, status uint16, actualPos int32) {
	t.Helper()
	ax := c.axes[axisIdx]
	statusOff := -1
	actualOff := -1
	for i, e := range ax.Adapter.TxPDO() {
		if e.Index == objdict.StatusWord {
			statusOff = int(ax.TxOffsets[i])
		}
		if e.Index == objdict.ActualPosition {
			actualOff = int(ax.TxOffsets[i])
		}
	}
	require.NoError(t, c.pimg.WriteU16(uint32(statusOff), status))
	require.NoError(t, c.pimg.WriteS32(uint32(actualOff), actualPos))
}

func readControlWord(t *testing.T, c *Controller, axisIdx int) uint16 {
	t.Helper()
	ax := c.axes[axisIdx]
	for i, e := range ax.Adapter.RxPDO() {
		if e.Index == objdict.ControlWord {
			v, err := c.pimg.ReadU16(uint32(ax.RxOffsets[i]))
			require.NoError(t, err)
			return v
		}
	}
	t.Fatal("control word not found in RxPDO")
	return 0
}

func TestControllerColdStartSequence(t *testing.T) {
	c, master := newController(t)
	statuses := []uint16{0x40, 0x40, 0x21, 0x23, 0x27}
	wantControl := []uint16{0x06, 0x06, 0x07, 0x0F, 0x0F}

	for i, s := range statuses {
		writeStatusWord(t, c, master, 0, s, 1000)
		require.NoError(t, c.Tick())
		require.Equal(t, wantControl[i], readControlWord(t, c, 0))
	}

	require.Equal(t, uint16(0x27), c.Status(0))
	require.Equal(t, int32(1000), c.ActualPosition(0))
	require.Equal(t, "standard", c.AdapterName(0))
	require.Equal(t, 5, master.ReceiveCount)
}

func TestControllerSentinelsOnOutOfRangeAxis(t *testing.T) {
	c, _ := newController(t)
	require.Equal(t, uint16(0), c.Status(5))
	require.Equal(t, int32(0), c.ActualPosition(5))
	require.Equal(t, "", c.AdapterName(5))
	require.Equal(t, "", c.MotorInfo(5))
}

func TestControllerResetWritesImmediately(t *testing.T) {
	c, _ := newController(t)
	c.Reset(0)
	require.Equal(t, objdict.ControlFaultReset, readControlWord(t, c, 0))
}

func TestControllerDestroyReleasesMaster(t *testing.T) {
	c, master := newController(t)
	require.NoError(t, c.Destroy())
	require.True(t, master.Released())
	require.False(t, c.Running())
}

func TestControllerSetCommandIsReadByTick(t *testing.T) {
	c, master := newController(t)
	c.SetCommand(true, 1, 500)

	// Drive the axis to enabled; warmup stays at the configured default
	// until motion starts, and the run request read by Tick arms the
	// barrier once the only axis is enabled.
	for _, s := range []uint16{0x40, 0x21, 0x23, 0x27} {
		writeStatusWord(t, c, master, 0, s, 0)
		require.NoError(t, c.Tick())
	}
	require.True(t, c.axes[0].ServoEnabled)
	require.Equal(t, config.Default().CSPWarmupCycles, c.axes[0].CSPWarmup)
	require.Equal(t, barrier.Armed, c.barrier.State())
}

func TestControllerSetOpModeAppliesNextTick(t *testing.T) {
	c, master := newController(t)
	c.SetOpMode(0, objdict.ModeProfileVelocity, 0)
	writeStatusWord(t, c, master, 0, 0x40, 0)
	require.NoError(t, c.Tick())
	require.Equal(t, objdict.ModeProfileVelocity, c.axes[0].OpMode)
}
