package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultTunables(t *testing.T) {
	tun := Default()
	require.Equal(t, time.Second, tun.BarrierDelay)
	require.Equal(t, int32(400000), tun.MaxDeltaPerCycle)
	require.Equal(t, 10, tun.CSPWarmupCycles)
	require.False(t, tun.ForceShutdownOnPersistentFault)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tunables.ini")
	contents := "[tunables]\n" +
		"barrier_delay_ms = 2500\n" +
		"max_delta_per_cycle = 100000\n" +
		"force_shutdown_on_persistent_fault = true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	tun, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2500*time.Millisecond, tun.BarrierDelay)
	require.Equal(t, int32(100000), tun.MaxDeltaPerCycle)
	require.True(t, tun.ForceShutdownOnPersistentFault)
	// Untouched keys keep factory defaults.
	require.Equal(t, 10, tun.CSPWarmupCycles)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tun, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), tun)
}
