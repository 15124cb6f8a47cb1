package pimage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU32RoundTrip(t *testing.T) {
	img := New(make([]byte, 16))
	require.NoError(t, img.WriteU32(4, 0xDEADBEEF))
	v, err := img.ReadU32(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), v)

	// Bytes are always LSB-first regardless of host endianness.
	require.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, img.Bytes()[4:8])
}

func TestS32Negative(t *testing.T) {
	img := New(make([]byte, 8))
	require.NoError(t, img.WriteS32(0, -12345))
	v, err := img.ReadS32(0)
	require.NoError(t, err)
	require.Equal(t, int32(-12345), v)
}

func TestOutOfRange(t *testing.T) {
	img := New(make([]byte, 4))
	_, err := img.ReadU32(2)
	require.ErrorIs(t, err, ErrOutOfRange)
	require.ErrorIs(t, img.WriteU16(3, 1), ErrOutOfRange)
}

func TestU16LE(t *testing.T) {
	img := New(make([]byte, 2))
	require.NoError(t, img.WriteU16(0, 0x1234))
	require.Equal(t, []byte{0x34, 0x12}, img.Bytes())
}
