// Package pimage implements the shared process-image buffer exchanged with
// the fieldbus master: a contiguous byte buffer in which every PDO entry
// lives at a fixed byte offset assigned during domain registration.
//
// All accessors are explicit little-endian reads/writes so that the
// controller never depends on the host's native byte order, matching the
// bit-exact layout demanded by spec.md §4.9 and §6.
package pimage

import "errors"

// ErrOutOfRange is returned when an access would read or write past the end
// of the process image.
var ErrOutOfRange = errors.New("pimage: offset out of range")

// Image is a non-owning view over the fieldbus master's process-image
// buffer. The controller never allocates or frees this memory: it is owned
// by the bus master and is only valid between Activate and Release (spec.md
// DATA MODEL, Lifecycle).
type Image struct {
	buf []byte
}

// New wraps an existing buffer. Used both by the real bootstrapper (wrapping
// the master's memory-mapped region) and by test fixtures.
func New(buf []byte) *Image {
	return &Image{buf: buf}
}

// Len returns the size of the underlying buffer.
func (img *Image) Len() int {
	return len(img.buf)
}

// Bytes exposes the raw buffer, primarily so a bus master adapter can fill
// it on receive and drain it on send.
func (img *Image) Bytes() []byte {
	return img.buf
}

func (img *Image) checkRange(offset uint32, width int) error {
	if img == nil || int(offset)+width > len(img.buf) || width < 0 {
		return ErrOutOfRange
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value at offset.
func (img *Image) ReadU8(offset uint32) (uint8, error) {
	if err := img.checkRange(offset, 1); err != nil {
		return 0, err
	}
	return img.buf[offset], nil
}

// ReadS8 reads a signed 8-bit value at offset.
func (img *Image) ReadS8(offset uint32) (int8, error) {
	v, err := img.ReadU8(offset)
	return int8(v), err
}

// ReadU16 reads a little-endian unsigned 16-bit value at offset.
func (img *Image) ReadU16(offset uint32) (uint16, error) {
	if err := img.checkRange(offset, 2); err != nil {
		return 0, err
	}
	b := img.buf[offset : offset+2]
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadS16 reads a little-endian signed 16-bit value at offset.
func (img *Image) ReadS16(offset uint32) (int16, error) {
	v, err := img.ReadU16(offset)
	return int16(v), err
}

// ReadU32 reads a little-endian unsigned 32-bit value at offset.
func (img *Image) ReadU32(offset uint32) (uint32, error) {
	if err := img.checkRange(offset, 4); err != nil {
		return 0, err
	}
	b := img.buf[offset : offset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadS32 reads a little-endian signed 32-bit value at offset.
func (img *Image) ReadS32(offset uint32) (int32, error) {
	v, err := img.ReadU32(offset)
	return int32(v), err
}

// WriteU8 writes an unsigned 8-bit value at offset.
func (img *Image) WriteU8(offset uint32, v uint8) error {
	if err := img.checkRange(offset, 1); err != nil {
		return err
	}
	img.buf[offset] = v
	return nil
}

// WriteS8 writes a signed 8-bit value at offset.
func (img *Image) WriteS8(offset uint32, v int8) error {
	return img.WriteU8(offset, uint8(v))
}

// WriteU16 writes a little-endian unsigned 16-bit value at offset.
func (img *Image) WriteU16(offset uint32, v uint16) error {
	if err := img.checkRange(offset, 2); err != nil {
		return err
	}
	b := img.buf[offset : offset+2]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	return nil
}

// WriteS16 writes a little-endian signed 16-bit value at offset.
func (img *Image) WriteS16(offset uint32, v int16) error {
	return img.WriteU16(offset, uint16(v))
}

// WriteU32 writes a little-endian unsigned 32-bit value at offset.
func (img *Image) WriteU32(offset uint32, v uint32) error {
	if err := img.checkRange(offset, 4); err != nil {
		return err
	}
	b := img.buf[offset : offset+4]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	return nil
}

// WriteS32 writes a little-endian signed 32-bit value at offset.
func (img *Image) WriteS32(offset uint32, v int32) error {
	return img.WriteU32(offset, uint32(v))
}
