package adapter

import (
	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/gocyclic/fieldservo/pkg/pimage"
)

func newTestImage(size int) *pimage.Image {
	return pimage.New(make([]byte, size))
}

func writeStatusWordAt(img *pimage.Image, s *Standard, offsets []int64, value uint16) error {
	off := findOffset(s.tx, offsets, objdict.StatusWord)
	return img.WriteU16(uint32(off), value)
}

func writeActualPosAt(img *pimage.Image, s *Standard, offsets []int64, value int32) error {
	off := findOffset(s.tx, offsets, objdict.ActualPosition)
	return img.WriteS32(uint32(off), value)
}
