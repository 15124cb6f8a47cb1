// Package busmock is an in-memory test double for pkg/busmaster, used by
// this module's own tests and by any caller that wants to exercise the
// bootstrapper and cycle pipeline without a real fieldbus. It mirrors the
// teacher's pkg/can/virtual loopback bus: a mutex-guarded in-process
// implementation of the collaborator interface rather than a real transport
// (virtual.Bus loops frames back to its own FrameListener; Master here loops
// writes back into its own process image).
package busmock

import (
	"sync"
	"time"

	"github.com/gocyclic/fieldservo/pkg/busmaster"
)

// Master is a scriptable in-memory busmaster.Master. Tests drive it by
// writing directly into ProcessImage() before calling tick, and by reading
// it back afterward to observe what the controller wrote.
type Master struct {
	mu sync.Mutex

	image     []byte
	activated bool
	released  bool
	now       time.Time

	domain   *Domain
	slaves   map[uint16]*SlaveConfig
	refClock uint16

	ReceiveCount int
	SendCount    int
}

// NewMaster allocates a Master with a process image of the given size.
func NewMaster(imageSize int) *Master {
	return &Master{
		image:  make([]byte, imageSize),
		slaves: make(map[uint16]*SlaveConfig),
	}
}

func (m *Master) CreateDomain() (busmaster.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domain = &Domain{master: m}
	return m.domain, nil
}

func (m *Master) SlaveConfig(position uint16, vendorId, productCode uint32) (busmaster.SlaveConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc := &SlaveConfig{
		Position:    position,
		VendorId:    vendorId,
		ProductCode: productCode,
	}
	m.slaves[position] = sc
	return sc, nil
}

func (m *Master) SelectReferenceClock(position uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refClock = position
	return nil
}

func (m *Master) Activate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activated = true
	return nil
}

func (m *Master) ProcessImage() []byte {
	return m.image
}

func (m *Master) SetApplicationTime(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Master) Receive() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReceiveCount++
	return nil
}

func (m *Master) SyncSlaveClocks() error {
	return nil
}

func (m *Master) Send() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCount++
	return nil
}

func (m *Master) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = true
	return nil
}

func (m *Master) Activated() bool { return m.activated }
func (m *Master) Released() bool  { return m.released }

// Domain is the in-memory stand-in for busmaster.Domain. Register just
// resolves offsets sequentially starting at RegisterBase, giving every entry
// a fixed 4-byte slot whatever its bit length.
type Domain struct {
	master       *Master
	RegisterBase int64
	next         int64
	registered   []busmaster.RegisterEntry
}

func (d *Domain) Register(entries []busmaster.RegisterEntry) error {
	if d.next == 0 {
		d.next = d.RegisterBase
	}
	for i := range entries {
		*entries[i].OffsetSlot = d.next
		d.next += 4 // every entry in this controller is at most 32 bits wide
		d.registered = append(d.registered, entries[i])
	}
	return nil
}

func (d *Domain) Process() error { return nil }
func (d *Domain) Queue() error   { return nil }

// SlaveConfig is the in-memory stand-in for busmaster.SlaveConfig. It
// records every call it receives so tests can assert on bootstrap's
// programming sequence.
type SlaveConfig struct {
	Position    uint16
	VendorId    uint32
	ProductCode uint32

	InitParams    *busmaster.InitParams
	SyncManagers  *busmaster.SyncManagerEntries
	DCSync0Shift  int32
	DCSync0Period int64
	HasDC         bool
}

func (s *SlaveConfig) WriteInitParams(p busmaster.InitParams) error {
	s.InitParams = &p
	return nil
}

func (s *SlaveConfig) ConfigureSyncManagers(sm busmaster.SyncManagerEntries) error {
	s.SyncManagers = &sm
	return nil
}

func (s *SlaveConfig) ConfigureDCSync0(shift int32, periodNs int64) error {
	s.HasDC = true
	s.DCSync0Shift = shift
	s.DCSync0Period = periodNs
	return nil
}
