// Package bootstrap orchestrates the ten-step bus acquisition sequence
// described in spec.md §4.7, starting from a master the caller has already
// acquired: create a domain, configure
// each axis's slave, program PDOs and sync managers, register the domain,
// program distributed clocks, activate, and hand back the process image.
//
// It is grounded in the teacher's cmd/canopen/main.go startup sequence: a
// linear, abort-on-first-error chain of collaborator calls logged at each
// stage with logrus, the same bracketed-tag style pdo_rpdo.go uses.
package bootstrap

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/gocyclic/fieldservo/pkg/adapter"
	"github.com/gocyclic/fieldservo/pkg/axis"
	"github.com/gocyclic/fieldservo/pkg/busmaster"
	"github.com/gocyclic/fieldservo/pkg/config"
	"github.com/gocyclic/fieldservo/pkg/eni"
	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/gocyclic/fieldservo/pkg/servofault"
)

// SlaveSpec is one axis to configure, as discovered from an ENI file or
// supplied directly when autodiscovery is used instead.
type SlaveSpec struct {
	Position    int
	VendorId    uint32
	ProductCode uint32
	HasDC       bool
	// Rx/Tx, when non-empty, override the adapter's default PDO layout
	// (an ENI file supplied its own descriptors for this slave).
	Rx []objdict.Entry
	Tx []objdict.Entry
}

// Result is everything the cycle pipeline and control surface need after a
// successful bootstrap.
type Result struct {
	Master   busmaster.Master
	Domain   busmaster.Domain
	Image    []byte
	Axes     []*axis.Axis
	CycleUs  int
}

// SlavesFromENI parses the ENI file contents in data and converts every
// descriptor into a SlaveSpec,
// used by callers that configure axes from a Network Information file
// rather than autodiscovery (spec.md §4.4).
func SlavesFromENI(data []byte) ([]SlaveSpec, error) {
	descriptors, err := eni.Parse(data)
	if err != nil {
		return nil, servofault.IO("bootstrap.SlavesFromENI", err)
	}
	if len(descriptors) == 0 {
		return nil, servofault.Config("bootstrap.SlavesFromENI", errNoSlaves)
	}
	specs := make([]SlaveSpec, len(descriptors))
	for i, d := range descriptors {
		specs[i] = SlaveSpec{
			Position:    d.Position,
			VendorId:    d.VendorId,
			ProductCode: d.ProductCode,
			HasDC:       d.HasDC,
			Rx:          d.Rx,
			Tx:          d.Tx,
		}
	}
	return specs, nil
}

var errNoSlaves = errors.New("zero slaves parsed from ENI")

// Run executes the ten-step sequence against master, aborting on the first
// error (spec.md §4.7). cycleUs is the configured cycle period, used to
// derive both the interpolation base time and the distributed-clock sync0
// period.
func Run(master busmaster.Master, registry *adapter.Registry, specs []SlaveSpec, cycleUs int, tun config.Tunables) (*Result, error) {
	// Step 2: create domain.
	domain, err := master.CreateDomain()
	if err != nil {
		return nil, servofault.Init("bootstrap.CreateDomain", err)
	}

	axes := make([]*axis.Axis, 0, len(specs))
	var registerEntries []busmaster.RegisterEntry

	for _, spec := range specs {
		a := registry.Find(spec.VendorId, spec.ProductCode)
		if a == nil {
			return nil, servofault.Config("bootstrap.Find", errUnknownVendor(spec.VendorId, spec.ProductCode))
		}

		// Step 3: obtain slave config handle.
		sc, err := master.SlaveConfig(uint16(spec.Position), spec.VendorId, spec.ProductCode)
		if err != nil {
			return nil, servofault.Init("bootstrap.SlaveConfig", err)
		}

		// Step 4: initialization parameters. Failures are warnings only.
		if err := sc.WriteInitParams(busmaster.InitParams{
			InterpolationExponent: -3,
			InterpolationBaseMs:   uint32(cycleUs / 1000),
			ProfileVelocity:       100000,
			ProfileAcceleration:   50000,
			ProfileDeceleration:   50000,
		}); err != nil {
			log.Warnf("[BOOTSTRAP][slave %d] init params write failed: %v", spec.Position, err)
		}

		// Step 5: program PDOs and sync managers.
		rx, tx := spec.Rx, spec.Tx
		if len(rx) == 0 {
			rx = a.RxPDO()
		}
		if len(tx) == 0 {
			tx = a.TxPDO()
		}
		if err := sc.ConfigureSyncManagers(busmaster.SyncManagerEntries{SM2Rx: rx, SM3Tx: tx}); err != nil {
			return nil, servofault.Config("bootstrap.ConfigureSyncManagers", err)
		}

		ax := axis.New(spec.Position, a)
		ax.RxOffsets = make([]int64, len(rx))
		ax.TxOffsets = make([]int64, len(tx))

		registerEntries = append(registerEntries, buildRegisterEntries(spec, rx, ax.RxOffsets)...)
		registerEntries = append(registerEntries, buildRegisterEntries(spec, tx, ax.TxOffsets)...)

		axes = append(axes, ax)

		if spec.HasDC {
			if err := sc.ConfigureDCSync0(0x0300, int64(cycleUs)*1000); err != nil {
				log.Warnf("[BOOTSTRAP][slave %d] DC sync0 program failed: %v", spec.Position, err)
			}
		}
	}

	if len(axes) == 0 {
		return nil, servofault.Config("bootstrap.Run", errNoSlaves)
	}

	// Step 7: register the domain list.
	if err := domain.Register(registerEntries); err != nil {
		return nil, servofault.Config("bootstrap.Register", err)
	}

	// Step 8: reference clock selection.
	if err := master.SelectReferenceClock(uint16(axes[0].BusPosition)); err != nil {
		return nil, servofault.Init("bootstrap.SelectReferenceClock", err)
	}

	// Step 9: activate, retrieve process image.
	if err := master.Activate(); err != nil {
		return nil, servofault.Init("bootstrap.Activate", err)
	}
	image := master.ProcessImage()
	if image == nil {
		return nil, servofault.Init("bootstrap.ProcessImage", errNilImage)
	}

	log.Infof("[BOOTSTRAP] activated with %d axes, cycle=%dus", len(axes), cycleUs)

	return &Result{
		Master:  master,
		Domain:  domain,
		Image:   image,
		Axes:    axes,
		CycleUs: cycleUs,
	}, nil
}

var errNilImage = errors.New("master returned a nil process image")

func errUnknownVendor(vendorId, productCode uint32) error {
	return fmt.Errorf("no adapter registered for vendor 0x%x product 0x%x", vendorId, productCode)
}

// buildRegisterEntries converts non-gap entries into RegisterEntry rows,
// wiring each one's OffsetSlot to the axis's own offsets slice so the
// master writes resolved offsets directly into storage this controller
// owns (spec.md §9's offsets-by-reference design note). Gap entries are
// skipped but still occupy a slot in offsets so index alignment with the
// PDO descriptor is preserved.
func buildRegisterEntries(spec SlaveSpec, entries []objdict.Entry, offsets []int64) []busmaster.RegisterEntry {
	var out []busmaster.RegisterEntry
	for i, e := range entries {
		if e.IsGap() {
			offsets[i] = -1
			continue
		}
		out = append(out, busmaster.RegisterEntry{
			Position:    uint16(spec.Position),
			VendorId:    spec.VendorId,
			ProductCode: spec.ProductCode,
			Index:       e.Index,
			SubIndex:    e.SubIndex,
			OffsetSlot:  &offsets[i],
		})
	}
	return out
}
