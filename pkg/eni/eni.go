// Package eni parses the vendor-agnostic "Network Information" file that the
// bus bootstrapper may consume in lieu of autodiscovery (spec.md §4.4/§6).
// Two concrete dialects are accepted: a sentinel-line text form and an XML
// form rooted at <EtherCATInfo> or containing a <SlaveList>. Both are
// parsed tolerantly: case-insensitive element/attribute names, integers
// accepted as decimal, 0x/x/X-prefixed hex, or #x-prefixed hex.
//
// The text-dialect scanner follows the teacher's od.ParseV2 style
// (bufio.Scanner over trimmed lines, regexp-matched section markers); the
// XML dialect is stdlib encoding/xml, the one sanctioned standard-library
// exception recorded in DESIGN.md since no third-party XML library appears
// anywhere in the reference pack.
package eni

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/gocyclic/fieldservo/pkg/servofault"
)

// Default identity supplied when an ENI entry omits vendor id or product
// code (spec.md §4.4).
const (
	DefaultVendorId    uint32 = 0x000116c7
	DefaultProductCode uint32 = 0x003e0402
)

// SlaveDescriptor is one parsed slave entry: identity plus whatever PDO
// layout the file described for it.
type SlaveDescriptor struct {
	Position    int
	VendorId    uint32
	ProductCode uint32
	Revision    uint32
	Serial      uint32
	Name        string
	HasDC       bool
	Rx          []objdict.Entry
	Tx          []objdict.Entry
}

var sentinelRe = regexp.MustCompile(`(?i)^===\s*master\s+(\d+)\s*,\s*slave\s+(\d+)\s*===$`)
var kvRe = regexp.MustCompile(`^([^:]+):\s*(.*)$`)

// Parse dispatches to the text or XML dialect based on the first
// non-whitespace byte of data.
func Parse(data []byte) ([]SlaveDescriptor, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, servofault.IO("eni.Parse", fmt.Errorf("empty input"))
	}
	if trimmed[0] == '<' {
		return parseXML(trimmed)
	}
	return parseText(trimmed)
}

func parseText(data []byte) ([]SlaveDescriptor, error) {
	var slaves []SlaveDescriptor
	var cur *SlaveDescriptor

	flush := func() {
		if cur != nil {
			applyDefaults(cur)
			slaves = append(slaves, *cur)
			cur = nil
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := sentinelRe.FindStringSubmatch(line); m != nil {
			flush()
			pos, _ := strconv.Atoi(m[2])
			cur = &SlaveDescriptor{Position: pos}
			continue
		}
		if cur == nil {
			continue
		}
		m := kvRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(m[1]))
		val := strings.TrimSpace(m[2])
		switch key {
		case "vendor id":
			cur.VendorId = uint32(mustParseTolerantInt(val))
		case "product code":
			cur.ProductCode = uint32(mustParseTolerantInt(val))
		case "revision number":
			cur.Revision = uint32(mustParseTolerantInt(val))
		case "serial number":
			cur.Serial = uint32(mustParseTolerantInt(val))
		case "device name":
			cur.Name = val
		case "distributed clocks":
			cur.HasDC = strings.EqualFold(val, "yes")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, servofault.IO("eni.parseText", err)
	}
	flush()
	return slaves, nil
}

// parseTolerantInt accepts plain decimal, 0x/x/X-prefixed hex, and
// #x-prefixed hex, after trimming whitespace and surrounding quotes
// (spec.md §4.4/§6).
func parseTolerantInt(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	switch {
	case strings.HasPrefix(s, "#x"), strings.HasPrefix(s, "#X"):
		s = s[2:]
		return strconv.ParseUint(s, 16, 64)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		return strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "x"), strings.HasPrefix(s, "X"):
		return strconv.ParseUint(s[1:], 16, 64)
	default:
		return strconv.ParseUint(s, 10, 64)
	}
}

func mustParseTolerantInt(s string) uint64 {
	v, err := parseTolerantInt(s)
	if err != nil {
		log.Warnf("[ENI] unparseable integer %q, treating as 0", s)
		return 0
	}
	return v
}

func applyDefaults(s *SlaveDescriptor) {
	if s.VendorId == 0 {
		log.Warnf("[ENI][slave %d] no vendor id, defaulting to 0x%x", s.Position, DefaultVendorId)
		s.VendorId = DefaultVendorId
	}
	if s.ProductCode == 0 {
		log.Warnf("[ENI][slave %d] no product code, defaulting to 0x%x", s.Position, DefaultProductCode)
		s.ProductCode = DefaultProductCode
	}
}
