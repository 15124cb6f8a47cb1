package eni

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/gocyclic/fieldservo/pkg/objdict"
	"github.com/gocyclic/fieldservo/pkg/servofault"
)

// node is a case-folded, dialect-agnostic tree built from the raw XML
// stream: every element name and attribute key is lowercased on the way in,
// so callers never need to juggle VendorId/VendorID/vendorid variants.
type node struct {
	name     string
	attrs    map[string]string
	children []*node
	text     string
}

func (n *node) childrenNamed(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) allNamed(name string) []*node {
	var out []*node
	if n.name == name {
		out = append(out, n)
	}
	for _, c := range n.children {
		out = append(out, c.allNamed(name)...)
	}
	return out
}

// field looks up value by attribute first, then by a same-named child
// element's text, trying each candidate name in order.
func (n *node) field(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := n.attrs[name]; ok && v != "" {
			return v, true
		}
	}
	for _, name := range names {
		for _, c := range n.children {
			if c.name == name && c.text != "" {
				return c.text, true
			}
		}
	}
	return "", false
}

func (n *node) fieldInt(names ...string) (uint64, bool) {
	v, ok := n.field(names...)
	if !ok {
		return 0, false
	}
	iv, err := parseTolerantInt(v)
	if err != nil {
		return 0, false
	}
	return iv, true
}

func buildTree(data []byte) (*node, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	var stack []*node
	var root *node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: strings.ToLower(t.Name.Local), attrs: map[string]string{}}
			for _, a := range t.Attr {
				n.attrs[strings.ToLower(a.Name.Local)] = a.Value
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.children = append(top.children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.text += string(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack[len(stack)-1].text = strings.TrimSpace(stack[len(stack)-1].text)
				stack = stack[:len(stack)-1]
			}
		}
	}
	if root == nil {
		return nil, servofault.IO("eni.buildTree", io.ErrUnexpectedEOF)
	}
	return root, nil
}

func parseXML(data []byte) ([]SlaveDescriptor, error) {
	root, err := buildTree(data)
	if err != nil {
		return nil, servofault.IO("eni.parseXML", err)
	}

	var slaveNodes []*node
	if lists := root.allNamed("slavelist"); len(lists) > 0 {
		for _, l := range lists {
			slaveNodes = append(slaveNodes, l.childrenNamed("slave")...)
		}
	} else {
		slaveNodes = root.allNamed("slave")
	}

	var out []SlaveDescriptor
	for i, sn := range slaveNodes {
		sd := SlaveDescriptor{Position: i}
		if pos, ok := sn.fieldInt("position"); ok {
			sd.Position = int(pos)
		}
		if v, ok := sn.fieldInt("vendorid"); ok {
			sd.VendorId = uint32(v)
		}
		if v, ok := sn.fieldInt("productcode"); ok {
			sd.ProductCode = uint32(v)
		}
		if v, ok := sn.fieldInt("revisionno", "revisionnumber"); ok {
			sd.Revision = uint32(v)
		}
		if v, ok := sn.fieldInt("serialno", "serialnumber"); ok {
			sd.Serial = uint32(v)
		}
		if v, ok := sn.field("name", "devicename"); ok {
			sd.Name = v
		}
		sd.Rx, sd.Tx = parsePDOs(sn)
		applyDefaults(&sd)
		out = append(out, sd)
	}
	return out, nil
}

// parsePDOs scans a slave's enclosed region for <RxPdo>, <TxPdo>, and
// generic <Pdo> elements (spec.md §4.4). A generic <Pdo> is assigned a
// direction by its index range: >= 0x1A00 is Tx, else Rx.
func parsePDOs(sn *node) (rx, tx []objdict.Entry) {
	for _, p := range sn.allNamed("rxpdo") {
		rx = append(rx, parseEntries(p)...)
	}
	for _, p := range sn.allNamed("txpdo") {
		tx = append(tx, parseEntries(p)...)
	}
	for _, p := range sn.allNamed("pdo") {
		idx, _ := p.fieldInt("index")
		entries := parseEntries(p)
		if idx >= 0x1A00 {
			tx = append(tx, entries...)
		} else {
			rx = append(rx, entries...)
		}
	}
	return rx, tx
}

func parseEntries(pdoNode *node) []objdict.Entry {
	var entries []objdict.Entry
	for _, en := range pdoNode.childrenNamed("entry") {
		idx, _ := en.fieldInt("index")
		sub, _ := en.fieldInt("subindex")
		bitLen, _ := en.fieldInt("bitlen")
		var name string
		if v, ok := en.field("name", "comment"); ok {
			name = v
		}
		entries = append(entries, objdict.Entry{
			Index:    uint16(idx),
			SubIndex: uint8(sub),
			BitLen:   uint8(bitLen),
			Name:     name,
		})
	}
	return entries
}
