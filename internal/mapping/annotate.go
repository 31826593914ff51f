// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

import (
	"fmt"
	"strconv"

	"github.com/ffutop/ffp-modbus-mapper/internal/equipment"
)

// Assignment is the Modbus location of an equipment unit. Gateway and
// HoldingRegister are nil when the unit is unaddressable.
type Assignment struct {
	Gateway         *int    `json:"gateway" yaml:"gateway" cbor:"gateway"`
	HoldingRegister *int    `json:"holding_register" yaml:"holding_register" cbor:"holding_register"`
	Points          []Point `json:"points" yaml:"points" cbor:"points"`
}

func newAssignment(addr Address, ok bool, points []Point) Assignment {
	a := Assignment{Points: points}
	if ok {
		a.Gateway = equipment.IntPtr(addr.Gateway)
		a.HoldingRegister = equipment.IntPtr(addr.HoldingRegister)
	}
	return a
}

// Address returns the assigned address, ok is false when unaddressable.
func (a Assignment) Address() (Address, bool) {
	if a.Gateway == nil || a.HoldingRegister == nil {
		return Address{}, false
	}
	return Address{Gateway: *a.Gateway, HoldingRegister: *a.HoldingRegister}, true
}

// Point returns the point of flag.
func (a Assignment) Point(flag Flag) (Point, bool) {
	for _, p := range a.Points {
		if p.Flag == flag {
			return p, true
		}
	}
	return Point{}, false
}

func (a Assignment) values() []string {
	out := []string{optInt(a.Gateway), optInt(a.HoldingRegister)}
	for _, p := range a.Points {
		out = append(out, p.BitOffset.String())
	}
	for _, p := range a.Points {
		out = append(out, strconv.Itoa(int(p.Decimal)))
	}
	return out
}

// Row is an annotated record that can be written as a table row.
type Row interface {
	Kind() Kind
	Label() string
	Description() string
	Addressing() Assignment
	Values() []string
}

type MappedZone struct {
	equipment.Zone `yaml:",inline"`
	Assignment     `yaml:",inline"`
}

func (z MappedZone) Kind() Kind              { return KindZone }
func (z MappedZone) Label() string           { return "Z" + strconv.Itoa(z.Zone.Zone) }
func (z MappedZone) Description() string     { return z.Zone.Description }
func (z MappedZone) Addressing() Assignment { return z.Assignment }

func (z MappedZone) Values() []string {
	return append([]string{strconv.Itoa(z.Zone.Zone), z.Zone.Description}, z.Assignment.values()...)
}

type MappedNode struct {
	equipment.Node `yaml:",inline"`
	Assignment     `yaml:",inline"`
}

func (n MappedNode) Kind() Kind              { return KindNode }
func (n MappedNode) Label() string           { return "N" + strconv.Itoa(n.Node.Node) }
func (n MappedNode) Description() string     { return n.Node.Description }
func (n MappedNode) Addressing() Assignment { return n.Assignment }

func (n MappedNode) Values() []string {
	return append([]string{strconv.Itoa(n.Node.Node), n.Node.Description, n.ID, n.Raw}, n.Assignment.values()...)
}

type MappedLoop struct {
	equipment.Loop `yaml:",inline"`
	Assignment     `yaml:",inline"`
}

func (l MappedLoop) Kind() Kind              { return KindLoop }
func (l MappedLoop) Label() string           { return "L" + strconv.Itoa(l.Loop.Loop) }
func (l MappedLoop) Description() string     { return l.Raw }
func (l MappedLoop) Addressing() Assignment { return l.Assignment }

func (l MappedLoop) Values() []string {
	return append([]string{strconv.Itoa(l.Loop.Loop), strconv.Itoa(l.Node), l.ID, l.Raw}, l.Assignment.values()...)
}

type MappedDevice struct {
	equipment.Device `yaml:",inline"`
	Assignment       `yaml:",inline"`
}

func (d MappedDevice) Kind() Kind              { return KindDevice }
func (d MappedDevice) Description() string     { return d.Device.Description }
func (d MappedDevice) Addressing() Assignment { return d.Assignment }

func (d MappedDevice) Label() string {
	return fmt.Sprintf("L%s/D%d", optInt(d.Loop), d.Device.Device)
}

func (d MappedDevice) Values() []string {
	id := []string{
		strconv.Itoa(d.Device.Device), optInt(d.Loop), strconv.Itoa(d.Zone),
		d.Device.Description, d.Subtype, d.Type, d.Name(), d.LocationID(),
	}
	return append(id, d.Assignment.values()...)
}

var identityColumns = map[Kind][]string{
	KindZone:   {"zone", "description"},
	KindNode:   {"node", "description", "id", "raw"},
	KindLoop:   {"loop", "node", "id", "raw"},
	KindDevice: {"device", "loop", "zone", "description", "subtype", "type", "name", "locationId"},
}

// Columns is the table header of kind: identity columns first, then the
// address, the bit offsets and their register decimals.
func Columns(kind Kind) []string {
	cols := append([]string(nil), identityColumns[kind]...)
	cols = append(cols, "gateway", "holding_register")
	l := layouts[kind]
	for _, f := range l.Flags {
		cols = append(cols, string(f.Flag)+"_bit_offset")
	}
	for _, f := range l.Flags {
		cols = append(cols, string(f.Flag)+"_decimal")
	}
	return cols
}

// Mapper annotates and partitions extracted equipment.
type Mapper struct {
	// FixZoneBoundary puts zone 1001 into the gateway 2 partition. Off by
	// default, which leaves zone 1001 out of every zone partition.
	FixZoneBoundary bool
}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Zones annotates zones with their Modbus mapping.
func (m *Mapper) Zones(zones []equipment.Zone) ([]MappedZone, error) {
	out := make([]MappedZone, 0, len(zones))
	for _, z := range zones {
		addr, ok := Resolve(KindZone, z.Zone)
		points, err := Offsets(KindZone, z.Zone)
		if err != nil {
			return nil, err
		}
		out = append(out, MappedZone{Zone: z, Assignment: newAssignment(addr, ok, points)})
	}
	return out, nil
}

// Nodes annotates nodes with their Modbus mapping.
func (m *Mapper) Nodes(nodes []equipment.Node) ([]MappedNode, error) {
	out := make([]MappedNode, 0, len(nodes))
	for _, n := range nodes {
		addr, ok := Resolve(KindNode, n.Node)
		points, err := Offsets(KindNode, n.Node)
		if err != nil {
			return nil, err
		}
		out = append(out, MappedNode{Node: n, Assignment: newAssignment(addr, ok, points)})
	}
	return out, nil
}

// Loops annotates loops with their Modbus mapping.
func (m *Mapper) Loops(loops []equipment.Loop) ([]MappedLoop, error) {
	out := make([]MappedLoop, 0, len(loops))
	for _, l := range loops {
		addr, ok := Resolve(KindLoop, l.Loop)
		points, err := Offsets(KindLoop, l.Loop)
		if err != nil {
			return nil, err
		}
		out = append(out, MappedLoop{Loop: l, Assignment: newAssignment(addr, ok, points)})
	}
	return out, nil
}

// Devices annotates devices with their Modbus mapping. A device without a
// resolved loop keeps its bit offsets but gets no address.
func (m *Mapper) Devices(devices []equipment.Device) ([]MappedDevice, error) {
	out := make([]MappedDevice, 0, len(devices))
	for _, d := range devices {
		var (
			addr Address
			ok   bool
		)
		if loop, known := d.LoopNumber(); known {
			addr, ok = ResolveDevice(loop, d.Device)
		}
		points, err := Offsets(KindDevice, d.Device)
		if err != nil {
			return nil, err
		}
		out = append(out, MappedDevice{Device: d, Assignment: newAssignment(addr, ok, points)})
	}
	return out, nil
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
