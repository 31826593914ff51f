// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

// Partition is the slice of an annotated collection served by one gateway.
// Each partition becomes one output sheet.
type Partition[T Row] struct {
	Kind        Kind
	Gateway     int
	Description string
	Data        []T
}

type bound struct {
	gateway int
	suffix  string
	in      func(id int) bool
}

// split distributes rows over bounds by identifier. Rows matching no bound
// and rows without an identifier are returned as leftovers.
func split[T Row](kind Kind, rows []T, key func(T) (int, bool), bounds []bound) ([]Partition[T], []T) {
	parts := make([]Partition[T], len(bounds))
	for i, b := range bounds {
		parts[i] = Partition[T]{
			Kind:        kind,
			Gateway:     b.gateway,
			Description: kind.Plural() + b.suffix,
			Data:        []T{},
		}
	}

	var leftovers []T
	for _, row := range rows {
		id, ok := key(row)
		placed := false
		if ok {
			for i, b := range bounds {
				if b.in(id) {
					parts[i].Data = append(parts[i].Data, row)
					placed = true
					break
				}
			}
		}
		if !placed {
			leftovers = append(leftovers, row)
		}
	}
	return parts, leftovers
}

var loopBounds = []bound{
	{gateway: 1, suffix: "_L1_to_L90", in: func(loop int) bool { return loop <= 90 }},
	{gateway: 2, suffix: "_L91_to_L180", in: func(loop int) bool { return loop > 90 && loop <= 180 }},
	{gateway: 3, suffix: "_L181_to_L250", in: func(loop int) bool { return loop > 180 }},
}

func (m *Mapper) zoneBounds() []bound {
	// Gateway 2 historically starts after zone 1001, leaving zone 1001 out.
	gw2Low := 1001
	if m.FixZoneBoundary {
		gw2Low = 1000
	}
	return []bound{
		{gateway: 1, suffix: "_Z1_to_Z1000", in: func(zone int) bool { return zone <= 1000 }},
		{gateway: 2, suffix: "_Z1001_to_Z2000", in: func(zone int) bool { return zone > gw2Low && zone <= 2000 }},
		{gateway: 3, suffix: "_Z2001_to_Z2500", in: func(zone int) bool { return zone > 2000 }},
	}
}

// PartitionZones splits zones into the three zone gateways.
func (m *Mapper) PartitionZones(zones []MappedZone) ([]Partition[MappedZone], []MappedZone) {
	return split(KindZone, zones, func(z MappedZone) (int, bool) { return z.Zone.Zone, true }, m.zoneBounds())
}

// PartitionLoops splits loops by loop number.
func (m *Mapper) PartitionLoops(loops []MappedLoop) ([]Partition[MappedLoop], []MappedLoop) {
	return split(KindLoop, loops, func(l MappedLoop) (int, bool) { return l.Loop.Loop, true }, loopBounds)
}

// PartitionDevices splits devices by the loop they belong to. Devices
// without a resolved loop are left over.
func (m *Mapper) PartitionDevices(devices []MappedDevice) ([]Partition[MappedDevice], []MappedDevice) {
	return split(KindDevice, devices, func(d MappedDevice) (int, bool) { return d.LoopNumber() }, loopBounds)
}

// PartitionNodes returns every node in a single gateway 1 partition.
func (m *Mapper) PartitionNodes(nodes []MappedNode) []Partition[MappedNode] {
	data := append([]MappedNode{}, nodes...)
	return []Partition[MappedNode]{{Kind: KindNode, Gateway: 1, Description: KindNode.Plural(), Data: data}}
}
