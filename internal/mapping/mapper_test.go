// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffutop/ffp-modbus-mapper/internal/equipment"
)

func zones(ids ...int) []equipment.Zone {
	out := make([]equipment.Zone, len(ids))
	for i, id := range ids {
		out[i] = equipment.Zone{Zone: id, Description: "ZONE"}
	}
	return out
}

func devicesOnLoops(loops ...int) []equipment.Device {
	var out []equipment.Device
	for _, l := range loops {
		for d := 1; d <= 3; d++ {
			out = append(out, equipment.Device{Device: d, Loop: equipment.IntPtr(l), Zone: 1, Description: "SMOKE", Type: "OPT"})
		}
	}
	return out
}

func TestMapperEmptyCollections(t *testing.T) {
	m := NewMapper()

	z, err := m.Zones(nil)
	require.NoError(t, err)
	assert.Empty(t, z)

	d, err := m.Devices([]equipment.Device{})
	require.NoError(t, err)
	assert.Empty(t, d)

	res, err := m.Map(&equipment.Collection{})
	require.NoError(t, err)
	assert.True(t, res.Report.Empty())
	require.Len(t, res.NodePartitions, 1)
	assert.Empty(t, res.NodePartitions[0].Data)
	require.Len(t, res.ZonePartitions, 3)
}

func TestMapperNodes(t *testing.T) {
	m := NewMapper()
	nodes, err := m.Nodes([]equipment.Node{
		{Node: 1, Description: "MFIP", ID: "10000"},
		{Node: 5, Description: "DGP", ID: "50000"},
		{Node: 101, Description: "FAR", ID: "1010000"},
	})
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	addr, ok := nodes[0].Address()
	require.True(t, ok)
	assert.Equal(t, Address{1, 102}, addr)
	alarm, _ := nodes[0].Point(FlagAlarm)
	fault, _ := nodes[0].Point(FlagFault)
	isolate, _ := nodes[0].Point(FlagIsolate)
	assert.Equal(t, []int{0}, alarm.BitOffset.Bits())
	assert.Equal(t, []int{2}, fault.BitOffset.Bits())
	assert.Equal(t, []int{3}, isolate.BitOffset.Bits())

	addr, ok = nodes[1].Address()
	require.True(t, ok)
	assert.Equal(t, Address{1, 103}, addr)

	_, ok = nodes[2].Address()
	assert.False(t, ok)
	assert.Nil(t, nodes[2].Gateway)
	assert.Nil(t, nodes[2].HoldingRegister)
}

func TestMapperDevices(t *testing.T) {
	m := NewMapper()
	devices, err := m.Devices([]equipment.Device{
		{Device: 1, Loop: equipment.IntPtr(1)},
		{Device: 5, Loop: equipment.IntPtr(1)},
		{Device: 2, Loop: nil},
		{Device: 1, Loop: equipment.IntPtr(95)},
		{Device: 129, Loop: equipment.IntPtr(1)},
	})
	require.NoError(t, err)
	require.Len(t, devices, 5)

	addr, ok := devices[0].Address()
	require.True(t, ok)
	assert.Equal(t, Address{1, 242}, addr)

	addr, ok = devices[1].Address()
	require.True(t, ok)
	assert.Equal(t, Address{1, 243}, addr)
	alarm, _ := devices[1].Point(FlagAlarm)
	isolate, _ := devices[1].Point(FlagIsolate)
	assert.Equal(t, "0", alarm.BitOffset.String())
	assert.Equal(t, "3", isolate.BitOffset.String())

	// missing loop: no address, offsets still derived from the device number
	_, ok = devices[2].Address()
	assert.False(t, ok)
	prealarm, ok := devices[2].Point(FlagPrealarm)
	require.True(t, ok)
	assert.Equal(t, uint16(1<<5), prealarm.Decimal)

	// loop 95 is the 5th loop block of gateway 2
	addr, ok = devices[3].Address()
	require.True(t, ok)
	assert.Equal(t, Address{2, 6720}, addr)

	// device 129 would land in loop 2's block
	_, ok = devices[4].Address()
	assert.False(t, ok)
	assert.Len(t, devices[4].Points, 4)
}

func TestPartitionLoops(t *testing.T) {
	m := NewMapper()
	var input []equipment.Loop
	for _, id := range []int{181, 1, 90, 91, 180, 250, 2} {
		input = append(input, equipment.Loop{Loop: id, ID: "0"})
	}
	loops, err := m.Loops(input)
	require.NoError(t, err)

	parts, leftovers := m.PartitionLoops(loops)
	require.Len(t, parts, 3)
	assert.Empty(t, leftovers)

	want := map[int][]int{1: {1, 90, 2}, 2: {91, 180}, 3: {181, 250}}
	var joined []MappedLoop
	for _, p := range parts {
		var ids []int
		for _, l := range p.Data {
			ids = append(ids, l.Loop.Loop)
			addr, ok := l.Address()
			require.True(t, ok)
			assert.Equal(t, p.Gateway, addr.Gateway)
		}
		assert.Equal(t, want[p.Gateway], ids, p.Description)
		joined = append(joined, p.Data...)
	}
	assert.ElementsMatch(t, loops, joined)
	assert.Equal(t, "loops_L91_to_L180", parts[1].Description)
}

func TestMapperLoopDecimals(t *testing.T) {
	m := NewMapper()
	loops, err := m.Loops([]equipment.Loop{{Loop: 2, Node: 9, ID: "90102"}})
	require.NoError(t, err)

	want := map[Flag]uint16{
		FlagOpenCircuit:     1 << 8,
		FlagShortCircuitA:   1 << 9,
		FlagShortCircuitB:   1 << 10,
		FlagLoopDown:        1<<10 | 1<<11,
		FlagOverCurrent:     1 << 11,
		FlagNonConfigured:   1 << 12,
		FlagLoopModuleFault: 1 << 13,
	}
	for flag, dec := range want {
		p, ok := loops[0].Point(flag)
		require.True(t, ok, flag)
		assert.Equal(t, dec, p.Decimal, flag)
	}
	ld, _ := loops[0].Point(FlagLoopDown)
	assert.True(t, ld.BitOffset.IsComposite())
}

func TestRoundTripFromIdentity(t *testing.T) {
	m := NewMapper()
	var in []equipment.Zone
	for z := 1; z <= 2500; z += 37 {
		in = append(in, equipment.Zone{Zone: z})
	}
	mapped, err := m.Zones(in)
	require.NoError(t, err)
	for _, z := range mapped {
		first, ok := z.Address()
		require.True(t, ok)
		again, ok := Resolve(KindZone, z.Zone.Zone)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestPartitionDevicesPreservesRows(t *testing.T) {
	m := NewMapper()
	devices, err := m.Devices(devicesOnLoops(3, 200, 91, 90, 180, 181, 1))
	require.NoError(t, err)

	parts, leftovers := m.PartitionDevices(devices)
	require.Len(t, parts, 3)
	assert.Empty(t, leftovers)
	assert.Equal(t, "devices_L1_to_L90", parts[0].Description)
	assert.Equal(t, "devices_L91_to_L180", parts[1].Description)
	assert.Equal(t, "devices_L181_to_L250", parts[2].Description)

	total := 0
	for _, p := range parts {
		total += len(p.Data)
		for _, d := range p.Data {
			addr, ok := d.Address()
			require.True(t, ok)
			assert.Equal(t, p.Gateway, addr.Gateway)
		}
	}
	assert.Equal(t, len(devices), total)

	// relative order within a partition is preserved
	var loops []int
	for _, d := range parts[0].Data {
		l, _ := d.LoopNumber()
		loops = append(loops, l)
	}
	assert.Equal(t, []int{3, 3, 3, 90, 90, 90, 1, 1, 1}, loops)
}

func TestPartitionDevicesWithoutLoop(t *testing.T) {
	m := NewMapper()
	devices, err := m.Devices([]equipment.Device{{Device: 1}, {Device: 2, Loop: equipment.IntPtr(4)}})
	require.NoError(t, err)

	parts, leftovers := m.PartitionDevices(devices)
	assert.Len(t, parts[0].Data, 1)
	require.Len(t, leftovers, 1)
	assert.Nil(t, leftovers[0].Loop)
}

func TestPartitionZonesBoundary(t *testing.T) {
	in := zones(1, 1000, 1001, 1002, 2000, 2001, 2500)

	m := NewMapper()
	mapped, err := m.Zones(in)
	require.NoError(t, err)

	parts, gaps := m.PartitionZones(mapped)
	require.Len(t, parts, 3)
	assert.Equal(t, "zones_Z1_to_Z1000", parts[0].Description)
	assert.Len(t, parts[0].Data, 2)
	assert.Len(t, parts[1].Data, 2)
	assert.Len(t, parts[2].Data, 2)
	require.Len(t, gaps, 1)
	assert.Equal(t, 1001, gaps[0].Zone.Zone)

	m.FixZoneBoundary = true
	parts, gaps = m.PartitionZones(mapped)
	assert.Empty(t, gaps)
	require.Len(t, parts[1].Data, 3)
	assert.Equal(t, 1001, parts[1].Data[0].Zone.Zone)
}

func TestPartitionNodes(t *testing.T) {
	m := NewMapper()
	nodes, err := m.Nodes([]equipment.Node{{Node: 1}, {Node: 2}})
	require.NoError(t, err)

	parts := m.PartitionNodes(nodes)
	require.Len(t, parts, 1)
	assert.Equal(t, 1, parts[0].Gateway)
	assert.Equal(t, "nodes", parts[0].Description)
	assert.Len(t, parts[0].Data, 2)
}

func TestMapReport(t *testing.T) {
	m := NewMapper()
	res, err := m.Map(&equipment.Collection{
		Zones: zones(0, 1, 1001, 2600),
		Nodes: []equipment.Node{{Node: 1}, {Node: 120}},
		Loops: []equipment.Loop{{Loop: 1}, {Loop: 300}},
		Devices: []equipment.Device{
			{Device: 1, Loop: equipment.IntPtr(1)},
			{Device: 1},
			{Device: 200, Loop: equipment.IntPtr(1)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Report.Count(ReasonUnaddressable))
	assert.Equal(t, 1, res.Report.Count(ReasonMissingLoop))
	assert.Equal(t, 1, res.Report.Count(ReasonPartitionGap))

	var labels []string
	for _, i := range res.Report.Issues {
		labels = append(labels, string(i.Reason)+":"+i.Identifier)
	}
	assert.ElementsMatch(t, []string{
		"unaddressable:N120",
		"unaddressable:Z0",
		"unaddressable:Z2600",
		"unaddressable:L300",
		"missing_loop:L/D1",
		"unaddressable:L1/D200",
		"partition_gap:Z1001",
	}, labels)
}

func TestColumnsMatchValues(t *testing.T) {
	m := NewMapper()
	res, err := m.Map(&equipment.Collection{
		Zones:   zones(1),
		Nodes:   []equipment.Node{{Node: 1}},
		Loops:   []equipment.Loop{{Loop: 1}},
		Devices: []equipment.Device{{Device: 1, Loop: equipment.IntPtr(1)}},
	})
	require.NoError(t, err)

	assert.Len(t, res.Zones[0].Values(), len(Columns(KindZone)))
	assert.Len(t, res.Nodes[0].Values(), len(Columns(KindNode)))
	assert.Len(t, res.Loops[0].Values(), len(Columns(KindLoop)))
	assert.Len(t, res.Devices[0].Values(), len(Columns(KindDevice)))

	cols := Columns(KindLoop)
	assert.Equal(t, []string{"loop", "node", "id", "raw", "gateway", "holding_register", "open_circuit_bit_offset"}, cols[:7])
	assert.Equal(t, "loop_module_fault_decimal", cols[len(cols)-1])

	vals := res.Loops[0].Values()
	assert.Equal(t, "1", vals[4])
	assert.Equal(t, "152", vals[5])
	assert.Equal(t, "2,3", vals[9])
}
