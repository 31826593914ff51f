// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

import (
	"fmt"

	"github.com/ffutop/ffp-modbus-mapper/internal/equipment"
)

// Result is the outcome of mapping one FFP configuration.
type Result struct {
	Zones   []MappedZone
	Nodes   []MappedNode
	Loops   []MappedLoop
	Devices []MappedDevice

	ZonePartitions   []Partition[MappedZone]
	NodePartitions   []Partition[MappedNode]
	LoopPartitions   []Partition[MappedLoop]
	DevicePartitions []Partition[MappedDevice]

	Report Report
}

// Map annotates every collection, partitions it by gateway and records
// everything that could not be mapped.
func (m *Mapper) Map(c *equipment.Collection) (*Result, error) {
	var (
		res Result
		err error
	)
	if res.Zones, err = m.Zones(c.Zones); err != nil {
		return nil, fmt.Errorf("map zones: %w", err)
	}
	if res.Nodes, err = m.Nodes(c.Nodes); err != nil {
		return nil, fmt.Errorf("map nodes: %w", err)
	}
	if res.Loops, err = m.Loops(c.Loops); err != nil {
		return nil, fmt.Errorf("map loops: %w", err)
	}
	if res.Devices, err = m.Devices(c.Devices); err != nil {
		return nil, fmt.Errorf("map devices: %w", err)
	}

	var (
		zoneGaps   []MappedZone
		loopGaps   []MappedLoop
		deviceGaps []MappedDevice
	)
	res.ZonePartitions, zoneGaps = m.PartitionZones(res.Zones)
	res.NodePartitions = m.PartitionNodes(res.Nodes)
	res.LoopPartitions, loopGaps = m.PartitionLoops(res.Loops)
	res.DevicePartitions, deviceGaps = m.PartitionDevices(res.Devices)

	collectUnaddressable(&res.Report, res.Nodes)
	collectUnaddressable(&res.Report, res.Zones)
	collectUnaddressable(&res.Report, res.Loops)
	for _, d := range res.Devices {
		if _, ok := d.LoopNumber(); !ok {
			res.Report.add(d, ReasonMissingLoop)
		} else if _, ok := d.Address(); !ok {
			res.Report.add(d, ReasonUnaddressable)
		}
	}
	for _, z := range zoneGaps {
		res.Report.add(z, ReasonPartitionGap)
	}
	for _, l := range loopGaps {
		res.Report.add(l, ReasonPartitionGap)
	}
	for _, d := range deviceGaps {
		// already reported as missing_loop
		if _, ok := d.LoopNumber(); ok {
			res.Report.add(d, ReasonPartitionGap)
		}
	}
	return &res, nil
}
