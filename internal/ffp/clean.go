// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package ffp

import (
	"sort"
	"strings"

	"github.com/ffutop/ffp-modbus-mapper/internal/equipment"
)

const unassignedText = "Unassigned Text"

var (
	descriptionReplacer = strings.NewReplacer("/", "-", "&", "+")
	typeReplacer        = strings.NewReplacer("/", "-")
)

// Clean drops empty address slots and normalises text fields so they are
// safe as sheet and file content. Positional numbers are kept, so cleaning
// never renumbers zones or devices.
func Clean(c *equipment.Collection) *equipment.Collection {
	out := &equipment.Collection{
		Loops: append([]equipment.Loop(nil), c.Loops...),
	}

	for _, z := range c.Zones {
		if z.Zone == 0 || !assigned(z.Description) {
			continue
		}
		z.Description = cleanDescription(z.Description)
		out.Zones = append(out.Zones, z)
	}

	for _, n := range c.Nodes {
		if !assigned(n.Description) {
			continue
		}
		n.Description = cleanDescription(n.Description)
		out.Nodes = append(out.Nodes, n)
	}

	for _, d := range c.Devices {
		if !assigned(d.Description) {
			continue
		}
		d.Description = cleanDescription(d.Description)
		d.Type = typeReplacer.Replace(strings.TrimSpace(d.Type))
		out.Devices = append(out.Devices, d)
	}
	sort.SliceStable(out.Devices, func(i, j int) bool {
		li, iok := out.Devices[i].LoopNumber()
		lj, jok := out.Devices[j].LoopNumber()
		if iok != jok {
			return iok
		}
		if li != lj {
			return li < lj
		}
		return out.Devices[i].Device < out.Devices[j].Device
	})

	return out
}

func assigned(description string) bool {
	return description != "" && description != unassignedText
}

func cleanDescription(s string) string {
	return descriptionReplacer.Replace(strings.TrimSpace(s))
}
