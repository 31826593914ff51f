// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package ffp extracts zones, nodes, loops and devices from an FFP panel
// configuration export.
package ffp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ffutop/ffp-modbus-mapper/internal/equipment"
)

const (
	nodeSectionFlag   = "P"
	zoneSectionFlag   = "Z"
	loopSectionFlag   = "M"
	loopInfoSuffix    = "X 1"
	loopDevicesSuffix = "X 2"
)

// ErrZoneSections is returned when the file does not hold exactly one zones
// section. Zone numbers are positional, with several sections they cannot
// be assigned.
var ErrZoneSections = errors.New("expected exactly one zones section")

// ReadFile parses the FFP file at path.
func ReadFile(path string) (*equipment.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ffp file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an FFP export and extracts its equipment.
func Parse(r io.Reader) (*equipment.Collection, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ffp: %w", err)
	}
	sections := SplitSections(string(text))
	slog.Debug("FFP sections found", "count", len(sections))

	var c equipment.Collection
	if c.Zones, err = parseZones(sections); err != nil {
		return nil, err
	}
	if c.Nodes, err = parseNodes(sections); err != nil {
		return nil, err
	}
	if c.Loops, err = parseLoops(sections); err != nil {
		return nil, err
	}
	if c.Devices, err = parseDevices(sections, c.Loops); err != nil {
		return nil, err
	}
	return &c, nil
}

func parseZones(sections []Section) ([]equipment.Zone, error) {
	found := filter(sections, func(s Section) bool { return s.HasPrefix(zoneSectionFlag) })
	if len(found) != 1 {
		return nil, fmt.Errorf("%w, found %d", ErrZoneSections, len(found))
	}
	section := found[0]
	rows := section.Rows()
	zones := make([]equipment.Zone, 0, len(rows))
	for i, row := range rows {
		zones = append(zones, equipment.Zone{
			Zone:        i + 1,
			Description: field(row, 1),
			Raw:         section.Header(),
		})
	}
	return zones, nil
}

func parseNodes(sections []Section) ([]equipment.Node, error) {
	found := filter(sections, func(s Section) bool { return s.HasPrefix(nodeSectionFlag) })
	nodes := make([]equipment.Node, 0, len(found))
	for _, s := range found {
		id, err := s.ID()
		if err != nil {
			return nil, err
		}
		node, err := s.NodeNumber()
		if err != nil {
			return nil, fmt.Errorf("node section: %w", err)
		}
		var description string
		if rows := s.Rows(); len(rows) > 0 {
			description = field(rows[0], 0)
		}
		nodes = append(nodes, equipment.Node{Node: node, Description: description, ID: id, Raw: s.Header()})
	}
	return nodes, nil
}

func isLoopSection(suffix string) func(Section) bool {
	return func(s Section) bool {
		return s.HasPrefix(loopSectionFlag) && s.HeaderHasSuffix(suffix)
	}
}

func parseLoops(sections []Section) ([]equipment.Loop, error) {
	found := filter(sections, isLoopSection(loopInfoSuffix))
	loops := make([]equipment.Loop, 0, len(found))
	for _, s := range found {
		id, err := s.ID()
		if err != nil {
			return nil, err
		}
		node, err := s.NodeNumber()
		if err != nil {
			return nil, fmt.Errorf("loop section: %w", err)
		}
		rows := s.Rows()
		if len(rows) == 0 {
			return nil, fmt.Errorf("loop section %q: no data row", s.Header())
		}
		loop, err := strconv.Atoi(strings.TrimSpace(field(rows[0], 0)))
		if err != nil {
			return nil, fmt.Errorf("loop section %q: loop number: %w", s.Header(), err)
		}
		slog.Debug("Loop info", "loop", loop, "node", node, "id", id)
		loops = append(loops, equipment.Loop{Loop: loop, Node: node, ID: id, Raw: s.Header()})
	}
	return loops, nil
}

func parseDevices(sections []Section, loops []equipment.Loop) ([]equipment.Device, error) {
	byID := make(map[string]int, len(loops))
	for _, l := range loops {
		if _, dup := byID[l.ID]; !dup {
			byID[l.ID] = l.Loop
		}
	}

	var devices []equipment.Device
	for _, s := range filter(sections, isLoopSection(loopDevicesSuffix)) {
		id, err := s.ID()
		if err != nil {
			return nil, err
		}
		var loop *int
		if l, ok := byID[id]; ok {
			loop = equipment.IntPtr(l)
		} else {
			slog.Warn("Device section has no matching loop info section", "id", id, "header", s.Header())
		}
		for i, row := range s.Rows() {
			zone, err := strconv.Atoi(strings.TrimSpace(field(row, 0)))
			if err != nil {
				zone = 0
			}
			devices = append(devices, equipment.Device{
				Device:      i + 1,
				Loop:        loop,
				Zone:        zone,
				Description: field(row, 1),
				Subtype:     field(row, 2),
				Type:        field(row, 3),
				ID:          id,
				Raw:         s.Header(),
			})
		}
	}
	return devices, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
