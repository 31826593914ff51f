// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package equipment holds the records extracted from an FFP panel export.
package equipment

import (
	"fmt"
	"strings"
)

// Zone is a logical building area. Zone numbers are positional: the n-th row
// of the zones section is zone n.
type Zone struct {
	Zone        int    `json:"zone" yaml:"zone" cbor:"zone"`
	Description string `json:"description" yaml:"description" cbor:"description"`
	Raw         string `json:"raw" yaml:"raw" cbor:"raw"`
}

// Node is a front panel (MCP) on the panel network.
type Node struct {
	Node        int    `json:"node" yaml:"node" cbor:"node"`
	Description string `json:"description" yaml:"description" cbor:"description"`
	ID          string `json:"id" yaml:"id" cbor:"id"`
	Raw         string `json:"raw" yaml:"raw" cbor:"raw"`
}

// Loop is an Apollo detection loop.
type Loop struct {
	Loop int    `json:"loop" yaml:"loop" cbor:"loop"`
	Node int    `json:"node" yaml:"node" cbor:"node"`
	ID   string `json:"id" yaml:"id" cbor:"id"`
	Raw  string `json:"raw" yaml:"raw" cbor:"raw"`
}

// Device is an addressable sensor or module. Device numbers are positional
// within the loop's device section. Loop is nil when the device section could
// not be matched to a loop info section.
type Device struct {
	Device      int    `json:"device" yaml:"device" cbor:"device"`
	Loop        *int   `json:"loop" yaml:"loop" cbor:"loop"`
	Zone        int    `json:"zone" yaml:"zone" cbor:"zone"`
	Description string `json:"description" yaml:"description" cbor:"description"`
	Subtype     string `json:"subtype" yaml:"subtype" cbor:"subtype"`
	Type        string `json:"type" yaml:"type" cbor:"type"`
	ID          string `json:"id" yaml:"id" cbor:"id"`
	Raw         string `json:"raw" yaml:"raw" cbor:"raw"`
}

// LoopNumber returns the resolved loop and whether it is known.
func (d Device) LoopNumber() (int, bool) {
	if d.Loop == nil {
		return 0, false
	}
	return *d.Loop, true
}

// Name is the display name used by the BMS point list,
// e.g. "L12 - D3 - Z40 - IRD-ICG-L05 CORRIDOR - OPT".
func (d Device) Name() string {
	loop := "?"
	if l, ok := d.LoopNumber(); ok {
		loop = fmt.Sprint(l)
	}
	return fmt.Sprintf("L%s - D%d - Z%d - %s - %s", loop, d.Device, d.Zone, d.Description, d.Type)
}

// LocationID guesses the location code when the programmer used the
// "<location> <details>" description convention.
func (d Device) LocationID() string {
	if !strings.HasPrefix(d.Description, "IRD-") {
		return ""
	}
	return strings.SplitN(d.Description, " ", 2)[0]
}

// Collection is everything extracted from a single FFP file.
type Collection struct {
	Zones   []Zone
	Nodes   []Node
	Loops   []Loop
	Devices []Device
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
