// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package regimage lays the mapped status points onto the holding register
// space of each gateway.
package regimage

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ffutop/ffp-modbus-mapper/internal/mapping"
	"github.com/ffutop/ffp-modbus-mapper/internal/regimage/model"
	"github.com/ffutop/ffp-modbus-mapper/internal/regimage/persistence"
)

// ErrBitConflict is returned when two equipment units claim the same bit.
var ErrBitConflict = errors.New("bit claimed twice")

type registerKey struct {
	gateway  int
	register int
}

// owner identifies the row that claimed a bit. Labels are not unique: two
// loop sections with the same loop number share "L12".
type owner struct {
	kind  mapping.Kind
	index int
	label string
}

type entry struct {
	kind  mapping.Kind
	label string
	point mapping.Point
}

// Status is one flag asserted by a raw register value.
type Status struct {
	Kind      mapping.Kind      `json:"kind"`
	Label     string            `json:"label"`
	Flag      mapping.Flag      `json:"flag"`
	BitOffset mapping.BitOffset `json:"bit_offset"`
}

// Map is the set of holding register images of one mapping run.
type Map struct {
	images  map[int]*model.Image
	entries map[registerKey][]entry
	owners  map[registerKey]*[mapping.RegisterBits]*owner
}

// Build ORs the decimal of every point of every addressed unit into its
// gateway's image.
func Build(res *mapping.Result) (*Map, error) {
	m := &Map{
		images:  make(map[int]*model.Image),
		entries: make(map[registerKey][]entry),
		owners:  make(map[registerKey]*[mapping.RegisterBits]*owner),
	}
	if err := addRows(m, res.Nodes); err != nil {
		return nil, err
	}
	if err := addRows(m, res.Zones); err != nil {
		return nil, err
	}
	if err := addRows(m, res.Loops); err != nil {
		return nil, err
	}
	if err := addRows(m, res.Devices); err != nil {
		return nil, err
	}
	for _, gw := range m.Gateways() {
		slog.Debug("Register image built", "gateway", gw, "registers", len(m.images[gw].Used()))
	}
	return m, nil
}

func addRows[T mapping.Row](m *Map, rows []T) error {
	for i, row := range rows {
		a := row.Addressing()
		addr, ok := a.Address()
		if !ok {
			continue
		}
		o := &owner{kind: row.Kind(), index: i, label: row.Label()}
		if err := m.add(o, addr, a.Points); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) add(o *owner, addr mapping.Address, points []mapping.Point) error {
	key := registerKey{gateway: addr.Gateway, register: addr.HoldingRegister}
	img, ok := m.images[addr.Gateway]
	if !ok {
		img = model.NewImage(addr.Gateway)
		m.images[addr.Gateway] = img
	}
	owners, ok := m.owners[key]
	if !ok {
		owners = new([mapping.RegisterBits]*owner)
		m.owners[key] = owners
	}

	for _, p := range points {
		for _, bit := range p.BitOffset.Bits() {
			if prev := owners[bit]; prev != nil && *prev != *o {
				return fmt.Errorf("%w: gateway %d register %d bit %d by %s %s (row %d) and %s %s (row %d)",
					ErrBitConflict, addr.Gateway, addr.HoldingRegister, bit,
					prev.kind, prev.label, prev.index+1, o.kind, o.label, o.index+1)
			}
			owners[bit] = o
		}
		if _, err := img.Set(addr.HoldingRegister, p.Decimal); err != nil {
			return fmt.Errorf("%s %s: %w", o.kind, o.label, err)
		}
		m.entries[key] = append(m.entries[key], entry{kind: o.kind, label: o.label, point: p})
	}
	return nil
}

// Gateways returns the gateways holding at least one point, ascending.
func (m *Map) Gateways() []int {
	gws := make([]int, 0, len(m.images))
	for gw := range m.images {
		gws = append(gws, gw)
	}
	slices.Sort(gws)
	return gws
}

// Image returns the image of gateway.
func (m *Map) Image(gateway int) (*model.Image, bool) {
	img, ok := m.images[gateway]
	return img, ok
}

// Decode returns the flags asserted by value read from register of gateway.
// A flag spanning several bits is asserted only when all of them are set.
func (m *Map) Decode(gateway, register int, value uint16) []Status {
	var out []Status
	for _, e := range m.entries[registerKey{gateway: gateway, register: register}] {
		if value&e.point.Decimal != e.point.Decimal {
			continue
		}
		out = append(out, Status{
			Kind:      e.kind,
			Label:     e.label,
			Flag:      e.point.Flag,
			BitOffset: e.point.BitOffset,
		})
	}
	return out
}

// Wire returns the register as a Modbus master reads it, big-endian. A
// gateway without mapped points reads as zero.
func (m *Map) Wire(gateway, register int) ([]byte, error) {
	if register < 0 || register > model.MaxAddress {
		return nil, fmt.Errorf("register %d out of range", register)
	}
	img, ok := m.images[gateway]
	if !ok {
		img = model.NewImage(gateway)
	}
	return img.ReadHoldingRegisters(uint16(register), 1)
}

// Persist replaces the stored image of every gateway.
func (m *Map) Persist(s persistence.Storage) error {
	for _, gw := range m.Gateways() {
		stored, err := s.Load(gw)
		if err != nil {
			return fmt.Errorf("load gateway %d image: %w", gw, err)
		}
		stored.Reset()
		stored.CopyFrom(m.images[gw])
		if err := s.Save(stored); err != nil {
			return fmt.Errorf("save gateway %d image: %w", gw, err)
		}
		slog.Info("Register image saved", "gateway", gw, "registers", len(stored.Used()))
	}
	return nil
}
