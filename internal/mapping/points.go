// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

import "fmt"

// Point is one status flag of an equipment unit.
type Point struct {
	Flag      Flag      `json:"flag" yaml:"flag" cbor:"flag"`
	BitOffset BitOffset `json:"bit_offset" yaml:"bit_offset" cbor:"bit_offset"`
	Decimal   uint16    `json:"decimal" yaml:"decimal" cbor:"decimal"`
}

// Offsets returns the status points of unit id of kind, in layout order.
// For devices id is the device number within its loop.
func Offsets(kind Kind, id int) ([]Point, error) {
	l, ok := layouts[kind]
	if !ok {
		return nil, fmt.Errorf("unknown equipment kind %q", kind)
	}

	base := floorMod(id-1, l.UnitsPerRegister) * l.BitsPerUnit
	points := make([]Point, 0, len(l.Flags))
	for _, f := range l.Flags {
		bits := make([]int, len(f.Bits))
		for i, b := range f.Bits {
			bits[i] = base + b
		}
		var offset BitOffset
		if len(bits) == 1 {
			offset = Single(bits[0])
		} else {
			offset = Composite(bits...)
		}
		dec, err := offset.Decimal()
		if err != nil {
			return nil, fmt.Errorf("%s %d %s: %w", kind, id, f.Flag, err)
		}
		points = append(points, Point{Flag: f.Flag, BitOffset: offset, Decimal: dec})
	}
	return points, nil
}

// floorMod is a modulo whose result has the sign of n.
func floorMod(a, n int) int {
	return ((a % n) + n) % n
}
