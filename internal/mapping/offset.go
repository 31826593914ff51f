// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// RegisterBits is the width of a Modbus holding register.
const RegisterBits = 16

// BitOffset is the position of a flag inside a holding register. Most flags
// occupy a single bit; composite flags (loop down) are asserted by several.
type BitOffset struct {
	bits      []int
	composite bool
}

// Single returns a one-bit offset.
func Single(bit int) BitOffset {
	return BitOffset{bits: []int{bit}}
}

// Composite returns an offset made of several bits.
func Composite(bits ...int) BitOffset {
	return BitOffset{bits: append([]int(nil), bits...), composite: true}
}

// ParseBitOffset parses "3" or "2,3".
func ParseBitOffset(s string) (BitOffset, error) {
	parts := strings.Split(s, ",")
	bits := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return BitOffset{}, fmt.Errorf("parse bit offset %q: %w", s, err)
		}
		bits = append(bits, n)
	}
	switch len(bits) {
	case 0:
		return BitOffset{}, fmt.Errorf("parse bit offset %q: empty", s)
	case 1:
		if strings.Contains(s, ",") {
			return Composite(bits...), nil
		}
		return Single(bits[0]), nil
	default:
		return Composite(bits...), nil
	}
}

// Bits returns the bit positions.
func (b BitOffset) Bits() []int {
	return append([]int(nil), b.bits...)
}

// IsComposite reports whether the flag is made of several bits.
func (b BitOffset) IsComposite() bool {
	return b.composite
}

// Decimal packs the offset into a register value.
func (b BitOffset) Decimal() (uint16, error) {
	return Decimal(b.bits...)
}

// Validate checks every bit lies inside a register.
func (b BitOffset) Validate() error {
	_, err := Decimal(b.bits...)
	return err
}

// String renders "3" or "2,3".
func (b BitOffset) String() string {
	parts := make([]string, len(b.bits))
	for i, bit := range b.bits {
		parts[i] = strconv.Itoa(bit)
	}
	return strings.Join(parts, ",")
}

func (b BitOffset) value() any {
	if !b.composite && len(b.bits) == 1 {
		return b.bits[0]
	}
	if b.bits == nil {
		return []int{}
	}
	return b.bits
}

// MarshalJSON encodes a single offset as a number and a composite one as a list.
func (b BitOffset) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.value())
}

// UnmarshalJSON accepts a number or a list of numbers.
func (b *BitOffset) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*b = Single(n)
		return nil
	}
	var bits []int
	if err := json.Unmarshal(data, &bits); err != nil {
		return fmt.Errorf("decode bit offset: %w", err)
	}
	*b = Composite(bits...)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b BitOffset) MarshalYAML() (interface{}, error) {
	return b.value(), nil
}

// MarshalCBOR implements cbor.Marshaler.
func (b BitOffset) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(b.value())
}

// Decimal returns the register value with every given bit set, i.e. the sum
// of 2^offset. Offsets outside [0,15] fail with ErrInvalidBitOffset.
func Decimal(offsets ...int) (uint16, error) {
	var value uint16
	for _, offset := range offsets {
		if offset < 0 || offset >= RegisterBits {
			return 0, fmt.Errorf("%w: %d, must be between 0 and %d", ErrInvalidBitOffset, offset, RegisterBits-1)
		}
		value |= 1 << uint(offset)
	}
	return value, nil
}
