// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

// Kind identifies an equipment type.
type Kind string

const (
	KindZone   Kind = "zone"
	KindNode   Kind = "node"
	KindLoop   Kind = "loop"
	KindDevice Kind = "device"
)

// Plural is the collection name, used for sheet and partition names.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Flag is a status flag exposed over Modbus.
type Flag string

const (
	FlagAlarm           Flag = "alarm"
	FlagPrealarm        Flag = "prealarm"
	FlagFault           Flag = "fault"
	FlagIsolate         Flag = "isolate"
	FlagOpenCircuit     Flag = "open_circuit"
	FlagShortCircuitA   Flag = "short_circuit_a"
	FlagShortCircuitB   Flag = "short_circuit_b"
	FlagLoopDown        Flag = "loop_down"
	FlagOverCurrent     Flag = "over_current"
	FlagNonConfigured   Flag = "non_configured"
	FlagLoopModuleFault Flag = "loop_module_fault"
)

// GatewayRange maps a contiguous identifier range onto one gateway's
// holding register space. For devices the range is over loop numbers.
type GatewayRange struct {
	Gateway      int
	First        int
	Last         int
	RegisterBase int
}

// Contains reports whether id falls inside the range.
func (r GatewayRange) Contains(id int) bool {
	return id >= r.First && id <= r.Last
}

// FlagBits places a flag relative to the first bit of an equipment unit.
type FlagBits struct {
	Flag Flag
	Bits []int
}

// Layout is the register contract of one equipment type.
type Layout struct {
	Kind             Kind
	Ranges           []GatewayRange
	UnitsPerRegister int
	BitsPerUnit      int
	// RegistersPerLoop is only set for devices, which are addressed
	// in fixed blocks per loop.
	RegistersPerLoop int
	Flags            []FlagBits
}

// Gateway holding register layout of the panel's Modbus TCP gateways.
var layouts = map[Kind]Layout{
	KindZone: {
		Kind: KindZone,
		Ranges: []GatewayRange{
			{Gateway: 1, First: 1, Last: 1000, RegisterBase: 6002},
			{Gateway: 2, First: 1001, Last: 2000, RegisterBase: 12352},
			{Gateway: 3, First: 2001, Last: 2500, RegisterBase: 18702},
		},
		UnitsPerRegister: 4,
		BitsPerUnit:      4,
		Flags: []FlagBits{
			{FlagAlarm, []int{0}},
			{FlagPrealarm, []int{1}},
			{FlagFault, []int{2}},
			{FlagIsolate, []int{3}},
		},
	},
	KindLoop: {
		Kind: KindLoop,
		Ranges: []GatewayRange{
			{Gateway: 1, First: 1, Last: 90, RegisterBase: 152},
			{Gateway: 2, First: 91, Last: 180, RegisterBase: 6502},
			{Gateway: 3, First: 181, Last: 250, RegisterBase: 12852},
		},
		UnitsPerRegister: 2,
		BitsPerUnit:      8,
		Flags: []FlagBits{
			{FlagOpenCircuit, []int{0}},
			{FlagShortCircuitA, []int{1}},
			{FlagShortCircuitB, []int{2}},
			{FlagLoopDown, []int{2, 3}},
			{FlagOverCurrent, []int{3}},
			{FlagNonConfigured, []int{4}},
			{FlagLoopModuleFault, []int{5}},
		},
	},
	KindNode: {
		Kind: KindNode,
		Ranges: []GatewayRange{
			{Gateway: 1, First: 1, Last: 100, RegisterBase: 102},
		},
		UnitsPerRegister: 4,
		BitsPerUnit:      4,
		// bit 1 is unused
		Flags: []FlagBits{
			{FlagAlarm, []int{0}},
			{FlagFault, []int{2}},
			{FlagIsolate, []int{3}},
		},
	},
	KindDevice: {
		Kind: KindDevice,
		Ranges: []GatewayRange{
			{Gateway: 1, First: 1, Last: 90, RegisterBase: 242},
			{Gateway: 2, First: 91, Last: 180, RegisterBase: 6592},
			{Gateway: 3, First: 181, Last: 250, RegisterBase: 12942},
		},
		UnitsPerRegister: 4,
		BitsPerUnit:      4,
		RegistersPerLoop: 32,
		Flags: []FlagBits{
			{FlagAlarm, []int{0}},
			{FlagPrealarm, []int{1}},
			{FlagFault, []int{2}},
			{FlagIsolate, []int{3}},
		},
	},
}

// Kinds lists the equipment types in export order.
func Kinds() []Kind {
	return []Kind{KindNode, KindZone, KindLoop, KindDevice}
}

// LayoutFor returns a copy of the layout of kind.
func LayoutFor(kind Kind) (Layout, bool) {
	l, ok := layouts[kind]
	if !ok {
		return Layout{}, false
	}
	out := l
	out.Ranges = append([]GatewayRange(nil), l.Ranges...)
	out.Flags = make([]FlagBits, len(l.Flags))
	for i, f := range l.Flags {
		out.Flags[i] = FlagBits{Flag: f.Flag, Bits: append([]int(nil), f.Bits...)}
	}
	return out, true
}

func (l Layout) rangeFor(id int) (GatewayRange, bool) {
	for _, r := range l.Ranges {
		if r.Contains(id) {
			return r, true
		}
	}
	return GatewayRange{}, false
}

// DevicesPerLoop is the number of device slots reserved for each loop.
func (l Layout) DevicesPerLoop() int {
	return l.RegistersPerLoop * l.UnitsPerRegister
}
