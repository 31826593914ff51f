// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

// Address locates an equipment unit on a gateway.
type Address struct {
	Gateway         int `json:"gateway" yaml:"gateway" cbor:"gateway"`
	HoldingRegister int `json:"holding_register" yaml:"holding_register" cbor:"holding_register"`
}

// Resolve returns the gateway and holding register of a zone, loop or node.
// ok is false when id is outside every gateway range; that is an expected
// condition (unused zones, zone 0) and not an error.
//
// Devices are addressed by loop and device, use ResolveDevice.
func Resolve(kind Kind, id int) (addr Address, ok bool) {
	l, found := layouts[kind]
	if !found || kind == KindDevice {
		return Address{}, false
	}
	r, found := l.rangeFor(id)
	if !found {
		return Address{}, false
	}
	return Address{
		Gateway:         r.Gateway,
		HoldingRegister: r.RegisterBase + (id-r.First)/l.UnitsPerRegister,
	}, true
}

// ResolveDevice returns the gateway and holding register of device on loop.
// Each loop owns a fixed block of registers on its gateway, a device beyond
// that block is unaddressable.
func ResolveDevice(loop, device int) (Address, bool) {
	l := layouts[KindDevice]
	r, found := l.rangeFor(loop)
	if !found {
		return Address{}, false
	}
	// device 129 would alias register 0 of the next loop's block
	if device < 1 || device > l.DevicesPerLoop() {
		return Address{}, false
	}
	loopOffset := loop - r.First
	return Address{
		Gateway:         r.Gateway,
		HoldingRegister: r.RegisterBase + loopOffset*l.RegistersPerLoop + (device-1)/l.UnitsPerRegister,
	}, true
}
