// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import (
	"encoding/binary"
	"fmt"
	"sync"
)

const (
	MaxAddress = 65535
)

// Image is the holding register space of one gateway.
// It uses a simple flat memory model covering the full 16-bit address space,
// each register holding the OR of every status bit assigned to it.
type Image struct {
	mu sync.RWMutex

	Gateway int
	// 4x Holding Registers.
	HoldingRegisters []uint16
}

// NewImage creates a new image initialized to zero.
func NewImage(gateway int) *Image {
	return &Image{
		Gateway:          gateway,
		HoldingRegisters: make([]uint16, MaxAddress+1),
	}
}

// Get returns the value of a single holding register.
func (m *Image) Get(address uint16) uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.HoldingRegisters[address]
}

// Set ORs mask into a holding register and returns the previous value.
func (m *Image) Set(address int, mask uint16) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if address < 0 || address > MaxAddress {
		return 0, fmt.Errorf("address %d out of range", address)
	}

	prev := m.HoldingRegisters[address]
	m.HoldingRegisters[address] = prev | mask
	return prev, nil
}

// CopyFrom overwrites every register with the content of src.
func (m *Image) CopyFrom(src *Image) {
	src.mu.RLock()
	defer src.mu.RUnlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.HoldingRegisters, src.HoldingRegisters)
}

// Reset clears every register.
func (m *Image) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.HoldingRegisters)
}

// Used returns the addresses of non-zero registers in ascending order.
func (m *Image) Used() []uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var used []uint16
	for addr, v := range m.HoldingRegisters {
		if v != 0 {
			used = append(used, uint16(addr))
		}
	}
	return used
}

// ReadHoldingRegisters reads a range of holding registers and returns them as BigEndian bytes,
// the byte order a Modbus master sees on the wire.
func (m *Image) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := validateRange(address, quantity); err != nil {
		return nil, err
	}

	result := make([]byte, int(quantity)*2)
	for i := 0; i < int(quantity); i++ {
		val := m.HoldingRegisters[int(address)+i]
		binary.BigEndian.PutUint16(result[i*2:], val)
	}
	return result, nil
}

func validateRange(address, quantity uint16) error {
	if quantity == 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	// address is 0-based.
	if int(address)+int(quantity) > MaxAddress+1 {
		return fmt.Errorf("address range out of bounds")
	}
	return nil
}
