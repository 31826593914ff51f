// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/ffutop/ffp-modbus-mapper/internal/regimage/model"
)

const (
	sizeHolding = (model.MaxAddress + 1) * 2
	totalSize   = sizeHolding

	offsetHolding = 0
)

// imagePath is the backing file of one gateway inside dir.
func imagePath(dir string, gateway int) string {
	return filepath.Join(dir, fmt.Sprintf("gateway-%d.regs", gateway))
}

// mapBytesToModel constructs an Image backed by the provided data slice.
// Warning: This function uses unsafe pointers to cast byte slices to uint16 slices.
// The resulting Image relies on the host's endianness for multi-byte values.
// This provides zero-copy access but sacrifices portability across architectures
// with different endianness.
func mapBytesToModel(gateway int, data []byte) *model.Image {
	m := &model.Image{Gateway: gateway}

	// Holding Registers (Uint16)
	holdingBytes := data[offsetHolding : offsetHolding+sizeHolding]
	m.HoldingRegisters = unsafe.Slice((*uint16)(unsafe.Pointer(&holdingBytes[0])), sizeHolding/2)

	return m
}
