// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/ffutop/ffp-modbus-mapper/internal/regimage/model"
)

type mappedImage struct {
	file *os.File
	data mmap.MMap
}

// MmapStorage implements persistence using memory-mapped files.
// This provides OS-managed persistence and efficient memory usage.
//
// Layout (per gateway file):
// - HoldingRegisters: 65536 * 2 bytes (Offset 0)
// Total Size: 131072 bytes
type MmapStorage struct {
	dir    string
	images map[int]*mappedImage
}

// NewMmapStorage creates a new MmapStorage writing into dir.
func NewMmapStorage(dir string) *MmapStorage {
	return &MmapStorage{
		dir:    dir,
		images: make(map[int]*mappedImage),
	}
}

// Load loads the image of a gateway by memory-mapping its file.
func (ms *MmapStorage) Load(gateway int) (*model.Image, error) {
	if err := os.MkdirAll(ms.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	// Open file, creating if necessary
	f, err := os.OpenFile(imagePath(ms.dir, gateway), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open mmap file: %w", err)
	}

	// Ensure file size
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if fi.Size() != int64(totalSize) {
		if err := f.Truncate(int64(totalSize)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize mmap file: %w", err)
		}
	}

	// Mmap the file
	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	if err := ms.release(gateway); err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	ms.images[gateway] = &mappedImage{file: f, data: data}

	// Construct the Image backed by the mmap slice
	return mapBytesToModel(gateway, data), nil
}

// Save flushes the gateway's mmap to disk.
func (ms *MmapStorage) Save(m *model.Image) error {
	img, ok := ms.images[m.Gateway]
	if !ok || img.data == nil {
		return fmt.Errorf("mmap data of gateway %d is nil", m.Gateway)
	}
	return img.data.Flush()
}

// Close unmaps and closes every file.
func (ms *MmapStorage) Close() error {
	var err error
	for gw := range ms.images {
		if e := ms.release(gw); e != nil {
			err = e
		}
	}
	return err
}

func (ms *MmapStorage) release(gateway int) error {
	img, ok := ms.images[gateway]
	if !ok {
		return nil
	}
	var err error
	if img.data != nil {
		if e := img.data.Unmap(); e != nil {
			err = e
		}
	}
	if img.file != nil {
		if e := img.file.Close(); e != nil {
			err = e
		}
	}
	delete(ms.images, gateway)
	return err
}
