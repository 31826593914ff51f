// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"io"
	"os"

	"github.com/ffutop/ffp-modbus-mapper/internal/regimage/model"
)

type fileImage struct {
	file *os.File
	data []byte
}

// FileStorage implements persistence using file operations,
// one file of 65536 * 2 bytes per gateway.
type FileStorage struct {
	dir    string
	images map[int]*fileImage
}

// NewFileStorage creates a new FileStorage writing into dir.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{
		dir:    dir,
		images: make(map[int]*fileImage),
	}
}

// Load loads the image of a gateway by file operations.
func (ms *FileStorage) Load(gateway int) (*model.Image, error) {
	if err := os.MkdirAll(ms.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	// Open file, creating if necessary
	f, err := os.OpenFile(imagePath(ms.dir, gateway), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
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
			return nil, fmt.Errorf("failed to resize file: %w", err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if prev, ok := ms.images[gateway]; ok {
		prev.file.Close()
	}
	ms.images[gateway] = &fileImage{file: f, data: data}

	// Construct the Image backed by the file data slice
	return mapBytesToModel(gateway, data), nil
}

// Save writes the gateway's data to disk and syncs it.
func (ms *FileStorage) Save(m *model.Image) error {
	img, ok := ms.images[m.Gateway]
	if !ok || img.data == nil {
		return fmt.Errorf("gateway %d image not loaded", m.Gateway)
	}
	if _, err := img.file.WriteAt(img.data, 0); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := img.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file to disk: %w", err)
	}
	return nil
}

// Close the files.
func (ms *FileStorage) Close() error {
	var err error
	for gw, img := range ms.images {
		if e := img.file.Close(); e != nil {
			err = e
		}
		delete(ms.images, gw)
	}
	return err
}
