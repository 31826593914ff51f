// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"

	"github.com/ffutop/ffp-modbus-mapper/internal/regimage/model"
)

// Storage defines the interface for persisting gateway register images.
type Storage interface {
	// Load loads the image of a gateway from storage.
	// If no data exists, it returns a new zeroed image.
	Load(gateway int) (*model.Image, error)

	// Save saves the image to storage.
	Save(image *model.Image) error

	// Close releases every resource held by the storage.
	Close() error
}

// New creates the storage named by kind. path is a directory for "file"
// and "mmap" and a database file for "sqlite".
func New(kind, path string) (Storage, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "file":
		return NewFileStorage(path), nil
	case "mmap":
		return NewMmapStorage(path), nil
	case "sqlite":
		return NewSQLStorage("sqlite", path), nil
	default:
		return nil, fmt.Errorf("unknown persistence type %q", kind)
	}
}
