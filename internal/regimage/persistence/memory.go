// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import "github.com/ffutop/ffp-modbus-mapper/internal/regimage/model"

// MemoryStorage is a no-op storage (non-persistent).
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load(gateway int) (*model.Image, error) {
	return model.NewImage(gateway), nil
}

func (ms *MemoryStorage) Save(image *model.Image) error {
	return nil
}

func (ms *MemoryStorage) Close() error {
	return nil
}
