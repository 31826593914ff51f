// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		kind string
		path func(dir string) string
	}{
		{"file", "file", func(dir string) string { return filepath.Join(dir, "regs") }},
		{"mmap", "mmap", func(dir string) string { return filepath.Join(dir, "regs") }},
		{"sqlite", "sqlite", func(dir string) string { return filepath.Join(dir, "image.db") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t.TempDir())

			s, err := New(tt.kind, path)
			require.NoError(t, err)
			img, err := s.Load(2)
			require.NoError(t, err)
			assert.Equal(t, 2, img.Gateway)
			assert.Empty(t, img.Used())

			_, err = img.Set(30001, 0b0110)
			require.NoError(t, err)
			_, err = img.Set(50000, 1<<15)
			require.NoError(t, err)
			require.NoError(t, s.Save(img))
			require.NoError(t, s.Close())

			s, err = New(tt.kind, path)
			require.NoError(t, err)
			defer s.Close()
			again, err := s.Load(2)
			require.NoError(t, err)
			assert.Equal(t, uint16(0b0110), again.Get(30001))
			assert.Equal(t, uint16(1<<15), again.Get(50000))
			assert.Equal(t, []uint16{30001, 50000}, again.Used())

			other, err := s.Load(1)
			require.NoError(t, err)
			assert.Empty(t, other.Used())
		})
	}
}

func TestFileStorageLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir)
	defer s.Close()

	img, err := s.Load(3)
	require.NoError(t, err)
	require.NoError(t, s.Save(img))

	fi, err := os.Stat(filepath.Join(dir, "gateway-3.regs"))
	require.NoError(t, err)
	assert.Equal(t, int64(totalSize), fi.Size())
}

func TestSaveWithoutLoad(t *testing.T) {
	dir := t.TempDir()
	s, err := New("file", dir)
	require.NoError(t, err)
	defer s.Close()

	img, err := NewMemoryStorage().Load(1)
	require.NoError(t, err)
	assert.Error(t, s.Save(img))
}

func TestNewUnknown(t *testing.T) {
	_, err := New("redis", "")
	assert.Error(t, err)

	s, err := New("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)
}
