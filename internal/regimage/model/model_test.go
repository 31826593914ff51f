// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import (
	"testing"
)

func TestImageSetOrs(t *testing.T) {
	m := NewImage(1)
	if _, err := m.Set(30000, 1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	prev, err := m.Set(30000, 4)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if prev != 1 {
		t.Errorf("prev = %d, want 1", prev)
	}
	if got := m.Get(30000); got != 5 {
		t.Errorf("Get = %d, want 5", got)
	}
	if _, err := m.Set(MaxAddress+1, 1); err == nil {
		t.Errorf("expected out of range error")
	}
}

func TestReadHoldingRegisters(t *testing.T) {
	m := NewImage(1)
	if _, err := m.Set(10, 0x1234); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := m.Set(11, 0xABCD); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	tests := []struct {
		name     string
		address  uint16
		quantity uint16
		want     []byte
		wantErr  bool
	}{
		{"two registers", 10, 2, []byte{0x12, 0x34, 0xAB, 0xCD}, false},
		{"zero quantity", 10, 0, nil, true},
		{"past end", MaxAddress, 2, nil, true},
		{"last register", MaxAddress, 1, []byte{0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ReadHoldingRegisters(tt.address, tt.quantity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != string(tt.want) {
				t.Errorf("got % x, want % x", got, tt.want)
			}
		})
	}
}

func TestUsedAndReset(t *testing.T) {
	m := NewImage(2)
	m.Set(5, 1)
	m.Set(2, 1)

	used := m.Used()
	if len(used) != 2 || used[0] != 2 || used[1] != 5 {
		t.Errorf("Used = %v, want [2 5]", used)
	}

	dst := NewImage(2)
	dst.CopyFrom(m)
	if dst.Get(5) != 1 {
		t.Errorf("CopyFrom did not copy register 5")
	}

	m.Reset()
	if len(m.Used()) != 0 {
		t.Errorf("Reset left registers set")
	}
}
