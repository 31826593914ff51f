// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package ffp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Section
	}{
		{"Empty", "", nil},
		{"NoBrackets", "plain text", nil},
		{"Single", "[ Z 1 Z 1\nY\tA\n]", []Section{"Z 1 Z 1\nY\tA"}},
		{"Several", "x[ A ]y\n[\n B \n]", []Section{"A", "B"}},
		{"Unterminated", "[ A ][ B", []Section{"A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSections(tt.text))
		})
	}
}

func TestSectionAccessors(t *testing.T) {
	s := Section("M 110101 X 2\r\n22\tBOH CORRIDOR\tx02\tOPT\r\n22\tELEC\tx02\tOPT")

	assert.Equal(t, "M 110101 X 2", s.Header())
	assert.True(t, s.HasPrefix("M"))
	assert.True(t, s.HeaderHasSuffix("X 2"))
	assert.False(t, s.HeaderHasSuffix("X 1"))

	id, err := s.ID()
	require.NoError(t, err)
	assert.Equal(t, "110101", id)

	node, err := s.NodeNumber()
	require.NoError(t, err)
	assert.Equal(t, 11, node)

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"22", "BOH CORRIDOR", "x02", "OPT"}, rows[0])
}

func TestNodeFromID(t *testing.T) {
	tests := []struct {
		id      string
		want    int
		wantErr bool
	}{
		{"110101", 11, false},
		{"90102", 9, false},
		{"10000", 1, false},
		{"1000", 0, true},
		{"ab0000", 0, true},
	}

	for _, tt := range tests {
		got, err := nodeFromID(tt.id)
		if tt.wantErr {
			assert.Error(t, err, tt.id)
			continue
		}
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.want, got, tt.id)
	}
}

func TestSectionWithoutID(t *testing.T) {
	_, err := Section("Z").ID()
	assert.Error(t, err)
}
