// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package ffp

import (
	"fmt"
	"strconv"
	"strings"
)

// Section is the trimmed content of one bracketed block of an FFP file.
// The first line is the header, e.g. "M 90102 X 1", the remaining lines
// are tab separated rows.
type Section string

// SplitSections returns every "[ ... ]" block of text with the brackets
// removed and surrounding whitespace trimmed. An unterminated block ends
// the scan.
func SplitSections(text string) []Section {
	var sections []Section
	start := 0
	for {
		open := strings.IndexByte(text[start:], '[')
		if open == -1 {
			break
		}
		open += start
		end := strings.IndexByte(text[open:], ']')
		if end == -1 {
			break
		}
		end += open
		sections = append(sections, Section(strings.TrimSpace(text[open+1:end])))
		start = end + 1
	}
	return sections
}

func (s Section) lines() []string {
	lines := strings.Split(string(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Header returns the first line.
func (s Section) Header() string {
	return s.lines()[0]
}

// Rows returns the lines after the header split on tabs.
func (s Section) Rows() [][]string {
	lines := s.lines()[1:]
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = strings.Split(l, "\t")
	}
	return rows
}

// HasPrefix reports whether the section starts with flag.
func (s Section) HasPrefix(flag string) bool {
	return strings.HasPrefix(string(s), flag)
}

// HeaderHasSuffix reports whether the header line ends with suffix.
func (s Section) HeaderHasSuffix(suffix string) bool {
	return strings.HasSuffix(strings.TrimSpace(s.Header()), suffix)
}

// ID returns the identifier in the header, "110101" for "M 110101 X 1".
func (s Section) ID() (string, error) {
	fields := strings.Fields(s.Header())
	if len(fields) < 2 {
		return "", fmt.Errorf("section header %q: missing identifier", s.Header())
	}
	return fields[1], nil
}

// NodeNumber returns the panel node encoded in the header identifier: the
// identifier without its last four digits, 11 for "110101".
func (s Section) NodeNumber() (int, error) {
	id, err := s.ID()
	if err != nil {
		return 0, err
	}
	return nodeFromID(id)
}

func nodeFromID(id string) (int, error) {
	if len(id) <= 4 {
		return 0, fmt.Errorf("identifier %q: too short to hold a node number", id)
	}
	n, err := strconv.Atoi(id[:len(id)-4])
	if err != nil {
		return 0, fmt.Errorf("identifier %q: %w", id, err)
	}
	return n, nil
}

func filter(sections []Section, keep func(Section) bool) []Section {
	var out []Section
	for _, s := range sections {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
