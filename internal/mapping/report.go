// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

import "strings"

// Reason explains why an equipment unit could not be mapped.
type Reason string

const (
	// ReasonUnaddressable: identifier outside every gateway range.
	ReasonUnaddressable Reason = "unaddressable"
	// ReasonMissingLoop: device section not matched to a loop info section.
	ReasonMissingLoop Reason = "missing_loop"
	// ReasonPartitionGap: row selected by no gateway partition.
	ReasonPartitionGap Reason = "partition_gap"
)

// Issue is one line of the unmapped report.
type Issue struct {
	Kind        Kind   `json:"kind" yaml:"kind" cbor:"kind"`
	Identifier  string `json:"identifier" yaml:"identifier" cbor:"identifier"`
	Description string `json:"description" yaml:"description" cbor:"description"`
	Reason      Reason `json:"reason" yaml:"reason" cbor:"reason"`
}

// Values implements the table row of the unmapped sheet.
func (i Issue) Values() []string {
	return []string{string(i.Kind), i.Identifier, i.Description, string(i.Reason)}
}

// IssueColumns is the header of the unmapped sheet.
func IssueColumns() []string {
	return []string{"kind", "identifier", "description", "reason"}
}

// Report collects what could not be mapped during a run.
type Report struct {
	Issues []Issue `json:"issues" yaml:"issues" cbor:"issues"`
}

func (r *Report) add(row Row, reason Reason) {
	r.Issues = append(r.Issues, Issue{
		Kind:        row.Kind(),
		Identifier:  row.Label(),
		Description: strings.TrimSpace(row.Description()),
		Reason:      reason,
	})
}

// Count returns the number of issues with reason.
func (r Report) Count(reason Reason) int {
	n := 0
	for _, i := range r.Issues {
		if i.Reason == reason {
			n++
		}
	}
	return n
}

// Empty reports whether everything was mapped.
func (r Report) Empty() bool {
	return len(r.Issues) == 0
}

func collectUnaddressable[T Row](r *Report, rows []T) {
	for _, row := range rows {
		if _, ok := row.Addressing().Address(); !ok {
			r.add(row, ReasonUnaddressable)
		}
	}
}
