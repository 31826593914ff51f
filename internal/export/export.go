// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package export writes mapped partitions to files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ffutop/ffp-modbus-mapper/internal/mapping"
)

// UnmappedSheet names the sheet listing what could not be mapped.
const UnmappedSheet = "unmapped"

// Sheet is one output table, built from a partition or from the unmapped report.
type Sheet struct {
	Name    string
	Kind    mapping.Kind
	Gateway int
	Header  []string
	Rows    [][]string
	// Data holds the typed records behind Rows for structured formats.
	Data any
	// Entities is nil for the unmapped sheet.
	Entities []mapping.Row
}

// Exporter writes sheets into dir, naming the produced files after base.
type Exporter interface {
	Export(sheets []Sheet, dir, base string) error
	Format() string
}

// Options tunes exporters that support it.
type Options struct {
	// Tables formats every xlsx sheet as an Excel table.
	Tables bool
}

var constructors = map[string]func(Options) Exporter{
	"xlsx":   func(o Options) Exporter { return NewXLSXExporter(o.Tables) },
	"csv":    func(Options) Exporter { return NewCSVExporter() },
	"json":   func(Options) Exporter { return NewJSONExporter() },
	"yaml":   func(Options) Exporter { return NewYAMLExporter() },
	"cbor":   func(Options) Exporter { return NewCBORExporter() },
	"sqlite": func(Options) Exporter { return NewSQLiteExporter() },
}

// New returns the exporter of format.
func New(format string, opts Options) (Exporter, error) {
	ctor, ok := constructors[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return ctor(opts), nil
}

// Formats lists the supported export formats.
func Formats() []string {
	out := make([]string, 0, len(constructors))
	for f := range constructors {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Sheets lays out a mapping result as one sheet per partition, nodes first,
// followed by the unmapped sheet when anything was left out.
func Sheets(res *mapping.Result) []Sheet {
	var sheets []Sheet
	sheets = append(sheets, partitionSheets(res.NodePartitions)...)
	sheets = append(sheets, partitionSheets(res.ZonePartitions)...)
	sheets = append(sheets, partitionSheets(res.LoopPartitions)...)
	sheets = append(sheets, partitionSheets(res.DevicePartitions)...)
	if !res.Report.Empty() {
		sheets = append(sheets, ReportSheet(res.Report))
	}
	return sheets
}

func partitionSheets[T mapping.Row](parts []mapping.Partition[T]) []Sheet {
	sheets := make([]Sheet, 0, len(parts))
	for _, p := range parts {
		s := Sheet{
			Name:     p.Description,
			Kind:     p.Kind,
			Gateway:  p.Gateway,
			Header:   mapping.Columns(p.Kind),
			Rows:     make([][]string, 0, len(p.Data)),
			Data:     p.Data,
			Entities: make([]mapping.Row, 0, len(p.Data)),
		}
		for _, row := range p.Data {
			s.Rows = append(s.Rows, row.Values())
			s.Entities = append(s.Entities, row)
		}
		sheets = append(sheets, s)
	}
	return sheets
}

// ReportSheet tabulates the unmapped report.
func ReportSheet(r mapping.Report) Sheet {
	s := Sheet{
		Name:   UnmappedSheet,
		Header: mapping.IssueColumns(),
		Rows:   make([][]string, 0, len(r.Issues)),
		Data:   r.Issues,
	}
	for _, i := range r.Issues {
		s.Rows = append(s.Rows, i.Values())
	}
	return s
}

func outputPath(dir, base, suffix string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, base+"."+suffix), nil
}
