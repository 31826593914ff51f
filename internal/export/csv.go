// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
)

// CSVExporter writes one <base>.<sheet>.csv file per sheet.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Format() string {
	return "csv"
}

func (e *CSVExporter) Export(sheets []Sheet, dir, base string) error {
	for _, s := range sheets {
		path, err := outputPath(dir, base, s.Name+".csv")
		if err != nil {
			return err
		}
		if err := writeCSV(path, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
		slog.Debug("Sheet written", "format", "csv", "sheet", s.Name, "rows", len(s.Rows), "path", path)
	}
	return nil
}

func writeCSV(path string, s Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(s.Header); err != nil {
		return err
	}
	if err := w.WriteAll(s.Rows); err != nil {
		return err
	}
	return f.Close()
}
