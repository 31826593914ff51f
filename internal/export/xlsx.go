// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter writes every sheet into the workbook <base>.modbus.xlsx.
type XLSXExporter struct {
	tables bool
}

// NewXLSXExporter creates an XLSXExporter. With tables set every non-empty
// sheet is formatted as an Excel table.
func NewXLSXExporter(tables bool) *XLSXExporter {
	return &XLSXExporter{tables: tables}
}

func (e *XLSXExporter) Format() string {
	return "xlsx"
}

func (e *XLSXExporter) Export(sheets []Sheet, dir, base string) error {
	if len(sheets) == 0 {
		return nil
	}
	path, err := outputPath(dir, base, "modbus.xlsx")
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, s := range sheets {
		if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
		if err := e.writeSheet(f, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	f.DeleteSheet(defaultSheet)
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	slog.Debug("Workbook written", "sheets", len(sheets), "path", path)
	return nil
}

func (e *XLSXExporter) writeSheet(f *excelize.File, s Sheet) error {
	numeric := numericColumns(s.Header)
	if err := f.SetSheetRow(s.Name, "A1", toCells(s.Header, nil)); err != nil {
		return err
	}
	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, toCells(row, numeric)); err != nil {
			return err
		}
	}

	if !e.tables || len(s.Rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(s.Header), len(s.Rows)+1)
	if err != nil {
		return err
	}
	return f.AddTable(s.Name, &excelize.Table{
		Range:     "A1:" + last,
		Name:      s.Name,
		StyleName: "TableStyleMedium9",
	})
}

// numericColumns marks identifiers, addresses, bit offsets and decimals.
// A composite bit offset such as "2,3" stays text.
func numericColumns(header []string) []bool {
	numeric := make([]bool, len(header))
	for i, h := range header {
		switch h {
		case "zone", "node", "loop", "device", "gateway", "holding_register":
			numeric[i] = true
		default:
			numeric[i] = strings.HasSuffix(h, "_bit_offset") || strings.HasSuffix(h, "_decimal")
		}
	}
	return numeric
}

func toCells(values []string, numeric []bool) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
		if i < len(numeric) && numeric[i] {
			if n, err := strconv.Atoi(v); err == nil {
				cells[i] = n
			}
		}
	}
	return &cells
}
