// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// document is the structured form shared by the json, yaml and cbor
// exporters. Sheets keep their output order.
type document struct {
	Sheets []sheetDocument `json:"sheets" yaml:"sheets" cbor:"sheets"`
}

type sheetDocument struct {
	Name    string `json:"name" yaml:"name" cbor:"name"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty" cbor:"kind,omitempty"`
	Gateway int    `json:"gateway,omitempty" yaml:"gateway,omitempty" cbor:"gateway,omitempty"`
	Records any    `json:"records" yaml:"records" cbor:"records"`
}

func newDocument(sheets []Sheet) document {
	doc := document{Sheets: make([]sheetDocument, 0, len(sheets))}
	for _, s := range sheets {
		doc.Sheets = append(doc.Sheets, sheetDocument{
			Name:    s.Name,
			Kind:    string(s.Kind),
			Gateway: s.Gateway,
			Records: s.Data,
		})
	}
	return doc
}

func writeDocument(format string, sheets []Sheet, dir, base string, encode func(io.Writer, document) error) error {
	path, err := outputPath(dir, base, "modbus."+format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := encode(f, newDocument(sheets)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	slog.Debug("Document written", "format", format, "sheets", len(sheets), "path", path)
	return f.Close()
}

// JSONExporter writes every sheet into <base>.modbus.json.
type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Format() string {
	return "json"
}

func (e *JSONExporter) Export(sheets []Sheet, dir, base string) error {
	return writeDocument(e.Format(), sheets, dir, base, func(w io.Writer, doc document) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	})
}

// YAMLExporter writes every sheet into <base>.modbus.yaml.
type YAMLExporter struct{}

func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

func (e *YAMLExporter) Format() string {
	return "yaml"
}

func (e *YAMLExporter) Export(sheets []Sheet, dir, base string) error {
	return writeDocument(e.Format(), sheets, dir, base, func(w io.Writer, doc document) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	})
}

// CBORExporter writes every sheet into <base>.modbus.cbor.
type CBORExporter struct{}

func NewCBORExporter() *CBORExporter {
	return &CBORExporter{}
}

func (e *CBORExporter) Format() string {
	return "cbor"
}

func (e *CBORExporter) Export(sheets []Sheet, dir, base string) error {
	return writeDocument(e.Format(), sheets, dir, base, func(w io.Writer, doc document) error {
		return cbor.NewEncoder(w).Encode(doc)
	})
}
