// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ffutop/ffp-modbus-mapper/internal/config"
	"github.com/ffutop/ffp-modbus-mapper/internal/export"
	"github.com/ffutop/ffp-modbus-mapper/internal/ffp"
	"github.com/ffutop/ffp-modbus-mapper/internal/mapping"
	"github.com/ffutop/ffp-modbus-mapper/internal/regimage"
	"github.com/ffutop/ffp-modbus-mapper/internal/regimage/persistence"
)

func main() {
	// Load Configuration
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := run(cfg, os.Stdout); err != nil {
		slog.Error("Mapping failed", "input", cfg.Input, "err", err)
		os.Exit(1)
	}
}

// run maps cfg.Input and writes every configured output. Decoded register
// values are printed to w.
func run(cfg *config.Config, w io.Writer) error {
	slog.Info("Reading FFP configuration", "input", cfg.Input, "config", cfg.ConfigFile)

	// Extract
	collection, err := ffp.ReadFile(cfg.Input)
	if err != nil {
		return err
	}
	if cfg.FFP.Clean {
		collection = ffp.Clean(collection)
	}
	slog.Info("Equipment extracted",
		"zones", len(collection.Zones), "nodes", len(collection.Nodes),
		"loops", len(collection.Loops), "devices", len(collection.Devices))

	// Map
	mapper := mapping.NewMapper()
	mapper.FixZoneBoundary = cfg.Mapping.FixZoneBoundary
	res, err := mapper.Map(collection)
	if err != nil {
		return err
	}
	for _, issue := range res.Report.Issues {
		slog.Warn("Equipment not mapped", "kind", issue.Kind, "id", issue.Identifier,
			"description", issue.Description, "reason", issue.Reason)
	}

	// Register image
	image, err := regimage.Build(res)
	if err != nil {
		return err
	}
	storage, err := persistence.New(cfg.Image.Persistence.Type, cfg.Image.Persistence.Path)
	if err != nil {
		return err
	}
	defer storage.Close()
	if err := image.Persist(storage); err != nil {
		return err
	}

	// Export
	sheets := export.Sheets(res)
	for _, format := range cfg.Output.Formats {
		exporter, err := export.New(format, export.Options{Tables: cfg.Output.Tables})
		if err != nil {
			return err
		}
		if err := exporter.Export(sheets, cfg.Output.Dir, cfg.Output.Basename); err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
		slog.Info("Mapping exported", "format", format, "dir", cfg.Output.Dir, "sheets", len(sheets))
	}

	for _, d := range cfg.Decode {
		gateway, register, value, err := parseDecode(d)
		if err != nil {
			return err
		}
		wire, err := image.Wire(gateway, register)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "gateway %d register %d mapped bits: % x\n", gateway, register, wire)
		statuses := image.Decode(gateway, register, value)
		if len(statuses) == 0 {
			fmt.Fprintf(w, "gateway %d register %d value %d: no flags\n", gateway, register, value)
			continue
		}
		for _, s := range statuses {
			fmt.Fprintf(w, "gateway %d register %d value %d: %s %s %s (bit %s)\n",
				gateway, register, value, s.Kind, s.Label, s.Flag, s.BitOffset)
		}
	}

	slog.Info("Done.", "unmapped", len(res.Report.Issues))
	return nil
}

// parseDecode parses "gateway:register:value"; value may carry a 0x or 0b prefix.
func parseDecode(s string) (gateway, register int, value uint16, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid decode %q, want gateway:register:value", s)
	}
	if gateway, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid decode gateway %q: %w", parts[0], err)
	}
	if register, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid decode register %q: %w", parts[1], err)
	}
	v, err := strconv.ParseUint(parts[2], 0, 16)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid decode value %q: %w", parts[2], err)
	}
	return gateway, register, uint16(v), nil
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
		} else {
			out = f
		}
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}
