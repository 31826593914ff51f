// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package export

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ffutop/ffp-modbus-mapper/internal/mapping"

	_ "modernc.org/sqlite"
)

// SQLiteExporter appends every point of a run to <base>.modbus.db, one row
// per (entity, flag) in `modbus_points` and the unmapped report in
// `unmapped`. Rows of one run share a run id.
type SQLiteExporter struct {
	// RunID is set by the last Export.
	RunID string
}

func NewSQLiteExporter() *SQLiteExporter {
	return &SQLiteExporter{}
}

func (e *SQLiteExporter) Format() string {
	return "sqlite"
}

func (e *SQLiteExporter) Export(sheets []Sheet, dir, base string) error {
	path, err := outputPath(dir, base, "modbus.db")
	if err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer db.Close()

	if err := migrate(db); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}

	runID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	points, err := tx.Prepare(`INSERT INTO modbus_points
		(run_id, created_at, sheet, kind, identifier, description, gateway, holding_register, flag, bit_offset, decimal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer points.Close()

	unmapped, err := tx.Prepare(`INSERT INTO unmapped
		(run_id, created_at, kind, identifier, description, reason)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer unmapped.Close()

	var n int
	for _, s := range sheets {
		if issues, ok := s.Data.([]mapping.Issue); ok {
			for _, i := range issues {
				if _, err := unmapped.Exec(runID, createdAt, string(i.Kind), i.Identifier, i.Description, string(i.Reason)); err != nil {
					return fmt.Errorf("failed to insert issue %s: %w", i.Identifier, err)
				}
			}
			continue
		}
		for _, row := range s.Entities {
			a := row.Addressing()
			var gateway, register sql.NullInt64
			if addr, ok := a.Address(); ok {
				gateway = sql.NullInt64{Int64: int64(addr.Gateway), Valid: true}
				register = sql.NullInt64{Int64: int64(addr.HoldingRegister), Valid: true}
			}
			for _, p := range a.Points {
				if _, err := points.Exec(runID, createdAt, s.Name, string(row.Kind()), row.Label(), row.Description(),
					gateway, register, string(p.Flag), p.BitOffset.String(), int(p.Decimal)); err != nil {
					return fmt.Errorf("failed to insert %s %s: %w", row.Label(), p.Flag, err)
				}
				n++
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	e.RunID = runID
	slog.Debug("Points stored", "run_id", runID, "points", n, "path", path)
	return nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS modbus_points (
		run_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		sheet TEXT NOT NULL,
		kind TEXT NOT NULL,
		identifier TEXT NOT NULL,
		description TEXT,
		gateway INTEGER,
		holding_register INTEGER,
		flag TEXT NOT NULL,
		bit_offset TEXT NOT NULL,
		decimal INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS unmapped (
		run_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		kind TEXT NOT NULL,
		identifier TEXT NOT NULL,
		description TEXT,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_modbus_points_run ON modbus_points(run_id);
	CREATE INDEX IF NOT EXISTS idx_modbus_points_address ON modbus_points(gateway, holding_register);
	`
	_, err := db.Exec(schema)
	return err
}
