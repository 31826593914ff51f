// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"database/sql"
	"fmt"

	"github.com/ffutop/ffp-modbus-mapper/internal/regimage/model"

	_ "modernc.org/sqlite"
)

// SQLStorage implements persistence using a SQL database.
// It keeps only non-zero registers in the `holding_registers` table.
type SQLStorage struct {
	driver string
	dsn    string
	db     *sql.DB
}

// NewSQLStorage creates a new SQLStorage.
func NewSQLStorage(driver, dsn string) *SQLStorage {
	return &SQLStorage{
		driver: driver,
		dsn:    dsn,
	}
}

func (s *SQLStorage) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	s.db = db

	if err := s.initSchema(); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (s *SQLStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS holding_registers (
		gateway INTEGER,
		address INTEGER,
		value INTEGER,
		PRIMARY KEY (gateway, address)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Load connects to the DB and loads the gateway's registers.
func (s *SQLStorage) Load(gateway int) (*model.Image, error) {
	if err := s.open(); err != nil {
		return nil, err
	}

	m := model.NewImage(gateway)
	rows, err := s.db.Query("SELECT address, value FROM holding_registers WHERE gateway = ?", gateway)
	if err != nil {
		return nil, fmt.Errorf("failed to query registers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var addr, val int
		if err := rows.Scan(&addr, &val); err != nil {
			return nil, fmt.Errorf("failed to scan register: %w", err)
		}
		if addr < 0 || addr > model.MaxAddress {
			continue
		}
		m.HoldingRegisters[addr] = uint16(val)
	}
	return m, rows.Err()
}

// Save replaces the gateway's rows with the image's non-zero registers.
func (s *SQLStorage) Save(m *model.Image) error {
	if err := s.open(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM holding_registers WHERE gateway = ?", m.Gateway); err != nil {
		return fmt.Errorf("failed to clear registers: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO holding_registers (gateway, address, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, addr := range m.Used() {
		if _, err := stmt.Exec(m.Gateway, int(addr), int(m.Get(addr))); err != nil {
			return fmt.Errorf("failed to persist register %d: %w", addr, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStorage) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}
