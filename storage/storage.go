// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage keeps extracted benchmark reports in a SQL database.
//
// SQLite (driver "sqlite3") and MySQL (driver "mysql") are supported.
// Each report is stored as one row holding its JSON encoding, indexed
// by tool and capture time.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benchtrack/benchtrack/extract"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no report matches a query.
var ErrNotFound = errors.New("report not found")

// Drivers lists the supported database/sql driver names.
var Drivers = []string{"sqlite3", "mysql"}

var schema = map[string][]string{
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS reports (
			id          TEXT PRIMARY KEY,
			tool        TEXT NOT NULL,
			commit_id   TEXT NOT NULL,
			captured_at INTEGER NOT NULL,
			report      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS reports_tool_time ON reports (tool, captured_at)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS reports (
			id          VARCHAR(36) PRIMARY KEY,
			tool        VARCHAR(64) NOT NULL,
			commit_id   VARCHAR(64) NOT NULL,
			captured_at BIGINT NOT NULL,
			report      MEDIUMTEXT NOT NULL,
			INDEX reports_tool_time (tool, captured_at)
		)`,
	},
}

// A DB is a report database.
type DB struct {
	sql *sql.DB
}

// Open opens the database at dsn using driver and creates the schema
// if needed.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	stmts, ok := schema[driver]
	if !ok {
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: connecting to database: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: creating schema: %w", err)
		}
	}
	return &DB{sql: db}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.sql.Close()
}

// Save stores rep. Saving a report with an ID that is already stored
// is an error.
func (db *DB) Save(ctx context.Context, rep *extract.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("storage: encoding report: %w", err)
	}
	var commitID string
	if rep.Commit != nil {
		commitID = rep.Commit.ID
	}
	_, err = db.sql.ExecContext(ctx,
		`INSERT INTO reports (id, tool, commit_id, captured_at, report) VALUES (?, ?, ?, ?, ?)`,
		rep.ID.String(), rep.Tool, commitID, rep.Date.UnixNano(), string(data))
	if err != nil {
		return fmt.Errorf("storage: saving report %s: %w", rep.ID, err)
	}
	return nil
}

// Latest returns the most recently captured report of tool.
func (db *DB) Latest(ctx context.Context, tool string) (*extract.Report, error) {
	reps, err := db.History(ctx, tool, 1)
	if err != nil {
		return nil, err
	}
	if len(reps) == 0 {
		return nil, fmt.Errorf("storage: latest %s report: %w", tool, ErrNotFound)
	}
	return reps[0], nil
}

// Before returns the most recent report of tool captured strictly
// before t.
func (db *DB) Before(ctx context.Context, tool string, t time.Time) (*extract.Report, error) {
	reps, err := db.query(ctx,
		`SELECT report FROM reports WHERE tool = ? AND captured_at < ? ORDER BY captured_at DESC LIMIT 1`,
		tool, t.UnixNano())
	if err != nil {
		return nil, err
	}
	if len(reps) == 0 {
		return nil, fmt.Errorf("storage: %s report before %s: %w", tool, t.Format(time.RFC3339), ErrNotFound)
	}
	return reps[0], nil
}

// History returns up to limit reports of tool, most recent first.
// A limit <= 0 returns all of them.
func (db *DB) History(ctx context.Context, tool string, limit int) ([]*extract.Report, error) {
	if limit <= 0 {
		return db.query(ctx,
			`SELECT report FROM reports WHERE tool = ? ORDER BY captured_at DESC`, tool)
	}
	return db.query(ctx,
		`SELECT report FROM reports WHERE tool = ? ORDER BY captured_at DESC LIMIT ?`, tool, limit)
}

func (db *DB) query(ctx context.Context, query string, args ...any) ([]*extract.Report, error) {
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: querying reports: %w", err)
	}
	defer rows.Close()

	var reps []*extract.Report
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("storage: reading report: %w", err)
		}
		rep := new(extract.Report)
		if err := json.Unmarshal([]byte(data), rep); err != nil {
			return nil, fmt.Errorf("storage: decoding report: %w", err)
		}
		reps = append(reps, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: querying reports: %w", err)
	}
	return reps, nil
}
