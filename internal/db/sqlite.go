package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteSaves struct {
	db *sql.DB
}

// OpenSQLite opens the file at path, creating it and its schema as needed.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSaves, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows one writer at a time
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			game_id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			version TEXT NOT NULL,
			turn INTEGER NOT NULL,
			payload BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			game_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			industry TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			reason TEXT NOT NULL,
			turns INTEGER NOT NULL,
			valuation REAL NOT NULL,
			users INTEGER NOT NULL,
			equity REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saves_updated_at ON saves(updated_at);`,
	}
	for _, q := range schemas {
		if _, err := conn.ExecContext(ctx, q); err != nil {
			conn.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLiteSaves{db: conn}, nil
}

func (s *SQLiteSaves) Put(ctx context.Context, sv Save) error {
	if sv.UpdatedAt.IsZero() {
		sv.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (game_id, company, version, turn, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id) DO UPDATE SET
			company = excluded.company,
			version = excluded.version,
			turn = excluded.turn,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, sv.GameID, sv.Company, sv.Version, sv.Turn, sv.Payload, sv.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("put save: %w", err)
	}
	return nil
}

func (s *SQLiteSaves) Get(ctx context.Context, gameID string) (Save, error) {
	var sv Save
	err := s.db.QueryRowContext(ctx, `
		SELECT game_id, company, version, turn, payload, updated_at
		FROM saves
		WHERE game_id = ?
	`, gameID).Scan(&sv.GameID, &sv.Company, &sv.Version, &sv.Turn, &sv.Payload, &sv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Save{}, ErrNotFound
	}
	if err != nil {
		return Save{}, fmt.Errorf("get save: %w", err)
	}
	return sv, nil
}

func (s *SQLiteSaves) List(ctx context.Context, limit int) ([]Save, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, company, version, turn, updated_at
		FROM saves
		ORDER BY updated_at DESC, game_id ASC
		LIMIT ?
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	out := make([]Save, 0)
	for rows.Next() {
		var sv Save
		if err := rows.Scan(&sv.GameID, &sv.Company, &sv.Version, &sv.Turn, &sv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *SQLiteSaves) Delete(ctx context.Context, gameID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE game_id = ?`, gameID)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteSaves) RecordResult(ctx context.Context, r Result) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (game_id, seed, industry, difficulty, reason, turns, valuation, users, equity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id) DO NOTHING
	`, r.GameID, r.Seed, r.Industry, r.Difficulty, r.Reason, r.Turns, r.Valuation, r.Users, r.Equity, r.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func (s *SQLiteSaves) Results(ctx context.Context, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, seed, industry, difficulty, reason, turns, valuation, users, equity, created_at
		FROM results
		ORDER BY created_at DESC, game_id ASC
		LIMIT ?
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out := make([]Result, 0)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.GameID, &r.Seed, &r.Industry, &r.Difficulty, &r.Reason, &r.Turns, &r.Valuation, &r.Users, &r.Equity, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteSaves) Close() error {
	return s.db.Close()
}
