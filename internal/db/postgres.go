package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

type PostgresSaves struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects and makes sure the tycoon schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresSaves, error) {
	pool, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	_, err = pool.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS tycoon;
		CREATE TABLE IF NOT EXISTS tycoon.saves (
			game_id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			version TEXT NOT NULL,
			turn INTEGER NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS tycoon.results (
			game_id TEXT PRIMARY KEY,
			seed BIGINT NOT NULL,
			industry TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			reason TEXT NOT NULL,
			turns INTEGER NOT NULL,
			valuation DOUBLE PRECISION NOT NULL,
			users BIGINT NOT NULL,
			equity DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresSaves{pool: pool}, nil
}

func (s *PostgresSaves) Put(ctx context.Context, sv Save) error {
	if sv.UpdatedAt.IsZero() {
		sv.UpdatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tycoon.saves (game_id, company, version, turn, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id) DO UPDATE SET
			company = EXCLUDED.company,
			version = EXCLUDED.version,
			turn = EXCLUDED.turn,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, sv.GameID, sv.Company, sv.Version, sv.Turn, string(sv.Payload), sv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put save: %w", err)
	}
	return nil
}

func (s *PostgresSaves) Get(ctx context.Context, gameID string) (Save, error) {
	var sv Save
	var payload string
	err := s.pool.QueryRow(ctx, `
		SELECT game_id, company, version, turn, payload::text, updated_at
		FROM tycoon.saves
		WHERE game_id = $1
	`, gameID).Scan(&sv.GameID, &sv.Company, &sv.Version, &sv.Turn, &payload, &sv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Save{}, ErrNotFound
	}
	if err != nil {
		return Save{}, fmt.Errorf("get save: %w", err)
	}
	sv.Payload = []byte(payload)
	return sv, nil
}

func (s *PostgresSaves) List(ctx context.Context, limit int) ([]Save, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, company, version, turn, updated_at
		FROM tycoon.saves
		ORDER BY updated_at DESC, game_id ASC
		LIMIT $1
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

func (s *PostgresSaves) Delete(ctx context.Context, gameID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tycoon.saves WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresSaves) RecordResult(ctx context.Context, r Result) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tycoon.results (game_id, seed, industry, difficulty, reason, turns, valuation, users, equity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id) DO NOTHING
	`, r.GameID, r.Seed, r.Industry, r.Difficulty, r.Reason, r.Turns, r.Valuation, r.Users, r.Equity, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func (s *PostgresSaves) Results(ctx context.Context, limit int) ([]Result, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, seed, industry, difficulty, reason, turns, valuation, users, equity, created_at
		FROM tycoon.results
		ORDER BY created_at DESC, game_id ASC
		LIMIT $1
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

func (s *PostgresSaves) Close() error {
	s.pool.Close()
	return nil
}

// Open picks Postgres when databaseURL is set and SQLite otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Saves, error) {
	if databaseURL != "" {
		return OpenPostgres(ctx, databaseURL)
	}
	return OpenSQLite(ctx, sqlitePath)
}
