package db

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("save not found")

// Save is one serialized game snapshot.
type Save struct {
	GameID    string    `json:"game_id"`
	Company   string    `json:"company"`
	Version   string    `json:"version"`
	Turn      int       `json:"turn"`
	Payload   []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result is the outcome of a finished headless game.
type Result struct {
	GameID     string    `json:"game_id"`
	Seed       int64     `json:"seed"`
	Industry   string    `json:"industry"`
	Difficulty string    `json:"difficulty"`
	Reason     string    `json:"reason"`
	Turns      int       `json:"turns"`
	Valuation  float64   `json:"valuation"`
	Users      int64     `json:"users"`
	Equity     float64   `json:"equity"`
	CreatedAt  time.Time `json:"created_at"`
}

// Saves stores snapshots and batch results. Both the Postgres and the SQLite
// stores implement it.
type Saves interface {
	Put(ctx context.Context, s Save) error
	Get(ctx context.Context, gameID string) (Save, error)
	List(ctx context.Context, limit int) ([]Save, error)
	Delete(ctx context.Context, gameID string) error
	RecordResult(ctx context.Context, r Result) error
	Results(ctx context.Context, limit int) ([]Result, error)
	Close() error
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
