package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"tycoon/internal/config"
	"tycoon/internal/db"
	"tycoon/internal/game"

	"github.com/stretchr/testify/require"
)

func TestRunBatchRecordsEveryGame(t *testing.T) {
	ctx := context.Background()
	store, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	w := &worker{
		cfg: config.WorkerConfig{
			Games:       3,
			Turns:       12,
			Concurrency: 2,
			Seed:        40,
			Difficulty:  "normal",
			Industry:    "saas",
		},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		saves:   store,
		balance: game.DefaultBalance(),
		now:     time.Now,
	}

	stats, err := w.runBatch(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, stats.games)

	results, err := store.Results(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	seeds := map[int64]bool{}
	for _, r := range results {
		seeds[r.Seed] = true
		require.NotEmpty(t, r.Reason)
		require.LessOrEqual(t, r.Turns, 12)

		sv, err := store.Get(ctx, r.GameID)
		require.NoError(t, err)
		require.Equal(t, game.Version, sv.Version)
		require.NotEmpty(t, sv.Payload)
	}
	require.Equal(t, map[int64]bool{43: true, 44: true, 45: true}, seeds)
}
