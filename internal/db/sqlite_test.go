package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteSaves {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "tycoon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteSavesPutGet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, Save{GameID: "g1", Company: "Acme", Version: "0.1.0", Turn: 4, Payload: []byte(`{"a":1}`), UpdatedAt: at}))

	got, err := store.Get(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Company)
	require.Equal(t, 4, got.Turn)
	require.JSONEq(t, `{"a":1}`, string(got.Payload))
	require.True(t, got.UpdatedAt.Equal(at))

	require.NoError(t, store.Put(ctx, Save{GameID: "g1", Company: "Acme", Version: "0.1.0", Turn: 5, Payload: []byte(`{"a":2}`)}))
	got, err = store.Get(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 5, got.Turn)
	require.JSONEq(t, `{"a":2}`, string(got.Payload))
}

func TestSQLiteSavesNotFound(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, "missing"), ErrNotFound)
}

func TestSQLiteSavesListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Put(ctx, Save{GameID: id, Company: id, Version: "0.1.0", Turn: i + 1, Payload: []byte(`{}`), UpdatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	list, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "c", list[0].GameID)
	require.Nil(t, list[0].Payload)

	require.NoError(t, store.Delete(ctx, "b"))
	list, err = store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestSQLiteResults(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	r := Result{GameID: "run-1", Seed: 7, Industry: "saas", Difficulty: "normal", Reason: "bankruptcy", Turns: 33, Valuation: 1.5e6, Users: 1200, Equity: 0.8}
	require.NoError(t, store.RecordResult(ctx, r))
	r.Reason = "ipo"
	require.NoError(t, store.RecordResult(ctx, r))

	results, err := store.Results(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "bankruptcy", results[0].Reason)
	require.Equal(t, int64(7), results[0].Seed)
	require.InDelta(t, 0.8, results[0].Equity, 1e-9)
}
