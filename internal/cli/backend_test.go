package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"tycoon/internal/api"
	"tycoon/internal/config"
	"tycoon/internal/game"
	"tycoon/internal/journal"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocalRequiresGame(t *testing.T) {
	l, err := OpenLocal(t.TempDir(), quietLogger(), nil, nil)
	require.NoError(t, err)

	_, err = l.View(context.Background())
	require.ErrorIs(t, err, ErrNoGame)
	_, err = l.Hire(context.Background(), "developer")
	require.ErrorIs(t, err, ErrNoGame)
}

func TestLocalPersistsBetweenRuns(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	rec := &game.Recorder{}

	l, err := OpenLocal(dir, quietLogger(), nil, rec)
	require.NoError(t, err)
	view, err := l.NewGame(ctx, game.Options{CompanyName: "Acme", Seed: 4})
	require.NoError(t, err)
	require.Equal(t, 1, view.State.CurrentTurn)

	res, err := l.Hire(ctx, "designer")
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = l.Hire(ctx, "astronaut")
	require.ErrorIs(t, err, game.ErrUnknownRole)

	summary, err := l.EndTurn(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Turn)
	require.Len(t, rec.Summaries, 1)
	require.NotEmpty(t, rec.Notifications)

	info, err := os.Stat(SavePath(dir))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := OpenLocal(dir, quietLogger(), nil, nil)
	require.NoError(t, err)
	view, err = again.View(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, view.State.CurrentTurn)
	require.Equal(t, "Acme", view.Settings.CompanyName)
	require.Len(t, view.Company.Team.Employees, 3)

	entries := again.Journal().Entries()
	require.NotEmpty(t, entries)
	kinds := map[journal.Kind]bool{}
	for _, e := range entries {
		kinds[e.Kind] = true
	}
	require.True(t, kinds[journal.KindNotification])
	require.True(t, kinds[journal.KindTurnSummary])
}

func TestLocalRejectsCorruptSave(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(SavePath(dir), []byte("{not json"), 0o600))
	_, err := OpenLocal(dir, quietLogger(), nil, nil)
	require.True(t, errors.Is(err, ErrCorruptSave), "got %v", err)
}

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadSession(dir)
	require.Error(t, err)

	require.NoError(t, SaveSession(dir, Session{APIBaseURL: "http://x", GameID: "g-1"}))
	s, err := LoadSession(dir)
	require.NoError(t, err)
	require.Equal(t, "g-1", s.GameID)

	require.NoError(t, ClearSession(dir))
	require.NoError(t, ClearSession(dir))
	_, err = LoadSession(dir)
	require.Error(t, err)
}

func TestRemoteAgainstServer(t *testing.T) {
	ctx := context.Background()
	cfg := config.APIConfig{Difficulty: "normal", MaxTurns: 120}
	srv := httptest.NewServer(api.New(cfg, quietLogger(), nil, game.DefaultBalance()).Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	rec := &game.Recorder{}
	r, err := OpenRemote(dir, srv.URL+"/", rec)
	require.NoError(t, err)

	_, err = r.EndTurn(ctx)
	require.ErrorIs(t, err, ErrNoGame)

	view, err := r.NewGame(ctx, game.Options{CompanyName: "Remote Co", Seed: 8})
	require.NoError(t, err)
	require.Equal(t, "Remote Co", view.Settings.CompanyName)
	require.NotEmpty(t, rec.Notifications)

	res, err := r.Hire(ctx, "marketer")
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = r.RaiseFunding(ctx, "series_c")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 422, apiErr.Status)

	summary, err := r.EndTurn(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Turn)
	require.Len(t, rec.Summaries, 1)

	reopened, err := OpenRemote(dir, srv.URL, nil)
	require.NoError(t, err)
	view, err = reopened.View(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, view.State.CurrentTurn)
	require.Len(t, view.Company.Team.Employees, 3)
}
