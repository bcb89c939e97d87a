package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tycoon/internal/config"
	"tycoon/internal/db"
	"tycoon/internal/game"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func testConfig() config.APIConfig {
	return config.APIConfig{Addr: ":0", Difficulty: "normal", MaxTurns: 120}
}

func openStore(t *testing.T, path string) db.Saves {
	t.Helper()
	store, err := db.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestServer(t *testing.T, store db.Saves) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(testConfig(), logger, store, game.DefaultBalance()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any, headers ...string) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

type createdGame struct {
	GameID string    `json:"game_id"`
	View   game.View `json:"view"`
}

func createGame(t *testing.T, base string) createdGame {
	t.Helper()
	status, raw := do(t, http.MethodPost, base+"/v1/games", map[string]any{
		"company_name": "Acme",
		"industry":     "saas",
		"seed":         11,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var out createdGame
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.GameID)
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	status, raw := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestCreateGameAndCommands(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "tycoon.db"))
	srv := newTestServer(t, store)

	g := createGame(t, srv.URL)
	require.Equal(t, "Acme", g.View.Settings.CompanyName)
	require.Equal(t, 1, g.View.State.CurrentTurn)
	require.Len(t, g.View.Company.Team.Employees, 2)

	gameURL := srv.URL + "/v1/games/" + g.GameID

	status, raw := do(t, http.MethodPost, gameURL+"/employees", map[string]any{"role": "developer"})
	require.Equal(t, http.StatusOK, status, string(raw))
	var hired commandResponse
	require.NoError(t, json.Unmarshal(raw, &hired))
	require.True(t, hired.Result.Success)
	require.NotNil(t, hired.Result.Employee)
	require.Len(t, hired.View.Company.Team.Employees, 3)

	status, raw = do(t, http.MethodPost, gameURL+"/employees", map[string]any{"role": "astronaut"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, string(raw), "unknown employee role")

	status, _ = do(t, http.MethodPost, gameURL+"/employees", map[string]any{"role": "developer", "salary": 1})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodDelete, gameURL+"/employees/"+game.FounderID, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, http.MethodPost, gameURL+"/funding", map[string]any{"round": "series_a"})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, http.MethodPost, gameURL+"/events/1:nope/choose", map[string]any{"choice": 0})
	require.Equal(t, http.StatusNotFound, status)

	status, raw = do(t, http.MethodPost, gameURL+"/marketing", map[string]any{"channel": "search", "amount": 1000})
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = do(t, http.MethodPost, gameURL+"/end-turn", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var ended struct {
		Summary game.TurnSummary `json:"summary"`
		View    game.View        `json:"view"`
	}
	require.NoError(t, json.Unmarshal(raw, &ended))
	require.Equal(t, 1, ended.Summary.Turn)
	require.Equal(t, 2, ended.View.State.CurrentTurn)

	status, raw = do(t, http.MethodGet, gameURL+"/events/pending", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(raw), `"event"`)

	status, raw = do(t, http.MethodGet, srv.URL+"/v1/games", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(raw), g.GameID)
}

func TestUnknownGame(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "tycoon.db"))
	srv := newTestServer(t, store)

	status, raw := do(t, http.MethodGet, srv.URL+"/v1/games/missing", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, string(raw), "error")

	status, _ = do(t, http.MethodPost, srv.URL+"/v1/games", map[string]any{"industry": "mining"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestIdempotencyKeyRejectsReplay(t *testing.T) {
	srv := newTestServer(t, nil)
	g := createGame(t, srv.URL)
	url := srv.URL + "/v1/games/" + g.GameID + "/employees"

	status, _ := do(t, http.MethodPost, url, map[string]any{"role": "designer"}, "Idempotency-Key", "hire-1")
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodPost, url, map[string]any{"role": "designer"}, "Idempotency-Key", "hire-1")
	require.Equal(t, http.StatusConflict, status)
	status, _ = do(t, http.MethodPost, url, map[string]any{"role": "designer"}, "Idempotency-Key", "hire-2")
	require.Equal(t, http.StatusOK, status)
}

func TestRejectedCommandDoesNotClaimIdempotencyKey(t *testing.T) {
	srv := newTestServer(t, nil)
	g := createGame(t, srv.URL)
	url := srv.URL + "/v1/games/" + g.GameID + "/employees"

	status, _ := do(t, http.MethodPost, url, map[string]any{"role": "astronaut"}, "Idempotency-Key", "hire-1")
	require.Equal(t, http.StatusBadRequest, status)
	status, raw := do(t, http.MethodPost, url, map[string]any{"role": "designer"}, "Idempotency-Key", "hire-1")
	require.Equal(t, http.StatusOK, status, string(raw))
	status, _ = do(t, http.MethodPost, url, map[string]any{"role": "designer"}, "Idempotency-Key", "hire-1")
	require.Equal(t, http.StatusConflict, status)
}

func TestGamesSurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tycoon.db")
	store := openStore(t, path)

	first := newTestServer(t, store)
	g := createGame(t, first.URL)
	status, _ := do(t, http.MethodPost, first.URL+"/v1/games/"+g.GameID+"/employees", map[string]any{"role": "salesperson"})
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodPost, first.URL+"/v1/games/"+g.GameID+"/end-turn", nil)
	require.Equal(t, http.StatusOK, status)

	second := newTestServer(t, store)
	status, raw := do(t, http.MethodGet, second.URL+"/v1/games/"+g.GameID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var view game.View
	require.NoError(t, json.Unmarshal(raw, &view))
	require.Equal(t, 2, view.State.CurrentTurn)
	require.Len(t, view.Company.Team.Employees, 3)

	status, _ = do(t, http.MethodDelete, second.URL+"/v1/games/"+g.GameID, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodGet, second.URL+"/v1/games/"+g.GameID, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestStreamDeliversTurnSummary(t *testing.T) {
	srv := newTestServer(t, nil)
	g := createGame(t, srv.URL)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/games/" + g.GameID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg streamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "subscribed", msg.Type)
	require.Equal(t, g.GameID, msg.GameID)

	status, _ := do(t, http.MethodPost, srv.URL+"/v1/games/"+g.GameID+"/end-turn", nil)
	require.Equal(t, http.StatusOK, status)

	for {
		var next streamMessage
		require.NoError(t, conn.ReadJSON(&next))
		if next.Type == "turn_summary" {
			break
		}
	}
}
