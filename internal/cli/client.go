package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tycoon/internal/game"

	"github.com/google/uuid"
)

// APIError is a non-2xx answer from tycoon-api.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// Client talks to tycoon-api.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type CreatedGame struct {
	GameID string    `json:"game_id"`
	View   game.View `json:"view"`
}

type CommandResponse struct {
	Result game.Result `json:"result"`
	View   game.View   `json:"view"`
}

type TurnResponse struct {
	Summary game.TurnSummary `json:"summary"`
	View    game.View        `json:"view"`
}

func (c *Client) NewGame(ctx context.Context, opts game.Options) (CreatedGame, error) {
	var out CreatedGame
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", opts, &out, "")
	return out, err
}

func (c *Client) View(ctx context.Context, gameID string) (game.View, error) {
	var out game.View
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(gameID, ""), nil, &out, "")
	return out, err
}

func (c *Client) PendingEvent(ctx context.Context, gameID string) (*game.Event, error) {
	var out struct {
		Event *game.Event `json:"event"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(gameID, "/events/pending"), nil, &out, "")
	return out.Event, err
}

func (c *Client) EndTurn(ctx context.Context, gameID string) (TurnResponse, error) {
	var out TurnResponse
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/end-turn"), nil, &out, uuid.NewString())
	return out, err
}

func (c *Client) Choose(ctx context.Context, gameID, eventID string, choice int) (CommandResponse, error) {
	var out CommandResponse
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/events/"+url.PathEscape(eventID)+"/choose"), map[string]any{
		"choice": choice,
	}, &out, uuid.NewString())
	return out, err
}

func (c *Client) AllocateMarketing(ctx context.Context, gameID, channel string, amount float64) (CommandResponse, error) {
	var out CommandResponse
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/marketing"), map[string]any{
		"channel": channel,
		"amount":  amount,
	}, &out, uuid.NewString())
	return out, err
}

func (c *Client) Hire(ctx context.Context, gameID, role string) (CommandResponse, error) {
	var out CommandResponse
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/employees"), map[string]any{
		"role": role,
	}, &out, uuid.NewString())
	return out, err
}

func (c *Client) Fire(ctx context.Context, gameID, employeeID string) (CommandResponse, error) {
	var out CommandResponse
	err := c.jsonRequest(ctx, http.MethodDelete, gamePath(gameID, "/employees/"+url.PathEscape(employeeID)), nil, &out, uuid.NewString())
	return out, err
}

func (c *Client) DevelopFeature(ctx context.Context, gameID string, spec game.FeatureSpec) (CommandResponse, error) {
	var out CommandResponse
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/features"), spec, &out, uuid.NewString())
	return out, err
}

func (c *Client) RaiseFunding(ctx context.Context, gameID, round string) (CommandResponse, error) {
	var out CommandResponse
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/funding"), map[string]any{
		"round": round,
	}, &out, uuid.NewString())
	return out, err
}

func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.jsonRequest(ctx, http.MethodDelete, gamePath(gameID, ""), nil, nil, "")
}

func gamePath(gameID, suffix string) string {
	return "/v1/games/" + url.PathEscape(gameID) + suffix
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		var structured struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &structured) == nil && structured.Error != "" {
			msg = structured.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
