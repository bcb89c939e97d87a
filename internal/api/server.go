package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"tycoon/internal/config"
	"tycoon/internal/db"
	"tycoon/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

var (
	errGameNotFound         = errors.New("game not found")
	errCorruptSave          = errors.New("saved game could not be restored")
	errDuplicateIdempotency = errors.New("duplicate request")
)

const idempotencyWindow = 64

// hostedGame is one engine plus everything needed to serve it. The engine is
// single-threaded, so every access goes through mu.
type hostedGame struct {
	mu     sync.Mutex
	id     string
	engine *game.Engine
	stream *stream
	keys   []string
}

func (g *hostedGame) seen(key string) bool {
	return key != "" && slices.Contains(g.keys, key)
}

// claim records key once its command has been applied. Rejected commands
// never claim, so a client may retry them with the same key.
func (g *hostedGame) claim(key string) {
	if key == "" {
		return
	}
	g.keys = append(g.keys, key)
	if len(g.keys) > idempotencyWindow {
		g.keys = g.keys[len(g.keys)-idempotencyWindow:]
	}
}

type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	saves   db.Saves
	balance game.Balance
	mux     *chi.Mux

	mu    sync.Mutex
	games map[string]*hostedGame
}

func New(cfg config.APIConfig, logger *slog.Logger, saves db.Saves, balance game.Balance) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		saves:   saves,
		balance: balance,
		mux:     chi.NewRouter(),
		games:   make(map[string]*hostedGame),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/games/{id}/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/balance", s.handleBalance)
			r.Get("/results", s.handleResults)

			r.Post("/games", s.handleNewGame)
			r.Get("/games", s.handleListGames)
			r.Get("/games/{id}", s.handleGameView)
			r.Delete("/games/{id}", s.handleDeleteGame)
			r.Get("/games/{id}/snapshot", s.handleSnapshot)
			r.Get("/games/{id}/events/pending", s.handlePendingEvent)
			r.Post("/games/{id}/events/{event_id}/choose", s.handleChoose)
			r.Post("/games/{id}/end-turn", s.handleEndTurn)
			r.Post("/games/{id}/marketing", s.handleMarketing)
			r.Post("/games/{id}/employees", s.handleHire)
			r.Delete("/games/{id}/employees/{employee_id}", s.handleFire)
			r.Post("/games/{id}/features", s.handleFeature)
			r.Post("/games/{id}/funding", s.handleFunding)
		})
	})
}

func (s *Server) newEngine(id string, obs game.Observer) *game.Engine {
	balance := s.balance
	return game.NewEngine(game.EngineOptions{
		Logger:   s.log.With("game_id", id),
		Observer: obs,
		Balance:  &balance,
	})
}

// lookup returns the hosted game, loading it from the save store when it is
// not in memory.
func (s *Server) lookup(ctx context.Context, id string) (*hostedGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[id]; ok {
		return g, nil
	}
	if s.saves == nil {
		return nil, errGameNotFound
	}
	sv, err := s.saves.Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errGameNotFound
	}
	if err != nil {
		return nil, err
	}
	st := newStream(id, s.log)
	eng := s.newEngine(id, st)
	if !eng.Restore(sv.Payload) {
		return nil, errCorruptSave
	}
	g := &hostedGame{id: id, engine: eng, stream: st}
	s.games[id] = g
	s.log.Info("game loaded from store", "game_id", id, "turn", sv.Turn)
	return g, nil
}

func (s *Server) persist(ctx context.Context, g *hostedGame) {
	if s.saves == nil {
		return
	}
	raw, err := g.engine.Snapshot()
	if err != nil {
		s.log.Error("snapshot failed", "game_id", g.id, "err", err)
		return
	}
	err = s.saves.Put(ctx, db.Save{
		GameID:  g.id,
		Company: g.engine.Settings().CompanyName,
		Version: game.Version,
		Turn:    g.engine.Turn(),
		Payload: raw,
	})
	if err != nil {
		s.log.Error("save failed", "game_id", g.id, "err", err)
	}
}

// command runs fn under the game's lock and persists the game afterwards
// when fn succeeded.
func (s *Server) command(w http.ResponseWriter, r *http.Request, fn func(e *game.Engine) (any, error)) {
	g, err := s.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if g.seen(key) {
		writeDomainError(w, errDuplicateIdempotency)
		return
	}
	out, err := fn(g.engine)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	g.claim(key)
	s.persist(r.Context(), g)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) read(w http.ResponseWriter, r *http.Request, fn func(e *game.Engine) any) {
	g, err := s.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	g.mu.Lock()
	out := fn(g.engine)
	g.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

type commandResponse struct {
	Result game.Result `json:"result"`
	View   game.View   `json:"view"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var in game.Options
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Difficulty) == "" {
		in.Difficulty = s.cfg.Difficulty
	}
	if in.MaxTurns <= 0 {
		in.MaxTurns = s.cfg.MaxTurns
	}

	id := uuid.NewString()
	st := newStream(id, s.log)
	eng := s.newEngine(id, st)
	if err := eng.NewGame(in); err != nil {
		writeDomainError(w, err)
		return
	}
	g := &hostedGame{id: id, engine: eng, stream: st}
	s.mu.Lock()
	s.games[id] = g
	s.mu.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	s.persist(r.Context(), g)
	s.log.Info("game created", "game_id", id, "company", eng.Settings().CompanyName)
	writeJSON(w, http.StatusCreated, map[string]any{"game_id": id, "view": eng.View()})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if s.saves == nil {
		writeJSON(w, http.StatusOK, map[string]any{"games": []db.Save{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := s.saves.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": out})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.saves == nil {
		writeJSON(w, http.StatusOK, map[string]any{"results": []db.Result{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := s.saves.Results(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.balance)
}

func (s *Server) handleGameView(w http.ResponseWriter, r *http.Request) {
	s.read(w, r, func(e *game.Engine) any { return e.View() })
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	g, err := s.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	g.mu.Lock()
	raw, err := g.engine.Snapshot()
	g.mu.Unlock()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	g, inMemory := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()
	if inMemory {
		g.stream.close()
	}
	if s.saves != nil {
		err := s.saves.Delete(r.Context(), id)
		if err != nil && !(errors.Is(err, db.ErrNotFound) && inMemory) {
			writeDomainError(w, err)
			return
		}
	} else if !inMemory {
		writeDomainError(w, errGameNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handlePendingEvent(w http.ResponseWriter, r *http.Request) {
	s.read(w, r, func(e *game.Engine) any {
		ev, ok := e.PendingEvent()
		if !ok {
			return map[string]any{"event": nil}
		}
		return map[string]any{"event": ev}
	})
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Choice int `json:"choice"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eventID := chi.URLParam(r, "event_id")
	s.command(w, r, func(e *game.Engine) (any, error) {
		res, err := e.HandleEventChoice(eventID, in.Choice)
		if err != nil {
			return nil, err
		}
		return commandResponse{Result: res, View: e.View()}, nil
	})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, func(e *game.Engine) (any, error) {
		summary, err := e.EndTurn()
		if err != nil {
			return nil, err
		}
		return map[string]any{"summary": summary, "view": e.View()}, nil
	})
}

func (s *Server) handleMarketing(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Channel string  `json:"channel"`
		Amount  float64 `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, func(e *game.Engine) (any, error) {
		res, err := e.AllocateMarketingBudget(in.Channel, in.Amount)
		if err != nil {
			return nil, err
		}
		return commandResponse{Result: res, View: e.View()}, nil
	})
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, func(e *game.Engine) (any, error) {
		res, err := e.HireEmployee(in.Role)
		if err != nil {
			return nil, err
		}
		return commandResponse{Result: res, View: e.View()}, nil
	})
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employee_id")
	s.command(w, r, func(e *game.Engine) (any, error) {
		res, err := e.FireEmployee(employeeID)
		if err != nil {
			return nil, err
		}
		return commandResponse{Result: res, View: e.View()}, nil
	})
}

func (s *Server) handleFeature(w http.ResponseWriter, r *http.Request) {
	var in game.FeatureSpec
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, func(e *game.Engine) (any, error) {
		res, err := e.DevelopFeature(in)
		if err != nil {
			return nil, err
		}
		return commandResponse{Result: res, View: e.View()}, nil
	})
}

func (s *Server) handleFunding(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Round string `json:"round"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, func(e *game.Engine) (any, error) {
		res, err := e.RaiseFunding(in.Round)
		if err != nil {
			return nil, err
		}
		return commandResponse{Result: res, View: e.View()}, nil
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errGameNotFound), errors.Is(err, db.ErrNotFound), errors.Is(err, game.ErrUnknownEvent),
		errors.Is(err, game.ErrUnknownEmployee):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errDuplicateIdempotency):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrNotRunning),
		errors.Is(err, game.ErrEventResolved), errors.Is(err, game.ErrEventExpired):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrRoundUnavailable), errors.Is(err, game.ErrNoEquity):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrUnknownChannel), errors.Is(err, game.ErrUnknownRole),
		errors.Is(err, game.ErrUnknownComplexity), errors.Is(err, game.ErrUnknownRound),
		errors.Is(err, game.ErrUnknownIndustry), errors.Is(err, game.ErrUnknownDifficulty),
		errors.Is(err, game.ErrUnknownSpecial), errors.Is(err, game.ErrInvalidChoice),
		errors.Is(err, game.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
