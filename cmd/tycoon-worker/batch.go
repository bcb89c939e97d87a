package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"tycoon/internal/autopilot"
	"tycoon/internal/config"
	"tycoon/internal/db"
	"tycoon/internal/game"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type worker struct {
	cfg     config.WorkerConfig
	log     *slog.Logger
	saves   db.Saves
	balance game.Balance
	now     func() time.Time
}

// batchStats aggregates the outcomes of one batch.
type batchStats struct {
	mu        sync.Mutex
	games     int
	turns     int
	valuation float64
	reasons   map[string]int
}

func (s *batchStats) add(res db.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games++
	s.turns += res.Turns
	s.valuation += res.Valuation
	s.reasons[res.Reason]++
}

func (s *batchStats) logValue() []any {
	avgTurns, avgValuation := 0.0, 0.0
	if s.games > 0 {
		avgTurns = float64(s.turns) / float64(s.games)
		avgValuation = s.valuation / float64(s.games)
	}
	attrs := []any{"games", s.games, "avg_turns", avgTurns, "avg_valuation", avgValuation}
	for _, reason := range slices.Sorted(maps.Keys(s.reasons)) {
		attrs = append(attrs, "reason_"+reason, s.reasons[reason])
	}
	return attrs
}

// runBatch plays cfg.Games autopilot games in parallel. Seeds advance with the
// batch number so ticker runs never replay an earlier batch.
func (w *worker) runBatch(ctx context.Context, batch int) (*batchStats, error) {
	started := w.now()
	stats := &batchStats{reasons: map[string]int{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)
	for i := 0; i < w.cfg.Games; i++ {
		seed := w.cfg.Seed + int64(batch*w.cfg.Games+i)
		g.Go(func() error {
			res, err := w.playOne(gctx, seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			stats.add(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	w.log.Info("batch complete", append([]any{"batch", batch, "elapsed", time.Since(started).String()}, stats.logValue()...)...)
	return stats, nil
}

func (w *worker) playOne(ctx context.Context, seed int64) (db.Result, error) {
	id := uuid.NewString()
	logger := w.log.With("game_id", id, "seed", seed)
	balance := w.balance

	e := game.NewEngine(game.EngineOptions{Logger: logger, Balance: &balance, Now: w.now})
	err := e.NewGame(game.Options{
		CompanyName: fmt.Sprintf("Autopilot %d", seed),
		Industry:    w.cfg.Industry,
		Difficulty:  w.cfg.Difficulty,
		MaxTurns:    w.cfg.Turns,
		Seed:        seed,
	})
	if err != nil {
		return db.Result{}, err
	}

	turns, err := autopilot.New(logger).Run(ctx, e)
	if err != nil {
		return db.Result{}, err
	}

	payload, err := e.Snapshot()
	if err != nil {
		return db.Result{}, err
	}
	c := e.Company()
	if err := w.saves.Put(ctx, db.Save{
		GameID:  id,
		Company: c.Name,
		Version: game.Version,
		Turn:    e.State().CurrentTurn,
		Payload: payload,
	}); err != nil {
		return db.Result{}, err
	}

	res := db.Result{
		GameID:     id,
		Seed:       seed,
		Industry:   c.Industry,
		Difficulty: e.Settings().Difficulty,
		Reason:     e.State().GameOverReason,
		Turns:      turns,
		Valuation:  c.Valuation,
		Users:      c.Users,
		Equity:     c.Equity.Player,
	}
	if err := w.saves.RecordResult(ctx, res); err != nil {
		return db.Result{}, err
	}
	logger.Debug("game finished", "reason", res.Reason, "turns", turns, "valuation", res.Valuation)
	return res, nil
}
