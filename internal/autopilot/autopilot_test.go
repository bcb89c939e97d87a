package autopilot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"tycoon/internal/game"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, seed int64, maxTurns int) *game.Engine {
	t.Helper()
	e := game.NewEngine(game.EngineOptions{
		Logger: quietLogger(),
		Now:    func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err := e.NewGame(game.Options{CompanyName: "Pilot", Industry: "saas", Difficulty: "normal", MaxTurns: maxTurns, Seed: seed}); err != nil {
		t.Fatalf("new game: %v", err)
	}
	return e
}

func TestStepOnFreshGame(t *testing.T) {
	e := newEngine(t, 5, 24)
	d := New(quietLogger()).Step(e)

	if d.EventChoice != -1 {
		t.Fatalf("no event should be pending, got choice %d", d.EventChoice)
	}
	if d.Marketing != 50_000 {
		t.Fatalf("marketing got %v want 50000", d.Marketing)
	}
	c := e.Company()
	if c.Marketing.Channels["search"].Budget != 25_000 || c.Marketing.Channels["social"].Budget != 25_000 {
		t.Fatalf("channel budgets search=%v social=%v", c.Marketing.Channels["search"].Budget, c.Marketing.Channels["social"].Budget)
	}
	if !d.Hired || len(c.Team.Employees) != 3 {
		t.Fatalf("expected a developer hire, team=%d", len(c.Team.Employees))
	}
	if d.Feature == "" || !inDevelopment(c.Product.Features) {
		t.Fatalf("expected a feature in development, got %q", d.Feature)
	}
	if d.Round != "" {
		t.Fatalf("healthy runway should not raise, got %q", d.Round)
	}

	again := New(quietLogger()).Step(e)
	if again.Feature != "" {
		t.Fatalf("second feature started while one is in development: %q", again.Feature)
	}
}

func TestRunFinishesGame(t *testing.T) {
	e := newEngine(t, 9, 30)
	turns, err := New(quietLogger()).Run(context.Background(), e)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if e.Running() {
		t.Fatalf("game still running after %d turns", turns)
	}
	if turns < 1 || turns > 30 {
		t.Fatalf("turns got %d", turns)
	}
	if e.State().GameOverReason == "" {
		t.Fatalf("game over without a reason")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	a := newEngine(t, 77, 20)
	b := newEngine(t, 77, 20)
	if _, err := New(quietLogger()).Run(context.Background(), a); err != nil {
		t.Fatalf("run a: %v", err)
	}
	if _, err := New(quietLogger()).Run(context.Background(), b); err != nil {
		t.Fatalf("run b: %v", err)
	}
	sa, err := a.Snapshot()
	if err != nil {
		t.Fatalf("snapshot a: %v", err)
	}
	sb, err := b.Snapshot()
	if err != nil {
		t.Fatalf("snapshot b: %v", err)
	}
	if string(sa) != string(sb) {
		t.Fatalf("same seed produced different games")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := newEngine(t, 3, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	turns, err := New(quietLogger()).Run(ctx, e)
	if err == nil || turns != 0 {
		t.Fatalf("cancelled run got turns=%d err=%v", turns, err)
	}
	if !e.Running() {
		t.Fatalf("cancelled run should leave the game running")
	}
}

func TestBestChoice(t *testing.T) {
	c := game.Ledger{Cash: 100_000, Valuation: 2_000_000, Revenue: 10_000}
	tests := []struct {
		name    string
		choices []game.CompanyEffects
		want    int
	}{
		{
			name:    "more cash wins",
			choices: []game.CompanyEffects{{Cash: 10_000}, {Cash: 50_000}},
			want:    1,
		},
		{
			name:    "equity costs valuation share",
			choices: []game.CompanyEffects{{Cash: 150_000, Equity: -0.2}, {Cash: 20_000}},
			want:    1,
		},
		{
			name:    "valuation multiplier counts",
			choices: []game.CompanyEffects{{Cash: -20_000}, {ValuationMult: 1.5}},
			want:    1,
		},
		{
			name:    "tie keeps the first",
			choices: []game.CompanyEffects{{}, {}},
			want:    0,
		},
	}
	for _, tc := range tests {
		ev := game.Event{ID: "1:test"}
		for _, fx := range tc.choices {
			ev.Choices = append(ev.Choices, game.Choice{Text: "x", Effects: game.Effects{Company: fx}})
		}
		if got := BestChoice(ev, c); got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, got, tc.want)
		}
	}
}

func TestNextRound(t *testing.T) {
	b := game.DefaultBalance()
	tests := []struct {
		valuation float64
		closed    string
		want      string
		ok        bool
	}{
		{valuation: 500_000, ok: false},
		{valuation: 2_000_000, want: "seed", ok: true},
		{valuation: 2_000_000, closed: "seed", ok: false},
		{valuation: 150_000_000, want: game.RoundIPO, ok: true},
	}
	for _, tc := range tests {
		c := game.Company{Ledger: game.Ledger{Valuation: tc.valuation, FundingRound: tc.closed}}
		got, ok := nextRound(b, c)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("nextRound(%v,%q)=%q,%v want %q,%v", tc.valuation, tc.closed, got, ok, tc.want, tc.ok)
		}
	}
}
