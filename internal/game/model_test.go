package game

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

// fixedRand replays the given floats in a loop and always picks index 0.
type fixedRand struct {
	floats []float64
	i      int
}

func (r *fixedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	f := r.floats[r.i%len(r.floats)]
	r.i++
	return f
}

func (r *fixedRand) Intn(n int) int { return 0 }

var testNow = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, seed int64, mutate func(*Balance)) (*Engine, *Recorder) {
	t.Helper()
	b := DefaultBalance()
	if mutate != nil {
		mutate(&b)
	}
	rec := &Recorder{}
	e := NewEngine(EngineOptions{
		Logger:   quietLogger(),
		Observer: rec,
		Balance:  &b,
		Now:      testNow,
	})
	if err := e.NewGame(Options{CompanyName: "Acme", Industry: "saas", Difficulty: "normal", Seed: seed}); err != nil {
		t.Fatalf("new game: %v", err)
	}
	return e, rec
}

func noRandomEvents(b *Balance) { b.EventBaseChance = 0 }

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		want      float64
	}{
		{v: -1, lo: 0, hi: 1, want: 0},
		{v: 2, lo: 0, hi: 1, want: 1},
		{v: 0.4, lo: 0, hi: 1, want: 0.4},
		{v: math.NaN(), lo: 0.1, hi: 0.9, want: 0.1},
	}
	for _, tc := range tests {
		if got := clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("clamp(%v,%v,%v)=%v want %v", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
	if got := clampChurn(0); got != 0.01 {
		t.Fatalf("churn floor got %v", got)
	}
	if got := clampChurn(0.9); got != 0.5 {
		t.Fatalf("churn cap got %v", got)
	}
}

func TestIntBetweenInclusive(t *testing.T) {
	r := NewRand(3)
	seen := map[int]bool{}
	for range 500 {
		v := intBetween(r, 3, 6)
		if v < 3 || v > 6 {
			t.Fatalf("out of range: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected all of 3..6, got %v", seen)
	}
}

func TestFloorUsers(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{in: 10.9, want: 10},
		{in: -10.9, want: -10},
		{in: 0, want: 0},
	}
	for _, tc := range tests {
		if got := floorUsers(tc.in); got != tc.want {
			t.Fatalf("floorUsers(%v)=%d want %d", tc.in, got, tc.want)
		}
	}
}

func TestEquityTotal(t *testing.T) {
	eq := Equity{Player: 0.7, Investors: map[string]float64{"a": 0.2, "b": 0.1}}
	if got := eq.Total(); math.Abs(got-1) > 1e-9 {
		t.Fatalf("got %v want 1", got)
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 1_000_000, want: "$1,000,000"},
		{in: -2500.4, want: "-$2,500"},
		{in: 0, want: "$0"},
	}
	for _, tc := range tests {
		if got := money(tc.in); got != tc.want {
			t.Fatalf("money(%v)=%q want %q", tc.in, got, tc.want)
		}
	}
}
