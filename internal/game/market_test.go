package game

import (
	"math"
	"testing"
)

func TestDriftTarget(t *testing.T) {
	tests := []struct {
		phase CyclePhase
		want  CyclePhase
		ok    bool
	}{
		{phase: CycleBoom, want: CycleNeutral, ok: true},
		{phase: CycleBust, want: CycleNeutral, ok: true},
		{phase: CycleNeutral, ok: false},
		{phase: CyclePhase("sideways"), want: CycleNeutral, ok: true},
	}
	for _, tc := range tests {
		got, ok := driftTarget(tc.phase)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("driftTarget(%s)=%s,%v want %s,%v", tc.phase, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDescriptions(t *testing.T) {
	sentiment := map[float64]string{0.9: "Euphoric", 0.7: "Optimistic", 0.5: "Neutral", 0.3: "Pessimistic", 0.1: "Fearful"}
	for v, want := range sentiment {
		if got := SentimentDescription(v); got != want {
			t.Fatalf("sentiment %v got %q want %q", v, got, want)
		}
	}
	funding := map[float64]string{1.6: "Extremely Available", 1.3: "Abundant", 1.0: "Normal", 0.6: "Constrained", 0.3: "Dry"}
	for v, want := range funding {
		if got := FundingDescription(v); got != want {
			t.Fatalf("funding %v got %q want %q", v, got, want)
		}
	}
}

func TestTrendMultiplesDoNotCompound(t *testing.T) {
	e, _ := newTestEngine(t, 10, noRandomEvents)
	e.market.Trends = []Trend{{ID: "x", Industries: []string{"saas"}, RevenueEffect: 1.5, Strength: 0.5, Duration: 10}}
	e.recomputeMultiples()
	e.recomputeMultiples()
	saas := e.market.Industries["saas"]
	want := saas.BaseMultiple * 1.25
	if math.Abs(saas.RevenueMultiple-want) > 1e-9 {
		t.Fatalf("multiple %v want %v", saas.RevenueMultiple, want)
	}
	if other := e.market.Industries["ecommerce"]; other.RevenueMultiple != other.BaseMultiple {
		t.Fatalf("untouched industry changed: %+v", other)
	}
}

func TestTrendsExpire(t *testing.T) {
	e, _ := newTestEngine(t, 10, noRandomEvents)
	e.rand = &fixedRand{floats: []float64{0.99}}
	e.market.Trends = []Trend{{ID: "short", Industries: []string{"saas"}, RevenueEffect: 1.2, Duration: 2, Strength: 1}}
	e.updateTrends()
	if len(e.market.Trends) != 1 || math.Abs(e.market.Trends[0].Strength-0.5) > 1e-9 {
		t.Fatalf("trends %+v", e.market.Trends)
	}
	e.updateTrends()
	if len(e.market.Trends) != 0 {
		t.Fatalf("trend outlived its duration: %+v", e.market.Trends)
	}
	saas := e.market.Industries["saas"]
	if saas.RevenueMultiple != saas.BaseMultiple {
		t.Fatalf("multiple not restored: %+v", saas)
	}
}

func TestCompetitivenessFollowsGrowth(t *testing.T) {
	e, _ := newTestEngine(t, 10, noRandomEvents)
	e.rand = &fixedRand{floats: []float64{0.5}}
	e.market.GrowthRate = 0
	up, down := e.market.Industries["saas"], e.market.Industries["fintech"]
	up.GrowthRate, up.Competitiveness = 0.1, 0.5
	down.GrowthRate, down.Competitiveness = -0.1, 0.5

	e.updateIndustries()
	if math.Abs(up.Competitiveness-0.55) > 1e-9 {
		t.Fatalf("growing industry competitiveness %v", up.Competitiveness)
	}
	if math.Abs(down.Competitiveness-0.47) > 1e-9 {
		t.Fatalf("shrinking industry competitiveness %v", down.Competitiveness)
	}
}

func TestMarketStaysInBounds(t *testing.T) {
	e, _ := newTestEngine(t, 10, noRandomEvents)
	for range 200 {
		e.updateMarket()
		m := e.market
		if m.ValuationMultiplier < 0.5 || m.ValuationMultiplier > 2 {
			t.Fatalf("valuation multiplier %v", m.ValuationMultiplier)
		}
		if m.FundingAvailability < 0.3 || m.FundingAvailability > 2 {
			t.Fatalf("funding availability %v", m.FundingAvailability)
		}
		if m.SentimentIndex < 0.1 || m.SentimentIndex > 0.9 {
			t.Fatalf("sentiment %v", m.SentimentIndex)
		}
		if len(m.Trends) > maxTrends {
			t.Fatalf("%d trends", len(m.Trends))
		}
		for id, ind := range m.Industries {
			if ind.Competitiveness < 0.1 || ind.Competitiveness > 0.9 {
				t.Fatalf("%s out of bounds: %+v", id, ind)
			}
		}
	}
}

func TestDifficultyClamps(t *testing.T) {
	t.Run("strong player", func(t *testing.T) {
		e, _ := newTestEngine(t, 11, noRandomEvents)
		e.rand = &fixedRand{floats: []float64{0.9}}
		for i := 1; i <= 8; i++ {
			e.state.CurrentTurn = i * e.balance.DifficultyInterval
			e.company.Valuation = 1e9
			e.evaluateDifficulty()
		}
		if e.Multiplier() != maxDifficulty {
			t.Fatalf("multiplier %v", e.Multiplier())
		}
		if len(e.difficulty.Samples) != difficultySamples {
			t.Fatalf("samples %d", len(e.difficulty.Samples))
		}
	})
	t.Run("struggling player", func(t *testing.T) {
		e, _ := newTestEngine(t, 11, noRandomEvents)
		e.rand = &fixedRand{floats: []float64{0.9}}
		for i := 1; i <= 8; i++ {
			e.state.CurrentTurn = i * e.balance.DifficultyInterval
			e.company.Valuation = minValuation
			e.company.Users, e.company.Revenue = 0, 0
			e.evaluateDifficulty()
		}
		if e.Multiplier() != minDifficulty {
			t.Fatalf("multiplier %v", e.Multiplier())
		}
	})
	t.Run("off interval", func(t *testing.T) {
		e, _ := newTestEngine(t, 11, noRandomEvents)
		e.state.CurrentTurn = e.balance.DifficultyInterval + 1
		e.company.Valuation = 1e9
		e.evaluateDifficulty()
		if e.Multiplier() != 1 || len(e.difficulty.Samples) != 0 {
			t.Fatalf("evaluated off interval")
		}
	})
}

func TestDifficultyStep(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{score: 2, want: 0.15},
		{score: 1.3, want: 0.08},
		{score: 1, want: 0},
		{score: 0.7, want: -0.05},
		{score: 0.5, want: -0.10},
	}
	for _, tc := range tests {
		if got := difficultyStep(tc.score); got != tc.want {
			t.Fatalf("difficultyStep(%v)=%v want %v", tc.score, got, tc.want)
		}
	}
}
