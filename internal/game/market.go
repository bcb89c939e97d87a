package game

import (
	"maps"
	"slices"
)

type cycleBaseline struct {
	ValuationMultiplier float64
	FundingAvailability float64
	Sentiment           float64
	GrowthRate          float64
}

var cycleBaselines = map[CyclePhase]cycleBaseline{
	CycleBoom:    {ValuationMultiplier: 1.5, FundingAvailability: 1.5, Sentiment: 0.8, GrowthRate: 0.10},
	CycleBust:    {ValuationMultiplier: 0.6, FundingAvailability: 0.6, Sentiment: 0.2, GrowthRate: -0.05},
	CycleNeutral: {ValuationMultiplier: 1.0, FundingAvailability: 1.0, Sentiment: 0.5, GrowthRate: 0.05},
}

// Continuation or a move to neutral is far more likely than a direct flip.
var cycleTransitions = map[CyclePhase][]CyclePhase{
	CycleBoom:    {CycleBoom, CycleBoom, CycleNeutral, CycleNeutral, CycleBust},
	CycleBust:    {CycleBust, CycleBust, CycleNeutral, CycleNeutral, CycleBoom},
	CycleNeutral: {CycleNeutral, CycleNeutral, CycleBoom, CycleBust},
}

var cycleMessages = map[CyclePhase]string{
	CycleBoom:    "Economic boom! Markets are thriving and funding is abundant.",
	CycleBust:    "Economic downturn. Investors are cautious and valuations are dropping.",
	CycleNeutral: "Markets have stabilized. Normal economic conditions have returned.",
}

type trendTemplate struct {
	ID            string
	Name          string
	Industries    []string
	GrowthEffect  float64
	RevenueEffect float64
}

var trendCatalog = []trendTemplate{
	{ID: "ai_revolution", Name: "AI Revolution", Industries: []string{"saas"}, GrowthEffect: 0.10, RevenueEffect: 1.3},
	{ID: "sustainability", Name: "Sustainability Focus", Industries: []string{"ecommerce"}, GrowthEffect: 0.08, RevenueEffect: 1.2},
	{ID: "privacy", Name: "Privacy Concerns", Industries: []string{"social", "fintech"}, GrowthEffect: -0.05, RevenueEffect: 0.8},
	{ID: "mobile_first", Name: "Mobile-First Movement", Industries: []string{"saas", "ecommerce", "social"}, GrowthEffect: 0.07, RevenueEffect: 1.15},
	{ID: "crypto_boom", Name: "Crypto Boom", Industries: []string{"fintech"}, GrowthEffect: 0.15, RevenueEffect: 1.5},
	{ID: "remote_work", Name: "Remote Work Shift", Industries: []string{"saas"}, GrowthEffect: 0.12, RevenueEffect: 1.25},
}

const (
	maxTrends   = 3
	trendChance = 0.15
)

func newMarket(b Balance, r Rand) *MarketState {
	base := cycleBaselines[CycleNeutral]
	m := &MarketState{
		GrowthRate:          base.GrowthRate,
		ValuationMultiplier: base.ValuationMultiplier,
		FundingAvailability: base.FundingAvailability,
		SentimentIndex:      base.Sentiment,
		Cycle:               Cycle{Phase: CycleNeutral, Length: randomCycleLength(r)},
		Industries:          make(map[string]*IndustryMetrics, len(b.Industries)),
	}
	for id, spec := range b.Industries {
		m.Industries[id] = &IndustryMetrics{
			GrowthRate:      spec.GrowthRate,
			Volatility:      spec.Volatility,
			Competitiveness: 0.5,
			RevenueMultiple: spec.RevenueMultiple,
			BaseMultiple:    spec.RevenueMultiple,
			UserValueMin:    spec.UserValueMin,
			UserValueMax:    spec.UserValueMax,
		}
	}
	return m
}

func randomCycleLength(r Rand) int {
	return 8 + r.Intn(9)
}

func (e *Engine) updateMarket() {
	e.advanceCycle()
	e.updateIndustries()
	e.updateTrends()
	e.applyMarketNoise()
}

func (e *Engine) advanceCycle() {
	m := e.market
	if m.Cycle.Length <= 0 {
		m.Cycle.Length = randomCycleLength(e.rand)
	}
	m.Cycle.Progress += 1 / float64(m.Cycle.Length)
	if m.Cycle.Progress >= 1 {
		next := pick(e.rand, transitionsFrom(m.Cycle.Phase))
		m.Cycle.Progress = 0
		m.Cycle.Length = randomCycleLength(e.rand)
		if next != m.Cycle.Phase {
			e.notify(cycleMessages[next], NotifyMarket)
		}
		e.log.Debug("market cycle changed", "from", m.Cycle.Phase, "to", next)
		m.Cycle.Phase = next
		base := cycleBaselines[next]
		m.ValuationMultiplier = base.ValuationMultiplier
		m.FundingAvailability = base.FundingAvailability
		m.SentimentIndex = base.Sentiment
		m.GrowthRate = base.GrowthRate
	}

	target, ok := driftTarget(m.Cycle.Phase)
	if !ok {
		return
	}
	base := cycleBaselines[target]
	f := m.Cycle.Progress * 0.3
	m.ValuationMultiplier += (base.ValuationMultiplier - m.ValuationMultiplier) * f
	m.FundingAvailability += (base.FundingAvailability - m.FundingAvailability) * f
	m.SentimentIndex = clamp01(m.SentimentIndex + (base.Sentiment-m.SentimentIndex)*f)
	m.GrowthRate += (base.GrowthRate - m.GrowthRate) * f
}

func transitionsFrom(phase CyclePhase) []CyclePhase {
	if row, ok := cycleTransitions[phase]; ok {
		return row
	}
	return []CyclePhase{CycleNeutral}
}

// driftTarget is the most frequent phase other than the current one in the
// transition row. A tie means there is no single likely successor.
func driftTarget(phase CyclePhase) (CyclePhase, bool) {
	counts := make(map[CyclePhase]int)
	for _, next := range transitionsFrom(phase) {
		if next != phase {
			counts[next]++
		}
	}
	var best CyclePhase
	bestCount, tie := 0, false
	for _, next := range slices.Sorted(maps.Keys(counts)) {
		switch c := counts[next]; {
		case c > bestCount:
			best, bestCount, tie = next, c, false
		case c == bestCount:
			tie = true
		}
	}
	if bestCount == 0 || tie {
		return "", false
	}
	return best, true
}

func (e *Engine) updateIndustries() {
	m := e.market
	for _, id := range slices.Sorted(maps.Keys(m.Industries)) {
		ind := m.Industries[id]
		ind.GrowthRate = ind.GrowthRate * (1 + m.GrowthRate*0.5)
		ind.GrowthRate += (e.rand.Float64()*2 - 1) * ind.Volatility * 0.1
		ind.GrowthRate = clamp(ind.GrowthRate, -0.2, 0.3)
		if ind.GrowthRate > 0 {
			ind.Competitiveness += 0.05
		} else {
			ind.Competitiveness -= 0.03
		}
		ind.Competitiveness = clamp(ind.Competitiveness, 0.1, 0.9)
	}
}

func (e *Engine) updateTrends() {
	m := e.market
	active := m.Trends[:0]
	for _, t := range m.Trends {
		t.Progress += 1 / float64(t.Duration)
		if t.Progress >= 1 {
			e.log.Debug("market trend ended", "trend", t.Name)
			continue
		}
		t.Strength = 1 - t.Progress
		active = append(active, t)
	}
	m.Trends = active

	if e.rand.Float64() < trendChance && len(m.Trends) < maxTrends {
		e.startTrend()
	}
	e.recomputeMultiples()
}

func (e *Engine) startTrend() {
	tpl := pick(e.rand, trendCatalog)
	t := Trend{
		ID:            tpl.ID,
		Name:          tpl.Name,
		Industries:    slices.Clone(tpl.Industries),
		GrowthEffect:  tpl.GrowthEffect,
		RevenueEffect: tpl.RevenueEffect,
		Duration:      6 + e.rand.Intn(7),
		Strength:      1,
		StartedAt:     e.state.CurrentTurn,
	}
	for _, id := range t.Industries {
		if ind, ok := e.market.Industries[id]; ok {
			ind.GrowthRate += t.GrowthEffect
		}
	}
	e.market.Trends = append(e.market.Trends, t)
	e.notify("New market trend: "+t.Name, NotifyMarket)
	e.recomputeMultiples()
}

func (e *Engine) recomputeMultiples() {
	for _, ind := range e.market.Industries {
		ind.RevenueMultiple = ind.BaseMultiple
	}
	for _, t := range e.market.Trends {
		for _, id := range t.Industries {
			if ind, ok := e.market.Industries[id]; ok {
				ind.RevenueMultiple *= 1 + (t.RevenueEffect-1)*t.Strength
			}
		}
	}
}

func (e *Engine) applyMarketNoise() {
	m := e.market
	m.ValuationMultiplier = clamp(m.ValuationMultiplier*(1+uniform(e.rand, -0.05, 0.05)), 0.5, 2)
	m.FundingAvailability = clamp(m.FundingAvailability*(1+uniform(e.rand, -0.04, 0.04)), 0.3, 2)
	m.SentimentIndex = clamp(m.SentimentIndex+uniform(e.rand, -0.05, 0.05), 0.1, 0.9)
}

// industryMetrics falls back to the static balance table for industries the
// market does not track.
func (e *Engine) industryMetrics(id string) IndustryMetrics {
	if ind, ok := e.market.Industries[id]; ok {
		return *ind
	}
	spec := e.balance.industry(id)
	return IndustryMetrics{
		GrowthRate:      spec.GrowthRate,
		Volatility:      spec.Volatility,
		RevenueMultiple: spec.RevenueMultiple,
		BaseMultiple:    spec.RevenueMultiple,
		UserValueMin:    spec.UserValueMin,
		UserValueMax:    spec.UserValueMax,
	}
}

func SentimentDescription(v float64) string {
	switch {
	case v > 0.8:
		return "Euphoric"
	case v > 0.6:
		return "Optimistic"
	case v > 0.4:
		return "Neutral"
	case v > 0.2:
		return "Pessimistic"
	default:
		return "Fearful"
	}
}

func FundingDescription(v float64) string {
	switch {
	case v > 1.5:
		return "Extremely Available"
	case v > 1.2:
		return "Abundant"
	case v > 0.8:
		return "Normal"
	case v > 0.5:
		return "Constrained"
	default:
		return "Dry"
	}
}
