package game

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

var marketingShare = map[Strategy]float64{
	StrategyGrowth:        0.8,
	StrategyProduct:       0.3,
	StrategyConsolidation: 0.4,
	StrategyPivot:         0.2,
}

var qualityBoost = map[Strategy]float64{
	StrategyProduct:       0.1,
	StrategyGrowth:        0.03,
	StrategyConsolidation: 0.02,
	StrategyPivot:         0.15,
}

func (e *Engine) spawnCompetitors() {
	spec := e.balance.industry(e.company.Industry)
	types := slices.Sorted(maps.Keys(e.balance.CompetitorTypes))
	if len(types) == 0 {
		return
	}
	for range spec.Competitors {
		e.addCompetitor(pick(e.rand, types))
	}
}

func (e *Engine) addCompetitor(kind string) *Competitor {
	spec := e.balance.CompetitorTypes[kind]
	taken := map[string]bool{e.company.Name: true}
	for _, rival := range e.competitors {
		taken[rival.Name] = true
	}
	c := &Competitor{
		Ledger: Ledger{
			Name:         competitorName(e.rand, taken),
			Industry:     e.company.Industry,
			Cash:         math.Round(500_000 * spec.CashMult * uniform(e.rand, 0.8, 1.2)),
			Valuation:    math.Round(1_000_000 * uniform(e.rand, 0.7, 1.3)),
			Runway:       -1,
			Equity:       Equity{Player: 1, Investors: map[string]float64{}},
			FundingRound: "pre_seed",
			Team:         Team{Morale: 1},
			Product:      Product{Quality: uniform(e.rand, 0.3, 0.7)},
			Marketing:    Marketing{Brand: uniform(e.rand, 0.1, 0.3), Channels: map[string]*ChannelSpend{}},
			Users:        floorUsers(100 * spec.UsersMult * uniform(e.rand, 0.6, 1.4)),
			ChurnRate:    uniform(e.rand, 0.05, 0.10),
		},
		ID:             fmt.Sprintf("rival-%d", len(e.competitors)+1),
		Type:           kind,
		Aggressiveness: spec.Risk * e.preset.CompetitorAggressiveness,
		Active:         true,
		StrategyTimer:  intBetween(e.rand, 3, 6),
	}
	switch kind {
	case "aggressive":
		c.Strategy = StrategyGrowth
	case "product":
		c.Strategy = StrategyProduct
	case "conservative":
		c.Strategy = StrategyConsolidation
	default:
		c.Strategy = pick(e.rand, []Strategy{StrategyGrowth, StrategyProduct})
	}
	e.competitors = append(e.competitors, c)
	return c
}

// decideCompetitors runs in the AI phase: strategy, spend and fundraising.
func (e *Engine) decideCompetitors() {
	for _, c := range e.competitors {
		if !c.Active {
			continue
		}
		e.updateStrategy(c)
		e.allocateCompetitor(c)
		e.attemptCompetitorFunding(c)
	}
}

func (e *Engine) updateStrategy(c *Competitor) {
	c.StrategyTimer--
	if c.StrategyTimer > 0 {
		return
	}
	next := e.chooseStrategy(c)
	c.StrategyTimer = intBetween(e.rand, 3, 6)
	if next == c.Strategy {
		return
	}
	e.log.Debug("competitor changed strategy", "competitor", c.Name, "from", c.Strategy, "to", next)
	c.Strategy = next
	if next == StrategyPivot {
		c.Product.Quality = clamp(c.Product.Quality+0.15, 0.1, 1)
		c.Users = floorUsers(float64(c.Users) * 0.8)
	}
}

func (e *Engine) strategyWeights(c *Competitor) map[Strategy]float64 {
	w := map[Strategy]float64{}
	for _, s := range strategies {
		w[s] = 1
	}
	p := e.company
	m := e.market

	if c.Cash < c.Revenue*6 {
		w[StrategyConsolidation] += 3
		w[StrategyPivot] += 1
	}
	if c.Cash > c.Revenue*24 {
		w[StrategyGrowth] += 3
	}
	if c.GrowthRate < 0.05 {
		w[StrategyPivot] += 2
		w[StrategyProduct] += 1
	}
	if c.GrowthRate > 0.2 {
		w[StrategyGrowth] += 2
	}
	if m.FundingAvailability > 1 && m.SentimentIndex > 0.6 {
		w[StrategyGrowth] += 2
	}
	if m.FundingAvailability < 0.8 || m.SentimentIndex < 0.4 {
		w[StrategyConsolidation] += 2
	}
	if c.Product.Quality < p.Product.Quality-0.2 {
		w[StrategyProduct] += 3
	}
	if c.Product.Quality > p.Product.Quality+0.1 {
		w[StrategyGrowth] += 1
	}
	if float64(c.Users) < float64(p.Users)*0.5 {
		w[StrategyGrowth] += 2
	}
	if float64(c.Users) > float64(p.Users)*1.5 {
		w[StrategyConsolidation] += 1
	}
	switch c.Type {
	case "aggressive":
		w[StrategyGrowth] += 2
	case "product":
		w[StrategyProduct] += 2
	case "conservative":
		w[StrategyConsolidation] += 2
	}
	for s := range w {
		w[s] = max(w[s], 1)
	}
	return w
}

func (e *Engine) chooseStrategy(c *Competitor) Strategy {
	w := e.strategyWeights(c)
	total := 0.0
	for _, s := range strategies {
		total += w[s]
	}
	roll := e.rand.Float64() * total
	for _, s := range strategies {
		roll -= w[s]
		if roll < 0 {
			return s
		}
	}
	return strategies[len(strategies)-1]
}

func (e *Engine) allocateCompetitor(c *Competitor) {
	typeFactor := 1.0
	switch c.Type {
	case "aggressive":
		typeFactor = 1.2
	case "conservative":
		typeFactor = 0.8
	}
	available := math.Floor(max(c.Cash, 0) * 0.2 * c.Aggressiveness * typeFactor)
	share := marketingShare[c.Strategy]
	c.MarketingSpend = math.Floor(available * share)
	c.ProductSpend = available - c.MarketingSpend

	c.Decisions = append(c.Decisions, Decision{
		Turn:      e.state.CurrentTurn,
		Strategy:  c.Strategy,
		Marketing: c.MarketingSpend,
		Product:   c.ProductSpend,
	})
	if len(c.Decisions) > maxDecisions {
		c.Decisions = c.Decisions[len(c.Decisions)-maxDecisions:]
	}
}

func (e *Engine) attemptCompetitorFunding(c *Competitor) {
	wants := c.Cash < c.Revenue*3 ||
		(c.Strategy == StrategyGrowth && c.Valuation > 5_000_000) ||
		(c.Strategy == StrategyPivot && c.Cash < c.Revenue*6)
	if !wants {
		return
	}
	round, ok := e.balance.roundFor(c.Valuation)
	if !ok || slices.Contains(c.RaisedRounds, round.ID) {
		return
	}
	if e.rand.Float64() > e.fundingChance(round.Difficulty, c.Product.Quality, c.Marketing.Brand) {
		return
	}
	equity := min(uniform(e.rand, round.EquityMin, round.EquityMax), c.Equity.Player)
	if equity <= 0 {
		return
	}
	amount := math.Round(c.Valuation * equity)
	investor := investorName(e.rand, round.ID)
	c.Cash += amount
	c.Equity.Player -= equity
	c.Equity.Investors[investor] += equity
	c.RaisedRounds = append(c.RaisedRounds, round.ID)
	c.FundingRound = round.ID
	c.FundingHistory = append(c.FundingHistory, FundingRecord{
		Round:      round.ID,
		Investor:   investor,
		Amount:     amount,
		Equity:     equity,
		Valuation:  c.Valuation,
		Turn:       e.state.CurrentTurn,
		Competitor: true,
	})
	if len(c.Decisions) > 0 {
		c.Decisions[len(c.Decisions)-1].Note = "raised " + round.Name
	}
	e.notify(fmt.Sprintf("%s raised %s in a %s round", c.Name, money(amount), round.Name), NotifyInfo)
}

// updateCompetitors runs after the player company has settled.
func (e *Engine) updateCompetitors() {
	for _, c := range e.competitors {
		if !c.Active {
			continue
		}
		e.updateCompetitor(c)
	}
}

func (e *Engine) updateCompetitor(c *Competitor) {
	ind := e.industryMetrics(c.Industry)
	q := c.Product.Quality

	boost := qualityBoost[c.Strategy]
	if c.Type == "product" {
		boost *= 1.5
	}
	spendFactor := 0.0
	if c.ProductSpend > 0 {
		spendFactor = c.ProductSpend / (c.ProductSpend + 100_000)
	}
	q = clamp(q*(1-e.balance.QualityDecay/2)+boost*spendFactor, 0.1, 1)
	c.Product.Quality = q

	prev := c.Users
	gained := floorUsers(c.MarketingSpend/10*0.8) + floorUsers(float64(c.Users)*q*0.1)
	lost := floorUsers(float64(c.Users) * c.ChurnRate * (1 - q*0.5))
	c.Users = max(c.Users+gained-lost, 0)
	if prev > 0 {
		c.GrowthRate = float64(c.Users)/float64(prev) - 1
	} else {
		c.GrowthRate = 0
	}

	c.Revenue = math.Floor(float64(c.Users) * ind.AvgUserValue() / 12 * q)
	c.Costs = math.Floor(c.Revenue*0.8) + c.MarketingSpend + c.ProductSpend
	c.Cash += c.Revenue - math.Floor(c.Revenue*0.8) - c.MarketingSpend - c.ProductSpend
	c.BurnRate = c.Revenue - c.Costs

	v := (c.Revenue*ind.RevenueMultiple + float64(c.Users)*ind.AvgUserValue() + q*500_000) *
		e.market.ValuationMultiplier * uniform(e.rand, 0.9, 1.1)
	c.Valuation = math.Round(max(v, competitorFloor))

	if c.Cash <= 0 {
		e.bankruptCompetitor(c)
	}
}

// bankruptCompetitor deactivates the rival once and hands part of its user
// base to the player, scaled by relative product quality.
func (e *Engine) bankruptCompetitor(c *Competitor) {
	if !c.Active {
		return
	}
	c.Active = false
	ratio := min(1, e.company.Product.Quality/max(c.Product.Quality, 0.1))
	moved := floorUsers(float64(c.Users) * 0.3 * ratio)
	e.company.Users += moved
	e.notify(fmt.Sprintf("%s has gone bankrupt. %s of their users switched to you.", c.Name, printer.Sprintf("%d", moved)), NotifyMarket)
	e.log.Info("competitor bankrupt", "competitor", c.Name, "users_moved", moved)
}

func (e *Engine) competitorDigest() []CompetitorDigest {
	out := make([]CompetitorDigest, 0, len(e.competitors))
	for _, c := range e.competitors {
		out = append(out, CompetitorDigest{
			ID:             c.ID,
			Name:           c.Name,
			Strategy:       c.Strategy,
			Valuation:      c.Valuation,
			Users:          c.Users,
			ProductQuality: c.Product.Quality,
			Active:         c.Active,
		})
	}
	return out
}
