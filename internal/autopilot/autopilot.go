// Package autopilot plays a game with a fixed set of heuristics. The batch
// worker uses it to run seeded games without a player.
package autopilot

import (
	"context"
	"log/slog"
	"math"

	"tycoon/internal/game"
)

const (
	marketingShare  = 0.05
	maxHeadcount    = 12
	hireRunway      = 12
	fundraiseRunway = 6
	valuationWeight = 0.1
	revenueMonths   = 12
	boundedWeight   = 100_000
)

var marketingChannels = []string{"search", "social"}

// Decisions records what Step did on one turn.
type Decisions struct {
	EventChoice  int          `json:"event_choice"`
	Marketing    float64      `json:"marketing"`
	Hired        bool         `json:"hired"`
	Feature      string       `json:"feature,omitempty"`
	Round        string       `json:"round,omitempty"`
	RoundOutcome game.Outcome `json:"round_outcome,omitempty"`
}

type Pilot struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Pilot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pilot{log: logger}
}

// Run steps and ends turns until the game is over or ctx is cancelled. It
// returns the number of turns played.
func (p *Pilot) Run(ctx context.Context, e *game.Engine) (int, error) {
	turns := 0
	for e.Running() {
		if err := ctx.Err(); err != nil {
			return turns, err
		}
		p.Step(e)
		if !e.Running() {
			break
		}
		if _, err := e.EndTurn(); err != nil {
			return turns, err
		}
		turns++
	}
	return turns, nil
}

// Step makes the current turn's decisions without ending the turn.
// Rejected commands are logged and skipped.
func (p *Pilot) Step(e *game.Engine) Decisions {
	d := Decisions{EventChoice: -1}
	if !e.Running() {
		return d
	}

	if ev, ok := e.PendingEvent(); ok {
		choice := BestChoice(ev, e.Company().Ledger)
		if _, err := e.HandleEventChoice(ev.ID, choice); err != nil {
			p.log.Debug("event choice rejected", "event_id", ev.ID, "err", err)
		} else {
			d.EventChoice = choice
		}
		if !e.Running() {
			return d
		}
	}

	c := e.Company()
	budget := math.Floor(max(c.Cash, 0) * marketingShare / float64(len(marketingChannels)))
	if budget > 0 {
		for _, ch := range marketingChannels {
			res, err := e.AllocateMarketingBudget(ch, budget)
			if err != nil {
				p.log.Debug("marketing rejected", "channel", ch, "err", err)
				continue
			}
			d.Marketing += res.Amount
		}
	}

	c = e.Company()
	if (c.Runway > hireRunway || c.Runway < 0) && len(c.Team.Employees) < maxHeadcount {
		if _, err := e.HireEmployee("developer"); err == nil {
			d.Hired = true
		} else {
			p.log.Debug("hire rejected", "err", err)
		}
	}

	if !inDevelopment(e.Company().Product.Features) {
		res, err := e.DevelopFeature(game.FeatureSpec{})
		if err != nil {
			p.log.Debug("feature rejected", "err", err)
		} else if res.Feature != nil {
			d.Feature = res.Feature.Name
		}
	}

	c = e.Company()
	round, ok := nextRound(e.Balance(), c)
	if ok && ((c.Runway >= 0 && c.Runway < fundraiseRunway) || round == game.RoundIPO) {
		res, err := e.RaiseFunding(round)
		if err != nil {
			p.log.Debug("funding rejected", "round", round, "err", err)
		} else {
			d.Round, d.RoundOutcome = round, res.Outcome
		}
	}
	return d
}

func inDevelopment(features []game.Feature) bool {
	for _, f := range features {
		if !f.Completed {
			return true
		}
	}
	return false
}

// nextRound picks the IPO once the company is big enough, otherwise the
// round whose valuation window holds the company and that it has not
// already closed.
func nextRound(b game.Balance, c game.Company) (string, bool) {
	if c.Valuation >= b.IPOValuation {
		return game.RoundIPO, true
	}
	for _, r := range b.Rounds {
		if c.Valuation >= r.MinValuation && c.Valuation <= r.MaxValuation && r.ID != c.FundingRound {
			return r.ID, true
		}
	}
	return "", false
}

// BestChoice returns the index of the choice with the best cash-adjusted
// score. Ties go to the earliest choice.
func BestChoice(ev game.Event, c game.Ledger) int {
	best, bestScore := 0, math.Inf(-1)
	for i, ch := range ev.Choices {
		if s := score(ch.Effects.Company, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

func score(fx game.CompanyEffects, c game.Ledger) float64 {
	s := fx.Cash
	if fx.CashMult != 0 {
		s += c.Cash * (fx.CashMult - 1)
	}
	valuation := fx.Valuation
	if fx.ValuationMult != 0 {
		valuation += c.Valuation * (fx.ValuationMult - 1)
	}
	s += valuationWeight * valuation

	revenue := fx.Revenue
	if fx.RevenueMult != 0 {
		revenue += c.Revenue * (fx.RevenueMult - 1)
	}
	s += revenueMonths * revenue

	s += boundedWeight * (fx.Quality + fx.Morale + fx.Brand - 10*fx.Churn)
	if fx.Equity < 0 {
		s += fx.Equity * c.Valuation
	}
	return s
}
