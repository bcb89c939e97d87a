package game

import (
	"fmt"
	"math"
)

const (
	RoundIPO = "ipo"

	ipoPremium         = 1.2
	ipoPreparedPremium = 1.35
	ipoCashOut         = 0.2
)

// fundingChance is shared by player rounds, rival rounds and VC meetings.
func (e *Engine) fundingChance(difficulty, quality, brand float64) float64 {
	denom := e.market.FundingAvailability * min(1, quality+brand) * e.preset.FundingMultiplier
	if denom <= 0 {
		return 0.05
	}
	return clamp(1-difficulty/denom, 0.05, 0.95)
}

// roundFor returns the latest round whose valuation floor v has reached.
func (b Balance) roundFor(v float64) (RoundSpec, bool) {
	var found RoundSpec
	ok := false
	for _, r := range b.Rounds {
		if v >= r.MinValuation {
			found, ok = r, true
		}
	}
	return found, ok
}

// RaiseFunding pitches investors for the named round, or takes the company
// public when round is "ipo".
func (e *Engine) RaiseFunding(round string) (Result, error) {
	if err := e.commandable(); err != nil {
		return rejected(err)
	}
	if normalizeKey(round) == RoundIPO {
		return e.goPublic()
	}
	spec, ok := e.balance.round(round)
	if !ok {
		return rejected(fmt.Errorf("%w: %s", ErrUnknownRound, round))
	}
	c := e.company
	if c.Valuation < spec.MinValuation || c.Valuation > spec.MaxValuation {
		return rejected(fmt.Errorf("%w: %s needs a valuation between %s and %s",
			ErrRoundUnavailable, spec.Name, money(spec.MinValuation), money(spec.MaxValuation)))
	}
	if c.Equity.Player <= 0 {
		return rejected(ErrNoEquity)
	}

	chance := e.fundingChance(spec.Difficulty, c.Product.Quality, c.Marketing.Brand)
	if roll := e.rand.Float64(); roll > chance {
		e.notify(fmt.Sprintf("Investors passed on your %s round", spec.Name), NotifyNegative)
		e.log.Info("funding round failed", "round", spec.ID, "chance", chance, "roll", roll)
		return failedRoll("Investors passed on this opportunity"), nil
	}

	roundValuation := c.Valuation * (0.8 + 0.4*e.rand.Float64())
	investor := investorName(e.rand, spec.ID)
	equity := e.releaseEquity(uniform(e.rand, spec.EquityMin, spec.EquityMax), investor)
	amount := math.Round(roundValuation * equity)
	c.Cash += amount
	c.FundingRound = spec.ID
	rec := FundingRecord{
		Round:     spec.ID,
		Investor:  investor,
		Amount:    amount,
		Equity:    equity,
		Valuation: math.Round(roundValuation),
		Turn:      e.state.CurrentTurn,
	}
	c.FundingHistory = append(c.FundingHistory, rec)
	e.notify(fmt.Sprintf("Raised %s from %s in a %s round", money(amount), investor, spec.Name), NotifySuccess)
	e.log.Info("funding round closed", "round", spec.ID, "amount", amount, "equity", equity)

	res := applied()
	res.Amount = amount
	res.Funding = &rec
	return res, nil
}

func (e *Engine) goPublic() (Result, error) {
	c := e.company
	if c.Valuation < e.balance.IPOValuation {
		return rejected(fmt.Errorf("%w: an IPO needs a valuation of at least %s",
			ErrRoundUnavailable, money(e.balance.IPOValuation)))
	}
	premium := ipoPremium
	if c.IPOReady {
		premium = ipoPreparedPremium
	}
	ipoValuation := math.Round(c.Valuation * premium)
	payout := math.Round(ipoValuation * c.Equity.Player * ipoCashOut)
	c.Valuation = ipoValuation
	c.FundingRound = RoundIPO

	e.notify(fmt.Sprintf("%s is now public at a %s valuation", c.Name, money(ipoValuation)), NotifySuccess)
	e.gameOver(ReasonIPO, map[string]any{
		"valuation": ipoValuation,
		"payout":    payout,
		"equity":    c.Equity.Player,
	})
	res := applied()
	res.Amount = payout
	return res, nil
}
