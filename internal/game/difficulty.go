package game

import (
	"fmt"
	"math"
	"slices"
)

const (
	minDifficulty     = 0.7
	maxDifficulty     = 1.5
	difficultySamples = 5
	scriptedChance    = 0.4
)

type ScriptedEvent string

const (
	ScriptedEmployeePoaching     ScriptedEvent = "employee_poaching"
	ScriptedMarketDownturn       ScriptedEvent = "market_downturn"
	ScriptedIncreasedCompetition ScriptedEvent = "increased_competition"
	ScriptedCostIncrease         ScriptedEvent = "cost_increase"
)

var scriptedEvents = []ScriptedEvent{
	ScriptedEmployeePoaching,
	ScriptedMarketDownturn,
	ScriptedIncreasedCompetition,
	ScriptedCostIncrease,
}

// Benchmarks is what an on-track company looks like at turn t.
func Benchmarks(turn int) (valuation, users, revenue float64) {
	years := float64(turn) / 12
	return 1e6 * math.Pow(1.15, years), 100 * math.Pow(1.2, years), 5000 * math.Pow(1.18, years)
}

func performanceSample(c *Company, turn int) float64 {
	v, u, r := Benchmarks(turn)
	return (c.Valuation/v + float64(c.Users)/u + c.Revenue/r) / 3
}

func difficultyStep(score float64) float64 {
	switch {
	case score > 1.5:
		return 0.15
	case score > 1.2:
		return 0.08
	case score < 0.6:
		return -0.10
	case score < 0.8:
		return -0.05
	}
	return 0
}

// evaluateDifficulty nudges the game harder or easier based on how the player
// tracks the benchmark curve.
func (e *Engine) evaluateDifficulty() {
	turn := e.state.CurrentTurn
	interval := e.balance.DifficultyInterval
	if interval <= 0 || turn%interval != 0 {
		return
	}
	d := &e.difficulty
	d.Samples = append(d.Samples, PerformanceSample{Turn: turn, Score: performanceSample(e.company, turn)})
	if len(d.Samples) > difficultySamples {
		d.Samples = slices.Clone(d.Samples[len(d.Samples)-difficultySamples:])
	}
	score := 0.0
	for _, s := range d.Samples {
		score += s.Score
	}
	score /= float64(len(d.Samples))

	old := d.Multiplier
	if old <= 0 {
		old = 1
	}
	next := clamp(old+difficultyStep(score), minDifficulty, maxDifficulty)
	d.Multiplier = next
	if next == old {
		return
	}
	e.log.Info("difficulty adjusted", "turn", turn, "score", score, "from", old, "to", next)
	e.propagateDifficulty(next / old)
	if next-old > 0.1 && e.rand.Float64() < scriptedChance {
		e.runScripted(pick(e.rand, scriptedEvents))
	}
}

func (e *Engine) propagateDifficulty(r float64) {
	m := e.market
	m.ValuationMultiplier = clamp(m.ValuationMultiplier/r, 0.5, 2)
	for _, c := range e.competitors {
		c.Aggressiveness *= r
		if r > 1 {
			c.Product.Quality = clamp(c.Product.Quality*(1+(r-1)*0.5), 0.1, 1)
		}
	}
	c := e.company
	c.ChurnRate = clampChurn(max(0.05, c.ChurnRate*r))
}

func (e *Engine) runScripted(ev ScriptedEvent) {
	c := e.company
	switch ev {
	case ScriptedEmployeePoaching:
		if len(c.Team.Employees) <= 2 {
			return
		}
		var candidates []int
		for i, emp := range c.Team.Employees {
			if emp.ID != FounderID {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			return
		}
		i := pick(e.rand, candidates)
		name := c.Team.Employees[i].Name
		e.removeEmployee(i)
		c.Team.Morale = max(moraleFloor, c.Team.Morale-0.15)
		e.notify(fmt.Sprintf("A competitor poached %s from your team", name), NotifyNegative)
	case ScriptedMarketDownturn:
		c.Valuation = math.Round(max(c.Valuation*0.85, minValuation))
		e.notify("Investors have cooled on your sector. Your valuation dropped 15%.", NotifyNegative)
	case ScriptedIncreasedCompetition:
		rival := e.addCompetitor("aggressive")
		e.notify(fmt.Sprintf("A well-funded newcomer, %s, has entered your market", rival.Name), NotifyNegative)
	case ScriptedCostIncrease:
		factor := uniform(e.rand, 1.15, 1.29)
		for i := range c.Team.Employees {
			c.Team.Employees[i].Salary = math.Round(c.Team.Employees[i].Salary * factor)
		}
		e.updateFinancials()
		e.notify(fmt.Sprintf("Labor costs are rising. Salaries increased %.0f%%.", (factor-1)*100), NotifyNegative)
	}
}
