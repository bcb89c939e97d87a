package game

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

const (
	baseOpex        = 5000
	opexPerEmployee = 1000
	spanOfControl   = 5
	moraleFloor     = 0.3
)

func (e *Engine) newCompany(name, industry string) *Company {
	b := e.balance
	c := &Company{Ledger: Ledger{
		Name:         name,
		Industry:     industry,
		Cash:         math.Round(b.StartingCash * e.preset.CashMultiplier),
		Valuation:    b.StartingValuation,
		Runway:       -1,
		Equity:       Equity{Player: 1, Investors: map[string]float64{}},
		FundingRound: "pre_seed",
		Team: Team{
			Morale: 1,
			Employees: []Employee{{
				ID:          FounderID,
				Name:        "You (Founder)",
				Role:        "founder",
				Performance: 1.2,
				HiredAt:     e.state.CurrentTurn,
			}},
		},
		Product:   Product{Quality: 0.5},
		Marketing: Marketing{Brand: 0.1, Channels: make(map[string]*ChannelSpend, len(b.Channels))},
		ChurnRate: 0.05,
	}}
	for _, ch := range b.Channels {
		c.Marketing.Channels[ch.ID] = &ChannelSpend{}
	}
	return c
}

func salaries(emps []Employee) float64 {
	total := 0.0
	for _, emp := range emps {
		total += emp.Salary
	}
	return total
}

func opex(headcount int) float64 {
	return baseOpex + opexPerEmployee*float64(headcount)
}

func (e *Engine) updateFinancials() {
	c := e.company
	payroll := salaries(c.Team.Employees)
	ops := opex(len(c.Team.Employees))
	c.Costs = payroll + ops + c.Marketing.Budget()
	c.BurnRate = c.Revenue - (payroll + ops)
	if c.BurnRate < 0 {
		c.Runway = int(math.Floor(c.Cash / math.Abs(c.BurnRate)))
	} else {
		c.Runway = -1
	}
}

func (e *Engine) updateTeam() {
	c := e.company
	managers := 0
	for _, emp := range c.Team.Employees {
		if emp.Role == "operations" || emp.ID == FounderID {
			managers++
		}
	}
	if len(c.Team.Employees) > spanOfControl*managers {
		c.Team.Morale = max(moraleFloor, c.Team.Morale-0.05)
	} else {
		c.Team.Morale = min(1, c.Team.Morale+0.02)
	}
	c.Team.Morale = clamp01(c.Team.Morale)
}

func activeTurns(history []bool) int {
	n := 0
	for _, spent := range history {
		if spent {
			n++
		}
	}
	return n
}

func (e *Engine) updateUsers() {
	c := e.company
	marketSaturation := 1 / (1 + float64(c.Users)/1e6)
	spent := false
	var acquired int64
	for _, spec := range e.balance.Channels {
		ch, ok := c.Marketing.Channels[spec.ID]
		if !ok {
			ch = &ChannelSpend{}
			c.Marketing.Channels[spec.ID] = ch
		}
		ch.Acquisitions = 0
		if ch.Budget > 0 && spec.CostPerUser > 0 {
			spent = true
			channelSaturation := max(0.3, 1-0.07*float64(activeTurns(ch.History)))
			n := ch.Budget / spec.CostPerUser * spec.Efficiency *
				c.Marketing.Brand * c.Product.Quality *
				uniform(e.rand, 0.8, 1.2) *
				marketSaturation * channelSaturation *
				(1 + e.preset.GrowthBonus)
			ch.Acquisitions = max(floorUsers(n), 0)
			acquired += ch.Acquisitions
		}
		ch.History = append(ch.History, ch.Budget > 0)
		if len(ch.History) > channelWindow {
			ch.History = ch.History[len(ch.History)-channelWindow:]
		}
	}

	prev := c.Users
	churned := floorUsers(float64(c.Users) * c.ChurnRate)
	c.Users = max(c.Users+acquired-churned, 0)
	if prev > 0 {
		c.GrowthRate = float64(c.Users)/float64(prev) - 1
	} else {
		c.GrowthRate = 0
	}

	if spent {
		c.Marketing.Brand += 0.01
	}
	c.Marketing.Brand += 0.001 * math.Sqrt(float64(c.Users)) / 100
	c.Marketing.Brand = clamp01(min(c.Marketing.Brand, 1))
}

func (e *Engine) updateRevenue() {
	c := e.company
	ind := e.industryMetrics(c.Industry)
	c.Revenue = math.Floor(float64(c.Users) * ind.AvgUserValue() / 12 * c.Product.Quality)
}

func (e *Engine) updateValuation() {
	c := e.company
	ind := e.industryMetrics(c.Industry)
	v := c.Revenue*ind.RevenueMultiple + float64(c.Users)*ind.AvgUserValue() + c.Product.Quality*1e6
	c.Valuation = math.Round(max(v*e.market.ValuationMultiplier, minValuation))
}

// settleCash books revenue against operating costs. Marketing was paid when
// it was allocated, so it is excluded here and the budget resets.
func (e *Engine) settleCash() {
	c := e.company
	marketing := c.Marketing.Budget()
	c.Cash += c.Revenue - (c.Costs - marketing)
	for _, ch := range c.Marketing.Channels {
		ch.Budget = 0
	}
}

func (e *Engine) checkCompanyEndgame() {
	c := e.company
	if c.Cash <= 0 {
		if !c.Bankrupt {
			c.Bankrupt = true
			e.notify(fmt.Sprintf("%s has run out of cash", c.Name), NotifyNegative)
		}
		e.gameOver(ReasonBankruptcy, map[string]any{"cash": c.Cash, "turn": e.state.CurrentTurn})
		return
	}
	if c.Valuation >= e.balance.AcquisitionValuation && e.state.PendingEvent == "" {
		if e.rand.Float64() < e.balance.AcquisitionChance {
			ev, err := e.registry.Instantiate(acquisitionOfferID, e.state.CurrentTurn, companyTier(c))
			if err != nil {
				e.log.Error("acquisition offer unavailable", "err", err)
				return
			}
			e.surface(ev)
		}
	}
}

// updateCompany runs the player pipeline. The order matters: costs are
// computed before marketing resets and revenue before valuation.
func (e *Engine) updateCompany() {
	e.updateFinancials()
	e.updateProduct()
	e.updateTeam()
	e.updateUsers()
	e.updateRevenue()
	e.updateValuation()
	e.settleCash()
	e.checkCompanyEndgame()
}

// AllocateMarketingBudget sets this turn's spend on a channel. A previous
// allocation to the same channel is refunded first, and the new amount is
// capped at available cash and paid immediately.
func (e *Engine) AllocateMarketingBudget(channel string, amount float64) (Result, error) {
	if err := e.commandable(); err != nil {
		return rejected(err)
	}
	channel = normalizeKey(channel)
	if _, ok := e.balance.channel(channel); !ok {
		return rejected(fmt.Errorf("%w: %s", ErrUnknownChannel, channel))
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return rejected(ErrInvalidAmount)
	}
	c := e.company
	ch, ok := c.Marketing.Channels[channel]
	if !ok {
		ch = &ChannelSpend{}
		c.Marketing.Channels[channel] = ch
	}
	c.Cash += ch.Budget
	amount = math.Floor(min(amount, max(c.Cash, 0)))
	ch.Budget = amount
	c.Cash -= amount
	c.Costs = salaries(c.Team.Employees) + opex(len(c.Team.Employees)) + c.Marketing.Budget()

	res := applied()
	res.Amount = amount
	return res, nil
}

func (e *Engine) HireEmployee(role string) (Result, error) {
	if err := e.commandable(); err != nil {
		return rejected(err)
	}
	role = strings.ToLower(strings.TrimSpace(role))
	spec, ok := e.balance.Roles[role]
	if !ok {
		return rejected(fmt.Errorf("%w: %s", ErrUnknownRole, role))
	}
	emp := e.hire(role, spec.Salary)
	e.notify(fmt.Sprintf("Hired %s as %s", emp.Name, role), NotifyInfo)
	res := applied()
	res.Employee = &emp
	return res, nil
}

func (e *Engine) hire(role string, salary float64) Employee {
	emp := Employee{
		ID:          newID(e.rand),
		Name:        employeeName(e.rand),
		Role:        role,
		Salary:      max(salary, 0),
		Performance: uniform(e.rand, 0.7, 1.3),
		HiredAt:     e.state.CurrentTurn,
	}
	c := e.company
	c.Team.Employees = append(c.Team.Employees, emp)
	e.updateFinancials()
	return emp
}

func (e *Engine) FireEmployee(id string) (Result, error) {
	if err := e.commandable(); err != nil {
		return rejected(err)
	}
	c := e.company
	i := slices.IndexFunc(c.Team.Employees, func(emp Employee) bool { return emp.ID == id })
	if i < 0 || id == FounderID {
		return rejected(fmt.Errorf("%w: %s", ErrUnknownEmployee, id))
	}
	emp := c.Team.Employees[i]
	e.removeEmployee(i)
	c.Team.Morale = max(moraleFloor, c.Team.Morale-0.1)
	e.notify(fmt.Sprintf("%s has left the company", emp.Name), NotifyWarning)
	res := applied()
	res.Employee = &emp
	return res, nil
}

func (e *Engine) removeEmployee(i int) {
	c := e.company
	c.Team.Employees = slices.Delete(c.Team.Employees, i, i+1)
	e.updateFinancials()
}
