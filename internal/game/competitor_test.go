package game

import (
	"fmt"
	"testing"
)

func TestSpawnCompetitors(t *testing.T) {
	e, _ := newTestEngine(t, 9, noRandomEvents)
	rivals := e.Competitors()
	if len(rivals) != e.balance.Industries["saas"].Competitors {
		t.Fatalf("got %d rivals", len(rivals))
	}
	names := map[string]bool{e.Company().Name: true}
	for i, c := range rivals {
		if c.ID != fmt.Sprintf("rival-%d", i+1) {
			t.Fatalf("id %q", c.ID)
		}
		if names[c.Name] {
			t.Fatalf("duplicate name %q", c.Name)
		}
		names[c.Name] = true
		if !c.Active || c.Industry != "saas" || c.Equity.Player != 1 {
			t.Fatalf("rival %+v", c)
		}
	}
}

func TestCompetitorBankruptOnce(t *testing.T) {
	e, _ := newTestEngine(t, 9, noRandomEvents)
	rival := e.competitors[0]
	rival.Users = 1000
	rival.Product.Quality = 0.5
	e.company.Product.Quality = 0.5
	users := e.company.Users

	e.bankruptCompetitor(rival)
	e.bankruptCompetitor(rival)
	if rival.Active {
		t.Fatalf("rival still active")
	}
	if got := e.company.Users - users; got != 300 {
		t.Fatalf("moved %d users", got)
	}

	before := rival.Users
	e.updateCompetitors()
	if rival.Users != before {
		t.Fatalf("inactive rival updated")
	}
}

func TestCompetitorGoesBankruptWhenCashRunsOut(t *testing.T) {
	e, _ := newTestEngine(t, 9, noRandomEvents)
	rival := e.competitors[0]
	rival.Cash = -1
	rival.MarketingSpend, rival.ProductSpend = 0, 0
	rival.Users = 0
	e.updateCompetitor(rival)
	if rival.Active {
		t.Fatalf("rival with no cash still active")
	}
	if rival.Valuation < competitorFloor {
		t.Fatalf("valuation below floor: %v", rival.Valuation)
	}
}

func TestCompetitorDecisionsCapped(t *testing.T) {
	e, _ := newTestEngine(t, 9, noRandomEvents)
	rival := e.competitors[0]
	for range 8 {
		e.allocateCompetitor(rival)
	}
	if len(rival.Decisions) != maxDecisions {
		t.Fatalf("decisions %d", len(rival.Decisions))
	}
	d := rival.Decisions[len(rival.Decisions)-1]
	if d.Marketing+d.Product > rival.Cash*0.2*1.2*rival.Aggressiveness+1 {
		t.Fatalf("spent more than available: %+v", d)
	}
}

func TestCompetitorFundingOncePerRound(t *testing.T) {
	e, _ := newTestEngine(t, 9, noRandomEvents)
	e.rand = &fixedRand{floats: []float64{0}}
	rival := e.competitors[0]
	rival.Cash = 0
	rival.Revenue = 10_000
	rival.Valuation = 2_000_000

	e.attemptCompetitorFunding(rival)
	e.attemptCompetitorFunding(rival)
	if len(rival.RaisedRounds) != 1 || rival.RaisedRounds[0] != "seed" {
		t.Fatalf("rounds %v", rival.RaisedRounds)
	}
	if len(rival.FundingHistory) != 1 || !rival.FundingHistory[0].Competitor {
		t.Fatalf("history %+v", rival.FundingHistory)
	}
	if rival.Cash != 200_000 {
		t.Fatalf("cash %v", rival.Cash)
	}
}

func TestStrategyWeightsAtLeastOne(t *testing.T) {
	e, _ := newTestEngine(t, 9, noRandomEvents)
	for _, c := range e.competitors {
		w := e.strategyWeights(c)
		for _, s := range strategies {
			if w[s] < 1 {
				t.Fatalf("%s weight %v", s, w[s])
			}
		}
	}
}
