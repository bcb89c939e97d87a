package game

import (
	"fmt"
	"math"
)

type SpecialEffect string

const (
	SpecialNone                   SpecialEffect = ""
	SpecialAcquisitionExit        SpecialEffect = "acquisition_exit"
	SpecialEmergencyFunding       SpecialEffect = "emergency_funding"
	SpecialRegulatoryAppeal       SpecialEffect = "regulatory_appeal"
	SpecialRegulatoryFinalOutcome SpecialEffect = "regulatory_final_outcome"
	SpecialVCMeetingOutcome       SpecialEffect = "vc_meeting_outcome"
	SpecialPivotOutcome           SpecialEffect = "pivot_outcome"
	SpecialIPOPreparation         SpecialEffect = "ipo_preparation"
)

func (s SpecialEffect) Valid() bool {
	switch s {
	case SpecialNone,
		SpecialAcquisitionExit,
		SpecialEmergencyFunding,
		SpecialRegulatoryAppeal,
		SpecialRegulatoryFinalOutcome,
		SpecialVCMeetingOutcome,
		SpecialPivotOutcome,
		SpecialIPOPreparation:
		return true
	}
	return false
}

const (
	vcMeetingDifficulty = 0.4
	vcMeetingEquity     = 0.10
)

func (e *Engine) applySpecial(kind SpecialEffect, tier int) error {
	c := e.company
	s := scaleFor(tier)

	switch kind {
	case SpecialNone:
		return nil

	case SpecialAcquisitionExit:
		price := c.Valuation * (1.1 + 0.2*e.rand.Float64())
		payout := math.Round(price * c.Equity.Player)
		e.notify(fmt.Sprintf("Company acquired for %s. Your payout: %s", money(price), money(payout)), NotifySuccess)
		e.gameOver(ReasonAcquisition, map[string]any{
			"valuation": math.Round(price),
			"payout":    payout,
		})

	case SpecialEmergencyFunding:
		equity := 0.25 * max(0.5, 1-float64(tier-1)*0.05)
		equity = e.releaseEquity(equity, "Rescue Capital")
		if equity <= 0 {
			e.notify("Rescue investors walked away: no equity left to offer", NotifyNegative)
			return nil
		}
		amount := math.Round(c.Valuation * 0.2 * s.Cash)
		c.Cash += amount
		c.FundingHistory = append(c.FundingHistory, FundingRecord{
			Round:     "emergency",
			Investor:  "Rescue Capital",
			Amount:    amount,
			Equity:    equity,
			Valuation: c.Valuation,
			Turn:      e.state.CurrentTurn,
		})
		e.notify(fmt.Sprintf("Emergency funding secured: %s for %.1f%% equity", money(amount), equity*100), NotifySuccess)

	case SpecialRegulatoryAppeal:
		if e.rand.Float64() < 0.2 {
			fees := 50_000 * s.Cash
			c.Cash -= fees
			e.notify(fmt.Sprintf("Appeal won. Legal fees: %s", money(fees)), NotifySuccess)
			break
		}
		fine := 800_000 * s.Cash
		c.Cash -= fine
		c.Valuation = max(c.Valuation-1_500_000*s.Valuation, minValuation)
		e.notify(fmt.Sprintf("Appeal lost. Fined %s", money(fine)), NotifyNegative)

	case SpecialRegulatoryFinalOutcome:
		if e.rand.Float64() < 0.3 {
			c.Valuation += 150_000_000 * s.Valuation / 10
			c.Marketing.Brand = clamp01(c.Marketing.Brand + 0.1)
			e.notify("The court ruled in your favor. Your reputation is stronger than ever.", NotifySuccess)
			break
		}
		penalty := 40_000_000 * s.Cash / 10
		c.Cash -= penalty
		c.Users = floorUsers(float64(c.Users) * 0.8)
		e.notify(fmt.Sprintf("The final ruling went against you. Penalty: %s", money(penalty)), NotifyNegative)

	case SpecialVCMeetingOutcome:
		chance := e.fundingChance(vcMeetingDifficulty, c.Product.Quality, c.Marketing.Brand)
		if e.rand.Float64() >= chance {
			c.Team.Morale = clamp01(c.Team.Morale - 0.05)
			e.notify("The VC meetings went nowhere", NotifyNegative)
			break
		}
		investor := vcFirmName(e.rand)
		equity := e.releaseEquity(vcMeetingEquity, investor)
		if equity <= 0 {
			e.notify(investor+" wanted in, but there is no equity left to sell", NotifyWarning)
			break
		}
		amount := math.Round(c.Valuation * 0.15)
		c.Cash += amount
		c.FundingHistory = append(c.FundingHistory, FundingRecord{
			Round:     "vc_meeting",
			Investor:  investor,
			Amount:    amount,
			Equity:    equity,
			Valuation: c.Valuation,
			Turn:      e.state.CurrentTurn,
		})
		e.notify(fmt.Sprintf("%s invested %s", investor, money(amount)), NotifySuccess)

	case SpecialPivotOutcome:
		if e.rand.Float64() < 0.45 {
			c.Users = floorUsers(float64(c.Users) * 1.5)
			c.Product.Quality = clamp01(c.Product.Quality + 0.15)
			e.notify("The pivot paid off. Users are flocking to the new product.", NotifySuccess)
			break
		}
		c.Users = floorUsers(float64(c.Users) * 0.7)
		c.Team.Morale = clamp01(c.Team.Morale - 0.15)
		e.notify("The pivot struggled. Many users left during the transition.", NotifyNegative)

	case SpecialIPOPreparation:
		c.IPOReady = true
		e.notify("IPO preparations are underway. Public markets will price you at a premium.", NotifyInfo)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownSpecial, kind)
	}
	return nil
}
