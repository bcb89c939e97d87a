package game

func option(text string, c CompanyEffects) Choice {
	return Choice{Text: text, Effects: Effects{Company: c}}
}

func chained(ch Choice, eventID string, delay int, probability float64) Choice {
	ch.Chain = &ChainLink{EventID: eventID, Delay: delay, Probability: probability}
	return ch
}

func special(ch Choice, s SpecialEffect) Choice {
	ch.Effects.Special = s
	return ch
}

// DefaultRegistry holds the built-in event catalog.
var DefaultRegistry = NewRegistry(defaultTemplates())

func defaultTemplates() []EventTemplate {
	return []EventTemplate{
		// market
		{
			ID:          "market_boom",
			Title:       "Market Boom",
			Description: "The market is experiencing a sudden boom. Investors are throwing money at startups!",
			Type:        EventPositive,
			Category:    CategoryMarket,
			Choices: []Choice{
				special(Choice{
					Text: "Capitalize on it by raising more funding",
					Effects: Effects{Market: MarketEffects{
						ValuationMultiplier: 0.2,
						FundingAvailability: 0.3,
					}},
				}, SpecialVCMeetingOutcome),
				option("Stay cautious and focus on sustainable growth", CompanyEffects{Morale: 0.1}),
			},
		},
		{
			ID:          "market_crash",
			Title:       "Market Downturn",
			Description: "The market is experiencing a sudden downturn. Investors are becoming more cautious.",
			Type:        EventNegative,
			Category:    CategoryMarket,
			Choices: []Choice{
				chained(option("Restructure to extend runway, with cuts felt across your small team", CompanyEffects{Morale: -0.2, Cash: -10_000}),
					"team_morale_crisis", 2, 0.7),
				option("Maintain course and weather the storm", CompanyEffects{Cash: -30_000}),
			},
		},
		{
			ID:           "market_expansion_opportunity",
			Title:        "Market Expansion Opportunity",
			Description:  "A new international market is opening up for your product. Expanding would require significant investment but could greatly increase your user base.",
			Type:         EventOpportunity,
			Category:     CategoryMarket,
			MinValuation: 10_000_000,
			MinUsers:     10_000,
			Choices: []Choice{
				option("Invest heavily in international expansion", CompanyEffects{Cash: -500_000, Users: 5000, Valuation: 2_000_000}),
				option("Test the market with a smaller investment", CompanyEffects{Cash: -200_000, Users: 2000}),
				option("Focus on domestic growth for now", CompanyEffects{Morale: 0.05}),
			},
		},
		{
			ID:           "major_platform_change",
			Title:        "Major Platform Change",
			Description:  "A platform your product heavily relies on has announced significant API changes that will affect your service. Adapting will require substantial development resources.",
			Type:         EventNegative,
			Category:     CategoryMarket,
			MinValuation: 5_000_000,
			Choices: []Choice{
				option("Allocate significant resources to adapt quickly", CompanyEffects{Cash: -300_000, Quality: 0.1}),
				option("Gradually adapt while maintaining current features, losing about 1,000 users", CompanyEffects{Cash: -150_000, Users: -1000, Quality: 0.05}),
				option("Minimize changes and focus on alternative platforms", CompanyEffects{Users: -3000, Churn: 0.02}),
			},
		},

		// competitor
		{
			ID:          "new_competitor",
			Title:       "New Competitor",
			Description: "A new competitor has entered the market with a similar product.",
			Type:        EventNegative,
			Category:    CategoryCompetitor,
			Choices: []Choice{
				option("Accelerate product development for about $10,000", CompanyEffects{Cash: -10_000, Quality: 0.1}),
				option("Increase marketing to maintain market position", CompanyEffects{Cash: -15_000, Brand: 0.1}),
				option("Ignore them and focus on your own strategy", CompanyEffects{Morale: 0.05}),
			},
		},
		{
			ID:           "major_competitor_merger",
			Title:        "Major Competitor Merger",
			Description:  "Two of your significant competitors have announced a merger, creating a formidable rival in the market.",
			Type:         EventNegative,
			Category:     CategoryCompetitor,
			MinValuation: 20_000_000,
			MinUsers:     50_000,
			Choices: []Choice{
				option("Accelerate product development to stay competitive", CompanyEffects{Cash: -1_000_000, Quality: 0.15, Morale: -0.1}),
				option("Launch aggressive marketing campaign to retain users", CompanyEffects{Cash: -800_000, Brand: 0.2, Churn: -0.02}),
				chained(option("Explore potential acquisition targets to counter the merger", CompanyEffects{Cash: -500_000, Valuation: -1_000_000}),
					"acquisition_opportunity", 1, 1),
			},
		},
		{
			ID:           "talent_poaching",
			Title:        "Talent Poaching",
			Description:  "A well-funded competitor is actively recruiting your key team members with lucrative offers.",
			Type:         EventNegative,
			Category:     CategoryCompetitor,
			MinValuation: 10_000_000,
			Choices: []Choice{
				option("Increase salaries and benefits to retain talent", CompanyEffects{Cash: -500_000, Morale: 0.15}),
				option("Offer equity incentives instead of cash", CompanyEffects{Equity: -0.05, Morale: 0.1}),
				option("Let some talent go and focus on recruiting replacements", CompanyEffects{Morale: -0.2, Quality: -0.1}),
			},
		},

		// internal
		{
			ID:          "team_conflict",
			Title:       "Team Conflict",
			Description: "There's growing tension between team members that's affecting productivity in your small team.",
			Type:        EventNegative,
			Category:    CategoryInternal,
			Choices: []Choice{
				option("Mediate and resolve the conflict", CompanyEffects{Morale: 0.1, Quality: 0.05}),
				option("Restructure teams to separate conflicting members", CompanyEffects{Morale: -0.05, Quality: 0.02}),
				option("Ignore it and hope it resolves itself", CompanyEffects{Morale: -0.2, Quality: -0.1}),
			},
		},
		{
			ID:          "scaling_infrastructure_challenges",
			Title:       "Scaling Infrastructure Challenges",
			Description: "Your platform is experiencing stability issues due to rapid user growth. The current infrastructure needs significant upgrades.",
			Type:        EventNegative,
			Category:    CategoryInternal,
			MinUsers:    100_000,
			Choices: []Choice{
				option("Complete infrastructure overhaul", CompanyEffects{Cash: -2_000_000, Quality: 0.2, Churn: -0.05}),
				option("Implement targeted improvements to critical systems", CompanyEffects{Cash: -800_000, Quality: 0.1, Churn: -0.02}),
				option("Minimal patches while planning long-term solutions", CompanyEffects{Cash: -200_000, Users: -5000, Churn: 0.03}),
			},
		},
		{
			ID:           "corporate_restructuring",
			Title:        "Corporate Restructuring Needed",
			Description:  "Your company has grown rapidly but organizational inefficiencies are becoming apparent. A restructuring could improve operations but carries risks.",
			Type:         EventNeutral,
			Category:     CategoryInternal,
			MinValuation: 50_000_000,
			MinUsers:     200_000,
			Choices: []Choice{
				option("Implement comprehensive restructuring with consultants", CompanyEffects{Cash: -3_000_000, Morale: -0.1, Quality: 0.15, Valuation: 5_000_000}),
				option("Gradual departmental reorganization", CompanyEffects{Cash: -1_000_000, Morale: 0.05, Quality: 0.05}),
				option("Maintain current structure but improve processes", CompanyEffects{Cash: -500_000, Morale: 0.1}),
			},
		},

		// opportunity
		{
			ID:          "partnership_offer",
			Title:       "Partnership Opportunity",
			Description: "A complementary business has approached you about a strategic partnership that could bring in new users quickly.",
			Type:        EventPositive,
			Category:    CategoryOpportunity,
			Choices: []Choice{
				option("Accept the partnership", CompanyEffects{Users: 500, Valuation: 50_000}),
				option("Negotiate better terms", CompanyEffects{Users: 200, Valuation: 20_000}),
				option("Decline and focus on your core business", CompanyEffects{Morale: 0.05}),
			},
		},
		{
			ID:           "acquisition_target",
			Title:        "Acquisition Target Identified",
			Description:  "Your team has identified a promising smaller competitor that could be acquired to expand your market share and technology capabilities.",
			Type:         EventOpportunity,
			Category:     CategoryOpportunity,
			MinValuation: 100_000_000,
			MinUsers:     500_000,
			Choices: []Choice{
				option("Pursue aggressive acquisition", CompanyEffects{Cash: -20_000_000, Users: 100_000, Quality: 0.1, Valuation: 30_000_000}),
				option("Negotiate strategic partnership instead", CompanyEffects{Cash: -5_000_000, Users: 20_000, Brand: 0.1}),
				option("Decline and focus on organic growth", CompanyEffects{}),
			},
		},
		{
			ID:           "major_enterprise_client",
			Title:        "Major Enterprise Client Opportunity",
			Description:  "A Fortune 500 company is interested in implementing your solution across their organization, but requires custom features and dedicated support.",
			Type:         EventOpportunity,
			Category:     CategoryOpportunity,
			MinValuation: 50_000_000,
			MinRevenue:   500_000,
			Choices: []Choice{
				option("Dedicate resources to win and service this client", CompanyEffects{Cash: -2_000_000, Revenue: 500_000, Valuation: 10_000_000, Morale: -0.05}),
				option("Offer limited customization within your product roadmap", CompanyEffects{Cash: -500_000, Revenue: 200_000, Valuation: 3_000_000}),
				option("Decline to maintain focus on core market", CompanyEffects{Morale: 0.05}),
			},
		},

		// global
		{
			ID:          "economic_recession",
			Title:       "Economic Recession",
			Description: "A global economic downturn is affecting markets worldwide.",
			Type:        EventNegative,
			Category:    CategoryGlobal,
			Choices: []Choice{
				{
					Text: "Cut costs aggressively",
					Effects: Effects{
						Company: CompanyEffects{Cash: -5000, Morale: -0.2},
						Market:  MarketEffects{FundingAvailability: -0.3},
					},
				},
				{
					Text: "Maintain operations but delay expansion",
					Effects: Effects{
						Company: CompanyEffects{Cash: -20_000},
						Market:  MarketEffects{FundingAvailability: -0.2},
					},
				},
				{
					Text: "Invest counter-cyclically with rescue capital to gain market share",
					Effects: Effects{
						Company: CompanyEffects{Cash: -50_000, Valuation: -100_000},
						Market:  MarketEffects{FundingAvailability: -0.1},
						Special: SpecialEmergencyFunding,
					},
				},
			},
		},
		{
			ID:           "regulatory_scrutiny",
			Title:        "Regulatory Scrutiny",
			Description:  "As your company has grown, it's attracted attention from regulators concerned about data privacy and market competition practices.",
			Type:         EventNegative,
			Category:     CategoryGlobal,
			MinValuation: 500_000_000,
			MinUsers:     1_000_000,
			Choices: []Choice{
				option("Proactively implement comprehensive compliance measures", CompanyEffects{Cash: -10_000_000, Valuation: -20_000_000, Morale: -0.1, Quality: -0.05}),
				special(option("Engage with regulators while making minimal changes", CompanyEffects{Cash: -5_000_000, Valuation: -50_000_000, Churn: 0.02}),
					SpecialRegulatoryAppeal),
				chained(option("Fight regulations through legal challenges", CompanyEffects{Cash: -20_000_000, Valuation: -100_000_000, Brand: -0.2}),
					"regulatory_battle", 2, 1),
			},
		},
		{
			ID:           "international_expansion_challenges",
			Title:        "International Expansion Challenges",
			Description:  "Your global expansion is facing unexpected challenges with local regulations, cultural differences, and established competitors.",
			Type:         EventNegative,
			Category:     CategoryGlobal,
			MinValuation: 200_000_000,
			MinUsers:     500_000,
			Choices: []Choice{
				option("Invest heavily in localization and compliance", CompanyEffects{Cash: -15_000_000, Users: 200_000, Valuation: 30_000_000}),
				option("Scale back to focus on most promising markets", CompanyEffects{Cash: -5_000_000, Users: 50_000, Valuation: 10_000_000}),
				option("Partner with local companies in key markets", CompanyEffects{Cash: -8_000_000, Users: 100_000, Equity: -0.05, EquityHolder: "Local Partners"}),
			},
		},

		// risk_reward
		{
			ID:          "risky_feature",
			Title:       "Risky Feature Development",
			Description: "Your team has proposed a high-risk, high-reward feature that could differentiate your product but might delay other priorities.",
			Type:        EventRiskReward,
			Category:    CategoryRiskReward,
			Choices: []Choice{
				option("Go all-in on the risky feature", CompanyEffects{Cash: -30_000, Quality: 0.2, Morale: -0.1}),
				option("Develop a scaled-down version", CompanyEffects{Cash: -15_000, Quality: 0.1}),
				option("Stick to the original roadmap", CompanyEffects{Morale: 0.05}),
			},
		},
		{
			ID:           "major_pivot_opportunity",
			Title:        "Major Pivot Opportunity",
			Description:  "Market analysis suggests a significant opportunity to pivot your business model to capture a much larger market, but it would require substantial changes.",
			Type:         EventRiskReward,
			Category:     CategoryRiskReward,
			MinValuation: 100_000_000,
			Choices: []Choice{
				chained(option("Commit to the pivot with full resources", CompanyEffects{Cash: -30_000_000, Users: -100_000, Churn: 0.1, Valuation: -50_000_000}),
					"major_pivot_outcome", 3, 1),
				option("Test the new model with a separate division", CompanyEffects{Cash: -10_000_000, Morale: -0.1}),
				option("Maintain current course with minor adjustments", CompanyEffects{Morale: 0.05}),
			},
		},
		{
			ID:           "ipo_consideration",
			Title:        "IPO Consideration",
			Description:  "Your board and investors are pushing for an IPO to provide liquidity. The market conditions seem favorable, but going public would bring new pressures and scrutiny.",
			Type:         EventRiskReward,
			Category:     CategoryRiskReward,
			MinValuation: 500_000_000,
			MinRevenue:   5_000_000,
			Choices: []Choice{
				special(option("Begin IPO preparations", CompanyEffects{Cash: -5_000_000, Valuation: 100_000_000, Morale: -0.1}),
					SpecialIPOPreparation),
				option("Raise one more private funding round instead", CompanyEffects{Valuation: 50_000_000, Equity: -0.1, EquityHolder: "Late Stage Investors"}),
				option("Delay IPO decision for another year", CompanyEffects{Morale: -0.05, Valuation: -20_000_000}),
			},
		},

		// chain
		{
			ID:          "team_morale_crisis",
			Title:       "Team Morale Crisis",
			Description: "Recent decisions have led to a significant drop in team morale. Several key employees are considering leaving.",
			Type:        EventNegative,
			Category:    CategoryChain,
			ChainOnly:   true,
			Choices: []Choice{
				option("Hold team building retreat", CompanyEffects{Cash: -20_000, Morale: 0.3}),
				option("One-on-one meetings with key team members", CompanyEffects{Morale: 0.2}),
				option("Offer salary increases of around $50,000", CompanyEffects{Cash: -50_000, Morale: 0.25}),
			},
		},
		{
			ID:          "major_pivot_outcome",
			Title:       "Pivot Results",
			Description: "Your major business pivot is showing initial results. The transition has been challenging but there are promising signs.",
			Type:        EventNeutral,
			Category:    CategoryChain,
			ChainOnly:   true,
			Choices: []Choice{
				special(option("Double down on the new direction", CompanyEffects{Cash: -10_000_000, Users: 200_000, Valuation: 100_000_000, Quality: 0.2}),
					SpecialPivotOutcome),
				option("Make adjustments based on early feedback", CompanyEffects{Cash: -5_000_000, Users: 100_000, Valuation: 50_000_000, Quality: 0.1}),
				option("Revert to original business model", CompanyEffects{Users: 50_000, Valuation: -20_000_000, Morale: -0.2}),
			},
		},
		{
			ID:          "regulatory_battle",
			Title:       "Regulatory Battle Outcome",
			Description: "After months of legal challenges, the regulatory situation has reached a critical point. Your legal team has presented the likely outcomes.",
			Type:        EventNegative,
			Category:    CategoryChain,
			ChainOnly:   true,
			Choices: []Choice{
				option("Settle and implement required changes", CompanyEffects{Cash: -50_000_000, Valuation: -100_000_000, Users: -200_000}),
				special(option("Continue legal fight to the highest court", CompanyEffects{Cash: -100_000_000, Valuation: -200_000_000, Morale: -0.2}),
					SpecialRegulatoryFinalOutcome),
				option("Restructure company to address concerns", CompanyEffects{Cash: -30_000_000, Valuation: -50_000_000, Quality: -0.1, Users: -100_000}),
			},
		},
		{
			ID:          "acquisition_opportunity",
			Title:       "Acquisition Target Found",
			Description: "Your team has identified a promising smaller competitor that would complement your business well. They seem open to acquisition talks.",
			Type:        EventOpportunity,
			Category:    CategoryChain,
			ChainOnly:   true,
			Choices: []Choice{
				option("Make aggressive acquisition offer", CompanyEffects{Cash: -30_000_000, Users: 100_000, Valuation: 50_000_000, Quality: 0.1}),
				option("Propose merger of equals", CompanyEffects{Cash: -10_000_000, Users: 50_000, Valuation: 20_000_000, Equity: -0.1, EquityHolder: "Merger Partner"}),
				option("Decline and focus on organic growth", CompanyEffects{Valuation: -5_000_000}),
			},
		},

		// endgame
		{
			ID:          acquisitionOfferID,
			Title:       "Acquisition Offer",
			Description: "You've received an acquisition offer from a larger company.",
			Type:        EventOpportunity,
			Category:    CategoryEndgame,
			ChainOnly:   true,
			Choices: []Choice{
				special(option("Accept the offer and sell the company", CompanyEffects{}), SpecialAcquisitionExit),
				option("Reject the offer and continue building", CompanyEffects{ValuationMult: 1.1}),
			},
		},
	}
}

const acquisitionOfferID = "acquisition_offer"
