package game

import "strings"

type RoleSpec struct {
	Salary float64 `yaml:"salary" json:"salary"`
}

type ComplexitySpec struct {
	TimeRequired int     `yaml:"time_required" json:"time_required"`
	Cost         float64 `yaml:"cost" json:"cost"`
	Impact       float64 `yaml:"impact" json:"impact"`
}

type ChannelSpec struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Efficiency  float64 `yaml:"efficiency" json:"efficiency"`
	CostPerUser float64 `yaml:"cost_per_user" json:"cost_per_user"`
}

type IndustrySpec struct {
	Name            string  `yaml:"name" json:"name"`
	GrowthRate      float64 `yaml:"growth_rate" json:"growth_rate"`
	Volatility      float64 `yaml:"volatility" json:"volatility"`
	Competitors     int     `yaml:"competitors" json:"competitors"`
	UserValueMin    float64 `yaml:"user_value_min" json:"user_value_min"`
	UserValueMax    float64 `yaml:"user_value_max" json:"user_value_max"`
	RevenueMultiple float64 `yaml:"revenue_multiple" json:"revenue_multiple"`
}

type CompetitorTypeSpec struct {
	Risk      float64 `yaml:"risk" json:"risk"`
	Marketing float64 `yaml:"marketing" json:"marketing"`
	Product   float64 `yaml:"product" json:"product"`
	CashMult  float64 `yaml:"cash_mult" json:"cash_mult"`
	UsersMult float64 `yaml:"users_mult" json:"users_mult"`
}

type RoundSpec struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	MinValuation float64 `yaml:"min_valuation" json:"min_valuation"`
	MaxValuation float64 `yaml:"max_valuation" json:"max_valuation"`
	EquityMin    float64 `yaml:"equity_min" json:"equity_min"`
	EquityMax    float64 `yaml:"equity_max" json:"equity_max"`
	Difficulty   float64 `yaml:"difficulty" json:"difficulty"`
}

type CategorySpec struct {
	ID      EventCategory `yaml:"id" json:"id"`
	Weight  float64       `yaml:"weight" json:"weight"`
	MinTurn int           `yaml:"min_turn" json:"min_turn"`
}

type DifficultyPreset struct {
	CashMultiplier           float64 `yaml:"cash_multiplier" json:"cash_multiplier"`
	EventFrequency           float64 `yaml:"event_frequency" json:"event_frequency"`
	CompetitorAggressiveness float64 `yaml:"competitor_aggressiveness" json:"competitor_aggressiveness"`
	GrowthBonus              float64 `yaml:"growth_bonus" json:"growth_bonus"`
	FundingMultiplier        float64 `yaml:"funding_multiplier" json:"funding_multiplier"`
}

// Balance holds every tunable constant of the simulation. It can be
// overridden from a YAML file by the binaries.
type Balance struct {
	StartingCash         float64 `yaml:"starting_cash" json:"starting_cash"`
	StartingValuation    float64 `yaml:"starting_valuation" json:"starting_valuation"`
	MaxTurns             int     `yaml:"max_turns" json:"max_turns"`
	IPOValuation         float64 `yaml:"ipo_valuation" json:"ipo_valuation"`
	AcquisitionValuation float64 `yaml:"acquisition_valuation" json:"acquisition_valuation"`
	AcquisitionChance    float64 `yaml:"acquisition_chance" json:"acquisition_chance"`
	QualityDecay         float64 `yaml:"quality_decay" json:"quality_decay"`
	EventSpacing         int     `yaml:"event_spacing" json:"event_spacing"`
	EventBaseChance      float64 `yaml:"event_base_chance" json:"event_base_chance"`
	DifficultyInterval   int     `yaml:"difficulty_interval" json:"difficulty_interval"`

	Roles           map[string]RoleSpec           `yaml:"roles" json:"roles"`
	Complexities    map[string]ComplexitySpec     `yaml:"complexities" json:"complexities"`
	Channels        []ChannelSpec                 `yaml:"channels" json:"channels"`
	Industries      map[string]IndustrySpec       `yaml:"industries" json:"industries"`
	CompetitorTypes map[string]CompetitorTypeSpec `yaml:"competitor_types" json:"competitor_types"`
	Rounds          []RoundSpec                   `yaml:"rounds" json:"rounds"`
	Categories      []CategorySpec                `yaml:"categories" json:"categories"`
	Difficulties    map[string]DifficultyPreset   `yaml:"difficulties" json:"difficulties"`
}

func DefaultBalance() Balance {
	return Balance{
		StartingCash:         1_000_000,
		StartingValuation:    1_000_000,
		MaxTurns:             120,
		IPOValuation:         100_000_000,
		AcquisitionValuation: 50_000_000,
		AcquisitionChance:    0.15,
		QualityDecay:         0.05,
		EventSpacing:         2,
		EventBaseChance:      0.30,
		DifficultyInterval:   6,
		Roles: map[string]RoleSpec{
			"developer":   {Salary: 10_000},
			"designer":    {Salary: 8_000},
			"marketer":    {Salary: 7_000},
			"salesperson": {Salary: 6_000},
			"operations":  {Salary: 5_000},
		},
		Complexities: map[string]ComplexitySpec{
			"simple":  {TimeRequired: 1, Cost: 10_000, Impact: 0.1},
			"medium":  {TimeRequired: 3, Cost: 50_000, Impact: 0.25},
			"complex": {TimeRequired: 6, Cost: 150_000, Impact: 0.5},
		},
		Channels: []ChannelSpec{
			{ID: "social", Name: "Social Media", Efficiency: 0.8, CostPerUser: 5},
			{ID: "search", Name: "Search Ads", Efficiency: 1.0, CostPerUser: 8},
			{ID: "content", Name: "Content Marketing", Efficiency: 0.6, CostPerUser: 3},
			{ID: "traditional", Name: "Traditional Media", Efficiency: 0.4, CostPerUser: 12},
		},
		Industries: map[string]IndustrySpec{
			"saas":      {Name: "Software as a Service", GrowthRate: 0.12, Volatility: 0.2, Competitors: 4, UserValueMin: 100, UserValueMax: 500, RevenueMultiple: 8},
			"ecommerce": {Name: "E-Commerce", GrowthRate: 0.08, Volatility: 0.15, Competitors: 6, UserValueMin: 50, UserValueMax: 200, RevenueMultiple: 3},
			"fintech":   {Name: "Financial Technology", GrowthRate: 0.15, Volatility: 0.25, Competitors: 3, UserValueMin: 200, UserValueMax: 800, RevenueMultiple: 6},
			"social":    {Name: "Social Media", GrowthRate: 0.2, Volatility: 0.3, Competitors: 5, UserValueMin: 10, UserValueMax: 50, RevenueMultiple: 10},
		},
		CompetitorTypes: map[string]CompetitorTypeSpec{
			"aggressive":   {Risk: 0.8, Marketing: 0.7, Product: 0.3, CashMult: 1.5, UsersMult: 2},
			"balanced":     {Risk: 0.5, Marketing: 0.5, Product: 0.5, CashMult: 1, UsersMult: 1},
			"product":      {Risk: 0.4, Marketing: 0.2, Product: 0.8, CashMult: 1.2, UsersMult: 0.5},
			"conservative": {Risk: 0.2, Marketing: 0.4, Product: 0.6, CashMult: 0.8, UsersMult: 0.7},
		},
		Rounds: []RoundSpec{
			{ID: "seed", Name: "Seed", MinValuation: 1_000_000, MaxValuation: 5_000_000, EquityMin: 0.10, EquityMax: 0.25, Difficulty: 0.2},
			{ID: "series_a", Name: "Series A", MinValuation: 5_000_000, MaxValuation: 20_000_000, EquityMin: 0.10, EquityMax: 0.20, Difficulty: 0.4},
			{ID: "series_b", Name: "Series B", MinValuation: 20_000_000, MaxValuation: 50_000_000, EquityMin: 0.05, EquityMax: 0.15, Difficulty: 0.6},
			{ID: "series_c", Name: "Series C", MinValuation: 50_000_000, MaxValuation: 100_000_000, EquityMin: 0.05, EquityMax: 0.10, Difficulty: 0.7},
		},
		Categories: []CategorySpec{
			{ID: CategoryMarket, Weight: 30, MinTurn: 0},
			{ID: CategoryCompetitor, Weight: 25, MinTurn: 3},
			{ID: CategoryInternal, Weight: 20, MinTurn: 2},
			{ID: CategoryOpportunity, Weight: 15, MinTurn: 5},
			{ID: CategoryGlobal, Weight: 10, MinTurn: 8},
			{ID: CategoryRiskReward, Weight: 12, MinTurn: 6},
		},
		Difficulties: map[string]DifficultyPreset{
			"easy":   {CashMultiplier: 1.5, EventFrequency: 0.7, CompetitorAggressiveness: 0.7, GrowthBonus: 0.2, FundingMultiplier: 1.3},
			"normal": {CashMultiplier: 1.0, EventFrequency: 1.0, CompetitorAggressiveness: 1.0, GrowthBonus: 0, FundingMultiplier: 1.0},
			"hard":   {CashMultiplier: 0.7, EventFrequency: 1.3, CompetitorAggressiveness: 1.3, GrowthBonus: -0.1, FundingMultiplier: 0.7},
		},
	}
}

func (b Balance) channel(id string) (ChannelSpec, bool) {
	for _, ch := range b.Channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return ChannelSpec{}, false
}

// round resolves a funding round by id or display name, case-insensitively.
func (b Balance) round(name string) (RoundSpec, bool) {
	key := normalizeKey(name)
	for _, r := range b.Rounds {
		if normalizeKey(r.ID) == key || normalizeKey(r.Name) == key {
			return r, true
		}
	}
	return RoundSpec{}, false
}

func (b Balance) industry(id string) IndustrySpec {
	if spec, ok := b.Industries[id]; ok {
		return spec
	}
	return IndustrySpec{UserValueMin: 50, UserValueMax: 200, RevenueMultiple: 5, Competitors: 4}
}

func (b Balance) preset(name string) DifficultyPreset {
	if p, ok := b.Difficulties[name]; ok {
		return p
	}
	return b.Difficulties["normal"]
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}
