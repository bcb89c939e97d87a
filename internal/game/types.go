package game

import (
	"maps"
	"slices"
)

type Phase string

const (
	PhasePlayerDecision Phase = "player_decision"
	PhaseAIDecision     Phase = "ai_decision"
	PhaseMarketEvents   Phase = "market_events"
	PhaseTurnResolution Phase = "turn_resolution"
)

var phaseOrder = []Phase{PhasePlayerDecision, PhaseAIDecision, PhaseMarketEvents, PhaseTurnResolution}

type NotificationType string

const (
	NotifyInfo     NotificationType = "info"
	NotifySuccess  NotificationType = "success"
	NotifyWarning  NotificationType = "warning"
	NotifyNegative NotificationType = "negative"
	NotifyEvent    NotificationType = "event"
	NotifyMarket   NotificationType = "market"
)

const (
	ReasonBankruptcy  = "bankruptcy"
	ReasonMaxTurns    = "max_turns_reached"
	ReasonIPO         = "ipo"
	ReasonAcquisition = "acquisition"
)

type Settings struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	Difficulty  string `json:"difficulty"`
	MaxTurns    int    `json:"max_turns"`
	Seed        int64  `json:"seed"`
}

type Notification struct {
	Turn    int              `json:"turn"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

type EventRecord struct {
	EventID string `json:"event_id"`
	Turn    int    `json:"turn"`
	Choice  int    `json:"choice"`
}

type GameState struct {
	Running        bool           `json:"running"`
	CurrentTurn    int            `json:"current_turn"`
	Phase          Phase          `json:"phase"`
	GameOver       bool           `json:"game_over"`
	GameOverReason string         `json:"game_over_reason,omitempty"`
	GameOverData   map[string]any `json:"game_over_data,omitempty"`
	Events         []Event        `json:"events"`
	EventHistory   []EventRecord  `json:"event_history"`
	Notifications  []Notification `json:"notifications"`
	PendingEvent   string         `json:"pending_event,omitempty"`
	LastSummary    *TurnSummary   `json:"last_summary,omitempty"`
}

type Employee struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Salary      float64 `json:"salary"`
	Performance float64 `json:"performance"`
	HiredAt     int     `json:"hired_at"`
}

type Feature struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Complexity   string   `json:"complexity"`
	Category     string   `json:"category"`
	Cost         float64  `json:"cost"`
	TimeRequired int      `json:"time_required"`
	Progress     float64  `json:"progress"`
	Completed    bool     `json:"completed"`
	CompletedAt  int      `json:"completed_at,omitempty"`
	Impact       float64  `json:"impact"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type Equity struct {
	Player    float64            `json:"player"`
	Investors map[string]float64 `json:"investors"`
}

func (e Equity) Total() float64 {
	total := e.Player
	for _, share := range e.Investors {
		total += share
	}
	return total
}

type FundingRecord struct {
	Round      string  `json:"round"`
	Investor   string  `json:"investor"`
	Amount     float64 `json:"amount"`
	Equity     float64 `json:"equity"`
	Valuation  float64 `json:"valuation"`
	Turn       int     `json:"turn"`
	Competitor bool    `json:"competitor,omitempty"`
}

type Team struct {
	Morale    float64    `json:"morale"`
	Employees []Employee `json:"employees"`
}

type Product struct {
	Quality     float64   `json:"quality"`
	Features    []Feature `json:"features"`
	Development float64   `json:"development"`
}

type ChannelSpend struct {
	Budget       float64 `json:"budget"`
	Acquisitions int64   `json:"acquisitions"`
	History      []bool  `json:"history"`
}

type Marketing struct {
	Brand    float64                  `json:"brand"`
	Channels map[string]*ChannelSpend `json:"channels"`
}

func (m Marketing) Budget() float64 {
	total := 0.0
	for _, id := range slices.Sorted(maps.Keys(m.Channels)) {
		total += m.Channels[id].Budget
	}
	return total
}

// Ledger is the state shared by the player company and every competitor.
type Ledger struct {
	Name           string          `json:"name"`
	Industry       string          `json:"industry"`
	Cash           float64         `json:"cash"`
	Revenue        float64         `json:"revenue"`
	Costs          float64         `json:"costs"`
	BurnRate       float64         `json:"burn_rate"`
	Valuation      float64         `json:"valuation"`
	Runway         int             `json:"runway"`
	Equity         Equity          `json:"equity"`
	FundingRound   string          `json:"funding_round"`
	FundingHistory []FundingRecord `json:"funding_history"`
	Team           Team            `json:"team"`
	Product        Product         `json:"product"`
	Marketing      Marketing       `json:"marketing"`
	Users          int64           `json:"users"`
	GrowthRate     float64         `json:"growth_rate"`
	ChurnRate      float64         `json:"churn_rate"`
}

type Company struct {
	Ledger
	IPOReady bool `json:"ipo_ready"`
	Bankrupt bool `json:"bankrupt"`
}

type Strategy string

const (
	StrategyGrowth        Strategy = "growth"
	StrategyProduct       Strategy = "product"
	StrategyConsolidation Strategy = "consolidation"
	StrategyPivot         Strategy = "pivot"
)

var strategies = []Strategy{StrategyGrowth, StrategyProduct, StrategyConsolidation, StrategyPivot}

type Decision struct {
	Turn      int      `json:"turn"`
	Strategy  Strategy `json:"strategy"`
	Marketing float64  `json:"marketing"`
	Product   float64  `json:"product"`
	Note      string   `json:"note,omitempty"`
}

type Competitor struct {
	Ledger
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	Strategy       Strategy   `json:"strategy"`
	StrategyTimer  int        `json:"strategy_timer"`
	Aggressiveness float64    `json:"aggressiveness"`
	Active         bool       `json:"active"`
	RaisedRounds   []string   `json:"raised_rounds"`
	Decisions      []Decision `json:"decisions"`
	MarketingSpend float64    `json:"marketing_spend"`
	ProductSpend   float64    `json:"product_spend"`
}

type CyclePhase string

const (
	CycleBoom    CyclePhase = "boom"
	CycleBust    CyclePhase = "bust"
	CycleNeutral CyclePhase = "neutral"
)

type Cycle struct {
	Phase    CyclePhase `json:"phase"`
	Progress float64    `json:"progress"`
	Length   int        `json:"length"`
}

type Trend struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Industries    []string `json:"industries"`
	GrowthEffect  float64  `json:"growth_effect"`
	RevenueEffect float64  `json:"revenue_effect"`
	Duration      int      `json:"duration"`
	Progress      float64  `json:"progress"`
	Strength      float64  `json:"strength"`
	StartedAt     int      `json:"started_at"`
}

type IndustryMetrics struct {
	GrowthRate      float64 `json:"growth_rate"`
	Volatility      float64 `json:"volatility"`
	Competitiveness float64 `json:"competitiveness"`
	RevenueMultiple float64 `json:"revenue_multiple"`
	BaseMultiple    float64 `json:"base_multiple"`
	UserValueMin    float64 `json:"user_value_min"`
	UserValueMax    float64 `json:"user_value_max"`
}

func (m IndustryMetrics) AvgUserValue() float64 {
	return (m.UserValueMin + m.UserValueMax) / 2
}

type MarketState struct {
	GrowthRate          float64                     `json:"growth_rate"`
	ValuationMultiplier float64                     `json:"valuation_multiplier"`
	FundingAvailability float64                     `json:"funding_availability"`
	SentimentIndex      float64                     `json:"sentiment_index"`
	Cycle               Cycle                       `json:"cycle"`
	Trends              []Trend                     `json:"trends"`
	Industries          map[string]*IndustryMetrics `json:"industries"`
}

type PerformanceSample struct {
	Turn  int     `json:"turn"`
	Score float64 `json:"score"`
}

type DifficultyState struct {
	Multiplier float64             `json:"multiplier"`
	Samples    []PerformanceSample `json:"samples"`
}

type CompanyDigest struct {
	Cash           float64 `json:"cash"`
	CashDelta      float64 `json:"cash_delta"`
	Revenue        float64 `json:"revenue"`
	RevenueDelta   float64 `json:"revenue_delta"`
	Valuation      float64 `json:"valuation"`
	ValuationDelta float64 `json:"valuation_delta"`
	Users          int64   `json:"users"`
	UsersDelta     int64   `json:"users_delta"`
	Runway         int     `json:"runway"`
	BurnRate       float64 `json:"burn_rate"`
}

type MarketDigest struct {
	Phase               CyclePhase `json:"phase"`
	GrowthRate          float64    `json:"growth_rate"`
	FundingAvailability float64    `json:"funding_availability"`
	ValuationMultiplier float64    `json:"valuation_multiplier"`
	Sentiment           string     `json:"sentiment"`
}

type CompetitorDigest struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Strategy       Strategy `json:"strategy"`
	Valuation      float64  `json:"valuation"`
	Users          int64    `json:"users"`
	ProductQuality float64  `json:"product_quality"`
	Active         bool     `json:"active"`
}

type TurnSummary struct {
	Turn              int                `json:"turn"`
	Company           CompanyDigest      `json:"company"`
	Market            MarketDigest       `json:"market"`
	Events            []Event            `json:"events"`
	CompletedFeatures []Feature          `json:"completed_features"`
	Competitors       []CompetitorDigest `json:"competitors"`
}
