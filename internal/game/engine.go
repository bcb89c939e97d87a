package game

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type EngineOptions struct {
	Logger   *slog.Logger
	Rand     Rand
	Observer Observer
	Balance  *Balance
	Registry *Registry
	Now      func() time.Time
}

// Engine owns one game. It is not safe for concurrent use; callers that
// share an engine across goroutines must serialize access.
type Engine struct {
	log      *slog.Logger
	rand     Rand
	observer Observer
	balance  Balance
	registry *Registry
	now      func() time.Time

	settings    Settings
	preset      DifficultyPreset
	state       GameState
	company     *Company
	market      *MarketState
	competitors []*Competitor
	difficulty  DifficultyState

	chains        []PendingChainEvent
	chainSeq      int
	lastEventTurn int

	turnEvents   []Event
	turnFeatures []Feature
}

func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		log:      opts.Logger,
		rand:     opts.Rand,
		observer: opts.Observer,
		registry: opts.Registry,
		now:      opts.Now,
		balance:  DefaultBalance(),
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.rand == nil {
		e.rand = NewRand(time.Now().UnixNano())
	}
	if e.observer == nil {
		e.observer = NopObserver{}
	}
	if e.registry == nil {
		e.registry = DefaultRegistry
	}
	if e.now == nil {
		e.now = time.Now
	}
	if opts.Balance != nil {
		e.balance = *opts.Balance
	}
	e.preset = e.balance.preset("normal")
	return e
}

type Options struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	Difficulty  string `json:"difficulty"`
	MaxTurns    int    `json:"max_turns"`
	// Seed reseeds the engine when non-zero.
	Seed int64 `json:"seed"`
}

// NewGame discards any current game and starts a fresh one.
func (e *Engine) NewGame(opts Options) error {
	name := strings.TrimSpace(opts.CompanyName)
	if name == "" {
		name = "Untitled Startup"
	}
	industry := normalizeKey(opts.Industry)
	if industry == "" {
		industry = "saas"
	}
	if _, ok := e.balance.Industries[industry]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIndustry, opts.Industry)
	}
	difficulty := normalizeKey(opts.Difficulty)
	if difficulty == "" {
		difficulty = "normal"
	}
	if _, ok := e.balance.Difficulties[difficulty]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDifficulty, opts.Difficulty)
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = e.balance.MaxTurns
	}
	if opts.Seed != 0 {
		e.rand = NewRand(opts.Seed)
	}

	e.settings = Settings{
		CompanyName: name,
		Industry:    industry,
		Difficulty:  difficulty,
		MaxTurns:    maxTurns,
		Seed:        opts.Seed,
	}
	e.preset = e.balance.preset(difficulty)
	e.state = GameState{Running: true, CurrentTurn: 1, Phase: PhasePlayerDecision}
	e.chains = nil
	e.chainSeq = 0
	e.lastEventTurn = 0
	e.competitors = nil
	e.difficulty = DifficultyState{Multiplier: 1}
	e.turnEvents, e.turnFeatures = nil, nil

	e.company = e.newCompany(name, industry)
	e.market = newMarket(e.balance, e.rand)
	e.startTrend()
	e.hire("developer", e.balance.Roles["developer"].Salary)
	e.spawnCompetitors()

	e.log.Info("new game", "company", name, "industry", industry, "difficulty", difficulty, "max_turns", maxTurns)
	e.notify(fmt.Sprintf("Welcome to %s! You have %s to build something great.", name, money(e.company.Cash)), NotifyInfo)
	return nil
}

func (e *Engine) commandable() error {
	switch {
	case e.state.GameOver:
		return ErrGameOver
	case !e.state.Running || e.company == nil:
		return ErrNotRunning
	}
	return nil
}

// nextPhase returns the phase after p. An unknown phase recovers to the
// player decision phase.
func (e *Engine) nextPhase(p Phase) Phase {
	for i, phase := range phaseOrder {
		if phase == p {
			return phaseOrder[(i+1)%len(phaseOrder)]
		}
	}
	e.log.Warn("unknown turn phase, resetting", "phase", p)
	return PhasePlayerDecision
}

func (e *Engine) runPhase(p Phase) {
	switch p {
	case PhaseAIDecision:
		e.decideCompetitors()
	case PhaseMarketEvents:
		e.updateMarket()
		e.generateEvent()
	case PhaseTurnResolution:
		e.updateCompany()
		e.updateCompetitors()
	}
}

// EndTurn runs the automated phases, emits the turn summary and advances the
// turn counter. A pending event left unanswered expires.
func (e *Engine) EndTurn() (TurnSummary, error) {
	if err := e.commandable(); err != nil {
		return TurnSummary{}, err
	}
	if e.state.Phase != PhasePlayerDecision {
		e.log.Warn("end turn outside player phase, resetting", "phase", e.state.Phase)
		e.state.Phase = PhasePlayerDecision
	}
	e.expirePendingEvent()

	c := e.company
	before := CompanyDigest{Cash: c.Cash, Revenue: c.Revenue, Valuation: c.Valuation, Users: c.Users}
	e.turnEvents, e.turnFeatures = nil, nil

	for p := e.nextPhase(PhasePlayerDecision); p != PhasePlayerDecision; p = e.nextPhase(p) {
		e.state.Phase = p
		e.runPhase(p)
	}

	summary := e.summarize(before)
	e.state.LastSummary = &summary
	e.observer.TurnSummary(summary)

	e.state.CurrentTurn++
	e.state.Phase = e.nextPhase(e.state.Phase)
	e.log.Debug("turn ended", "turn", summary.Turn, "cash", c.Cash, "valuation", c.Valuation, "users", c.Users)

	if !e.state.GameOver {
		e.evaluateDifficulty()
	}
	if e.state.CurrentTurn > e.settings.MaxTurns {
		e.gameOver(ReasonMaxTurns, map[string]any{
			"valuation": c.Valuation,
			"users":     c.Users,
			"equity":    c.Equity.Player,
		})
	}
	return summary, nil
}

func (e *Engine) summarize(before CompanyDigest) TurnSummary {
	c := e.company
	m := e.market
	return TurnSummary{
		Turn: e.state.CurrentTurn,
		Company: CompanyDigest{
			Cash:           c.Cash,
			CashDelta:      c.Cash - before.Cash,
			Revenue:        c.Revenue,
			RevenueDelta:   c.Revenue - before.Revenue,
			Valuation:      c.Valuation,
			ValuationDelta: c.Valuation - before.Valuation,
			Users:          c.Users,
			UsersDelta:     c.Users - before.Users,
			Runway:         c.Runway,
			BurnRate:       c.BurnRate,
		},
		Market: MarketDigest{
			Phase:               m.Cycle.Phase,
			GrowthRate:          m.GrowthRate,
			FundingAvailability: m.FundingAvailability,
			ValuationMultiplier: m.ValuationMultiplier,
			Sentiment:           SentimentDescription(m.SentimentIndex),
		},
		Events:            e.turnEvents,
		CompletedFeatures: e.turnFeatures,
		Competitors:       e.competitorDigest(),
	}
}

// gameOver ends the game once. Later calls are ignored.
func (e *Engine) gameOver(reason string, data map[string]any) {
	if e.state.GameOver {
		return
	}
	e.state.GameOver = true
	e.state.Running = false
	e.state.GameOverReason = reason
	e.state.GameOverData = data
	e.log.Info("game over", "reason", reason, "turn", e.state.CurrentTurn)
	e.observer.GameOver(reason, data)
}

func (e *Engine) notify(msg string, typ NotificationType) {
	n := Notification{Turn: e.state.CurrentTurn, Message: msg, Type: typ}
	e.state.Notifications = append(e.state.Notifications, n)
	if over := len(e.state.Notifications) - maxNotifications; over > 0 {
		e.state.Notifications = append([]Notification(nil), e.state.Notifications[over:]...)
	}
	e.observer.Notification(n)
}

// SetObserver replaces the emission sink, e.g. after a restore.
func (e *Engine) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	e.observer = o
}

func (e *Engine) Running() bool { return e.state.Running && !e.state.GameOver }
func (e *Engine) Settings() Settings { return e.settings }
func (e *Engine) State() GameState { return e.state }
func (e *Engine) Balance() Balance { return e.balance }
func (e *Engine) Registry() *Registry { return e.registry }
func (e *Engine) Turn() int { return e.state.CurrentTurn }
func (e *Engine) Multiplier() float64 { return e.difficulty.Multiplier }
func (e *Engine) Chains() []PendingChainEvent {
	return append([]PendingChainEvent(nil), e.chains...)
}

func (e *Engine) Company() Company {
	if e.company == nil {
		return Company{}
	}
	return *e.company
}

func (e *Engine) Market() MarketState {
	if e.market == nil {
		return MarketState{}
	}
	return *e.market
}

func (e *Engine) Competitors() []Competitor {
	out := make([]Competitor, 0, len(e.competitors))
	for _, c := range e.competitors {
		out = append(out, *c)
	}
	return out
}

// PendingEvent returns the event waiting for a decision, if any.
func (e *Engine) PendingEvent() (Event, bool) {
	if e.state.PendingEvent == "" {
		return Event{}, false
	}
	i, ok := e.findEvent(e.state.PendingEvent)
	if !ok || !e.state.Events[i].Pending() {
		return Event{}, false
	}
	return e.state.Events[i], true
}

// View is a read-only picture of the whole game for presentation layers.
type View struct {
	Settings    Settings        `json:"settings"`
	State       GameState       `json:"state"`
	Company     Company         `json:"company"`
	Market      MarketState     `json:"market"`
	Competitors []Competitor    `json:"competitors"`
	Difficulty  DifficultyState `json:"difficulty"`
}

func (e *Engine) View() View {
	return View{
		Settings:    e.settings,
		State:       e.state,
		Company:     e.Company(),
		Market:      e.Market(),
		Competitors: e.Competitors(),
		Difficulty:  e.difficulty,
	}
}
