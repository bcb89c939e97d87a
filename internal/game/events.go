package game

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type EventCategory string

const (
	CategoryMarket      EventCategory = "market"
	CategoryCompetitor  EventCategory = "competitor"
	CategoryInternal    EventCategory = "internal"
	CategoryOpportunity EventCategory = "opportunity"
	CategoryGlobal      EventCategory = "global"
	CategoryRiskReward  EventCategory = "risk_reward"
	CategoryChain       EventCategory = "chain"
	CategoryEndgame     EventCategory = "endgame"
)

type EventType string

const (
	EventPositive    EventType = "positive"
	EventNegative    EventType = "negative"
	EventNeutral     EventType = "neutral"
	EventOpportunity EventType = "opportunity"
	EventRiskReward  EventType = "risk_reward"
)

// CompanyEffects are applied to the player company. Deltas add, multipliers
// multiply when non-zero, and Quality, Morale and Brand are clamped to [0,1].
type CompanyEffects struct {
	Cash      float64 `json:"cash,omitempty"`
	Users     float64 `json:"users,omitempty"`
	Valuation float64 `json:"valuation,omitempty"`
	Revenue   float64 `json:"revenue,omitempty"`
	Churn     float64 `json:"churn,omitempty"`

	CashMult      float64 `json:"cash_mult,omitempty"`
	UsersMult     float64 `json:"users_mult,omitempty"`
	ValuationMult float64 `json:"valuation_mult,omitempty"`
	RevenueMult   float64 `json:"revenue_mult,omitempty"`

	Quality float64 `json:"quality,omitempty"`
	Morale  float64 `json:"morale,omitempty"`
	Brand   float64 `json:"brand,omitempty"`

	// Equity is a change to the player's share. Only negative values apply;
	// the released share goes to EquityHolder.
	Equity       float64 `json:"equity,omitempty"`
	EquityHolder string  `json:"equity_holder,omitempty"`
}

type MarketEffects struct {
	ValuationMultiplier float64 `json:"valuation_multiplier,omitempty"`
	FundingAvailability float64 `json:"funding_availability,omitempty"`
	GrowthRate          float64 `json:"growth_rate,omitempty"`
}

type Effects struct {
	Company CompanyEffects `json:"company"`
	Market  MarketEffects  `json:"market"`
	Special SpecialEffect  `json:"special,omitempty"`
}

type ChainLink struct {
	EventID     string  `json:"event_id"`
	Delay       int     `json:"delay"`
	Probability float64 `json:"probability"`
}

type Choice struct {
	Text    string     `json:"text"`
	Effects Effects    `json:"effects"`
	Chain   *ChainLink `json:"chain,omitempty"`
}

type EventTemplate struct {
	ID           string
	Title        string
	Description  string
	Type         EventType
	Category     EventCategory
	Industry     string
	MinValuation float64
	MaxValuation float64
	MinUsers     int64
	MaxUsers     int64
	MinRevenue   float64
	MaxRevenue   float64
	MinTurn      int
	ChainOnly    bool
	Choices      []Choice
}

// Event is a surfaced instance of a template with its numbers already
// scaled to the company's size tier.
type Event struct {
	ID            string        `json:"id"`
	TemplateID    string        `json:"template_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Type          EventType     `json:"type"`
	Category      EventCategory `json:"category"`
	Turn          int           `json:"turn"`
	Tier          int           `json:"tier"`
	Choices       []Choice      `json:"choices"`
	Resolved      bool          `json:"resolved"`
	Expired       bool          `json:"expired"`
	Choice        int           `json:"choice"`
	ParentEventID string        `json:"parent_event_id,omitempty"`
}

func (ev Event) Pending() bool {
	return !ev.Resolved && !ev.Expired
}

type PendingChainEvent struct {
	EventID       string `json:"event_id"`
	TriggerTurn   int    `json:"trigger_turn"`
	ParentEventID string `json:"parent_event_id"`
	ParentChoice  int    `json:"parent_choice"`
	Seq           int    `json:"seq"`
}

type sizeTier struct {
	valuation []float64
	users     []float64
	revenue   []float64
}

var tierThresholds = sizeTier{
	valuation: []float64{10e6, 50e6, 100e6, 500e6, 1e9},
	users:     []float64{1e3, 10e3, 100e3, 1e6, 10e6},
	revenue:   []float64{100e3, 1e6, 10e6, 50e6, 100e6},
}

var (
	userScales      = []float64{1, 10, 50, 200, 1000, 5000}
	cashScales      = []float64{1, 5, 10, 20, 50, 100}
	valuationScales = []float64{1, 3, 5, 10, 20, 50}
	teamPhrases     = []string{"small team", "growing team", "department", "division", "organization", "global workforce"}
)

func tierOf(v float64, thresholds []float64) int {
	tier := 1
	for _, t := range thresholds {
		if v >= t {
			tier++
		}
	}
	return tier
}

// companyTier is the largest of the valuation, user and annualized revenue
// tiers, from 1 to 6.
func companyTier(c *Company) int {
	return max(
		tierOf(c.Valuation, tierThresholds.valuation),
		tierOf(float64(c.Users), tierThresholds.users),
		tierOf(c.Revenue*12, tierThresholds.revenue),
	)
}

type scale struct {
	Users     float64
	Cash      float64
	Valuation float64
}

func scaleFor(tier int) scale {
	i := min(max(tier, 1), len(cashScales)) - 1
	return scale{Users: userScales[i], Cash: cashScales[i], Valuation: valuationScales[i]}
}

var printer = message.NewPrinter(language.English)

// phraseReplacer rewrites amounts in event text for the given tier. The
// replacement is single-pass so substituted output is never matched again.
func phraseReplacer(tier int) *strings.Replacer {
	s := scaleFor(tier)
	users := func(n float64) string { return printer.Sprintf("%d users", int64(n*s.Users)) }
	dollars := func(n float64) string { return printer.Sprintf("$%d", int64(n*s.Cash)) }
	return strings.NewReplacer(
		"1,000 users", users(1000),
		"100 users", users(100),
		"$100,000", dollars(100_000),
		"$50,000", dollars(50_000),
		"$10,000", dollars(10_000),
		"small team", teamPhrases[min(max(tier, 1), len(teamPhrases))-1],
	)
}

func scaleEffects(fx Effects, s scale) Effects {
	c := &fx.Company
	c.Users *= s.Users
	c.Cash *= s.Cash
	c.Revenue *= s.Cash
	c.Valuation *= s.Valuation
	return fx
}

// eligible reports whether a template may be drawn at random for the company.
func (t *EventTemplate) eligible(c *Company, turn int) bool {
	switch {
	case t.ChainOnly:
		return false
	case t.Industry != "" && t.Industry != c.Industry:
		return false
	case t.MinValuation > 0 && c.Valuation < t.MinValuation:
		return false
	case t.MaxValuation > 0 && c.Valuation > t.MaxValuation:
		return false
	case t.MinUsers > 0 && c.Users < t.MinUsers:
		return false
	case t.MaxUsers > 0 && c.Users > t.MaxUsers:
		return false
	case t.MinRevenue > 0 && c.Revenue < t.MinRevenue:
		return false
	case t.MaxRevenue > 0 && c.Revenue > t.MaxRevenue:
		return false
	case turn < t.MinTurn:
		return false
	}
	return true
}

func (e *Engine) occurred(templateID string) bool {
	for _, ev := range e.state.Events {
		if ev.TemplateID == templateID {
			return true
		}
	}
	return false
}

// generateEvent surfaces at most one event for the current turn. A chain
// event that is due always wins over random generation.
func (e *Engine) generateEvent() *Event {
	turn := e.state.CurrentTurn
	if link, ok := e.dueChain(turn); ok {
		ev, err := e.registry.Instantiate(link.EventID, turn, companyTier(e.company))
		if err != nil {
			e.log.Warn("chain event dropped", "event", link.EventID, "err", err)
			return nil
		}
		ev.ParentEventID = link.ParentEventID
		return e.surface(ev)
	}

	if e.lastEventTurn > 0 && turn-e.lastEventTurn < e.balance.EventSpacing {
		return nil
	}
	chance := e.balance.EventBaseChance * e.preset.EventFrequency
	if e.rand.Float64() >= chance {
		return nil
	}
	category, ok := e.pickCategory(turn)
	if !ok {
		return nil
	}
	var pool []string
	for _, id := range e.registry.Category(category) {
		tpl, _ := e.registry.template(id)
		if tpl.eligible(e.company, turn) && !e.occurred(id) {
			pool = append(pool, id)
		}
	}
	if len(pool) == 0 {
		e.log.Debug("no eligible events", "category", category, "turn", turn)
		return nil
	}
	ev, err := e.registry.Instantiate(pick(e.rand, pool), turn, companyTier(e.company))
	if err != nil {
		e.log.Warn("event dropped", "err", err)
		return nil
	}
	e.lastEventTurn = turn
	return e.surface(ev)
}

func (e *Engine) pickCategory(turn int) (EventCategory, bool) {
	var open []CategorySpec
	total := 0.0
	for _, c := range e.balance.Categories {
		if c.MinTurn <= turn && c.Weight > 0 {
			open = append(open, c)
			total += c.Weight
		}
	}
	if len(open) == 0 {
		return "", false
	}
	roll := e.rand.Float64() * total
	for _, c := range open {
		roll -= c.Weight
		if roll < 0 {
			return c.ID, true
		}
	}
	return open[len(open)-1].ID, true
}

// dueChain consumes the earliest chain entry due at or before turn. Other
// entries due now move to the next turn so only one event surfaces.
func (e *Engine) dueChain(turn int) (PendingChainEvent, bool) {
	var due []int
	for i, p := range e.chains {
		if p.TriggerTurn <= turn {
			due = append(due, i)
		}
	}
	if len(due) == 0 {
		return PendingChainEvent{}, false
	}
	slices.SortFunc(due, func(a, b int) int {
		return cmp.Or(
			cmp.Compare(e.chains[a].TriggerTurn, e.chains[b].TriggerTurn),
			cmp.Compare(e.chains[a].Seq, e.chains[b].Seq),
		)
	})
	fired := e.chains[due[0]]
	for _, i := range due[1:] {
		e.chains[i].TriggerTurn = turn + 1
	}
	e.chains = slices.Delete(e.chains, due[0], due[0]+1)
	return fired, true
}

func (e *Engine) scheduleChain(link ChainLink, parent *Event, choice int) {
	if link.EventID == "" {
		return
	}
	if e.rand.Float64() > link.Probability {
		return
	}
	e.chainSeq++
	p := PendingChainEvent{
		EventID:       link.EventID,
		TriggerTurn:   e.state.CurrentTurn + max(link.Delay, 1),
		ParentEventID: parent.ID,
		ParentChoice:  choice,
		Seq:           e.chainSeq,
	}
	e.chains = append(e.chains, p)
	e.log.Debug("chain event scheduled", "event", p.EventID, "trigger_turn", p.TriggerTurn)
}

// surface records the event as pending and hands it to the observer.
func (e *Engine) surface(ev Event) *Event {
	e.state.Events = append(e.state.Events, ev)
	e.state.PendingEvent = ev.ID
	e.turnEvents = append(e.turnEvents, ev)
	e.notify("Event: "+ev.Title, NotifyEvent)
	e.observer.EventModal(ev)
	return &e.state.Events[len(e.state.Events)-1]
}

func (e *Engine) findEvent(id string) (int, bool) {
	for i := range e.state.Events {
		if e.state.Events[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (e *Engine) expirePendingEvent() {
	if e.state.PendingEvent == "" {
		return
	}
	if i, ok := e.findEvent(e.state.PendingEvent); ok && e.state.Events[i].Pending() {
		e.state.Events[i].Expired = true
		e.notify("Event expired without a decision: "+e.state.Events[i].Title, NotifyWarning)
	}
	e.state.PendingEvent = ""
}

// HandleEventChoice applies the chosen option of a surfaced event.
func (e *Engine) HandleEventChoice(eventID string, choice int) (Result, error) {
	if err := e.commandable(); err != nil {
		return rejected(err)
	}
	i, ok := e.findEvent(eventID)
	if !ok {
		return rejected(fmt.Errorf("%w: %s", ErrUnknownEvent, eventID))
	}
	ev := &e.state.Events[i]
	switch {
	case ev.Resolved:
		return rejected(ErrEventResolved)
	case ev.Expired:
		return rejected(ErrEventExpired)
	case choice < 0 || choice >= len(ev.Choices):
		return rejected(fmt.Errorf("%w: %d", ErrInvalidChoice, choice))
	}
	ch := ev.Choices[choice]
	if !ch.Effects.Special.Valid() {
		return rejected(fmt.Errorf("%w: %q", ErrUnknownSpecial, ch.Effects.Special))
	}

	ev.Resolved = true
	ev.Choice = choice
	if e.state.PendingEvent == ev.ID {
		e.state.PendingEvent = ""
	}
	e.state.EventHistory = append(e.state.EventHistory, EventRecord{
		EventID: ev.TemplateID,
		Turn:    e.state.CurrentTurn,
		Choice:  choice,
	})
	resolved := *ev

	e.applyEffects(ch.Effects, resolved.Tier)
	if ch.Chain != nil {
		e.scheduleChain(*ch.Chain, &resolved, choice)
	}
	e.log.Info("event resolved", "event", resolved.TemplateID, "choice", choice, "turn", e.state.CurrentTurn)

	res := applied()
	res.Event = &resolved
	return res, nil
}

func (e *Engine) applyEffects(fx Effects, tier int) {
	c := e.company
	ce := fx.Company

	c.Cash += ce.Cash
	c.Users += floorUsers(ce.Users)
	c.Valuation += ce.Valuation
	c.Revenue += ce.Revenue
	if ce.CashMult != 0 {
		c.Cash *= ce.CashMult
	}
	if ce.UsersMult != 0 {
		c.Users = floorUsers(float64(c.Users) * ce.UsersMult)
	}
	if ce.ValuationMult != 0 {
		c.Valuation *= ce.ValuationMult
	}
	if ce.RevenueMult != 0 {
		c.Revenue *= ce.RevenueMult
	}
	c.Valuation = max(c.Valuation, minValuation)
	c.Revenue = max(c.Revenue, 0)
	c.ChurnRate = clampChurn(c.ChurnRate + ce.Churn)
	c.Product.Quality = clamp01(c.Product.Quality + ce.Quality)
	c.Team.Morale = clamp01(c.Team.Morale + ce.Morale)
	c.Marketing.Brand = clamp01(c.Marketing.Brand + ce.Brand)
	if ce.Equity < 0 {
		e.releaseEquity(-ce.Equity, ce.EquityHolder)
	}

	m := e.market
	me := fx.Market
	m.ValuationMultiplier = clamp(m.ValuationMultiplier+me.ValuationMultiplier, 0.5, 2)
	m.FundingAvailability = clamp(m.FundingAvailability+me.FundingAvailability, 0.1, 2)
	m.GrowthRate = clamp(m.GrowthRate+me.GrowthRate, -0.1, 0.5)

	if fx.Special != SpecialNone {
		if err := e.applySpecial(fx.Special, tier); err != nil {
			e.log.Error("special effect failed", "special", fx.Special, "err", err)
		}
	}
}

const defaultEquityHolder = "Employee Option Pool"

// releaseEquity moves up to share of the player's equity to holder and
// returns the amount moved.
func (e *Engine) releaseEquity(share float64, holder string) float64 {
	eq := &e.company.Equity
	share = min(share, eq.Player)
	if share <= 0 {
		return 0
	}
	if holder == "" {
		holder = defaultEquityHolder
	}
	if eq.Investors == nil {
		eq.Investors = make(map[string]float64)
	}
	eq.Player -= share
	eq.Investors[holder] += share
	return share
}

// Registry is the immutable set of event templates.
type Registry struct {
	templates  map[string]EventTemplate
	byCategory map[EventCategory][]string
}

func NewRegistry(templates []EventTemplate) *Registry {
	r := &Registry{
		templates:  make(map[string]EventTemplate, len(templates)),
		byCategory: make(map[EventCategory][]string),
	}
	for _, t := range templates {
		r.templates[t.ID] = cloneTemplate(t)
		r.byCategory[t.Category] = append(r.byCategory[t.Category], t.ID)
	}
	return r
}

func (r *Registry) template(id string) (*EventTemplate, bool) {
	t, ok := r.templates[id]
	if !ok {
		return nil, false
	}
	return &t, true
}

// Template returns a copy the caller may modify.
func (r *Registry) Template(id string) (EventTemplate, bool) {
	t, ok := r.templates[id]
	if !ok {
		return EventTemplate{}, false
	}
	return cloneTemplate(t), true
}

func (r *Registry) Category(c EventCategory) []string {
	return slices.Clone(r.byCategory[c])
}

func (r *Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r.templates))
}

// Instantiate builds an owned event from a template with every amount scaled
// once for tier.
func (r *Registry) Instantiate(id string, turn, tier int) (Event, error) {
	t, ok := r.templates[id]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}
	tier = min(max(tier, 1), len(cashScales))
	s := scaleFor(tier)
	text := phraseReplacer(tier)
	ev := Event{
		ID:          fmt.Sprintf("%d:%s", turn, t.ID),
		TemplateID:  t.ID,
		Title:       t.Title,
		Description: text.Replace(t.Description),
		Type:        t.Type,
		Category:    t.Category,
		Turn:        turn,
		Tier:        tier,
		Choice:      -1,
		Choices:     make([]Choice, len(t.Choices)),
	}
	for i, ch := range t.Choices {
		ev.Choices[i] = Choice{
			Text:    text.Replace(ch.Text),
			Effects: scaleEffects(ch.Effects, s),
		}
		if ch.Chain != nil {
			link := *ch.Chain
			ev.Choices[i].Chain = &link
		}
	}
	return ev, nil
}

func cloneTemplate(t EventTemplate) EventTemplate {
	t.Choices = slices.Clone(t.Choices)
	for i := range t.Choices {
		if t.Choices[i].Chain != nil {
			link := *t.Choices[i].Chain
			t.Choices[i].Chain = &link
		}
	}
	return t
}
