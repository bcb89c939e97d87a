package game

// Observer receives everything the engine emits. Presentation layers (CLI,
// HTTP stream, journals) implement it; the engine never holds any other
// reference to them.
type Observer interface {
	Notification(n Notification)
	EventModal(ev Event)
	TurnSummary(s TurnSummary)
	GameOver(reason string, data map[string]any)
}

type NopObserver struct{}

func (NopObserver) Notification(Notification)       {}
func (NopObserver) EventModal(Event)                {}
func (NopObserver) TurnSummary(TurnSummary)         {}
func (NopObserver) GameOver(string, map[string]any) {}

// Observers fans every emission out in order.
type Observers []Observer

func (o Observers) Notification(n Notification) {
	for _, obs := range o {
		obs.Notification(n)
	}
}

func (o Observers) EventModal(ev Event) {
	for _, obs := range o {
		obs.EventModal(ev)
	}
}

func (o Observers) TurnSummary(s TurnSummary) {
	for _, obs := range o {
		obs.TurnSummary(s)
	}
}

func (o Observers) GameOver(reason string, data map[string]any) {
	for _, obs := range o {
		obs.GameOver(reason, data)
	}
}

type GameOverEmission struct {
	Reason string         `json:"reason"`
	Data   map[string]any `json:"data,omitempty"`
}

// Recorder keeps every emission in memory.
type Recorder struct {
	Notifications []Notification
	Events        []Event
	Summaries     []TurnSummary
	GameOvers     []GameOverEmission
}

func (r *Recorder) Notification(n Notification) {
	r.Notifications = append(r.Notifications, n)
}

func (r *Recorder) EventModal(ev Event) {
	r.Events = append(r.Events, ev)
}

func (r *Recorder) TurnSummary(s TurnSummary) {
	r.Summaries = append(r.Summaries, s)
}

func (r *Recorder) GameOver(reason string, data map[string]any) {
	r.GameOvers = append(r.GameOvers, GameOverEmission{Reason: reason, Data: data})
}
