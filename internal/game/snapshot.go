package game

import (
	"encoding/json"
	"errors"
	"time"
)

type Snapshot struct {
	Version     string          `json:"version"`
	Timestamp   time.Time       `json:"timestamp"`
	Settings    Settings        `json:"settings"`
	State       GameState       `json:"state"`
	Company     *Company        `json:"company"`
	Market      *MarketState    `json:"market"`
	Competitors []*Competitor   `json:"competitors"`
	Difficulty  DifficultyState `json:"difficulty"`
	Events      SnapshotEvents  `json:"events"`
}

type SnapshotEvents struct {
	Pending       []PendingChainEvent `json:"pending"`
	ChainSeq      int                 `json:"chain_seq"`
	LastEventTurn int                 `json:"last_event_turn"`
}

var errCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot serializes the game between turns.
func (e *Engine) Snapshot() ([]byte, error) {
	if e.company == nil || e.market == nil {
		return nil, ErrNotRunning
	}
	return json.Marshal(Snapshot{
		Version:     Version,
		Timestamp:   e.now().UTC(),
		Settings:    e.settings,
		State:       e.state,
		Company:     e.company,
		Market:      e.market,
		Competitors: e.competitors,
		Difficulty:  e.difficulty,
		Events: SnapshotEvents{
			Pending:       e.chains,
			ChainSeq:      e.chainSeq,
			LastEventTurn: e.lastEventTurn,
		},
	})
}

func decodeSnapshot(raw []byte) (*Snapshot, error) {
	if len(raw) == 0 {
		return nil, errCorruptSnapshot
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	if snap.Company == nil || snap.Market == nil || snap.State.CurrentTurn < 1 {
		return nil, errCorruptSnapshot
	}
	return &snap, nil
}

// Restore replaces the current game with a saved one. On any decode failure
// it returns false and the current game is left as it was.
//
// A seeded game is reseeded with Seed+CurrentTurn, so every restore of the
// same save plays out identically. It does not continue the random sequence
// of the run that wrote the save.
func (e *Engine) Restore(raw []byte) bool {
	snap, err := decodeSnapshot(raw)
	if err != nil {
		e.log.Warn("restore failed", "err", err)
		return false
	}
	if snap.Version != Version {
		e.log.Warn("snapshot version mismatch", "snapshot", snap.Version, "engine", Version)
	}

	c := snap.Company
	if c.Equity.Investors == nil {
		c.Equity.Investors = map[string]float64{}
	}
	if c.Marketing.Channels == nil {
		c.Marketing.Channels = map[string]*ChannelSpend{}
	}
	if snap.Market.Industries == nil {
		snap.Market.Industries = map[string]*IndustryMetrics{}
	}
	for _, rival := range snap.Competitors {
		if rival.Equity.Investors == nil {
			rival.Equity.Investors = map[string]float64{}
		}
	}
	if snap.Difficulty.Multiplier <= 0 {
		snap.Difficulty.Multiplier = 1
	}
	if snap.State.Phase != PhasePlayerDecision {
		snap.State.Phase = PhasePlayerDecision
	}

	e.settings = snap.Settings
	e.preset = e.balance.preset(snap.Settings.Difficulty)
	e.state = snap.State
	e.company = c
	e.market = snap.Market
	e.competitors = snap.Competitors
	e.difficulty = snap.Difficulty
	e.chains = snap.Events.Pending
	e.chainSeq = snap.Events.ChainSeq
	e.lastEventTurn = snap.Events.LastEventTurn
	e.turnEvents, e.turnFeatures = nil, nil
	if snap.Settings.Seed != 0 {
		e.rand = NewRand(snap.Settings.Seed + int64(snap.State.CurrentTurn))
	}
	e.log.Info("game restored", "company", c.Name, "turn", snap.State.CurrentTurn)
	return true
}
