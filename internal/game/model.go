package game

import (
	"errors"
	"math"
	mathrand "math/rand"
)

const (
	Version = "0.1.0"

	FounderID = "founder"

	maxNotifications = 50
	maxDecisions     = 5
	channelWindow    = 10
	minValuation     = 500_000
	competitorFloor  = 300_000
)

var (
	ErrNotRunning        = errors.New("no game is running")
	ErrGameOver          = errors.New("game is over")
	ErrUnknownChannel    = errors.New("unknown marketing channel")
	ErrUnknownRole       = errors.New("unknown employee role")
	ErrUnknownEmployee   = errors.New("unknown employee")
	ErrUnknownComplexity = errors.New("unknown feature complexity")
	ErrUnknownRound      = errors.New("unknown funding round")
	ErrUnknownIndustry   = errors.New("unknown industry")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownEvent      = errors.New("unknown event")
	ErrUnknownSpecial    = errors.New("unknown special effect")
	ErrInvalidChoice     = errors.New("invalid event choice")
	ErrEventResolved     = errors.New("event already resolved")
	ErrEventExpired      = errors.New("event expired")
	ErrInvalidAmount     = errors.New("amount must be >= 0")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRoundUnavailable  = errors.New("funding round not available at current valuation")
	ErrNoEquity          = errors.New("no equity left to sell")
)

type Outcome string

const (
	OutcomeApplied    Outcome = "applied"
	OutcomeFailedRoll Outcome = "failed_roll"
	OutcomeRejected   Outcome = "rejected"
)

// Result is returned by every player command. A rejected result always comes
// with a non-nil error and means no state was touched.
type Result struct {
	Success  bool           `json:"success"`
	Outcome  Outcome        `json:"outcome"`
	Reason   string         `json:"reason,omitempty"`
	Amount   float64        `json:"amount,omitempty"`
	Employee *Employee      `json:"employee,omitempty"`
	Feature  *Feature       `json:"feature,omitempty"`
	Funding  *FundingRecord `json:"funding,omitempty"`
	Event    *Event         `json:"event,omitempty"`
}

func applied() Result {
	return Result{Success: true, Outcome: OutcomeApplied}
}

func rejected(err error) (Result, error) {
	return Result{Outcome: OutcomeRejected, Reason: err.Error()}, err
}

func failedRoll(reason string) Result {
	return Result{Outcome: OutcomeFailedRoll, Reason: reason}
}

// Rand is the only source of nondeterminism in the engine.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

func NewRand(seed int64) Rand {
	return mathrand.New(mathrand.NewSource(seed))
}

func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// intBetween returns an int in [lo, hi].
func intBetween(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

func pick[T any](r Rand, items []T) T {
	return items[r.Intn(len(items))]
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clampChurn(v float64) float64 {
	return clamp(v, 0.01, 0.5)
}

func floorUsers(v float64) int64 {
	if v <= 0 {
		return int64(math.Ceil(v))
	}
	return int64(math.Floor(v))
}
