// Package journal keeps a local, append-only record of everything a game
// emitted so the CLI can show it again later.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tycoon/internal/game"
)

const (
	FileName   = "journal.json"
	maxEntries = 500
)

type Kind string

const (
	KindNotification Kind = "notification"
	KindEvent        Kind = "event"
	KindTurnSummary  Kind = "turn_summary"
	KindGameOver     Kind = "game_over"
)

type Entry struct {
	Kind    Kind            `json:"kind"`
	Turn    int             `json:"turn"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	At      time.Time       `json:"at"`
}

func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Entry{}, nil
	}
	var out []Entry
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode journal: %w", err)
	}
	return out, nil
}

func Save(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Journal is a game.Observer that appends every emission to a file. Write
// errors cannot be returned through the observer, so the first one is kept
// and reported by Err.
type Journal struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	entries []Entry
	turn    int
	err     error
}

// Open loads the journal at path, starting empty when it does not exist.
func Open(path string) (*Journal, error) {
	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	j := &Journal{path: path, now: time.Now, entries: entries}
	if n := len(entries); n > 0 {
		j.turn = entries[n-1].Turn
	}
	return j, nil
}

func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

// Tail returns the last n entries.
func (j *Journal) Tail(n int) []Entry {
	all := j.Entries()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Reset drops every entry, for a new game.
func (j *Journal) Reset() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = []Entry{}
	j.turn = 0
	j.err = nil
	return Save(j.path, j.entries)
}

func (j *Journal) Notification(n game.Notification) {
	j.push(Entry{Kind: KindNotification, Turn: n.Turn, Message: n.Message}, nil)
}

func (j *Journal) EventModal(ev game.Event) {
	j.push(Entry{Kind: KindEvent, Turn: ev.Turn, Message: ev.Title}, ev)
}

func (j *Journal) TurnSummary(s game.TurnSummary) {
	j.push(Entry{Kind: KindTurnSummary, Turn: s.Turn, Message: fmt.Sprintf("turn %d ended", s.Turn)}, s)
}

func (j *Journal) GameOver(reason string, data map[string]any) {
	j.push(Entry{Kind: KindGameOver, Message: reason}, data)
}

func (j *Journal) push(e Entry, data any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			j.keep(err)
			return
		}
		e.Data = raw
	}
	// game over carries no turn of its own
	if e.Turn == 0 {
		e.Turn = j.turn
	}
	j.turn = e.Turn
	e.At = j.now().UTC()
	j.entries = append(j.entries, e)
	if len(j.entries) > maxEntries {
		j.entries = j.entries[len(j.entries)-maxEntries:]
	}
	j.keep(Save(j.path, j.entries))
}

func (j *Journal) keep(err error) {
	if err != nil && j.err == nil {
		j.err = fmt.Errorf("write journal: %w", err)
	}
}
