package journal

import (
	"os"
	"path/filepath"
	"testing"

	"tycoon/internal/game"
)

func TestLoadMissingFile(t *testing.T) {
	entries, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty journal, got %d", len(entries))
	}
}

func TestJournalRecordsEmissions(t *testing.T) {
	path := Path(filepath.Join(t.TempDir(), "save"))
	j, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	j.Notification(game.Notification{Turn: 1, Message: "Hired Ada", Type: game.NotifyInfo})
	j.EventModal(game.Event{ID: "2:market_boom", Title: "Market Boom", Turn: 2})
	j.TurnSummary(game.TurnSummary{Turn: 2})
	j.GameOver(game.ReasonBankruptcy, map[string]any{"cash": -5})
	if err := j.Err(); err != nil {
		t.Fatalf("journal error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode got %v", info.Mode().Perm())
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	entries := reopened.Entries()
	if len(entries) != 4 {
		t.Fatalf("entries got %d want 4", len(entries))
	}
	wantKinds := []Kind{KindNotification, KindEvent, KindTurnSummary, KindGameOver}
	for i, k := range wantKinds {
		if entries[i].Kind != k {
			t.Fatalf("entry %d kind got %s want %s", i, entries[i].Kind, k)
		}
	}
	if entries[3].Turn != 2 || entries[3].Message != game.ReasonBankruptcy {
		t.Fatalf("game over entry got %+v", entries[3])
	}
	if string(entries[3].Data) != `{"cash":-5}` {
		t.Fatalf("game over data got %s", entries[3].Data)
	}
	if tail := reopened.Tail(2); len(tail) != 2 || tail[0].Kind != KindTurnSummary {
		t.Fatalf("tail got %+v", tail)
	}
}

func TestJournalCapsEntries(t *testing.T) {
	j, err := Open(Path(t.TempDir()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < maxEntries+20; i++ {
		j.Notification(game.Notification{Turn: i + 1, Message: "tick"})
	}
	entries := j.Entries()
	if len(entries) != maxEntries {
		t.Fatalf("entries got %d want %d", len(entries), maxEntries)
	}
	if entries[0].Turn != 21 {
		t.Fatalf("oldest entry turn got %d want 21", entries[0].Turn)
	}

	if err := j.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(j.Entries()) != 0 {
		t.Fatalf("reset kept entries")
	}
}
