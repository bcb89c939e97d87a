package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAPIFromEnvPortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TYCOON_DIFFICULTY", "  HARD ")
	t.Setenv("LOG_LEVEL", "DEBUG")
	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr %q", cfg.Addr)
	}
	if cfg.Difficulty != "hard" {
		t.Fatalf("difficulty %q", cfg.Difficulty)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("log level %v", cfg.LogLevel)
	}
	if cfg.MaxTurns != 120 || cfg.SQLitePath != "tycoon.db" {
		t.Fatalf("defaults %+v", cfg)
	}
}

func TestLoadAPIFromEnvUnknownDifficulty(t *testing.T) {
	t.Setenv("TYCOON_DIFFICULTY", "nightmare")
	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Difficulty != "normal" {
		t.Fatalf("difficulty %q", cfg.Difficulty)
	}
}

func TestLoadWorkerFromEnv(t *testing.T) {
	t.Setenv("TYCOON_WORKER_GAMES", "3")
	t.Setenv("TYCOON_WORKER_CONCURRENCY", "0")
	t.Setenv("TYCOON_WORKER_RUN_EVERY", "30m")
	t.Setenv("TYCOON_WORKER_RUN_ONCE", "true")
	cfg, err := LoadWorkerFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Games != 3 || cfg.Concurrency != 1 || cfg.RunEvery != 30*time.Minute || !cfg.RunOnce {
		t.Fatalf("cfg %+v", cfg)
	}

	t.Setenv("TYCOON_WORKER_TURNS", "0")
	if _, err := LoadWorkerFromEnv(); err == nil {
		t.Fatalf("expected error for zero turns")
	}
}

func TestLoadCLIFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TYCOON_API_BASE_URL", "http://localhost:8080/")
	t.Setenv("TYCOON_SAVE_DIR", dir)
	cfg := LoadCLIFromEnv()
	if cfg.APIBaseURL != "http://localhost:8080" || cfg.SaveDir != dir {
		t.Fatalf("cfg %+v", cfg)
	}
}

func TestLoadBalanceMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	doc := `
starting_cash: 2500000
event_base_chance: 0.5
roles:
  developer:
    salary: 12000
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := LoadBalance(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.StartingCash != 2_500_000 || b.EventBaseChance != 0.5 {
		t.Fatalf("overrides not applied: %v %v", b.StartingCash, b.EventBaseChance)
	}
	if b.Roles["developer"].Salary != 12_000 || b.Roles["designer"].Salary != 8_000 {
		t.Fatalf("roles %+v", b.Roles)
	}
	if b.MaxTurns != 120 || len(b.Channels) != 4 {
		t.Fatalf("defaults lost: max_turns=%d channels=%d", b.MaxTurns, len(b.Channels))
	}
}

func TestLoadBalanceRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	if err := os.WriteFile(path, []byte("event_base_chance: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := LoadBalance(path)
	if !errors.Is(err, errInvalidBalance) {
		t.Fatalf("got %v", err)
	}
	if b.EventBaseChance != 0.30 {
		t.Fatalf("defaults not returned: %v", b.EventBaseChance)
	}
}

func TestLoadBalanceEmptyPath(t *testing.T) {
	b, err := LoadBalance("")
	if err != nil || b.StartingCash != 1_000_000 {
		t.Fatalf("got %v %v", b.StartingCash, err)
	}
}
