package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"tycoon/internal/game"
)

type APIConfig struct {
	Addr        string     `env:"TYCOON_API_ADDR" envDefault:":8080"`
	DatabaseURL string     `env:"DATABASE_URL"`
	SQLitePath  string     `env:"TYCOON_SQLITE_PATH" envDefault:"tycoon.db"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	Difficulty  string     `env:"TYCOON_DIFFICULTY" envDefault:"normal"`
	MaxTurns    int        `env:"TYCOON_MAX_TURNS" envDefault:"120"`
	BalanceFile string     `env:"TYCOON_BALANCE_FILE"`
}

type WorkerConfig struct {
	Games       int           `env:"TYCOON_WORKER_GAMES" envDefault:"16"`
	Turns       int           `env:"TYCOON_WORKER_TURNS" envDefault:"120"`
	Concurrency int           `env:"TYCOON_WORKER_CONCURRENCY" envDefault:"4"`
	Seed        int64         `env:"TYCOON_WORKER_SEED" envDefault:"1"`
	Difficulty  string        `env:"TYCOON_DIFFICULTY" envDefault:"normal"`
	Industry    string        `env:"TYCOON_WORKER_INDUSTRY" envDefault:"saas"`
	DatabaseURL string        `env:"DATABASE_URL"`
	SQLitePath  string        `env:"TYCOON_SQLITE_PATH" envDefault:"tycoon.db"`
	BalanceFile string        `env:"TYCOON_BALANCE_FILE"`
	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	RunEvery    time.Duration `env:"TYCOON_WORKER_RUN_EVERY" envDefault:"1h"`
	RunOnce     bool          `env:"TYCOON_WORKER_RUN_ONCE" envDefault:"false"`
}

type CLIConfig struct {
	APIBaseURL string `env:"TYCOON_API_BASE_URL"`
	SaveDir    string `env:"TYCOON_SAVE_DIR"`
}

func LoadAPIFromEnv() (APIConfig, error) {
	cfg, err := env.ParseAs[APIConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Addr = port
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.Difficulty = normalizeDifficulty(cfg.Difficulty)
	if cfg.MaxTurns <= 0 {
		return cfg, fmt.Errorf("TYCOON_MAX_TURNS must be positive")
	}
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		return cfg, fmt.Errorf("DATABASE_URL or TYCOON_SQLITE_PATH is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg, err := env.ParseAs[WorkerConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.Difficulty = normalizeDifficulty(cfg.Difficulty)
	cfg.Industry = strings.ToLower(strings.TrimSpace(cfg.Industry))
	if cfg.Games <= 0 || cfg.Turns <= 0 {
		return cfg, fmt.Errorf("worker games and turns must be positive")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.RunEvery <= 0 {
		cfg.RunEvery = time.Hour
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	cfg, err := env.ParseAs[CLIConfig]()
	if err != nil {
		cfg = CLIConfig{}
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.SaveDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.SaveDir = filepath.Join(home, ".tycoon")
		} else {
			cfg.SaveDir = ".tycoon"
		}
	}
	return cfg
}

func normalizeDifficulty(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "easy", "normal", "hard":
		return v
	default:
		return "normal"
	}
}

// LoadBalance reads a YAML file of balance overrides on top of the defaults.
// An empty path returns the defaults.
func LoadBalance(path string) (game.Balance, error) {
	b := game.DefaultBalance()
	if strings.TrimSpace(path) == "" {
		return b, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read balance file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return game.DefaultBalance(), fmt.Errorf("parse balance file: %w", err)
	}
	if err := validateBalance(b); err != nil {
		return game.DefaultBalance(), err
	}
	return b, nil
}

var errInvalidBalance = errors.New("invalid balance")

func validateBalance(b game.Balance) error {
	switch {
	case b.StartingCash <= 0:
		return fmt.Errorf("%w: starting_cash must be positive", errInvalidBalance)
	case b.MaxTurns <= 0:
		return fmt.Errorf("%w: max_turns must be positive", errInvalidBalance)
	case len(b.Channels) == 0:
		return fmt.Errorf("%w: at least one channel is required", errInvalidBalance)
	case len(b.Rounds) == 0:
		return fmt.Errorf("%w: at least one funding round is required", errInvalidBalance)
	case b.EventBaseChance < 0 || b.EventBaseChance > 1:
		return fmt.Errorf("%w: event_base_chance must be within [0,1]", errInvalidBalance)
	}
	if _, ok := b.Difficulties["normal"]; !ok {
		return fmt.Errorf("%w: the normal difficulty preset is required", errInvalidBalance)
	}
	if _, ok := b.Roles["developer"]; !ok {
		return fmt.Errorf("%w: the developer role is required", errInvalidBalance)
	}
	for _, name := range []string{"simple", "medium", "complex"} {
		if _, ok := b.Complexities[name]; !ok {
			return fmt.Errorf("%w: complexity %q is required", errInvalidBalance, name)
		}
	}
	return nil
}
