package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Session remembers which remote game the CLI is playing.
type Session struct {
	APIBaseURL string `json:"api_base_url"`
	GameID     string `json:"game_id"`
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o700)
}

func sessionPath(dir string) string {
	return filepath.Join(dir, "remote.json")
}

func SaveSession(dir string, s Session) error {
	if err := ensureDir(dir); err != nil {
		return err
	}
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(sessionPath(dir), body, 0o600)
}

func LoadSession(dir string) (Session, error) {
	body, err := os.ReadFile(sessionPath(dir))
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(s.GameID) == "" {
		return Session{}, fmt.Errorf("no game id found in session")
	}
	return s, nil
}

func ClearSession(dir string) error {
	path := sessionPath(dir)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return os.Remove(path)
}
