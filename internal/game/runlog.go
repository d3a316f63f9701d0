package game

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// RunLog records statistics gathered during one run.
type RunLog struct {
	Seed         int64          `json:"seed"`
	Depth        int            `json:"depth"`
	Turns        int            `json:"turns"`
	Score        int            `json:"score"`
	Killed       map[string]int `json:"killed"` // monster type -> kills by the player
	DamageDealt  int            `json:"damage_dealt"`
	DamageTaken  int            `json:"damage_taken"`
	CauseOfDeath string         `json:"cause_of_death,omitempty"` // monster type that landed the last hit
}

// WriteRunLog writes log as a single JSON line.
func WriteRunLog(w io.Writer, log RunLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode run log: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}

// SaveRunLog appends log to runs.jsonl in the run log directory.
func SaveRunLog(log RunLog) error {
	dir, err := RunLogDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "runs.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteRunLog(f, log)
}

// RunLogDir returns the directory where run logs are stored:
// $XDG_DATA_HOME/dungeoncore, defaulting to ~/.local/share/dungeoncore.
func RunLogDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "dungeoncore"), nil
}
