// Package prefs handles TradePost user preferences persistence.
// Preferences are stored next to the session files as TOML.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Sort orders for the catalog view.
const (
	SortNone = "none"
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Prefs holds the catalog view preferences that survive restarts.
type Prefs struct {
	SortOrder string `toml:"sort_order"`
	Category  string `toml:"category"` // "" means all categories
}

// Default returns the out-of-the-box preferences.
func Default() Prefs {
	return Prefs{SortOrder: SortNone}
}

// Load reads preferences from path, falling back to defaults when the
// file is missing or unreadable.
func Load(path string) Prefs {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Default()
	}
	switch p.SortOrder {
	case SortNone, SortAsc, SortDesc:
	default:
		p.SortOrder = SortNone
	}
	return p
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("prefs.Save: create dir: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("prefs.Save: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("prefs.Save: write: %w", err)
	}
	return nil
}

// Remove deletes the preferences file. Missing files are fine.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("prefs.Remove: %w", err)
	}
	return nil
}
