package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if p.SortOrder != SortNone {
		t.Errorf("SortOrder = %q, want %q", p.SortOrder, SortNone)
	}
	if p.Category != "" {
		t.Errorf("Category = %q, want empty", p.Category)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	want := Prefs{SortOrder: SortAsc, Category: "Manga"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got := Load(path)
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("not valid toml ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Load(path); got != Default() {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestLoadUnknownSortOrderFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("sort_order = \"sideways\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Load(path).SortOrder; got != SortNone {
		t.Errorf("SortOrder = %q, want fallback to %q", got, SortNone)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if err := Remove(path); err != nil {
		t.Errorf("Remove() of missing file error: %v", err)
	}
}
