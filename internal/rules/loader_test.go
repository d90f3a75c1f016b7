package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	rs, err := NewLoader("").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := domain.DefaultRuleset()
	if rs.Validation != def.Validation {
		t.Errorf("Validation = %+v, want defaults %+v", rs.Validation, def.Validation)
	}
	if len(rs.Holidays) != len(def.Holidays) {
		t.Errorf("Holidays count = %d, want %d", len(rs.Holidays), len(def.Holidays))
	}
}

func TestLoadMergesOverrides(t *testing.T) {
	path := writeRules(t, `
focus:
  promotions: ["deal", "clearance"]
holidays:
  boxing day:
    month: 12
    day: 26
validation:
  min_length: 1000
`)

	rs, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(rs.Focus.Promotions) != 2 || rs.Focus.Promotions[0] != "deal" {
		t.Errorf("Focus.Promotions = %v, want override", rs.Focus.Promotions)
	}
	// Untouched sections keep defaults.
	if len(rs.Focus.Delivery) == 0 {
		t.Error("Focus.Delivery lost its default")
	}

	// Holiday table is replaced wholesale when present.
	if len(rs.Holidays) != 1 {
		t.Fatalf("Holidays = %v, want only the override", rs.Holidays)
	}
	if got := rs.Holidays["boxing day"]; got.Month != time.December || got.Day != 26 {
		t.Errorf("boxing day = %+v, want December 26", got)
	}

	if rs.Validation.MinLength != 1000 {
		t.Errorf("MinLength = %d, want 1000", rs.Validation.MinLength)
	}
	if rs.Validation.RootMarker != "<html" {
		t.Errorf("RootMarker = %q, want default", rs.Validation.RootMarker)
	}
}

func TestLoadRejectsInvalidHoliday(t *testing.T) {
	path := writeRules(t, `
holidays:
  broken:
    month: 13
    day: 1
`)
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Load() error = nil, want error for invalid month")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := NewLoader("/does/not/exist.yaml").Load(); err == nil {
		t.Error("Load() error = nil, want error")
	}
}
