package domain

import (
	"strings"
	"time"
)

// DefaultMaxOffsetDays bounds the nearest-capture search window when
// the caller does not override it.
const DefaultMaxOffsetDays = 7

// SnapshotQuery bounds a nearest-capture search: every date within
// ±MaxOffsetDays of TargetDate is a candidate.
type SnapshotQuery struct {
	Domain        string
	TargetDate    time.Time
	MaxOffsetDays int
}

// SnapshotRecord identifies one archived capture. Constructed only as
// the result of a successful search, never mutated.
type SnapshotRecord struct {
	CaptureID   string    `json:"capture_id"`  // opaque archive timestamp token, e.g. "20240115103000"
	SourceURL   string    `json:"source_url"`  // URL as originally archived
	CaptureDate time.Time `json:"capture_date"`
}

// RawCapture is the fetched document body of a capture.
type RawCapture struct {
	CaptureID string
	Content   string
}

// Holiday is a fixed calendar date a holiday name maps to.
type Holiday struct {
	Month time.Month
	Day   int
}

// DefaultHolidays returns the built-in holiday table. Easter is absent
// on purpose: it is movable and approximated by the named-month rule.
func DefaultHolidays() map[string]Holiday {
	return map[string]Holiday{
		"black friday": {time.November, 25}, // approximate
		"cyber monday": {time.November, 28}, // approximate
		"christmas":    {time.December, 25},
		"valentine":    {time.February, 14},
		"halloween":    {time.October, 31},
	}
}

// ValidationPolicy decides whether fetched capture content is usable.
// Anything failing it is treated the same as a failed fetch.
type ValidationPolicy struct {
	MinLength    int    // body must exceed this many bytes
	RootMarker   string // document-root marker, matched case-insensitively
	MarkerWindow int    // marker must appear within this many leading bytes (0 = anywhere)
}

// DefaultValidationPolicy returns the built-in thresholds.
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		MinLength:    500,
		RootMarker:   "<html",
		MarkerWindow: 4096,
	}
}

// Valid reports whether body looks like a real archived document.
func (p ValidationPolicy) Valid(body string) bool {
	if len(body) <= p.MinLength {
		return false
	}
	window := body
	if p.MarkerWindow > 0 && len(window) > p.MarkerWindow {
		window = window[:p.MarkerWindow]
	}
	return strings.Contains(strings.ToLower(window), strings.ToLower(p.RootMarker))
}

// Ruleset bundles the configurable pieces of query resolution and
// content validation. Loaded from the rules file, defaults otherwise.
type Ruleset struct {
	Focus      FocusKeywords
	Holidays   map[string]Holiday
	Validation ValidationPolicy
}

// DefaultRuleset returns the built-in ruleset.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Focus:      DefaultFocusKeywords(),
		Holidays:   DefaultHolidays(),
		Validation: DefaultValidationPolicy(),
	}
}
