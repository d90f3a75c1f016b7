package domain

import (
	"regexp"
	"strings"
	"time"
)

// Source records which stage of the resolution cascade produced a date.
type Source string

const (
	// SourcePattern means a deterministic rule matched the query text.
	SourcePattern Source = "pattern"
	// SourceInference means the date came from the text-inference fallback.
	SourceInference Source = "inference"
	// SourceDefault means nothing matched and the one-year-ago default applied.
	SourceDefault Source = "default"
)

// Focus classifies what a query asks about.
type Focus string

const (
	FocusPromotions Focus = "promotions"
	FocusProducts   Focus = "products"
	FocusDelivery   Focus = "delivery"
	FocusGeneral    Focus = "general"
)

// Intent is the outcome of resolving a raw query: the site it talks
// about, the calendar date it refers to, and what it focuses on.
// TargetDate is always set; Domain is empty when the query names no
// site, which the caller must report before searching the archive.
type Intent struct {
	Domain     string
	TargetDate time.Time
	Focus      Focus // empty when no keyword set matched
	Source     Source
}

// hostPattern matches a generic hostname shape: dot-separated labels
// with a top-level segment of at least two alphanumeric characters.
var hostPattern = regexp.MustCompile(`([a-zA-Z0-9][-a-zA-Z0-9]*\.)+[a-zA-Z0-9]{2,}`)

// ExtractDomain returns the first hostname-shaped token in query, or
// the empty string when none is present.
func ExtractDomain(query string) string {
	return hostPattern.FindString(query)
}

// FocusKeywords holds the containment keyword sets for focus
// classification, in priority order: promotions, then products, then
// delivery.
type FocusKeywords struct {
	Promotions []string
	Products   []string
	Delivery   []string
}

// DefaultFocusKeywords returns the built-in keyword sets.
func DefaultFocusKeywords() FocusKeywords {
	return FocusKeywords{
		Promotions: []string{"promo", "promotion", "offer", "discount", "sale"},
		Products:   []string{"product", "range", "item", "selling"},
		Delivery:   []string{"delivery", "shipping", "fulfillment"},
	}
}

// ClassifyFocus runs the ordered containment check and returns the
// first category with a hit, or empty when nothing matches.
func ClassifyFocus(query string, kw FocusKeywords) Focus {
	lower := strings.ToLower(query)
	sets := []struct {
		focus Focus
		terms []string
	}{
		{FocusPromotions, kw.Promotions},
		{FocusProducts, kw.Products},
		{FocusDelivery, kw.Delivery},
	}
	for _, set := range sets {
		for _, term := range set.terms {
			if strings.Contains(lower, term) {
				return set.focus
			}
		}
	}
	return ""
}
