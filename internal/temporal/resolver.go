// Package temporal turns free-text queries into a concrete
// (domain, calendar date) intent through a cascade of deterministic
// rules with a text-inference fallback. Resolution never fails: every
// branch terminates in a date, and the only caller-visible error
// condition is a missing domain token on the returned intent.
package temporal

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
	"github.com/hindsightlabs/hindsight/internal/logger"
)

// Inferencer is the injected text-inference capability used only when
// no deterministic pattern matches. Failures are absorbed by the
// resolver, never surfaced to its caller.
type Inferencer interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

const inferencePrompt = `Extract a specific date or time period from this query: %q

If the query mentions a specific date or time period (like "last Christmas", "summer 2023", "3 months ago"), convert it to an exact date in YYYY-MM-DD format.

If no specific date or time period is mentioned, return "1 year ago" as the default.

Only return the date in YYYY-MM-DD format or the relative time period (like "1 year ago"). Do not include any other text or explanation.`

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Resolver parses queries into intents. Safe for concurrent use.
type Resolver struct {
	rules    []rule
	focus    domain.FocusKeywords
	inferrer Inferencer // nil disables the inference stage
	log      logger.Logger
}

// NewResolver builds a resolver from the given ruleset. inferrer may
// be nil, in which case unmatched queries go straight to the
// one-year-ago default.
func NewResolver(rs domain.Ruleset, inferrer Inferencer, log logger.Logger) *Resolver {
	ordered := make([]rule, 0, len(relativeRules)+3)
	ordered = append(ordered, relativeRules...)
	ordered = append(ordered, namedMonthRule, seasonRule, holidayRule(rs.Holidays))

	return &Resolver{
		rules:    ordered,
		focus:    rs.Focus,
		inferrer: inferrer,
		log:      log,
	}
}

// Resolve extracts the domain, focus and target date from query. The
// returned intent always carries a date; Domain is empty when the
// query names no site.
func (r *Resolver) Resolve(ctx context.Context, query string, now time.Time) domain.Intent {
	now = domain.DateOnly(now)

	intent := domain.Intent{
		Domain: domain.ExtractDomain(query),
		Focus:  domain.ClassifyFocus(query, r.focus),
	}

	lower := strings.ToLower(query)
	for _, rl := range r.rules {
		if m := rl.re.FindStringSubmatch(lower); m != nil {
			intent.TargetDate = rl.resolve(m, now)
			intent.Source = domain.SourcePattern
			return intent
		}
	}

	intent.TargetDate, intent.Source = r.inferDate(ctx, query, now)
	return intent
}

// inferDate asks the inference capability for a date and parses the
// response with the relative-phrase rules, then as an ISO date. Any
// failure degrades silently to exactly one year before now.
func (r *Resolver) inferDate(ctx context.Context, query string, now time.Time) (time.Time, domain.Source) {
	fallback := domain.AddYears(now, -1)

	if r.inferrer == nil {
		return fallback, domain.SourceDefault
	}

	resp, err := r.inferrer.Infer(ctx, fmt.Sprintf(inferencePrompt, query))
	if err != nil {
		r.log.Warn("date inference failed, using one-year-ago default",
			logger.Error(err))
		return fallback, domain.SourceDefault
	}

	if d, ok := parseInferred(resp, now); ok {
		return d, domain.SourceInference
	}

	r.log.Debug("unparseable inference response, using one-year-ago default",
		logger.String("response", resp))
	return fallback, domain.SourceDefault
}

// parseInferred interprets model output as either a relative phrase
// ("2 months ago") or an ISO calendar date.
func parseInferred(text string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(text)
	for _, rl := range relativeRules {
		if m := rl.re.FindStringSubmatch(lower); m != nil {
			return rl.resolve(m, now), true
		}
	}

	if iso := isoDatePattern.FindString(text); iso != "" {
		if d, err := time.ParseInLocation("2006-01-02", iso, time.UTC); err == nil {
			return d, true
		}
	}

	return time.Time{}, false
}
