package temporal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
	"github.com/hindsightlabs/hindsight/internal/logger"
)

type stubInferrer struct {
	response string
	err      error
	prompts  []string
}

func (s *stubInferrer) Infer(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func newTestResolver(inf Inferencer) *Resolver {
	return NewResolver(domain.DefaultRuleset(), inf, logger.NewNop())
}

func TestResolveDeterministicPatterns(t *testing.T) {
	now := domain.Date(2024, time.August, 20)
	r := newTestResolver(nil)

	tests := []struct {
		name       string
		query      string
		wantDate   time.Time
		wantDomain string
	}{
		{
			name:       "last year",
			query:      "what was asos.com promoting last year",
			wantDate:   domain.Date(2023, time.August, 20),
			wantDomain: "asos.com",
		},
		{
			name:     "last month",
			query:    "zara.com homepage last month",
			wantDate: domain.Date(2024, time.July, 20),
		},
		{
			name:     "last week",
			query:    "zara.com last week",
			wantDate: domain.Date(2024, time.August, 13),
		},
		{
			name:     "quantified months",
			query:    "what shipping offers did asos.com have 6 months ago",
			wantDate: domain.Date(2024, time.February, 20),
		},
		{
			name:     "quantified days",
			query:    "asos.com 10 days ago",
			wantDate: domain.Date(2024, time.August, 10),
		},
		{
			name:     "quantified weeks",
			query:    "asos.com 3 weeks ago",
			wantDate: domain.Date(2024, time.July, 30),
		},
		{
			name:     "zero days ago is today",
			query:    "asos.com 0 days ago",
			wantDate: now,
		},
		{
			name:     "named month",
			query:    "asos.com last april",
			wantDate: domain.Date(2024, time.April, 15),
		},
		{
			name:     "season",
			query:    "asos.com last winter",
			wantDate: domain.Date(2024, time.January, 15),
		},
		{
			name:     "holiday",
			query:    "what was lookfantastic.com promoting last black friday",
			wantDate: domain.Date(2023, time.November, 25),
		},
		{
			name:     "literal beats holiday when both present",
			query:    "asos.com last year compared to last christmas",
			wantDate: domain.Date(2023, time.August, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := r.Resolve(context.Background(), tt.query, now)
			if !intent.TargetDate.Equal(tt.wantDate) {
				t.Errorf("TargetDate = %v, want %v", intent.TargetDate, tt.wantDate)
			}
			if intent.Source != domain.SourcePattern {
				t.Errorf("Source = %q, want %q", intent.Source, domain.SourcePattern)
			}
			if tt.wantDomain != "" && intent.Domain != tt.wantDomain {
				t.Errorf("Domain = %q, want %q", intent.Domain, tt.wantDomain)
			}
		})
	}
}

func TestResolveMissingDomain(t *testing.T) {
	r := newTestResolver(nil)
	now := domain.Date(2024, time.March, 1)

	intent := r.Resolve(context.Background(), "what was promoted last year", now)
	if intent.Domain != "" {
		t.Errorf("Domain = %q, want empty", intent.Domain)
	}
	if intent.TargetDate.IsZero() {
		t.Error("TargetDate is zero, want a date even without a domain")
	}
}

func TestResolveInferenceRelativePhrase(t *testing.T) {
	now := domain.Date(2024, time.June, 10)
	inf := &stubInferrer{response: "3 months ago"}
	r := newTestResolver(inf)

	intent := r.Resolve(context.Background(), "how did asos.com handle mother's day", now)
	want := domain.Date(2024, time.March, 10)
	if !intent.TargetDate.Equal(want) {
		t.Errorf("TargetDate = %v, want %v", intent.TargetDate, want)
	}
	if intent.Source != domain.SourceInference {
		t.Errorf("Source = %q, want %q", intent.Source, domain.SourceInference)
	}
	if len(inf.prompts) != 1 {
		t.Fatalf("inference called %d times, want 1", len(inf.prompts))
	}
}

func TestResolveInferenceISODate(t *testing.T) {
	now := domain.Date(2024, time.June, 10)
	inf := &stubInferrer{response: "2023-11-24"}
	r := newTestResolver(inf)

	intent := r.Resolve(context.Background(), "asos.com around that big sale", now)
	want := domain.Date(2023, time.November, 24)
	if !intent.TargetDate.Equal(want) {
		t.Errorf("TargetDate = %v, want %v", intent.TargetDate, want)
	}
	if intent.Source != domain.SourceInference {
		t.Errorf("Source = %q, want %q", intent.Source, domain.SourceInference)
	}
}

func TestResolveInferenceFailureDefaults(t *testing.T) {
	now := domain.Date(2024, time.June, 10)
	inf := &stubInferrer{err: errors.New("service unavailable")}
	r := newTestResolver(inf)

	intent := r.Resolve(context.Background(), "asos.com around then", now)
	want := domain.Date(2023, time.June, 10)
	if !intent.TargetDate.Equal(want) {
		t.Errorf("TargetDate = %v, want exactly one year before now %v", intent.TargetDate, want)
	}
	if intent.Source != domain.SourceDefault {
		t.Errorf("Source = %q, want %q", intent.Source, domain.SourceDefault)
	}
}

func TestResolveInferenceGarbageDefaults(t *testing.T) {
	now := domain.Date(2024, time.June, 10)
	inf := &stubInferrer{response: "I could not find a date in the query."}
	r := newTestResolver(inf)

	intent := r.Resolve(context.Background(), "asos.com around then", now)
	if !intent.TargetDate.Equal(domain.Date(2023, time.June, 10)) {
		t.Errorf("TargetDate = %v, want one year before now", intent.TargetDate)
	}
	if intent.Source != domain.SourceDefault {
		t.Errorf("Source = %q, want %q", intent.Source, domain.SourceDefault)
	}
}

func TestResolveNoInferrerDefaults(t *testing.T) {
	now := domain.Date(2024, time.February, 29)
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "asos.com whenever", now)
	want := domain.Date(2023, time.February, 28)
	if !intent.TargetDate.Equal(want) {
		t.Errorf("TargetDate = %v, want clamped %v", intent.TargetDate, want)
	}
	if intent.Source != domain.SourceDefault {
		t.Errorf("Source = %q, want %q", intent.Source, domain.SourceDefault)
	}
}

func TestParseInferred(t *testing.T) {
	now := domain.Date(2024, time.May, 1)

	tests := []struct {
		name   string
		text   string
		want   time.Time
		wantOK bool
	}{
		{"default phrase", "1 year ago", domain.Date(2023, time.May, 1), true},
		{"iso embedded in prose", "The date is 2022-12-25.", domain.Date(2022, time.December, 25), true},
		{"unparseable", "no idea", time.Time{}, false},
		{"invalid iso rejected", "2022-13-45", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseInferred(tt.text, now)
			if ok != tt.wantOK {
				t.Fatalf("parseInferred(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("parseInferred(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
