package temporal

import (
	"testing"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
)

func TestLastNamedMonth(t *testing.T) {
	tests := []struct {
		name  string
		month time.Month
		now   time.Time
		want  time.Time
	}{
		{
			name:  "month already passed this year",
			month: time.April,
			now:   domain.Date(2024, time.August, 10),
			want:  domain.Date(2024, time.April, 15),
		},
		{
			name:  "month is current, use last year",
			month: time.April,
			now:   domain.Date(2024, time.April, 20),
			want:  domain.Date(2023, time.April, 15),
		},
		{
			name:  "month not yet reached, use last year",
			month: time.November,
			now:   domain.Date(2024, time.March, 1),
			want:  domain.Date(2023, time.November, 15),
		},
		{
			name:  "december from january",
			month: time.December,
			now:   domain.Date(2024, time.January, 2),
			want:  domain.Date(2023, time.December, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lastNamedMonth(tt.month, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("lastNamedMonth(%v, %v) = %v, want %v", tt.month, tt.now, got, tt.want)
			}
		})
	}
}

// The year choice only depends on the month of now, so any two nows in
// the same month must agree.
func TestLastNamedMonthIdempotentWithinMonth(t *testing.T) {
	first := lastNamedMonth(time.April, domain.Date(2024, time.June, 1))
	for day := 2; day <= 30; day++ {
		got := lastNamedMonth(time.April, domain.Date(2024, time.June, day))
		if !got.Equal(first) {
			t.Fatalf("lastNamedMonth from June %d = %v, want %v", day, got, first)
		}
	}
}

func TestLastSeason(t *testing.T) {
	tests := []struct {
		name   string
		season string
		now    time.Time
		want   time.Time
	}{
		{
			name:   "spring after it ended",
			season: "spring",
			now:    domain.Date(2024, time.July, 1),
			want:   domain.Date(2024, time.March, 15),
		},
		{
			name:   "spring while in spring, use last year",
			season: "spring",
			now:    domain.Date(2024, time.April, 10),
			want:   domain.Date(2023, time.March, 15),
		},
		{
			name:   "summer before it started",
			season: "summer",
			now:    domain.Date(2024, time.May, 1),
			want:   domain.Date(2023, time.June, 15),
		},
		{
			name:   "autumn aliases fall",
			season: "autumn",
			now:    domain.Date(2024, time.December, 5),
			want:   domain.Date(2024, time.September, 15),
		},
		{
			name:   "winter from mid-january is one year back",
			season: "winter",
			now:    domain.Date(2024, time.January, 15),
			want:   domain.Date(2023, time.January, 15),
		},
		{
			name:   "winter from december is one year back",
			season: "winter",
			now:    domain.Date(2024, time.December, 20),
			want:   domain.Date(2023, time.December, 20),
		},
		{
			name:   "winter from july is january this year",
			season: "winter",
			now:    domain.Date(2024, time.July, 1),
			want:   domain.Date(2024, time.January, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lastSeason(tt.season, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("lastSeason(%q, %v) = %v, want %v", tt.season, tt.now, got, tt.want)
			}
		})
	}
}

func TestLastHoliday(t *testing.T) {
	holidays := domain.DefaultHolidays()

	tests := []struct {
		name    string
		holiday string
		now     time.Time
		want    time.Time
	}{
		{
			name:    "christmas already passed",
			holiday: "christmas",
			now:     domain.Date(2024, time.December, 26),
			want:    domain.Date(2024, time.December, 25),
		},
		{
			name:    "christmas not yet reached",
			holiday: "christmas",
			now:     domain.Date(2024, time.June, 1),
			want:    domain.Date(2023, time.December, 25),
		},
		{
			name:    "on the holiday itself counts as occurred",
			holiday: "halloween",
			now:     domain.Date(2024, time.October, 31),
			want:    domain.Date(2024, time.October, 31),
		},
		{
			name:    "black friday approximation",
			holiday: "black friday",
			now:     domain.Date(2025, time.January, 3),
			want:    domain.Date(2024, time.November, 25),
		},
		{
			name:    "easter approximated by last april",
			holiday: "easter",
			now:     domain.Date(2024, time.July, 1),
			want:    domain.Date(2024, time.April, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lastHoliday(tt.holiday, holidays, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("lastHoliday(%q, %v) = %v, want %v", tt.holiday, tt.now, got, tt.want)
			}
		})
	}
}

func TestHolidayRulePattern(t *testing.T) {
	rl := holidayRule(domain.DefaultHolidays())

	tests := []struct {
		query string
		want  string // captured holiday name, empty = no match
	}{
		{"what did asos.com sell last black friday", "black friday"},
		{"last cyber monday deals", "cyber monday"},
		{"last valentine's day offers", "valentine"},
		{"last easter range", "easter"},
		{"nothing seasonal here", ""},
	}

	for _, tt := range tests {
		m := rl.re.FindStringSubmatch(tt.query)
		if tt.want == "" {
			if m != nil {
				t.Errorf("pattern matched %q unexpectedly: %v", tt.query, m)
			}
			continue
		}
		if m == nil || m[1] != tt.want {
			t.Errorf("pattern on %q = %v, want capture %q", tt.query, m, tt.want)
		}
	}
}
