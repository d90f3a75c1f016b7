package temporal

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
)

// rule pairs a textual pattern with a function producing the date it
// refers to. Rules are evaluated in slice order, first match wins, so
// precedence is explicit: literal relative phrases, then quantified
// ones, then named months, seasons and holidays.
type rule struct {
	re      *regexp.Regexp
	resolve func(m []string, now time.Time) time.Time
}

// relativeRules covers "last year/month/week" and "N units ago".
// The inference fallback reuses exactly this subset on model output.
var relativeRules = []rule{
	{
		re: regexp.MustCompile(`\blast year\b`),
		resolve: func(_ []string, now time.Time) time.Time {
			return domain.AddYears(now, -1)
		},
	},
	{
		re: regexp.MustCompile(`\blast month\b`),
		resolve: func(_ []string, now time.Time) time.Time {
			return domain.AddMonths(now, -1)
		},
	},
	{
		re: regexp.MustCompile(`\blast week\b`),
		resolve: func(_ []string, now time.Time) time.Time {
			return now.AddDate(0, 0, -7)
		},
	},
	{
		re: regexp.MustCompile(`\b(\d+)\s+years?\s+ago\b`),
		resolve: func(m []string, now time.Time) time.Time {
			return domain.AddYears(now, -atoi(m[1]))
		},
	},
	{
		re: regexp.MustCompile(`\b(\d+)\s+months?\s+ago\b`),
		resolve: func(m []string, now time.Time) time.Time {
			return domain.AddMonths(now, -atoi(m[1]))
		},
	},
	{
		re: regexp.MustCompile(`\b(\d+)\s+weeks?\s+ago\b`),
		resolve: func(m []string, now time.Time) time.Time {
			return now.AddDate(0, 0, -7*atoi(m[1]))
		},
	},
	{
		re: regexp.MustCompile(`\b(\d+)\s+days?\s+ago\b`),
		resolve: func(m []string, now time.Time) time.Time {
			return now.AddDate(0, 0, -atoi(m[1]))
		},
	},
}

var monthNumbers = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var namedMonthRule = rule{
	re: regexp.MustCompile(`\blast (january|february|march|april|may|june|july|august|september|october|november|december)\b`),
	resolve: func(m []string, now time.Time) time.Time {
		return lastNamedMonth(monthNumbers[m[1]], now)
	},
}

var seasonRule = rule{
	re: regexp.MustCompile(`\blast (spring|summer|fall|autumn|winter)\b`),
	resolve: func(m []string, now time.Time) time.Time {
		return lastSeason(m[1], now)
	},
}

// holidayRule builds the holiday pattern from the configured table.
// Easter is always included and approximated via the named-month rule
// for April; its movable date is deliberately not computed.
func holidayRule(holidays map[string]domain.Holiday) rule {
	names := make([]string, 0, len(holidays)+1)
	for name := range holidays {
		names = append(names, regexp.QuoteMeta(name))
	}
	names = append(names, "easter")
	sort.Strings(names)

	re := regexp.MustCompile(`\blast (` + strings.Join(names, "|") + `)\b`)
	return rule{
		re: re,
		resolve: func(m []string, now time.Time) time.Time {
			return lastHoliday(m[1], holidays, now)
		},
	}
}

// lastNamedMonth returns the 15th of the most recent occurrence of
// month strictly before now. Day 15 stands in for the month's
// midpoint; this is a simplification, not an attempt at precision.
func lastNamedMonth(month time.Month, now time.Time) time.Time {
	if now.Month() > month {
		return domain.Date(now.Year(), month, 15)
	}
	return domain.Date(now.Year()-1, month, 15)
}

type seasonSpan struct {
	repr time.Month // representative month
	end  time.Month // last month of the season
}

var seasons = map[string]seasonSpan{
	"spring": {time.March, time.May},
	"summer": {time.June, time.August},
	"fall":   {time.September, time.November},
	"autumn": {time.September, time.November},
}

// lastSeason resolves "last <season>". Winter spans the year boundary:
// inside December–February it means the winter before the current one,
// otherwise the most recently completed winter, represented by
// January 15 of the current year.
func lastSeason(name string, now time.Time) time.Time {
	if name == "winter" {
		switch now.Month() {
		case time.December, time.January, time.February:
			return domain.AddYears(now, -1)
		}
		return domain.Date(now.Year(), time.January, 15)
	}

	s := seasons[name]
	if now.Month() > s.end {
		return domain.Date(now.Year(), s.repr, 15)
	}
	return domain.Date(now.Year()-1, s.repr, 15)
}

// lastHoliday resolves a holiday name to its most recent occurrence:
// this year's date if it has already passed, last year's otherwise.
func lastHoliday(name string, holidays map[string]domain.Holiday, now time.Time) time.Time {
	if name == "easter" {
		return lastNamedMonth(time.April, now)
	}
	h := holidays[name]
	thisYear := domain.Date(now.Year(), h.Month, h.Day)
	if now.Before(thisYear) {
		return domain.Date(now.Year()-1, h.Month, h.Day)
	}
	return thisYear
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s) // the pattern guarantees digits
	return n
}
