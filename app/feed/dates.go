package feed

import (
	"regexp"
	"strconv"
	"time"
)

type dateSlot int

const (
	slotStart dateSlot = iota
	slotEnd
)

type datePattern struct {
	label string
	slot  dateSlot
	re    *regexp.Regexp
}

// Labels that imply a beginning fill the start slot, all others the end
// slot. Patterns are scanned in this fixed order and the last match per slot
// wins, which preserves the behavior catalog consumers already rely on.
var datePatterns = []datePattern{
	{label: "start date", slot: slotStart, re: labeledDateRegexp("start date")},
	{label: "last date", slot: slotEnd, re: labeledDateRegexp("last date")},
	{label: "opening date", slot: slotStart, re: labeledDateRegexp("opening date")},
	{label: "closing date", slot: slotEnd, re: labeledDateRegexp("closing date")},
}

func labeledDateRegexp(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + label + `:?\s*(\d{1,2})[-./ ](\d{1,2})[-./ ](\d{2,4})`)
}

type DateExtractor struct{}

func NewDateExtractor() *DateExtractor {
	return &DateExtractor{}
}

// Run scans free text for labeled date tokens. Tokens are day-first numeric
// dates with 2- or 4-digit years. A token that does not form a valid
// calendar date is discarded without affecting the other labels. Missing
// slots stay nil; defaults are the caller's policy.
func (e *DateExtractor) Run(description string) ExtractedDates {
	var dates ExtractedDates

	for _, pattern := range datePatterns {
		match := pattern.re.FindStringSubmatch(description)
		if match == nil {
			continue
		}

		parsed, ok := parseDayFirst(match[1], match[2], match[3])
		if !ok {
			continue
		}

		switch pattern.slot {
		case slotStart:
			dates.Start = &parsed
		case slotEnd:
			dates.End = &parsed
		}
	}

	return dates
}

func parseDayFirst(dayStr, monthStr, yearStr string) (time.Time, bool) {
	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	year, _ := strconv.Atoi(yearStr)

	if year < 100 {
		year += 2000
	}

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// time.Date normalizes overflow (e.g. 31 February becomes 2 March), so
	// an invalid day is detected by the round trip changing the components.
	if parsed.Day() != day || parsed.Month() != time.Month(month) || parsed.Year() != year {
		return time.Time{}, false
	}

	return parsed, true
}
