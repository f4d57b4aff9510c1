package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// ErrInvalidISOWeek is returned for week numbers the given ISO year does not have
var ErrInvalidISOWeek = errors.New("invalid ISO week")

// accepted input shapes, tried in order; fractional seconds are accepted by time.Parse
var dateLayouts = []string{
	dateOnlyLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
}

// Day is one column of the displayed week
type Day struct {
	ISODate string `json:"isoDate"`
	Label   string `json:"label"`
}

// ISOWeek is an ISO-8601 week number and its week-numbering year
type ISOWeek struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

func (w ISOWeek) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

// NormalizeDateOnlyISO converts a date-only or date+time string into YYYY-MM-DD in UTC.
// It returns false when the input cannot be parsed.
func NormalizeDateOnlyISO(input string) (string, bool) {
	t, ok := parseDate(input)
	if !ok {
		return "", false
	}
	return t.Format(dateOnlyLayout), true
}

func parseDate(input string) (time.Time, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// StartOfWeekISO returns the Monday of the ISO week containing dateOnly
func StartOfWeekISO(dateOnly string) (string, bool) {
	t, err := time.Parse(dateOnlyLayout, strings.TrimSpace(dateOnly))
	if err != nil {
		return "", false
	}
	return mondayOf(t).Format(dateOnlyLayout), true
}

func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}

// FormatTimeFromMinutes renders a minute of day as HH:MM.
// Hours are not wrapped, so 1500 renders as "25:00".
func FormatTimeFromMinutes(minuteOfDay int) string {
	hours := floorDiv(minuteOfDay, 60)
	minutes := minuteOfDay - hours*60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ISOWeekBounds returns Monday 00:00 UTC of the given ISO week and the following Monday
func ISOWeekBounds(week, year int) (time.Time, time.Time, error) {
	if week < 1 || week > weeksInISOYear(year) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: week %d of %d", ErrInvalidISOWeek, week, year)
	}
	// January 4th is always in week 1
	first := mondayOf(time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC))
	start := first.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 7), nil
}

func weeksInISOYear(year int) int {
	// December 28th is always in the last week
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// ISOWeekOf returns the ISO week containing t, evaluated in UTC
func ISOWeekOf(t time.Time) ISOWeek {
	year, week := t.UTC().ISOWeek()
	return ISOWeek{Week: week, Year: year}
}

// ISOWeekOfDate is ISOWeekOf for a date string in any accepted shape
func ISOWeekOfDate(date string) (ISOWeek, bool) {
	t, ok := parseDate(date)
	if !ok {
		return ISOWeek{}, false
	}
	return ISOWeekOf(t), true
}

// WeekDays returns the seven days starting at weekStart (YYYY-MM-DD)
func WeekDays(weekStart string) ([]Day, bool) {
	start, err := time.Parse(dateOnlyLayout, strings.TrimSpace(weekStart))
	if err != nil {
		return nil, false
	}
	days := make([]Day, DaysPerWeek)
	for i := range days {
		d := start.AddDate(0, 0, i)
		days[i] = Day{
			ISODate: d.Format(dateOnlyLayout),
			Label:   d.Format("Mon 02 Jan"),
		}
	}
	return days, true
}

// ResolveWeekStart normalizes a raw weekStartDate and snaps it to its Monday
func ResolveWeekStart(raw string) (string, bool) {
	date, ok := NormalizeDateOnlyISO(raw)
	if !ok {
		return "", false
	}
	return StartOfWeekISO(date)
}
