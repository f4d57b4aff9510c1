package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDateOnlyISO(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2025-11-19", "2025-11-19", true},
		{" 2025-11-19 ", "2025-11-19", true},
		{"2025-11-19T10:00:00Z", "2025-11-19", true},
		{"2025-11-19T08:00:00.000Z", "2025-11-19", true},
		{"2025-11-19T08:00:00.000", "2025-11-19", true},
		{"2025-11-19T23:30:00-02:00", "2025-11-20", true},
		{"2025-11-19 07:15", "2025-11-19", true},
		{"2025-11-19T10:00Z", "2025-11-19", true},
		{"2025-11-19T10:00+02:00", "2025-11-19", true},
		{"2025-11-19T23:30-02:00", "2025-11-20", true},
		{"2025-11-19 10:00+02:00", "2025-11-19", true},
		{"2025-13-40", "", false},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeDateOnlyISO(c.input)
		assert.Equal(t, c.ok, ok, "NormalizeDateOnlyISO(%q)", c.input)
		assert.Equal(t, c.want, got, "NormalizeDateOnlyISO(%q)", c.input)
	}
}

func TestStartOfWeekISO(t *testing.T) {
	cases := map[string]string{
		"2025-11-17": "2025-11-17",
		"2025-11-19": "2025-11-17",
		"2025-11-23": "2025-11-17",
		"2025-11-24": "2025-11-24",
		"2025-01-01": "2024-12-30",
	}
	for in, want := range cases {
		got, ok := StartOfWeekISO(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := StartOfWeekISO("2025-11-19T10:00:00Z")
	assert.False(t, ok, "StartOfWeekISO only accepts date-only input")
}

func TestWeekSnappingIsStableWithinWeek(t *testing.T) {
	inputs := []string{
		"2025-11-17", "2025-11-18T06:00:00Z", "2025-11-19", "2025-11-20 12:00",
		"2025-11-21T17:59:59.999Z", "2025-11-22", "2025-11-23T23:59:00Z",
	}
	for _, in := range inputs {
		got, ok := ResolveWeekStart(in)
		require.True(t, ok, in)
		assert.Equal(t, "2025-11-17", got, in)

		again, ok := StartOfWeekISO(got)
		require.True(t, ok)
		assert.Equal(t, got, again, "snapping a Monday must be idempotent")
	}
}

func TestFormatTimeFromMinutes(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		59:   "00:59",
		420:  "07:00",
		450:  "07:30",
		1080: "18:00",
		1439: "23:59",
		1500: "25:00",
		-30:  "-1:30",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatTimeFromMinutes(in), "FormatTimeFromMinutes(%d)", in)
	}
}

func TestISOWeekBounds(t *testing.T) {
	start, end, err := ISOWeekBounds(47, 2025)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC), end)

	start, _, err = ISOWeekBounds(1, 2021)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), start)

	start, _, err = ISOWeekBounds(53, 2020)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 12, 28, 0, 0, 0, 0, time.UTC), start)

	for _, week := range []int{0, 53, -1} {
		_, _, err = ISOWeekBounds(week, 2021)
		assert.True(t, errors.Is(err, ErrInvalidISOWeek), "week %d", week)
	}
}

func TestISOWeekOfRoundTrip(t *testing.T) {
	assert.Equal(t, ISOWeek{Week: 47, Year: 2025}, ISOWeekOf(time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, ISOWeek{Week: 53, Year: 2020}, ISOWeekOf(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))

	for week := 1; week <= 52; week++ {
		start, end, err := ISOWeekBounds(week, 2025)
		require.NoError(t, err)
		assert.Equal(t, ISOWeek{Week: week, Year: 2025}, ISOWeekOf(start))
		assert.Equal(t, ISOWeek{Week: week, Year: 2025}, ISOWeekOf(end.Add(-time.Second)))
	}

	w, ok := ISOWeekOfDate("2025-11-23T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, "2025-W47", w.String())

	_, ok = ISOWeekOfDate("nope")
	assert.False(t, ok)
}

func TestWeekDays(t *testing.T) {
	days, ok := WeekDays("2025-11-17")
	require.True(t, ok)
	require.Len(t, days, 7)
	assert.Equal(t, Day{ISODate: "2025-11-17", Label: "Mon 17 Nov"}, days[0])
	assert.Equal(t, Day{ISODate: "2025-11-23", Label: "Sun 23 Nov"}, days[6])

	_, ok = WeekDays("17/11/2025")
	assert.False(t, ok)
}
