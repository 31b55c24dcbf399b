package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseBirth validates the date and time strings of a birth input.
func ParseBirth(in BirthInput) (BirthMoment, error) {
	date := strings.TrimSpace(in.Date)
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return BirthMoment{}, fmt.Errorf("%w: invalid date %q", ErrChartComputation, in.Date)
	}
	hour, minute, err := parseClock(strings.TrimSpace(in.Time))
	if err != nil {
		return BirthMoment{}, fmt.Errorf("%w: invalid time %q", ErrChartComputation, in.Time)
	}
	return BirthMoment{
		Year:   day.Year(),
		Month:  int(day.Month()),
		Day:    day.Day(),
		Hour:   hour,
		Minute: minute,
	}, nil
}

// parseClock accepts H:MM or HH:MM.
func parseClock(raw string) (int, int, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, 0, fmt.Errorf("clock must be HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("hour out of range")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("minute out of range")
	}
	return hour, minute, nil
}

// JulianDay converts a Gregorian calendar moment to a Julian Day number.
//
// The wall clock time is used as universal time without any zone correction.
// Whether that is intended is unresolved; callers must not normalize it here.
func JulianDay(m BirthMoment) float64 {
	y, mo := m.Year, m.Month
	if mo <= 2 {
		y--
		mo += 12
	}
	a := math.Floor(float64(y) / 100)
	b := 2 - a + math.Floor(a/4)
	hours := float64(m.Hour) + float64(m.Minute)/60
	return math.Floor(365.25*float64(y+4716)) +
		math.Floor(30.6001*float64(mo+1)) +
		float64(m.Day) + b - 1524.5 + hours/24
}
