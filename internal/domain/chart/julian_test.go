package chart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJulianDayReferenceEpochs(t *testing.T) {
	require.InDelta(t, 2451545.0, JulianDay(BirthMoment{Year: 2000, Month: 1, Day: 1, Hour: 12}), 1e-9)
	require.InDelta(t, 2447893.0, JulianDay(BirthMoment{Year: 1990, Month: 1, Day: 1, Hour: 12}), 1e-9)
	require.InDelta(t, 2445023.5+17.0/24, JulianDay(BirthMoment{Year: 1982, Month: 2, Day: 23, Hour: 17}), 1e-9)
}

func TestJulianDayMinutes(t *testing.T) {
	base := JulianDay(BirthMoment{Year: 2024, Month: 3, Day: 1})
	withMinutes := JulianDay(BirthMoment{Year: 2024, Month: 3, Day: 1, Hour: 6, Minute: 30})
	require.InDelta(t, 6.5/24, withMinutes-base, 1e-9)
}

func TestParseBirth(t *testing.T) {
	m, err := ParseBirth(BirthInput{Date: "1983-10-21", Time: "11:00"})
	require.NoError(t, err)
	require.Equal(t, BirthMoment{Year: 1983, Month: 10, Day: 21, Hour: 11}, m)

	m, err = ParseBirth(BirthInput{Date: " 1990-01-01 ", Time: "9:05"})
	require.NoError(t, err)
	require.Equal(t, 9, m.Hour)
	require.Equal(t, 5, m.Minute)
}

func TestParseBirthRejectsMalformedInput(t *testing.T) {
	bad := []BirthInput{
		{Date: "1990/01/01", Time: "12:00"},
		{Date: "1990-02-30", Time: "12:00"},
		{Date: "1990-01-01", Time: "24:00"},
		{Date: "1990-01-01", Time: "12:60"},
		{Date: "1990-01-01", Time: "noon"},
		{Date: "1990-01-01", Time: "12:0"},
		{Date: "", Time: ""},
	}
	for _, in := range bad {
		_, err := ParseBirth(in)
		require.Error(t, err, "%+v", in)
		require.True(t, errors.Is(err, ErrChartComputation))
	}
}
