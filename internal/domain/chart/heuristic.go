package chart

import "math"

// signRange is one row of the calendar sun-sign table, inclusive on both ends.
type signRange struct {
	startMonth, startDay int
	endMonth, endDay     int
	sign                 Sign
}

var sunSignRanges = []signRange{
	{3, 21, 4, 19, Aries},
	{4, 20, 5, 20, Taurus},
	{5, 21, 6, 21, Gemini},
	{6, 22, 7, 22, Cancer},
	{7, 23, 8, 22, Leo},
	{8, 23, 9, 22, Virgo},
	{9, 23, 10, 23, Libra},
	{10, 24, 11, 22, Scorpio},
	{11, 23, 12, 21, Sagittarius},
	{12, 22, 12, 31, Capricorn},
	{1, 1, 1, 19, Capricorn},
	{1, 20, 2, 18, Aquarius},
	{2, 19, 3, 20, Pisces},
}

var moonEpoch = BirthMoment{Year: 2000, Month: 1, Day: 1}

// SunSignByDate looks the sun sign up in the fixed calendar table.
func SunSignByDate(month, day int) Sign {
	for _, r := range sunSignRanges {
		if r.startMonth == r.endMonth {
			if month == r.startMonth && day >= r.startDay && day <= r.endDay {
				return r.sign
			}
			continue
		}
		if (month == r.startMonth && day >= r.startDay) || (month == r.endMonth && day <= r.endDay) {
			return r.sign
		}
	}
	return Capricorn
}

// heuristicSigns approximates every body's sign from calendar arithmetic alone.
func heuristicSigns(m BirthMoment, latitude float64) map[BodyID]Sign {
	t := m.Time()
	dayOfYear := float64(t.YearDay())
	sun := SunSignByDate(m.Month, m.Day)

	// Whole calendar days; time.Duration overflows past roughly 292 years.
	day := BirthMoment{Year: m.Year, Month: m.Month, Day: m.Day}
	daysSinceEpoch := math.Floor(JulianDay(day) - JulianDay(moonEpoch))
	moon := SignFromIndex(int(math.Floor(math.Abs(daysSinceEpoch)/2.3)) % 12)

	mercuryCycle := int(math.Floor(dayOfYear/7.3)) % 12
	mercury := SignFromIndex(int(sun) + mercuryCycle - 1)

	venusCycle := int(math.Floor(dayOfYear/18.8)) % 12
	venus := SignFromIndex(int(sun) + venusCycle)

	marsCycle := int(math.Floor(dayOfYear/57.3)) % 12
	mars := SignFromIndex(m.Year/2%12 + marsCycle)

	season := (m.Month - 1) / 3 % 4
	hourOffset := m.Hour / 2
	latOffset := int(math.Floor(latitude / 30))
	rising := SignFromIndex(season + hourOffset + latOffset)

	return map[BodyID]Sign{
		BodySun:       sun,
		BodyMoon:      moon,
		BodyMercury:   mercury,
		BodyVenus:     venus,
		BodyMars:      mars,
		BodyAscendant: rising,
	}
}

// heuristicLongitude places a body inside its sign, advancing with the time of day
// so the output carries a degree like an ephemeris lookup would.
func heuristicLongitude(sign Sign, m BirthMoment) float64 {
	minutes := float64(m.Hour*60 + m.Minute)
	return float64(sign)*30 + minutes/1440*30
}
