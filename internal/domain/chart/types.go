package chart

import "time"

// BodyID identifies a chart point. Values double as the JSON keys used by the report.
type BodyID string

const (
	BodySun       BodyID = "sun"
	BodyMoon      BodyID = "moon"
	BodyMercury   BodyID = "mercury"
	BodyVenus     BodyID = "venus"
	BodyMars      BodyID = "mars"
	BodyAscendant BodyID = "rising"
)

// Bodies lists every chart point in report order.
var Bodies = []BodyID{BodySun, BodyMoon, BodyAscendant, BodyMercury, BodyVenus, BodyMars}

// Planets lists the bodies looked up individually from an ephemeris.
var Planets = []BodyID{BodySun, BodyMoon, BodyMercury, BodyVenus, BodyMars}

// DisplayName returns the Chinese name used in prompts.
func (b BodyID) DisplayName() string {
	switch b {
	case BodySun:
		return "太阳"
	case BodyMoon:
		return "月亮"
	case BodyMercury:
		return "水星"
	case BodyVenus:
		return "金星"
	case BodyMars:
		return "火星"
	case BodyAscendant:
		return "上升"
	default:
		return string(b)
	}
}

// Mode records how longitudes were obtained.
type Mode string

const (
	ModeEphemeris Mode = "ephemeris"
	ModeHeuristic Mode = "heuristic"
)

// BirthInput is the raw request payload for one chart.
type BirthInput struct {
	Date  string // YYYY-MM-DD
	Time  string // HH:MM
	Place string
}

// BirthMoment is a parsed BirthInput. The clock time carries no zone and is treated as UT.
type BirthMoment struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// Time returns the moment as a UTC time.Time.
func (m BirthMoment) Time() time.Time {
	return time.Date(m.Year, time.Month(m.Month), m.Day, m.Hour, m.Minute, 0, 0, time.UTC)
}

// GeoLocation is a resolved place.
type GeoLocation struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// BodyPosition is one body's place on the ecliptic.
type BodyPosition struct {
	Body      BodyID
	Longitude float64
	Sign      Sign
	Degree    float64
}

// HouseMeta is the static description of a house.
type HouseMeta struct {
	Name     string
	Meaning  string
	Keywords []string
}

// HouseCusp is the start of one of the twelve houses.
type HouseCusp struct {
	Number         int
	StartLongitude float64
	Sign           Sign
	Degree         float64
	HouseMeta
}

// ChartResult is the computed chart for one birth moment and place.
type ChartResult struct {
	JulianDay float64
	Mode      Mode
	Positions map[BodyID]BodyPosition
	Houses    [12]HouseCusp
	BodyHouse map[BodyID]int
}

// SignOf returns the sign of a body.
func (c ChartResult) SignOf(body BodyID) Sign {
	return c.Positions[body].Sign
}

// HouseOf returns the house number of a body, 1 when unknown.
func (c ChartResult) HouseOf(body BodyID) int {
	if n, ok := c.BodyHouse[body]; ok && n >= 1 && n <= 12 {
		return n
	}
	return 1
}

// House returns house n (1..12).
func (c ChartResult) House(n int) HouseCusp {
	if n < 1 || n > 12 {
		n = 1
	}
	return c.Houses[n-1]
}
