package chart

import "math"

// Sign is a zodiac sign index, 0 = Aries.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"白羊座", "金牛座", "双子座", "巨蟹座", "狮子座", "处女座",
	"天秤座", "天蝎座", "射手座", "摩羯座", "水瓶座", "双鱼座",
}

var signEnglish = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// String returns the Chinese sign name used throughout reports.
func (s Sign) String() string {
	return signNames[s.index()]
}

// English returns the English sign name.
func (s Sign) English() string {
	return signEnglish[s.index()]
}

func (s Sign) index() int {
	return mod12(int(s))
}

// SignFromIndex wraps any integer onto the twelve signs.
func SignFromIndex(i int) Sign {
	return Sign(mod12(i))
}

// NormalizeLongitude maps any angle onto [0, 360).
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 {
		lon = 0
	}
	return lon
}

// SignFor returns SIGNS[floor(lon/30) mod 12].
func SignFor(lon float64) Sign {
	return SignFromIndex(int(math.Floor(NormalizeLongitude(lon) / 30)))
}

// DegreeInSign returns lon mod 30.
func DegreeInSign(lon float64) float64 {
	return math.Mod(NormalizeLongitude(lon), 30)
}

// PositionAt builds a BodyPosition from a raw longitude.
func PositionAt(body BodyID, lon float64) BodyPosition {
	lon = NormalizeLongitude(lon)
	return BodyPosition{Body: body, Longitude: lon, Sign: SignFor(lon), Degree: DegreeInSign(lon)}
}

func mod12(i int) int {
	return ((i % 12) + 12) % 12
}
