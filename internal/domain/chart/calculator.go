package chart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultHouseSystem is Placidus, the system the reference charts were cast in.
const DefaultHouseSystem = "P"

// HouseTable is an ephemeris house lookup result.
type HouseTable struct {
	Cusps     [12]float64
	Ascendant float64
	MC        float64
}

// Ephemeris is the external position capability. Implementations must be safe
// for concurrent use.
type Ephemeris interface {
	BodyLongitude(ctx context.Context, julianDay float64, body BodyID) (float64, error)
	HouseCusps(ctx context.Context, julianDay, latitude, longitude float64, system string) (HouseTable, error)
}

// Calculator computes charts either through an Ephemeris or with calendar heuristics.
type Calculator struct {
	ephemeris   Ephemeris
	houseSystem string
	logger      *slog.Logger
}

// NewCalculator builds a calculator. A nil ephemeris selects heuristic mode.
func NewCalculator(ephemeris Ephemeris, houseSystem string, logger *slog.Logger) *Calculator {
	houseSystem = strings.TrimSpace(houseSystem)
	if houseSystem == "" {
		houseSystem = DefaultHouseSystem
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		ephemeris:   ephemeris,
		houseSystem: houseSystem,
		logger:      logger.With("component", "chart.calculator"),
	}
}

// Mode reports which computation path the calculator uses.
func (c *Calculator) Mode() Mode {
	if c.ephemeris == nil {
		return ModeHeuristic
	}
	return ModeEphemeris
}

// Compute casts the chart for a birth input at a resolved location.
func (c *Calculator) Compute(ctx context.Context, birth BirthInput, geo GeoLocation) (ChartResult, error) {
	moment, err := ParseBirth(birth)
	if err != nil {
		return ChartResult{}, err
	}
	jd := JulianDay(moment)

	var (
		longitudes map[BodyID]float64
		cusps      [12]float64
	)
	if c.ephemeris == nil {
		longitudes, cusps = c.heuristic(moment, geo)
	} else {
		longitudes, cusps, err = c.lookup(ctx, jd, geo)
		if err != nil {
			return ChartResult{}, err
		}
	}

	result := ChartResult{
		JulianDay: jd,
		Mode:      c.Mode(),
		Positions: make(map[BodyID]BodyPosition, len(Bodies)),
		Houses:    BuildHouses(longitudes[BodyAscendant], cusps),
		BodyHouse: make(map[BodyID]int, len(Bodies)),
	}
	for _, body := range Bodies {
		result.Positions[body] = PositionAt(body, longitudes[body])
	}
	for _, body := range Planets {
		result.BodyHouse[body] = AssignHouse(result.Positions[body].Longitude, result.Houses)
	}
	// The ascendant opens the first house by definition.
	result.BodyHouse[BodyAscendant] = 1

	c.logger.Debug("chart computed", "mode", result.Mode, "julian_day", jd,
		"sun", result.SignOf(BodySun).String(), "moon", result.SignOf(BodyMoon).String(),
		"rising", result.SignOf(BodyAscendant).String())
	return result, nil
}

func (c *Calculator) heuristic(m BirthMoment, geo GeoLocation) (map[BodyID]float64, [12]float64) {
	signs := heuristicSigns(m, geo.Latitude)
	longitudes := make(map[BodyID]float64, len(signs))
	for body, sign := range signs {
		longitudes[body] = heuristicLongitude(sign, m)
	}
	return longitudes, EqualCusps(longitudes[BodyAscendant])
}

// lookup issues one ephemeris call per planet plus one house call, concurrently.
func (c *Calculator) lookup(ctx context.Context, jd float64, geo GeoLocation) (map[BodyID]float64, [12]float64, error) {
	g, gctx := errgroup.WithContext(ctx)

	planetLon := make([]float64, len(Planets))
	for i, body := range Planets {
		g.Go(func() error {
			lon, err := c.ephemeris.BodyLongitude(gctx, jd, body)
			if err != nil {
				return fmt.Errorf("%w: %s position: %w", ErrChartComputation, body, err)
			}
			planetLon[i] = lon
			return nil
		})
	}

	var table HouseTable
	g.Go(func() error {
		t, err := c.ephemeris.HouseCusps(gctx, jd, geo.Latitude, geo.Longitude, c.houseSystem)
		if err != nil {
			return fmt.Errorf("%w: houses: %w", ErrChartComputation, err)
		}
		table = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, [12]float64{}, err
	}

	longitudes := make(map[BodyID]float64, len(Bodies))
	for i, body := range Planets {
		longitudes[body] = planetLon[i]
	}
	longitudes[BodyAscendant] = table.Ascendant
	return longitudes, table.Cusps, nil
}
