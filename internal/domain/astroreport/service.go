package astroreport

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/ai-astrology/internal/domain/chart"
	apperrors "github.com/yanqian/ai-astrology/pkg/errors"
	"github.com/yanqian/ai-astrology/pkg/metrics"
	"github.com/yanqian/ai-astrology/pkg/pacer"
)

// Service exposes report generation.
type Service interface {
	Generate(ctx context.Context, req Request) (Report, error)
}

// Geocoder resolves a place name.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (chart.GeoLocation, error)
}

// ChartCalculator casts a chart.
type ChartCalculator interface {
	Compute(ctx context.Context, birth chart.BirthInput, geo chart.GeoLocation) (chart.ChartResult, error)
}

// TextGenerator produces narrative text, trying providers in order.
type TextGenerator interface {
	CallWithFallback(ctx context.Context, prompt string) (string, error)
}

type service struct {
	cfg      Config
	geocoder Geocoder
	charts   ChartCalculator
	llm      TextGenerator
	logger   *slog.Logger
}

// NewService wires up the report pipeline.
func NewService(cfg Config, geocoder Geocoder, charts ChartCalculator, llm TextGenerator, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg.withDefaults(),
		geocoder: geocoder,
		charts:   charts,
		llm:      llm,
		logger:   logger.With("component", "astroreport.service"),
	}
}

// MissingFields lists absent request fields in date, time, location order.
func MissingFields(req Request) []string {
	var missing []string
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(req.Time) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(req.Location) == "" {
		missing = append(missing, "location")
	}
	return missing
}

// Generate runs the whole pipeline under the configured deadline. When a
// themed or house section fails the report built so far is returned with the
// error; on timeout no report is returned.
func (s *service) Generate(ctx context.Context, req Request) (Report, error) {
	report, err := s.generate(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = apperrors.CodeOf(err)
	}
	metrics.RecordReport(outcome)
	return report, err
}

func (s *service) generate(parent context.Context, req Request) (Report, error) {
	if missing := MissingFields(req); len(missing) > 0 {
		return Report{}, apperrors.Wrap(apperrors.CodeInvalidInput, "Missing required fields: "+strings.Join(missing, ", "), nil)
	}

	ctx, cancel := context.WithTimeout(parent, s.cfg.RequestTimeout)
	defer cancel()

	stage := time.Now()
	geo, err := s.geocoder.Resolve(ctx, req.Location)
	metrics.ObserveStage("geocode", time.Since(stage).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, s.timeout(ctx, "geocode")
		}
		if errors.Is(err, chart.ErrLocationNotFound) {
			return Report{}, apperrors.Wrap(apperrors.CodeLocationNotFound, "location not found: "+req.Location, err)
		}
		return Report{}, apperrors.Wrap(apperrors.CodeGeocoding, "geocoding failed", err)
	}
	s.logger.Info("location geocoded", "query", req.Location, "name", geo.Name, "lat", geo.Latitude, "lng", geo.Longitude)

	stage = time.Now()
	result, err := s.charts.Compute(ctx, chart.BirthInput{Date: req.Date, Time: req.Time, Place: req.Location}, geo)
	metrics.ObserveStage("chart", time.Since(stage).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, s.timeout(ctx, "chart")
		}
		return Report{}, apperrors.Wrap(apperrors.CodeChart, "chart computation failed", err)
	}
	s.logger.Info("chart computed", "mode", result.Mode,
		"sun", result.SignOf(chart.BodySun).String(), "sun_house", result.HouseOf(chart.BodySun),
		"moon", result.SignOf(chart.BodyMoon).String(), "moon_house", result.HouseOf(chart.BodyMoon),
		"rising", result.SignOf(chart.BodyAscendant).String())

	report := Report{
		Data:     buildReportData(result),
		Location: geo.Name,
		Chart:    result,
	}
	if report.Location == "" {
		report.Location = req.Location
	}

	stage = time.Now()
	overview, err := s.llm.CallWithFallback(ctx, buildOverviewPrompt(result))
	metrics.ObserveStage("overview", time.Since(stage).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, s.timeout(ctx, "overview")
		}
		s.logger.Warn("overview generation failed, serving canned text", "error", err)
		overview = cannedOverview(result)
	}
	report.Data.Analysis = strings.TrimSpace(overview)

	// One pacer per request keeps themed calls spaced against the provider budget.
	p := pacer.New(s.cfg.CategoryInterval, 1)
	var categorized CategorizedAnalysis
	for _, category := range Categories {
		if err := p.Wait(ctx); err != nil {
			return Report{}, s.timeout(ctx, string(category))
		}
		stage = time.Now()
		text, err := s.llm.CallWithFallback(ctx, buildCategoryPrompt(result, category))
		metrics.ObserveStage(string(category), time.Since(stage).Seconds())
		if err != nil {
			if ctx.Err() != nil {
				return Report{}, s.timeout(ctx, string(category))
			}
			s.logger.Error("categorized analysis failed", "category", category, "error", err)
			return report, apperrors.Wrap(apperrors.CodeLLM, "failed to generate "+string(category)+" analysis", err)
		}
		categorized.set(category, strings.TrimSpace(text))
		s.logger.Info("categorized analysis generated", "category", category)
	}
	report.Data.CategorizedAnalysis = &categorized

	stage = time.Now()
	houseText, err := s.llm.CallWithFallback(ctx, buildHouseAnalysisPrompt(result))
	metrics.ObserveStage("house_analysis", time.Since(stage).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, s.timeout(ctx, "house_analysis")
		}
		s.logger.Error("house analysis failed", "error", err)
		return report, apperrors.Wrap(apperrors.CodeLLM, "failed to generate house analysis", err)
	}
	report.Data.HouseAnalysis = strings.TrimSpace(houseText)

	s.logger.Info("report generated", "location", report.Location)
	return report, nil
}

// timeout also covers the pacer refusing to wait past the deadline, when ctx
// itself is not done yet.
func (s *service) timeout(ctx context.Context, stage string) error {
	err := ctx.Err()
	if err == nil {
		err = context.DeadlineExceeded
	}
	s.logger.Warn("report generation aborted", "stage", stage, "error", err)
	return apperrors.Wrap(apperrors.CodeTimeout, "report generation timed out", err)
}

func buildReportData(c chart.ChartResult) ReportData {
	data := ReportData{
		SunSign:         c.SignOf(chart.BodySun).String(),
		MoonSign:        c.SignOf(chart.BodyMoon).String(),
		RisingSign:      c.SignOf(chart.BodyAscendant).String(),
		MercurySign:     c.SignOf(chart.BodyMercury).String(),
		VenusSign:       c.SignOf(chart.BodyVenus).String(),
		MarsSign:        c.SignOf(chart.BodyMars).String(),
		Houses:          make(map[string]HouseView, len(c.Houses)),
		PlanetHouses:    make(map[string]int, len(chart.Bodies)),
		PlanetDegrees:   make(map[string]float64, len(chart.Bodies)),
		PlanetMeanings:  make(map[string]string, len(planetMeanings)),
		JulianDay:       c.JulianDay,
		CalculationMode: string(c.Mode),
	}
	for _, h := range c.Houses {
		data.Houses[strconv.Itoa(h.Number)] = HouseView{
			Sign:     h.Sign.String(),
			Degree:   round2(h.Degree),
			Name:     h.Name,
			Meaning:  h.Meaning,
			Keywords: append([]string(nil), h.Keywords...),
		}
	}
	for _, body := range chart.Bodies {
		data.PlanetHouses[string(body)] = c.HouseOf(body)
		data.PlanetDegrees[string(body)] = round2(c.Positions[body].Degree)
	}
	for body, meaning := range planetMeanings {
		data.PlanetMeanings[string(body)] = meaning
	}
	return data
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
