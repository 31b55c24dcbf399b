package astroreport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yanqian/ai-astrology/internal/domain/chart"
	apperrors "github.com/yanqian/ai-astrology/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var beijing = chart.GeoLocation{Latitude: 39.9042, Longitude: 116.4074, Name: "北京市, 中国"}

type stubGeocoder struct {
	geo   chart.GeoLocation
	err   error
	calls int
}

func (s *stubGeocoder) Resolve(_ context.Context, query string) (chart.GeoLocation, error) {
	s.calls++
	if s.err != nil {
		return chart.GeoLocation{}, s.err
	}
	return s.geo, nil
}

type stubChart struct {
	err error
}

func (s stubChart) Compute(ctx context.Context, birth chart.BirthInput, geo chart.GeoLocation) (chart.ChartResult, error) {
	if s.err != nil {
		return chart.ChartResult{}, s.err
	}
	return chart.NewCalculator(nil, "", newTestLogger()).Compute(ctx, birth, geo)
}

// scriptedLLM answers prompts by matching a marker in the prompt text.
type scriptedLLM struct {
	mu      sync.Mutex
	prompts []string
	times   []time.Time
	fail    func(prompt string) error
	block   bool
}

func (s *scriptedLLM) CallWithFallback(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.times = append(s.times, time.Now())
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.fail != nil {
		if err := s.fail(prompt); err != nil {
			return "", err
		}
	}
	return " " + sectionOf(prompt) + " text ", nil
}

func sectionOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "综合分析报告"):
		return "overview"
	case strings.Contains(prompt, "性格特质深度分析"):
		return "personality"
	case strings.Contains(prompt, "沟通风格分析"):
		return "communication"
	case strings.Contains(prompt, "爱情观与关系分析"):
		return "love"
	case strings.Contains(prompt, "事业倾向分析"):
		return "career"
	case strings.Contains(prompt, "宫位分析报告"):
		return "houses"
	default:
		return "unknown"
	}
}

func (s *scriptedLLM) sections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.prompts))
	for _, p := range s.prompts {
		out = append(out, sectionOf(p))
	}
	return out
}

var errAllFailed = errors.New("all providers failed: kimi: http error (status 503)")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(geo Geocoder, calc ChartCalculator, llm TextGenerator, cfg Config) Service {
	if cfg.CategoryInterval == 0 {
		cfg.CategoryInterval = -1
	}
	return NewService(cfg, geo, calc, llm, newTestLogger())
}

func beijingRequest() Request {
	return Request{Date: "1990-01-01", Time: "12:00", Location: "北京"}
}

func TestGenerateFullReport(t *testing.T) {
	llm := &scriptedLLM{}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm, Config{})

	report, err := svc.Generate(context.Background(), beijingRequest())
	require.NoError(t, err)

	require.Equal(t, []string{"overview", "personality", "communication", "love", "career", "houses"}, llm.sections())
	require.Equal(t, "北京市, 中国", report.Location)

	data := report.Data
	require.Equal(t, "摩羯座", data.SunSign)
	require.Equal(t, "巨蟹座", data.MoonSign)
	require.Equal(t, "天蝎座", data.RisingSign)
	require.Equal(t, "overview text", data.Analysis)
	require.NotNil(t, data.CategorizedAnalysis)
	require.Equal(t, CategorizedAnalysis{
		Personality:   "personality text",
		Communication: "communication text",
		Love:          "love text",
		Career:        "career text",
	}, *data.CategorizedAnalysis)
	require.Equal(t, "houses text", data.HouseAnalysis)

	require.Len(t, data.Houses, 12)
	require.Contains(t, data.Houses, "1")
	require.Contains(t, data.Houses, "12")
	require.Equal(t, "天蝎座", data.Houses["1"].Sign)
	require.NotEmpty(t, data.Houses["10"].Keywords)
	require.Equal(t, 1, data.PlanetHouses["rising"])
	require.Equal(t, 3, data.PlanetHouses["sun"])
	require.Len(t, data.PlanetMeanings, 6)
	require.Equal(t, "heuristic", data.CalculationMode)
	require.InDelta(t, 2447893.0, data.JulianDay, 1e-9)
}

func TestGeneratePromptsCarryChartFacts(t *testing.T) {
	llm := &scriptedLLM{}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm, Config{})
	_, err := svc.Generate(context.Background(), beijingRequest())
	require.NoError(t, err)

	overview := llm.prompts[0]
	require.Contains(t, overview, "太阳星座：摩羯座 (位于第3宫)")
	require.Contains(t, overview, "上升星座：天蝎座 (位于第1宫)")
	require.Equal(t, 6, strings.Count(overview, "星座："))

	love := llm.prompts[3]
	require.Contains(t, love, "金星星座")
	require.Contains(t, love, "火星星座")
	require.NotContains(t, love, "水星星座")

	houses := llm.prompts[5]
	require.Equal(t, 5, strings.Count(houses, "宫："))
	require.NotContains(t, houses, "上升在第")
}

func TestGenerateMissingFields(t *testing.T) {
	geo := &stubGeocoder{geo: beijing}
	svc := newTestService(geo, stubChart{}, &scriptedLLM{}, Config{})

	_, err := svc.Generate(context.Background(), Request{Location: "北京"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.EqualError(t, err, "Missing required fields: date, time")
	require.Zero(t, geo.calls)

	require.Equal(t, []string{"location"}, MissingFields(Request{Date: "1990-01-01", Time: "12:00", Location: "  "}))
	require.Empty(t, MissingFields(beijingRequest()))
}

func TestGenerateGeocodingFailures(t *testing.T) {
	svc := newTestService(&stubGeocoder{err: fmt.Errorf("%w: Atlantis", chart.ErrLocationNotFound)}, stubChart{}, &scriptedLLM{}, Config{})
	_, err := svc.Generate(context.Background(), Request{Date: "1990-01-01", Time: "12:00", Location: "Atlantis"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeLocationNotFound))
	require.ErrorIs(t, err, chart.ErrLocationNotFound)

	llm := &scriptedLLM{}
	svc = newTestService(&stubGeocoder{err: fmt.Errorf("%w: status=502", chart.ErrGeocodingTransport)}, stubChart{}, llm, Config{})
	_, err = svc.Generate(context.Background(), beijingRequest())
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeocoding))
	require.Empty(t, llm.sections())
}

func TestGenerateChartFailure(t *testing.T) {
	llm := &scriptedLLM{}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{err: chart.ErrChartComputation}, llm, Config{})
	report, err := svc.Generate(context.Background(), beijingRequest())
	require.True(t, apperrors.IsCode(err, apperrors.CodeChart))
	require.Empty(t, report.Data.SunSign)
	require.Empty(t, llm.sections())
}

func TestGenerateMalformedDateIsChartError(t *testing.T) {
	svc := NewService(Config{CategoryInterval: -1}, &stubGeocoder{geo: beijing},
		chart.NewCalculator(nil, "", newTestLogger()), &scriptedLLM{}, newTestLogger())
	_, err := svc.Generate(context.Background(), Request{Date: "1990/01/01", Time: "12:00", Location: "北京"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeChart))
	require.ErrorIs(t, err, chart.ErrChartComputation)
}

func TestGenerateOverviewFallsBackToCannedText(t *testing.T) {
	llm := &scriptedLLM{fail: func(prompt string) error {
		if sectionOf(prompt) == "overview" {
			return errAllFailed
		}
		return nil
	}}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm, Config{})

	report, err := svc.Generate(context.Background(), beijingRequest())
	require.NoError(t, err)
	require.Contains(t, report.Data.Analysis, "你的太阳星座是摩羯座")
	require.Contains(t, report.Data.Analysis, "你的上升星座是天蝎座")
	require.Equal(t, "career text", report.Data.CategorizedAnalysis.Career)
}

func TestGenerateChainExhaustedEverywhere(t *testing.T) {
	llm := &scriptedLLM{fail: func(string) error { return errAllFailed }}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm, Config{})

	report, err := svc.Generate(context.Background(), beijingRequest())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
	require.ErrorIs(t, err, errAllFailed)

	// The overview recovers; themed and house sections do not.
	require.Contains(t, report.Data.Analysis, "独特而美好的你")
	require.Nil(t, report.Data.CategorizedAnalysis)
	require.Empty(t, report.Data.HouseAnalysis)
	require.Equal(t, []string{"overview", "personality"}, llm.sections())
}

func TestGenerateCategoryFailureAbortsRemainingStages(t *testing.T) {
	llm := &scriptedLLM{fail: func(prompt string) error {
		if sectionOf(prompt) == "love" {
			return errAllFailed
		}
		return nil
	}}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm, Config{})

	report, err := svc.Generate(context.Background(), beijingRequest())
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
	require.Contains(t, err.Error(), "love")
	require.Equal(t, "overview text", report.Data.Analysis)
	require.Nil(t, report.Data.CategorizedAnalysis)
	require.Equal(t, []string{"overview", "personality", "communication", "love"}, llm.sections())
}

func TestGenerateHouseAnalysisFailure(t *testing.T) {
	llm := &scriptedLLM{fail: func(prompt string) error {
		if sectionOf(prompt) == "houses" {
			return errAllFailed
		}
		return nil
	}}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm, Config{})

	report, err := svc.Generate(context.Background(), beijingRequest())
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
	require.NotNil(t, report.Data.CategorizedAnalysis)
	require.Empty(t, report.Data.HouseAnalysis)
}

func TestGenerateTimeoutReturnsNoReport(t *testing.T) {
	llm := &scriptedLLM{block: true}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm, Config{RequestTimeout: 30 * time.Millisecond})

	start := time.Now()
	report, err := svc.Generate(context.Background(), beijingRequest())
	require.True(t, apperrors.IsCode(err, apperrors.CodeTimeout))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Empty(t, report.Data.Analysis)
	require.Empty(t, report.Data.SunSign)
	// The canned overview must not mask a timeout.
	require.Equal(t, []string{"overview"}, llm.sections())
}

func TestGenerateTimeoutDuringPacing(t *testing.T) {
	llm := &scriptedLLM{}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm,
		Config{RequestTimeout: 50 * time.Millisecond, CategoryInterval: time.Hour})

	_, err := svc.Generate(context.Background(), beijingRequest())
	require.True(t, apperrors.IsCode(err, apperrors.CodeTimeout))
	require.Equal(t, []string{"overview", "personality"}, llm.sections())
}

func TestGeneratePacesCategorizedCalls(t *testing.T) {
	const interval = 40 * time.Millisecond
	llm := &scriptedLLM{}
	svc := newTestService(&stubGeocoder{geo: beijing}, stubChart{}, llm, Config{CategoryInterval: interval})

	_, err := svc.Generate(context.Background(), beijingRequest())
	require.NoError(t, err)

	require.Len(t, llm.times, 6)
	for i := 2; i <= 4; i++ {
		gap := llm.times[i].Sub(llm.times[i-1])
		require.GreaterOrEqual(t, gap, interval-5*time.Millisecond, "gap before call %d", i)
	}
}
