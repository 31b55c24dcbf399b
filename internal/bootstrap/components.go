package bootstrap

import (
	"log/slog"

	"github.com/yanqian/ai-astrology/internal/domain/astroreport"
	"github.com/yanqian/ai-astrology/internal/domain/chart"
	"github.com/yanqian/ai-astrology/internal/infra/config"
	"github.com/yanqian/ai-astrology/internal/infra/ephemeris/remote"
	"github.com/yanqian/ai-astrology/internal/infra/geocoding/nominatim"
	"github.com/yanqian/ai-astrology/internal/infra/llm/gateway"
)

// The constructors below are shared by the HTTP service and the CLI.

// ReportConfig maps the report section onto the pipeline settings.
// A zero categoryInterval in config switches pacing off.
func ReportConfig(cfg *config.Config) astroreport.Config {
	interval := cfg.Report.CategoryInterval
	if interval == 0 {
		interval = astroreport.NoPacing
	}
	return astroreport.Config{
		RequestTimeout:   cfg.Report.RequestTimeout,
		CategoryInterval: interval,
	}
}

// Geocoder builds the Nominatim client.
func Geocoder(cfg *config.Config) *nominatim.Client {
	return nominatim.NewClient(nominatim.Config{
		BaseURL:        cfg.Geocoding.BaseURL,
		UserAgent:      cfg.Geocoding.UserAgent,
		AcceptLanguage: cfg.Geocoding.AcceptLanguage,
		Timeout:        cfg.Geocoding.Timeout,
	})
}

// Ephemeris returns the remote position service, or nil for heuristic mode.
func Ephemeris(cfg *config.Config, logger *slog.Logger) chart.Ephemeris {
	if cfg.Ephemeris.Mode != config.EphemerisRemote {
		logger.Info("chart calculator in heuristic mode")
		return nil
	}
	client, err := remote.NewClient(cfg.Ephemeris.BaseURL, cfg.Ephemeris.Timeout)
	if err != nil {
		logger.Error("invalid ephemeris configuration, using heuristic mode", "error", err)
		return nil
	}
	logger.Info("chart calculator using remote ephemeris", "base_url", cfg.Ephemeris.BaseURL, "house_system", cfg.Ephemeris.HouseSystem)
	return client
}

// Calculator builds the chart calculator for the configured mode.
func Calculator(cfg *config.Config, ephemeris chart.Ephemeris, logger *slog.Logger) *chart.Calculator {
	return chart.NewCalculator(ephemeris, cfg.Ephemeris.HouseSystem, logger)
}

// Gateway builds the provider chain from the partial credential map.
func Gateway(cfg *config.Config, logger *slog.Logger) *gateway.Gateway {
	gw := gateway.NewGateway(cfg.Gateway(), cfg.Credentials(), logger)
	if len(gw.Chain()) == 0 {
		logger.Warn("no AI provider credentials configured; narrative sections will fail")
	}
	return gw
}
