//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ai-astrology/internal/bootstrap"
	"github.com/yanqian/ai-astrology/internal/domain/astroreport"
	"github.com/yanqian/ai-astrology/internal/domain/chart"
	"github.com/yanqian/ai-astrology/internal/domain/history"
	"github.com/yanqian/ai-astrology/internal/infra/config"
	"github.com/yanqian/ai-astrology/internal/infra/geocoding/nominatim"
	"github.com/yanqian/ai-astrology/internal/infra/llm/gateway"
	httpiface "github.com/yanqian/ai-astrology/internal/interface/http"
	"github.com/yanqian/ai-astrology/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		bootstrap.ReportConfig,
		bootstrap.Geocoder,
		bootstrap.Ephemeris,
		bootstrap.Calculator,
		bootstrap.Gateway,
		provideHistoryConfig,
		provideArchive,
		provideRunLog,
		astroreport.NewService,
		history.NewService,
		wire.Bind(new(astroreport.Geocoder), new(*nominatim.Client)),
		wire.Bind(new(astroreport.ChartCalculator), new(*chart.Calculator)),
		wire.Bind(new(astroreport.TextGenerator), new(*gateway.Gateway)),
		wire.Bind(new(httpiface.ProviderChain), new(*gateway.Gateway)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
