package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-astrology/internal/domain/astroreport"
	"github.com/yanqian/ai-astrology/internal/infra/config"
)

func TestAppServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	cfg := &config.Config{Report: config.ReportConfig{RequestTimeout: time.Second}}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &http.Server{Handler: mux})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.JSONEq(t, `{"success":true}`, string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestGatewayExcludesProvidersWithoutCredentials(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		Order: []string{"kimi", "baidu", "qwen"},
		Baidu: config.ProviderConfig{APIKey: "only-half"},
		Qwen:  config.ProviderConfig{APIKey: "qwen-key"},
	}}
	gw := Gateway(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Len(t, gw.Chain(), 1)
	require.EqualValues(t, "qwen", gw.Chain()[0])
}

func TestEphemerisFallsBackToHeuristic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.Nil(t, Ephemeris(&config.Config{Ephemeris: config.EphemerisConfig{Mode: config.EphemerisHeuristic}}, logger))
	require.Nil(t, Ephemeris(&config.Config{Ephemeris: config.EphemerisConfig{Mode: config.EphemerisRemote}}, logger))
	require.NotNil(t, Ephemeris(&config.Config{Ephemeris: config.EphemerisConfig{Mode: config.EphemerisRemote, BaseURL: "http://eph.local"}}, logger))
}

func TestReportConfigZeroIntervalDisablesPacing(t *testing.T) {
	off := ReportConfig(&config.Config{Report: config.ReportConfig{RequestTimeout: time.Second}})
	require.Equal(t, astroreport.NoPacing, off.CategoryInterval)
	require.Equal(t, time.Second, off.RequestTimeout)

	on := ReportConfig(&config.Config{Report: config.ReportConfig{CategoryInterval: 250 * time.Millisecond}})
	require.Equal(t, 250*time.Millisecond, on.CategoryInterval)
}
