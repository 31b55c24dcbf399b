package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-astrology/internal/infra/llm/gateway"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_PATH", "")
	for _, key := range []string{"KIMI_API_KEY", "BAIDU_API_KEY", "BAIDU_SECRET_KEY", "QWEN_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "PORT", "HTTP_ADDRESS", "LLM_ORDER", "EPHEMERIS_MODE"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":3000", cfg.HTTP.Address)
	require.Equal(t, 30*time.Second, cfg.Report.RequestTimeout)
	require.Equal(t, time.Second, cfg.Report.CategoryInterval)
	require.Equal(t, EphemerisHeuristic, cfg.Ephemeris.Mode)
	require.Equal(t, "AstroAI/1.0", cfg.Geocoding.UserAgent)
	require.Equal(t, []string{"kimi", "baidu", "qwen", "openai", "gemini"}, cfg.LLM.Order)
	require.Empty(t, cfg.Credentials())
}

func TestLoadFromFileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":8080"
report:
  requestTimeout: 20s
  categoryInterval: 0s
ephemeris:
  mode: remote
  baseUrl: http://ephemeris.local
llm:
  order: [qwen, kimi]
  kimi:
    apiKey: from-file
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("KIMI_API_KEY", "from-env")
	t.Setenv("BAIDU_API_KEY", "baidu-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 20*time.Second, cfg.Report.RequestTimeout)
	require.Zero(t, cfg.Report.CategoryInterval)
	require.Equal(t, EphemerisRemote, cfg.Ephemeris.Mode)

	creds := cfg.Credentials()
	require.Equal(t, "from-env", creds[gateway.Kimi].APIKey)
	// Baidu is listed but the missing secret is the gateway's concern.
	require.Equal(t, gateway.Credential{APIKey: "baidu-key"}, creds[gateway.Baidu])
	_, ok := creds[gateway.Qwen]
	require.False(t, ok)

	gw := cfg.Gateway()
	require.Equal(t, []gateway.ProviderID{gateway.Qwen, gateway.Kimi}, gw.Order)
	require.InDelta(t, 0.7, gw.Temperature, 1e-6)
}

func TestLoadReadsDotEnv(t *testing.T) {
	isolate(t)
	envPath := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("QWEN_API_KEY=dotenv-key\n"), 0o600))
	t.Setenv("ENV_FILE", envPath)
	// godotenv never overrides variables that are already set, so clear it.
	require.NoError(t, os.Unsetenv("QWEN_API_KEY"))
	t.Cleanup(func() { _ = os.Unsetenv("QWEN_API_KEY") })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dotenv-key", cfg.Credentials()[gateway.Qwen].APIKey)
}

func TestPortEnvSetsAddress(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "5001")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":5001", cfg.HTTP.Address)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.HTTP.Address = "" }},
		{"zero report timeout", func(c *Config) { c.Report.RequestTimeout = 0 }},
		{"write timeout too short", func(c *Config) { c.HTTP.WriteTimeout = 10 * time.Second }},
		{"unknown ephemeris mode", func(c *Config) { c.Ephemeris.Mode = "swiss" }},
		{"remote without url", func(c *Config) { c.Ephemeris.Mode = EphemerisRemote }},
		{"long house system", func(c *Config) { c.Ephemeris.HouseSystem = "PK" }},
		{"unknown provider", func(c *Config) { c.LLM.Order = []string{"kimi", "claude"} }},
		{"valkey without addr", func(c *Config) { c.History.Archive.Backend = ArchiveValkey }},
		{"s3 without bucket", func(c *Config) {
			c.History.Archive.Backend = ArchiveS3
			c.History.S3.Endpoint = "http://minio:9000"
		}},
		{"unknown archive", func(c *Config) { c.History.Archive.Backend = "disk" }},
		{"rate limit without rpm", func(c *Config) { c.HTTP.RateLimit.RequestsPerMinute = 0 }},
		{"retry without attempts", func(c *Config) { c.HTTP.Retry.MaxAttempts = 0 }},
	}
	require.NoError(t, defaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
