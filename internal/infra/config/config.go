package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/ai-astrology/internal/infra/llm/gateway"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Report    ReportConfig    `yaml:"report"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Ephemeris EphemerisConfig `yaml:"ephemeris"`
	LLM       LLMConfig       `yaml:"llm"`
	History   HistoryConfig   `yaml:"history"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
	CORS         CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// CORSConfig lists origins allowed to call the API. "*" allows any.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// ReportConfig tunes the report pipeline. A zero CategoryInterval turns
// the spacing between categorized LLM calls off.
type ReportConfig struct {
	RequestTimeout   time.Duration `yaml:"requestTimeout"`
	CategoryInterval time.Duration `yaml:"categoryInterval"`
}

// GeocodingConfig points at a Nominatim compatible search API.
type GeocodingConfig struct {
	BaseURL        string        `yaml:"baseUrl"`
	UserAgent      string        `yaml:"userAgent"`
	AcceptLanguage string        `yaml:"acceptLanguage"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Ephemeris modes.
const (
	EphemerisHeuristic = "heuristic"
	EphemerisRemote    = "remote"
)

// EphemerisConfig selects how body positions are obtained.
type EphemerisConfig struct {
	Mode        string        `yaml:"mode"`
	BaseURL     string        `yaml:"baseUrl"`
	HouseSystem string        `yaml:"houseSystem"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LLMConfig lists the AI providers and their shared generation settings.
type LLMConfig struct {
	Order       []string       `yaml:"order"`
	Timeout     time.Duration  `yaml:"timeout"`
	Temperature float32        `yaml:"temperature"`
	MaxTokens   int            `yaml:"maxTokens"`
	Kimi        ProviderConfig `yaml:"kimi"`
	Baidu       ProviderConfig `yaml:"baidu"`
	Qwen        ProviderConfig `yaml:"qwen"`
	OpenAI      ProviderConfig `yaml:"openai"`
	Gemini      ProviderConfig `yaml:"gemini"`
}

// ProviderConfig holds credentials and endpoint overrides for one provider.
type ProviderConfig struct {
	APIKey    string `yaml:"apiKey"`
	SecretKey string `yaml:"secretKey"`
	BaseURL   string `yaml:"baseUrl"`
	TokenURL  string `yaml:"tokenUrl"`
	Model     string `yaml:"model"`
}

// Archive backends.
const (
	ArchiveNone   = "none"
	ArchiveMemory = "memory"
	ArchiveValkey = "valkey"
	ArchiveS3     = "s3"
)

// HistoryConfig controls report archiving and the run log.
type HistoryConfig struct {
	Archive  ArchiveConfig  `yaml:"archive"`
	RunLog   RunLogConfig   `yaml:"runLog"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	S3       S3Config       `yaml:"s3"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// ArchiveConfig picks the archive backend.
type ArchiveConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

// RunLogConfig bounds the run log.
type RunLogConfig struct {
	Enabled        bool `yaml:"enabled"`
	MemoryCapacity int  `yaml:"memoryCapacity"`
}

// ValkeyConfig contains connection information for the Valkey archive.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// S3Config contains connection information for the object storage archive.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings for the run log.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				*dst = parsed
			}
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				*dst = parsed
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}

	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("PORT"); v != "" && os.Getenv("HTTP_ADDRESS") == "" {
		cfg.HTTP.Address = ":" + v
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORS.AllowedOrigins = splitList(v)
	}

	setDuration("REPORT_REQUEST_TIMEOUT", &cfg.Report.RequestTimeout)
	setDuration("REPORT_CATEGORY_INTERVAL", &cfg.Report.CategoryInterval)

	setString("GEOCODING_BASE_URL", &cfg.Geocoding.BaseURL)
	setString("GEOCODING_USER_AGENT", &cfg.Geocoding.UserAgent)
	setString("GEOCODING_ACCEPT_LANGUAGE", &cfg.Geocoding.AcceptLanguage)
	setDuration("GEOCODING_TIMEOUT", &cfg.Geocoding.Timeout)

	setString("EPHEMERIS_MODE", &cfg.Ephemeris.Mode)
	setString("EPHEMERIS_BASE_URL", &cfg.Ephemeris.BaseURL)
	setString("EPHEMERIS_HOUSE_SYSTEM", &cfg.Ephemeris.HouseSystem)
	setDuration("EPHEMERIS_TIMEOUT", &cfg.Ephemeris.Timeout)

	if v := os.Getenv("LLM_ORDER"); v != "" {
		cfg.LLM.Order = splitList(v)
	}
	setDuration("LLM_TIMEOUT", &cfg.LLM.Timeout)
	setInt("LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	setString("KIMI_API_KEY", &cfg.LLM.Kimi.APIKey)
	setString("BAIDU_API_KEY", &cfg.LLM.Baidu.APIKey)
	setString("BAIDU_SECRET_KEY", &cfg.LLM.Baidu.SecretKey)
	setString("QWEN_API_KEY", &cfg.LLM.Qwen.APIKey)
	setString("OPENAI_API_KEY", &cfg.LLM.OpenAI.APIKey)
	setString("OPENAI_BASE_URL", &cfg.LLM.OpenAI.BaseURL)
	setString("GEMINI_API_KEY", &cfg.LLM.Gemini.APIKey)
	setString("GEMINI_MODEL", &cfg.LLM.Gemini.Model)

	setString("HISTORY_ARCHIVE_BACKEND", &cfg.History.Archive.Backend)
	setDuration("HISTORY_ARCHIVE_TTL", &cfg.History.Archive.TTL)
	setBool("HISTORY_RUNLOG_ENABLED", &cfg.History.RunLog.Enabled)
	setString("VALKEY_ADDR", &cfg.History.Valkey.Addr)
	setString("S3_ENDPOINT", &cfg.History.S3.Endpoint)
	setString("S3_ACCESS_KEY", &cfg.History.S3.AccessKey)
	setString("S3_SECRET_KEY", &cfg.History.S3.SecretKey)
	setString("S3_BUCKET", &cfg.History.S3.Bucket)
	setString("S3_REGION", &cfg.History.S3.Region)
	setString("POSTGRES_DSN", &cfg.History.Postgres.DSN)
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MaxConns = int32(parsed)
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":3000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 45 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             5,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/generate-report",
					"/api/generate-report",
				},
			},
			CORS: CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Report: ReportConfig{
			RequestTimeout:   30 * time.Second,
			CategoryInterval: time.Second,
		},
		Geocoding: GeocodingConfig{
			BaseURL:        "https://nominatim.openstreetmap.org",
			UserAgent:      "AstroAI/1.0",
			AcceptLanguage: "zh-CN",
			Timeout:        10 * time.Second,
		},
		Ephemeris: EphemerisConfig{
			Mode:        EphemerisHeuristic,
			HouseSystem: "P",
			Timeout:     10 * time.Second,
		},
		LLM: LLMConfig{
			Order:       []string{"kimi", "baidu", "qwen", "openai", "gemini"},
			Timeout:     25 * time.Second,
			Temperature: 0.7,
			MaxTokens:   1200,
		},
		History: HistoryConfig{
			Archive: ArchiveConfig{
				Backend: ArchiveMemory,
				TTL:     7 * 24 * time.Hour,
			},
			RunLog: RunLogConfig{
				Enabled:        true,
				MemoryCapacity: 500,
			},
			Valkey: ValkeyConfig{Prefix: "astro"},
			S3:     S3Config{Region: "auto", Prefix: "reports"},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Report.RequestTimeout <= 0 {
		return errors.New("report.requestTimeout must be positive")
	}
	if c.Report.CategoryInterval < 0 {
		return errors.New("report.categoryInterval cannot be negative")
	}
	if c.HTTP.WriteTimeout > 0 && c.HTTP.WriteTimeout <= c.Report.RequestTimeout {
		return errors.New("http.writeTimeout must exceed report.requestTimeout")
	}
	if strings.TrimSpace(c.Geocoding.UserAgent) == "" {
		return errors.New("geocoding.userAgent cannot be empty")
	}
	switch c.Ephemeris.Mode {
	case EphemerisHeuristic:
	case EphemerisRemote:
		if strings.TrimSpace(c.Ephemeris.BaseURL) == "" {
			return errors.New("ephemeris.baseUrl cannot be empty in remote mode")
		}
	default:
		return fmt.Errorf("ephemeris.mode %q must be heuristic or remote", c.Ephemeris.Mode)
	}
	if len(c.Ephemeris.HouseSystem) != 1 {
		return errors.New("ephemeris.houseSystem must be a single letter")
	}
	for _, id := range c.LLM.Order {
		if !gateway.Known(gateway.ProviderID(id)) {
			return fmt.Errorf("llm.order contains unknown provider %q", id)
		}
	}
	if c.LLM.MaxTokens < 0 {
		return errors.New("llm.maxTokens cannot be negative")
	}
	switch c.History.Archive.Backend {
	case ArchiveNone, ArchiveMemory:
	case ArchiveValkey:
		if strings.TrimSpace(c.History.Valkey.Addr) == "" {
			return errors.New("history.valkey.addr cannot be empty when the valkey archive is selected")
		}
	case ArchiveS3:
		if strings.TrimSpace(c.History.S3.Endpoint) == "" || strings.TrimSpace(c.History.S3.Bucket) == "" {
			return errors.New("history.s3.endpoint and bucket are required when the s3 archive is selected")
		}
	default:
		return fmt.Errorf("history.archive.backend %q must be none, memory, valkey or s3", c.History.Archive.Backend)
	}
	if c.History.Archive.TTL < 0 {
		return errors.New("history.archive.ttl cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}

// Credentials returns the partial provider credential map; blank entries are omitted.
func (c *Config) Credentials() gateway.Credentials {
	creds := gateway.Credentials{}
	add := func(id gateway.ProviderID, p ProviderConfig) {
		if strings.TrimSpace(p.APIKey) == "" {
			return
		}
		creds[id] = gateway.Credential{APIKey: strings.TrimSpace(p.APIKey), SecretKey: strings.TrimSpace(p.SecretKey)}
	}
	add(gateway.Kimi, c.LLM.Kimi)
	add(gateway.Baidu, c.LLM.Baidu)
	add(gateway.Qwen, c.LLM.Qwen)
	add(gateway.OpenAI, c.LLM.OpenAI)
	add(gateway.Gemini, c.LLM.Gemini)
	return creds
}

// Gateway converts the llm section into gateway settings.
func (c *Config) Gateway() gateway.Config {
	order := make([]gateway.ProviderID, 0, len(c.LLM.Order))
	for _, id := range c.LLM.Order {
		order = append(order, gateway.ProviderID(id))
	}
	settings := func(p ProviderConfig) gateway.ProviderSettings {
		return gateway.ProviderSettings{BaseURL: p.BaseURL, TokenURL: p.TokenURL, Model: p.Model}
	}
	return gateway.Config{
		Order:       order,
		Timeout:     c.LLM.Timeout,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Providers: map[gateway.ProviderID]gateway.ProviderSettings{
			gateway.Kimi:   settings(c.LLM.Kimi),
			gateway.Baidu:  settings(c.LLM.Baidu),
			gateway.Qwen:   settings(c.LLM.Qwen),
			gateway.OpenAI: settings(c.LLM.OpenAI),
			gateway.Gemini: settings(c.LLM.Gemini),
		},
	}
}
