package gateway

import (
	"strings"
	"time"
)

// ProviderID names a provider variant.
type ProviderID string

const (
	Kimi   ProviderID = "kimi"
	Baidu  ProviderID = "baidu"
	Qwen   ProviderID = "qwen"
	OpenAI ProviderID = "openai"
	Gemini ProviderID = "gemini"
)

// DefaultOrder is the fallback priority: Chinese-language providers first.
var DefaultOrder = []ProviderID{Kimi, Baidu, Qwen, OpenAI, Gemini}

// Known reports whether id names a supported variant.
func Known(id ProviderID) bool {
	for _, known := range DefaultOrder {
		if id == known {
			return true
		}
	}
	return false
}

// Credential is the secret material for one provider. Only Baidu uses SecretKey.
type Credential struct {
	APIKey    string
	SecretKey string
}

func (c Credential) usable(id ProviderID) bool {
	if strings.TrimSpace(c.APIKey) == "" {
		return false
	}
	if id == Baidu {
		return strings.TrimSpace(c.SecretKey) != ""
	}
	return true
}

// Credentials is a partial credential map keyed by provider.
type Credentials map[ProviderID]Credential

// ProviderSettings overrides endpoint and model for one provider.
type ProviderSettings struct {
	BaseURL  string
	TokenURL string
	Model    string
}

// Config tunes the gateway.
type Config struct {
	Order       []ProviderID
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	Providers   map[ProviderID]ProviderSettings
}

const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 1200
)

func (c Config) withDefaults() Config {
	if len(c.Order) == 0 {
		c.Order = DefaultOrder
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	return c
}

func (c Config) settings(id ProviderID) ProviderSettings {
	s := c.Providers[id]
	d := defaultSettings[id]
	if strings.TrimSpace(s.BaseURL) == "" {
		s.BaseURL = d.BaseURL
	}
	if strings.TrimSpace(s.TokenURL) == "" {
		s.TokenURL = d.TokenURL
	}
	if strings.TrimSpace(s.Model) == "" {
		s.Model = d.Model
	}
	return s
}

var defaultSettings = map[ProviderID]ProviderSettings{
	Kimi:   {BaseURL: "https://api.moonshot.cn/v1", Model: "moonshot-v1-8k"},
	Baidu:  {BaseURL: "https://aip.baidubce.com/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/completions", TokenURL: "https://aip.baidubce.com/oauth/2.0/token"},
	Qwen:   {BaseURL: "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation", Model: "qwen-turbo"},
	OpenAI: {BaseURL: "https://api.openai.com/v1", Model: "gpt-3.5-turbo"},
	Gemini: {Model: "gemini-2.0-flash"},
}
