package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yanqian/ai-astrology/pkg/metrics"
)

// qwenAdapter talks to DashScope text generation.
type qwenAdapter struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float32
	maxTokens   int
}

func newQwenAdapter(s ProviderSettings, cred Credential, cfg Config) *qwenAdapter {
	return &qwenAdapter{
		endpoint:    s.BaseURL,
		model:       s.Model,
		apiKey:      cred.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (a *qwenAdapter) ID() ProviderID { return Qwen }

func (a *qwenAdapter) BuildAuth(context.Context, *http.Client) (Auth, error) {
	return Auth{Token: a.apiKey}, nil
}

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []baiduMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		Temperature float32 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	} `json:"parameters"`
}

type qwenResponse struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func (a *qwenAdapter) BuildRequest(ctx context.Context, auth Auth, prompt string) (*http.Request, error) {
	var body qwenRequest
	body.Model = a.model
	body.Input.Messages = []baiduMessage{{Role: "user", Content: prompt}}
	body.Parameters.Temperature = a.temperature
	body.Parameters.MaxTokens = a.maxTokens

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode qwen request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build qwen request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (a *qwenAdapter) ExtractText(body []byte) (string, error) {
	var resp qwenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode qwen response: %w", err)
	}
	text := strings.TrimSpace(resp.Output.Text)
	if text == "" {
		return "", errors.New("missing output.text field")
	}
	return text, nil
}

func (a *qwenAdapter) ExtractUsage(body []byte) metrics.TokenUsage {
	var resp qwenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return metrics.TokenUsage{}
	}
	return metrics.TokenUsage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
}
