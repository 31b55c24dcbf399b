package gateway

import (
	"context"
	"net/http"

	"github.com/yanqian/ai-astrology/internal/infra/llm/chatgpt"
	"github.com/yanqian/ai-astrology/pkg/metrics"
)

// chatCompletionsAdapter serves OpenAI and Moonshot (Kimi), which share the
// chat completions wire format and bearer auth.
type chatCompletionsAdapter struct {
	id          ProviderID
	baseURL     string
	model       string
	apiKey      string
	temperature float32
	maxTokens   int
}

func newChatCompletionsAdapter(id ProviderID, s ProviderSettings, cred Credential, cfg Config) *chatCompletionsAdapter {
	return &chatCompletionsAdapter{
		id:          id,
		baseURL:     s.BaseURL,
		model:       s.Model,
		apiKey:      cred.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (a *chatCompletionsAdapter) ID() ProviderID { return a.id }

func (a *chatCompletionsAdapter) BuildAuth(context.Context, *http.Client) (Auth, error) {
	return Auth{Token: a.apiKey}, nil
}

func (a *chatCompletionsAdapter) BuildRequest(ctx context.Context, auth Auth, prompt string) (*http.Request, error) {
	return chatgpt.NewHTTPRequest(ctx, a.baseURL, auth.Token,
		chatgpt.UserPrompt(a.model, prompt, a.temperature, a.maxTokens))
}

func (a *chatCompletionsAdapter) ExtractText(body []byte) (string, error) {
	resp, err := chatgpt.DecodeResponse(body)
	if err != nil {
		return "", err
	}
	return resp.Text()
}

func (a *chatCompletionsAdapter) ExtractUsage(body []byte) metrics.TokenUsage {
	resp, err := chatgpt.DecodeResponse(body)
	if err != nil {
		return metrics.TokenUsage{}
	}
	return resp.Usage.TokenUsage()
}
