package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/yanqian/ai-astrology/pkg/metrics"
)

// geminiProvider is SDK backed rather than adapter driven.
type geminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func newGeminiProvider(ctx context.Context, s ProviderSettings, cred Credential, cfg Config, httpClient *http.Client) (*geminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cred.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(s.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &geminiProvider{
		client:      client,
		model:       s.Model,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
	}, nil
}

func (p *geminiProvider) ID() ProviderID { return Gemini }

func (p *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.temperature),
		MaxOutputTokens: p.maxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", classifyGeminiError(err)
	}
	if resp.UsageMetadata != nil {
		metrics.RecordTokenUsage(string(Gemini), metrics.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		})
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", newProviderError(Gemini, KindParse, 0, errors.New("response carried no text"))
	}
	return text, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := KindHTTP
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			kind = KindAuth
		}
		return newProviderError(Gemini, kind, apiErr.Code, err)
	}
	return newProviderError(Gemini, KindTransport, 0, err)
}
