package chatgpt

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

// DefaultBaseURL is the OpenAI API root. Moonshot (Kimi) serves the same wire format.
const DefaultBaseURL = "https://api.openai.com/v1"

// ErrEmptyChoice is returned when a completion carries no usable message.
var ErrEmptyChoice = errors.New("chat completion returned no content")

// Message mirrors the OpenAI chat message structure.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the payload sent to an OpenAI compatible API.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Usage is the token accounting block of a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TokenUsage converts the wire usage into the metrics representation.
func (u Usage) TokenUsage() metrics.TokenUsage {
	return metrics.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

// ChatCompletionResponse captures the response for non streaming calls.
type ChatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// UserPrompt builds a single-turn request.
func UserPrompt(model, prompt string, temperature float32, maxTokens int) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// NewHTTPRequest builds a POST {baseURL}/chat/completions request authorised with apiKey.
func NewHTTPRequest(ctx context.Context, baseURL, apiKey string, req ChatCompletionRequest) (*http.Request, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat completion request: %w", err)
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

// DecodeResponse parses a completion body.
func DecodeResponse(body []byte) (ChatCompletionResponse, error) {
	var out ChatCompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode chat completion: %w", err)
	}
	return out, nil
}

// Text returns the trimmed content of the first choice.
func (r ChatCompletionResponse) Text() (string, error) {
	if len(r.Choices) == 0 {
		return "", ErrEmptyChoice
	}
	text := strings.TrimSpace(r.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyChoice
	}
	return text, nil
}
