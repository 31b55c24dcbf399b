package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/yanqian/ai-astrology/pkg/metrics"
)

// baiduAdapter talks to ERNIE. Every call first exchanges the API key and
// secret for an access token, then passes it as a query parameter.
type baiduAdapter struct {
	endpoint    string
	oauth       clientcredentials.Config
	temperature float32
	maxTokens   int
}

func newBaiduAdapter(s ProviderSettings, cred Credential, cfg Config) *baiduAdapter {
	return &baiduAdapter{
		endpoint: s.BaseURL,
		oauth: clientcredentials.Config{
			ClientID:     cred.APIKey,
			ClientSecret: cred.SecretKey,
			TokenURL:     s.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (a *baiduAdapter) ID() ProviderID { return Baidu }

func (a *baiduAdapter) BuildAuth(ctx context.Context, client *http.Client) (Auth, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	tok, err := a.oauth.Token(ctx)
	if err != nil {
		return Auth{}, fmt.Errorf("token exchange: %w", err)
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return Auth{}, errors.New("token exchange returned empty access token")
	}
	return Auth{Token: tok.AccessToken}, nil
}

type baiduRequest struct {
	Messages        []baiduMessage `json:"messages"`
	Temperature     float32        `json:"temperature,omitempty"`
	MaxOutputTokens int            `json:"max_output_tokens,omitempty"`
}

type baiduMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type baiduResponse struct {
	Result    string `json:"result"`
	ErrorCode int    `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
	Usage     struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (a *baiduAdapter) BuildRequest(ctx context.Context, auth Auth, prompt string) (*http.Request, error) {
	payload, err := json.Marshal(baiduRequest{
		Messages:        []baiduMessage{{Role: "user", Content: prompt}},
		Temperature:     a.temperature,
		MaxOutputTokens: a.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("encode baidu request: %w", err)
	}
	endpoint := a.endpoint + "?access_token=" + url.QueryEscape(auth.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build baidu request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Baidu's invalid or expired token codes; everything else non-zero is an upstream failure.
var baiduAuthCodes = map[int]bool{110: true, 111: true}

func (a *baiduAdapter) ExtractText(body []byte) (string, error) {
	var resp baiduResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode baidu response: %w", err)
	}
	// ERNIE reports failures in a 200 body.
	if resp.ErrorCode != 0 {
		kind := KindHTTP
		if baiduAuthCodes[resp.ErrorCode] {
			kind = KindAuth
		}
		return "", newProviderError(Baidu, kind, 0, fmt.Errorf("error_code=%d: %s", resp.ErrorCode, resp.ErrorMsg))
	}
	text := strings.TrimSpace(resp.Result)
	if text == "" {
		return "", errors.New("missing result field")
	}
	return text, nil
}

func (a *baiduAdapter) ExtractUsage(body []byte) metrics.TokenUsage {
	var resp baiduResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return metrics.TokenUsage{}
	}
	return metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
}
