package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yanqian/ai-astrology/pkg/metrics"
)

// Auth carries whatever an adapter needs to authorise its main request.
type Auth struct {
	Token string
}

// Adapter describes one HTTP provider variant: how to authenticate, how to
// shape the request, and where the text lives in the response.
type Adapter interface {
	ID() ProviderID
	BuildAuth(ctx context.Context, client *http.Client) (Auth, error)
	BuildRequest(ctx context.Context, auth Auth, prompt string) (*http.Request, error)
	ExtractText(body []byte) (string, error)
}

// usageExtractor is implemented by adapters whose responses report token usage.
type usageExtractor interface {
	ExtractUsage(body []byte) metrics.TokenUsage
}

const maxResponseBytes = 1 << 20

// httpProvider drives an Adapter: auth, request, status check, extraction.
type httpProvider struct {
	adapter Adapter
	client  *http.Client
}

func newHTTPProvider(adapter Adapter, client *http.Client) *httpProvider {
	return &httpProvider{adapter: adapter, client: client}
}

func (p *httpProvider) ID() ProviderID {
	return p.adapter.ID()
}

func (p *httpProvider) Generate(ctx context.Context, prompt string) (string, error) {
	id := p.adapter.ID()

	auth, err := p.adapter.BuildAuth(ctx, p.client)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", asProviderError(id, KindAuth, err)
	}

	req, err := p.adapter.BuildRequest(ctx, auth, prompt)
	if err != nil {
		return "", newProviderError(id, KindTransport, 0, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", newProviderError(id, KindTransport, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		kind := KindHTTP
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = KindAuth
		}
		return "", newProviderError(id, kind, resp.StatusCode, fmt.Errorf("body=%s", string(payload)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", newProviderError(id, KindTransport, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	text, err := p.adapter.ExtractText(body)
	if err != nil {
		return "", asProviderError(id, KindParse, err)
	}
	if ue, ok := p.adapter.(usageExtractor); ok {
		metrics.RecordTokenUsage(string(id), ue.ExtractUsage(body))
	}
	return text, nil
}

// asProviderError keeps a classification an adapter already made and
// otherwise applies the default kind.
func asProviderError(id ProviderID, kind Kind, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		classified := *pe
		if classified.Provider == "" {
			classified.Provider = id
		}
		return &classified
	}
	return newProviderError(id, kind, 0, err)
}
