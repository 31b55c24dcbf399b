package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/ai-astrology/pkg/metrics"
)

// Provider generates text for a prompt.
type Provider interface {
	ID() ProviderID
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway calls providers directly or along a priority-ordered fallback chain.
// The chain is fixed at construction and read-only afterwards.
type Gateway struct {
	chain  []Provider
	byID   map[ProviderID]Provider
	logger *slog.Logger
}

// New builds a gateway over an explicit provider chain.
func New(logger *slog.Logger, providers ...Provider) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		byID:   make(map[ProviderID]Provider, len(providers)),
		logger: logger.With("component", "llm.gateway"),
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		if _, dup := g.byID[p.ID()]; dup {
			continue
		}
		g.chain = append(g.chain, p)
		g.byID[p.ID()] = p
	}
	return g
}

// NewGateway builds the configured chain. Providers without usable credentials
// are left out; construction never fails.
func NewGateway(cfg Config, creds Credentials, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	client := &http.Client{Timeout: cfg.Timeout}

	var providers []Provider
	for _, id := range cfg.Order {
		cred, ok := creds[id]
		if !ok || !cred.usable(id) {
			logger.Info("llm provider excluded", "provider", id, "reason", "missing credentials")
			continue
		}
		p, err := buildProvider(id, cfg, cred, client)
		if err != nil {
			logger.Warn("llm provider excluded", "provider", id, "error", err)
			continue
		}
		providers = append(providers, p)
	}
	g := New(logger, providers...)
	g.logger.Info("llm provider chain ready", "chain", g.Chain())
	return g
}

func buildProvider(id ProviderID, cfg Config, cred Credential, client *http.Client) (Provider, error) {
	s := cfg.settings(id)
	switch id {
	case Kimi, OpenAI:
		return newHTTPProvider(newChatCompletionsAdapter(id, s, cred, cfg), client), nil
	case Baidu:
		return newHTTPProvider(newBaiduAdapter(s, cred, cfg), client), nil
	case Qwen:
		return newHTTPProvider(newQwenAdapter(s, cred, cfg), client), nil
	case Gemini:
		return newGeminiProvider(context.Background(), s, cred, cfg, client)
	default:
		return nil, fmt.Errorf("unknown provider %q", id)
	}
}

// Chain lists the active providers in fallback order.
func (g *Gateway) Chain() []ProviderID {
	ids := make([]ProviderID, 0, len(g.chain))
	for _, p := range g.chain {
		ids = append(ids, p.ID())
	}
	return ids
}

// Call sends prompt to a single provider.
func (g *Gateway) Call(ctx context.Context, prompt string, id ProviderID) (string, error) {
	p, ok := g.byID[id]
	if !ok {
		return "", newProviderError(id, KindAuth, 0, ErrMissingCredential)
	}
	return g.invoke(ctx, p, prompt)
}

func (g *Gateway) invoke(ctx context.Context, p Provider, prompt string) (string, error) {
	start := time.Now()
	text, err := p.Generate(ctx, prompt)
	elapsed := time.Since(start)
	if err == nil && text == "" {
		err = newProviderError(p.ID(), KindParse, 0, fmt.Errorf("empty text"))
	}
	metrics.RecordProviderCall(string(p.ID()), outcome(err), elapsed.Seconds())
	if err != nil {
		return "", err
	}
	return text, nil
}

// CallWithFallback walks the chain and returns the first success. A done
// context stops the walk and its error is returned as is.
func (g *Gateway) CallWithFallback(ctx context.Context, prompt string) (string, error) {
	attempts := make([]Attempt, 0, len(g.chain))
	var last error = ErrNoProviders

	for _, p := range g.chain {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		start := time.Now()
		text, err := g.invoke(ctx, p, prompt)
		if err == nil {
			g.logger.Info("llm provider succeeded", "provider", p.ID(), "attempt", len(attempts)+1,
				"latency_ms", time.Since(start).Milliseconds())
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.logger.Warn("llm provider failed", "provider", p.ID(), "error", err)
		attempts = append(attempts, Attempt{Provider: p.ID(), Err: err, Duration: time.Since(start)})
		last = err
	}
	return "", &AllProvidersFailedError{Attempts: attempts, Last: last}
}
