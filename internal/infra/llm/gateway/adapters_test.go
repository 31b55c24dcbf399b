package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestKimiAdapter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer kimi-key", r.Header.Get("Authorization"))
		body := decodeJSON(t, r)
		require.Equal(t, "moonshot-v1-8k", body["model"])
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"你好"}}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer srv.Close()

	cfg := Config{
		Order:     []ProviderID{Kimi},
		Providers: map[ProviderID]ProviderSettings{Kimi: {BaseURL: srv.URL + "/v1"}},
	}
	gw := NewGateway(cfg, Credentials{Kimi: {APIKey: "kimi-key"}}, newTestLogger())
	text, err := gw.Call(context.Background(), "prompt", Kimi)
	require.NoError(t, err)
	require.Equal(t, "你好", text)
}

func TestOpenAIAdapterAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := Config{
		Order:     []ProviderID{OpenAI},
		Providers: map[ProviderID]ProviderSettings{OpenAI: {BaseURL: srv.URL}},
	}
	gw := NewGateway(cfg, Credentials{OpenAI: {APIKey: "bad"}}, newTestLogger())
	_, err := gw.Call(context.Background(), "prompt", OpenAI)
	require.ErrorIs(t, err, ErrProviderAuth)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, http.StatusUnauthorized, pe.Status)
	require.Equal(t, OpenAI, pe.Provider)
}

func TestOpenAIAdapterShapeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	cfg := Config{Order: []ProviderID{OpenAI}, Providers: map[ProviderID]ProviderSettings{OpenAI: {BaseURL: srv.URL}}}
	gw := NewGateway(cfg, Credentials{OpenAI: {APIKey: "k"}}, newTestLogger())
	_, err := gw.Call(context.Background(), "prompt", OpenAI)
	require.ErrorIs(t, err, ErrProviderParse)
}

func newBaiduServer(t *testing.T, tokenCalls, chatCalls *atomic.Int32, chatBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/2.0/token":
			tokenCalls.Add(1)
			require.NoError(t, r.ParseForm())
			require.Equal(t, "client_credentials", r.Form.Get("grant_type"))
			require.Equal(t, "ak", r.Form.Get("client_id"))
			require.Equal(t, "sk", r.Form.Get("client_secret"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok-123","expires_in":2592000,"token_type":"bearer"}`))
		case "/chat/completions":
			chatCalls.Add(1)
			require.Equal(t, "tok-123", r.URL.Query().Get("access_token"))
			body := decodeJSON(t, r)
			require.EqualValues(t, 1200, body["max_output_tokens"])
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(chatBody))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestBaiduAdapterExchangesTokenOnEveryCall(t *testing.T) {
	var tokens, chats atomic.Int32
	srv := newBaiduServer(t, &tokens, &chats, `{"result":"文心回答","usage":{"prompt_tokens":4,"completion_tokens":6,"total_tokens":10}}`)
	defer srv.Close()

	cfg := Config{
		Order: []ProviderID{Baidu},
		Providers: map[ProviderID]ProviderSettings{Baidu: {
			BaseURL:  srv.URL + "/chat/completions",
			TokenURL: srv.URL + "/oauth/2.0/token",
		}},
	}
	gw := NewGateway(cfg, Credentials{Baidu: {APIKey: "ak", SecretKey: "sk"}}, newTestLogger())

	for i := 0; i < 2; i++ {
		text, err := gw.Call(context.Background(), "prompt", Baidu)
		require.NoError(t, err)
		require.Equal(t, "文心回答", text)
	}
	require.EqualValues(t, 2, tokens.Load())
	require.EqualValues(t, 2, chats.Load())
}

func TestBaiduAdapterErrorInBody(t *testing.T) {
	var tokens, chats atomic.Int32
	srv := newBaiduServer(t, &tokens, &chats, `{"error_code":110,"error_msg":"Access token invalid or no longer valid"}`)
	defer srv.Close()

	cfg := Config{
		Order: []ProviderID{Baidu},
		Providers: map[ProviderID]ProviderSettings{Baidu: {
			BaseURL:  srv.URL + "/chat/completions",
			TokenURL: srv.URL + "/oauth/2.0/token",
		}},
	}
	gw := NewGateway(cfg, Credentials{Baidu: {APIKey: "ak", SecretKey: "sk"}}, newTestLogger())
	_, err := gw.Call(context.Background(), "prompt", Baidu)
	require.ErrorIs(t, err, ErrProviderAuth)
	require.Contains(t, err.Error(), "error_code=110")
}

func TestBaiduAdapterTokenExchangeFailure(t *testing.T) {
	var chats atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/token") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"unknown client id"}`))
			return
		}
		chats.Add(1)
	}))
	defer srv.Close()

	cfg := Config{
		Order: []ProviderID{Baidu},
		Providers: map[ProviderID]ProviderSettings{Baidu: {
			BaseURL:  srv.URL + "/chat",
			TokenURL: srv.URL + "/token",
		}},
	}
	gw := NewGateway(cfg, Credentials{Baidu: {APIKey: "ak", SecretKey: "sk"}}, newTestLogger())
	_, err := gw.Call(context.Background(), "prompt", Baidu)
	require.ErrorIs(t, err, ErrProviderAuth)
	require.Zero(t, chats.Load())
}

func TestQwenAdapter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer qwen-key", r.Header.Get("Authorization"))
		body := decodeJSON(t, r)
		require.Equal(t, "qwen-turbo", body["model"])
		input := body["input"].(map[string]any)
		messages := input["messages"].([]any)
		require.Equal(t, "星盘", messages[0].(map[string]any)["content"])
		params := body["parameters"].(map[string]any)
		require.InDelta(t, 0.7, params["temperature"], 1e-6)
		_, _ = w.Write([]byte(`{"output":{"text":" 通义回答 "},"usage":{"input_tokens":5,"output_tokens":7,"total_tokens":12}}`))
	}))
	defer srv.Close()

	cfg := Config{Order: []ProviderID{Qwen}, Providers: map[ProviderID]ProviderSettings{Qwen: {BaseURL: srv.URL}}}
	gw := NewGateway(cfg, Credentials{Qwen: {APIKey: "qwen-key"}}, newTestLogger())
	text, err := gw.Call(context.Background(), "星盘", Qwen)
	require.NoError(t, err)
	require.Equal(t, "通义回答", text)
}

func TestQwenAdapterMissingText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Throttling","message":"Requests rate limit exceeded"}`))
	}))
	defer srv.Close()

	cfg := Config{Order: []ProviderID{Qwen}, Providers: map[ProviderID]ProviderSettings{Qwen: {BaseURL: srv.URL}}}
	gw := NewGateway(cfg, Credentials{Qwen: {APIKey: "k"}}, newTestLogger())
	_, err := gw.Call(context.Background(), "prompt", Qwen)
	require.ErrorIs(t, err, ErrProviderParse)
}

func TestGeminiProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Gemini 回答"}]}}],"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":5,"totalTokenCount":8}}`))
	}))
	defer srv.Close()

	cfg := Config{Order: []ProviderID{Gemini}, Providers: map[ProviderID]ProviderSettings{Gemini: {BaseURL: srv.URL + "/"}}}
	gw := NewGateway(cfg, Credentials{Gemini: {APIKey: "g-key"}}, newTestLogger())
	require.Equal(t, []ProviderID{Gemini}, gw.Chain())

	text, err := gw.Call(context.Background(), "prompt", Gemini)
	require.NoError(t, err)
	require.Equal(t, "Gemini 回答", text)
}

func TestFallbackAcrossHTTPVariants(t *testing.T) {
	kimi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer kimi.Close()
	qwen := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"text":"fallback ok"}}`))
	}))
	defer qwen.Close()

	cfg := Config{Providers: map[ProviderID]ProviderSettings{
		Kimi: {BaseURL: kimi.URL},
		Qwen: {BaseURL: qwen.URL},
	}}
	gw := NewGateway(cfg, Credentials{Kimi: {APIKey: "k"}, Qwen: {APIKey: "q"}}, newTestLogger())
	require.Equal(t, []ProviderID{Kimi, Qwen}, gw.Chain())

	text, err := gw.CallWithFallback(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "fallback ok", text)
}

func TestAsProviderErrorLeavesAdapterErrorUntouched(t *testing.T) {
	original := &ProviderError{Kind: KindAuth, Status: http.StatusUnauthorized, Err: errors.New("bad key")}
	wrapped := fmt.Errorf("call: %w", original)

	err := asProviderError(Kimi, KindTransport, wrapped)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	require.NotSame(t, original, pe)
	require.Equal(t, Kimi, pe.Provider)
	require.Equal(t, KindAuth, pe.Kind)
	require.Equal(t, http.StatusUnauthorized, pe.Status)
	require.ErrorIs(t, err, ErrProviderAuth)

	require.Empty(t, original.Provider)
}
