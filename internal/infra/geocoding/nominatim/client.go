package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/ai-astrology/internal/domain/chart"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "AstroAI/1.0"
	defaultTimeout   = 10 * time.Second
)

// Config controls the upstream endpoint and client identification.
type Config struct {
	BaseURL        string
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
}

// Client resolves free-text place names through the Nominatim search API.
type Client struct {
	baseURL        string
	userAgent      string
	acceptLanguage string
	httpClient     *http.Client
}

// NewClient builds a geocoding client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	agent := strings.TrimSpace(cfg.UserAgent)
	if agent == "" {
		agent = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:        strings.TrimRight(base, "/"),
		userAgent:      agent,
		acceptLanguage: strings.TrimSpace(cfg.AcceptLanguage),
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// Resolve returns the best match for query. It performs exactly one lookup.
func (c *Client) Resolve(ctx context.Context, query string) (chart.GeoLocation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return chart.GeoLocation{}, fmt.Errorf("%w: empty query", chart.ErrLocationNotFound)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	endpoint := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return chart.GeoLocation{}, fmt.Errorf("%w: build request: %w", chart.ErrGeocodingTransport, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chart.GeoLocation{}, fmt.Errorf("%w: %w", chart.ErrGeocodingTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return chart.GeoLocation{}, fmt.Errorf("%w: status=%d body=%s", chart.ErrGeocodingTransport, resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return chart.GeoLocation{}, fmt.Errorf("%w: read response: %w", chart.ErrGeocodingTransport, err)
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return chart.GeoLocation{}, fmt.Errorf("%w: decode response: %w", chart.ErrGeocodingTransport, err)
	}
	if len(places) == 0 {
		return chart.GeoLocation{}, fmt.Errorf("%w: %s", chart.ErrLocationNotFound, query)
	}
	return places[0].toLocation()
}

// place is one Nominatim search hit; coordinates arrive as strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (p place) toLocation() (chart.GeoLocation, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
	if err != nil {
		return chart.GeoLocation{}, fmt.Errorf("%w: invalid latitude %q", chart.ErrGeocodingTransport, p.Lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
	if err != nil {
		return chart.GeoLocation{}, fmt.Errorf("%w: invalid longitude %q", chart.ErrGeocodingTransport, p.Lon)
	}
	return chart.GeoLocation{Latitude: lat, Longitude: lon, Name: p.DisplayName}, nil
}
