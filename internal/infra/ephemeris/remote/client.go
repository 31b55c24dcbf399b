package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/ai-astrology/internal/domain/chart"
)

const defaultTimeout = 10 * time.Second

// ErrUpstream marks failures reported by the ephemeris service itself.
var ErrUpstream = errors.New("ephemeris upstream error")

// Client talks to an ephemeris service that exposes body positions and house
// cusps for a Julian Day. The calculator fans calls out concurrently, so the
// client holds no per-request state.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an ephemeris client for baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return nil, errors.New("ephemeris base url cannot be empty")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type bodyResponse struct {
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error,omitempty"`
}

type housesResponse struct {
	Cusps     []float64 `json:"cusps"`
	Ascendant *float64  `json:"ascendant"`
	MC        float64   `json:"mc"`
	Error     string    `json:"error,omitempty"`
}

// BodyLongitude returns the ecliptic longitude of body at julianDay.
func (c *Client) BodyLongitude(ctx context.Context, julianDay float64, body chart.BodyID) (float64, error) {
	params := url.Values{}
	params.Set("jd", formatFloat(julianDay))
	endpoint := fmt.Sprintf("%s/bodies/%s?%s", c.baseURL, url.PathEscape(string(body)), params.Encode())

	var out bodyResponse
	if err := c.get(ctx, endpoint, &out); err != nil {
		return 0, err
	}
	if out.Error != "" {
		return 0, fmt.Errorf("%w: %s", ErrUpstream, out.Error)
	}
	if out.Longitude == nil || !isFinite(*out.Longitude) {
		return 0, fmt.Errorf("%w: missing longitude for %s", ErrUpstream, body)
	}
	return chart.NormalizeLongitude(*out.Longitude), nil
}

// HouseCusps returns the twelve cusps plus ascendant and MC.
func (c *Client) HouseCusps(ctx context.Context, julianDay, latitude, longitude float64, system string) (chart.HouseTable, error) {
	params := url.Values{}
	params.Set("jd", formatFloat(julianDay))
	params.Set("lat", formatFloat(latitude))
	params.Set("lng", formatFloat(longitude))
	params.Set("system", system)
	endpoint := c.baseURL + "/houses?" + params.Encode()

	var out housesResponse
	if err := c.get(ctx, endpoint, &out); err != nil {
		return chart.HouseTable{}, err
	}
	if out.Error != "" {
		return chart.HouseTable{}, fmt.Errorf("%w: %s", ErrUpstream, out.Error)
	}
	if len(out.Cusps) != 12 {
		return chart.HouseTable{}, fmt.Errorf("%w: expected 12 cusps, got %d", ErrUpstream, len(out.Cusps))
	}

	var table chart.HouseTable
	for i, cusp := range out.Cusps {
		if !isFinite(cusp) {
			return chart.HouseTable{}, fmt.Errorf("%w: cusp %d is not finite", ErrUpstream, i+1)
		}
		table.Cusps[i] = chart.NormalizeLongitude(cusp)
	}
	if out.Ascendant != nil && isFinite(*out.Ascendant) {
		table.Ascendant = chart.NormalizeLongitude(*out.Ascendant)
	} else {
		table.Ascendant = table.Cusps[0]
	}
	table.MC = chart.NormalizeLongitude(out.MC)
	return table, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build ephemeris request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ephemeris request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: status=%d body=%s", ErrUpstream, resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read ephemeris response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode ephemeris response: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
