package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Client resolves typed addresses with the Mapbox Geocoding API. Lookups
// are biased towards, and restricted to, the map area.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	area       domain.Bounds
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a geocoding client for addresses inside area.
func NewClient(token string, timeout time.Duration, area domain.Bounds, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		area:       area,
		metrics:    metrics,
		logger:     logger,
	}
}

// searchParams builds the query string. Mapbox takes coordinates lng first.
func (c *Client) searchParams() url.Values {
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"autocomplete": {"false"},
	}
	if c.area.Validate() == nil {
		center := c.area.Center()
		params.Set("proximity", fmt.Sprintf("%.6f,%.6f", center.Lng, center.Lat))
		params.Set("bbox", fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", c.area.LngMin, c.area.LatMin, c.area.LngMax, c.area.LatMax))
	}
	return params
}

// ForwardGeocode looks up an address. A zero result with a nil error means
// nothing in the map area matched.
func (c *Client) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(strings.TrimSpace(query)) + ".json?" + c.searchParams().Encode()

	start := time.Now()
	result, err := c.lookup(ctx, endpoint)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case !result.Found():
		outcome = "empty"
	}
	c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	return result, err
}

func (c *Client) lookup(ctx context.Context, endpoint string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("forward geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var places response
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}
	if len(places.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}

	result := places.Features[0].result()
	c.logger.Debug("address geocoded", "place", result.PlaceName, "relevance", result.Confidence)
	return result, nil
}

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lng, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}

func (f feature) result() domain.GeocodingResult {
	r := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		r.Lon, r.Lat = f.Center[0], f.Center[1]
	}
	return r
}
