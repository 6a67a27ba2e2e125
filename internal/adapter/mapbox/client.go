// Package mapbox resolves memory coordinates to place names with the Mapbox
// reverse geocoding API.
package mapbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/observability"
)

const (
	defaultBaseURL  = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	defaultLanguage = "ja"
	placeTypes      = "neighborhood,locality,place"
)

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	language   string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox reverse geocoding client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token:    token,
		language: defaultLanguage,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode returns the most specific named place at lat, lon. A
// location with no match yields an empty result and no error.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.PlaceLookup, error) {
	// Mapbox uses lon,lat order.
	u := fmt.Sprintf("%s/%.6f,%.6f.json", c.baseURL, lon, lat)
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {placeTypes},
	}
	if c.language != "" {
		params.Set("language", c.language)
	}

	start := time.Now()
	result, err := c.do(ctx, u+"?"+params.Encode())
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.PlaceLookup{}, err
	case result.PlaceName == "" && result.Address == "":
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		c.logger.Debug("no place found", "lat", lat, "lon", lon)
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, fullURL string) (domain.PlaceLookup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.PlaceLookup{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PlaceLookup{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PlaceLookup{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.PlaceLookup{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}
	if !gjson.ValidBytes(body) {
		return domain.PlaceLookup{}, fmt.Errorf("decode response: invalid JSON")
	}

	f := gjson.GetBytes(body, "features.0")
	if !f.Exists() {
		return domain.PlaceLookup{}, nil
	}
	return domain.PlaceLookup{
		Address:   f.Get("place_name").String(),
		PlaceName: f.Get("text").String(),
		Relevance: f.Get("relevance").Float(),
	}, nil
}
