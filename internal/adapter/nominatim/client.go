// Package nominatim implements domain.Lookup against the OSM Nominatim
// search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
	"github.com/geoff-maddock/arcane-city-geo/internal/observability"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Client implements domain.Lookup using the Nominatim search API.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Nominatim client. userAgent identifies this deployment
// per the Nominatim usage policy and must not be empty.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// Lookup resolves a free-text address query to a coordinate, requesting at
// most one candidate. The second return is false when the service has no
// usable candidate; err covers transport and non-success responses.
func (c *Client) Lookup(ctx context.Context, query string) (domain.ResolvedPlace, bool, error) {
	params := url.Values{
		"q":      {query},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.ResolvedPlace{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ResolvedPlace{}, false, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.ResolvedPlace{}, false, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.ResolvedPlace{}, false, fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		return domain.ResolvedPlace{}, false, nil
	}

	// Coordinates arrive as decimal-degree strings. A malformed value is a
	// failed lookup, never a NaN marker.
	p := places[0]
	lat, latErr := strconv.ParseFloat(p.Lat, 64)
	lng, lngErr := strconv.ParseFloat(p.Lon, 64)
	if latErr != nil || lngErr != nil {
		c.logger.Warn("nominatim returned unparsable coordinates",
			"query", query,
			"lat", p.Lat,
			"lon", p.Lon,
		)
		c.metrics.GeocodeRequests.WithLabelValues("malformed").Inc()
		return domain.ResolvedPlace{}, false, nil
	}

	return domain.ResolvedPlace{
		Coordinate:  domain.Coordinate{Lat: lat, Lng: lng},
		DisplayName: p.DisplayName,
	}, true, nil
}

// Nominatim API response type.

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
