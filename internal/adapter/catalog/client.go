// Package catalog talks to the listing application's REST API, the system of
// record for locations.
package catalog

import (
	"bytes"
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
)

// Client implements domain.LocationStore against the catalog API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a catalog API client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// UpdateCoordinates writes a discovered coordinate pair to a location and
// returns the updated record. Any non-success response is an error; callers
// choose whether to tolerate it.
func (c *Client) UpdateCoordinates(ctx context.Context, locationID int64, coord domain.Coordinate) (domain.Location, error) {
	payload, err := json.Marshal(coordinatesPayload{
		Latitude:  coord.Lat,
		Longitude: coord.Lng,
	})
	if err != nil {
		return domain.Location{}, fmt.Errorf("serialize coordinates: %w", err)
	}

	u := fmt.Sprintf("%s/api/locations/%d/coordinates", c.baseURL, locationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return domain.Location{}, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Location{}, fmt.Errorf("update coordinates request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Location{}, fmt.Errorf("catalog API error: status %d: %s", resp.StatusCode, body)
	}

	var loc apiLocation
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return domain.Location{}, fmt.Errorf("decode location: %w", err)
	}
	return loc.toDomain(), nil
}

// ListMissingCoordinates pages through every location that has an address
// but no coordinates yet.
func (c *Client) ListMissingCoordinates(ctx context.Context) ([]domain.Location, error) {
	var out []domain.Location

	for page := 1; ; page++ {
		params := url.Values{
			"missing": {"coordinates"},
			"page":    {strconv.Itoa(page)},
		}
		u := c.baseURL + "/api/locations?" + params.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("list locations request: %w", err)
		}

		var listing locationPage
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, fmt.Errorf("catalog API error: status %d: %s", resp.StatusCode, body)
		}
		if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decode location page: %w", err)
		}
		resp.Body.Close()

		for _, loc := range listing.Data {
			out = append(out, loc.toDomain())
		}
		if page >= listing.LastPage {
			return out, nil
		}
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// Catalog API wire types.

type coordinatesPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type apiLocation struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	AddressOne string   `json:"address_one"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Postcode   string   `json:"postcode"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

type locationPage struct {
	Data        []apiLocation `json:"data"`
	CurrentPage int           `json:"current_page"`
	LastPage    int           `json:"last_page"`
}

func (l apiLocation) toDomain() domain.Location {
	return domain.Location{
		ID:       l.ID,
		Name:     l.Name,
		Street:   l.AddressOne,
		City:     l.City,
		State:    l.State,
		Postcode: l.Postcode,
		Lat:      l.Latitude,
		Lng:      l.Longitude,
	}
}
