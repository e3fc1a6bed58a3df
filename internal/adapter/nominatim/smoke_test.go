//go:build nominatim

package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/geoff-maddock/arcane-city-geo/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Nominatim API.
// Run with: go test -tags=nominatim ./internal/adapter/nominatim/ -v -count=1
// Keep runs infrequent; the public instance allows roughly 1 request/second.

func smokeClient() *Client {
	return &Client{
		userAgent:  "arcane-city-geo-smoke/1.0 (dev test run)",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    observability.NewMetricsForTesting(),
	}
}

func TestSmoke_Lookup(t *testing.T) {
	c := smokeClient()

	result, found, err := c.Lookup(context.Background(), "Pittsburgh, PA")
	require.NoError(t, err)
	require.True(t, found)

	assert.InDelta(t, 40.44, result.Coordinate.Lat, 0.1, "lat should be near Pittsburgh")
	assert.InDelta(t, -79.99, result.Coordinate.Lng, 0.1, "lng should be near Pittsburgh")
	assert.Contains(t, result.DisplayName, "Pittsburgh")
}

func TestSmoke_Lookup_NoResult(t *testing.T) {
	c := smokeClient()

	time.Sleep(time.Second) // usage policy

	_, found, err := c.Lookup(context.Background(), "zzzz-no-such-place-9081")
	require.NoError(t, err)
	assert.False(t, found)
}
