//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, domain.BengaluruBounds,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Koramangala, Bengaluru")
	require.NoError(t, err)

	assert.True(t, domain.BengaluruBounds.Contains(domain.GeoLocation{Lat: result.Lat, Lng: result.Lon}),
		"result should fall inside the Bengaluru map area")
	assert.Contains(t, result.FormattedAddress, "Koramangala")
	assert.Greater(t, result.Confidence, 0.5)
}

func TestSmoke_ForwardGeocode_LowRelevance(t *testing.T) {
	c := smokeClient(t)

	// Fuzzy matching may still return results for nonsense queries.
	_, err := c.ForwardGeocode(context.Background(), "XYZNONEXISTENT99")
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.ForwardGeocode(context.Background(), "Indiranagar, Bengaluru")
	require.NoError(t, err)

	r2, err := cached.ForwardGeocode(context.Background(), "Indiranagar, Bengaluru")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
