package capability

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	query  string
	result domain.GeocodingResult
	err    error
}

func (s *stubGeocoder) ForwardGeocode(_ context.Context, query string) (domain.GeocodingResult, error) {
	s.query = query
	return s.result, s.err
}

func TestCoordinates_Locate(t *testing.T) {
	loc, err := Coordinates{Lat: 12.9716, Lng: 77.5946}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.GeoLocation{Lat: 12.9716, Lng: 77.5946}, loc)
}

func TestCoordinates_OutsideMapIsStillValid(t *testing.T) {
	loc, err := Coordinates{Lat: 51.5, Lng: -0.12}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 51.5, loc.Lat)
}

func TestCoordinates_NonFinite(t *testing.T) {
	tests := []struct {
		name string
		c    Coordinates
	}{
		{"nan lat", Coordinates{Lat: math.NaN(), Lng: 77.5}},
		{"inf lng", Coordinates{Lat: 12.9, Lng: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.c.Locate(context.Background())
			require.ErrorIs(t, err, ErrLocationUnavailable)
		})
	}
}

func TestUnavailable_AlwaysFails(t *testing.T) {
	for _, reason := range []string{"", "permission denied", "timeout"} {
		_, err := Unavailable{Reason: reason}.Locate(context.Background())
		require.ErrorIs(t, err, ErrLocationUnavailable)
	}
}

func TestAddressLookup_Success(t *testing.T) {
	g := &stubGeocoder{result: domain.GeocodingResult{Lat: 12.9352, Lon: 77.6245, PlaceName: "Koramangala"}}

	loc, err := AddressLookup{Geocoder: g, Address: "  Koramangala "}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.GeoLocation{Lat: 12.9352, Lng: 77.6245}, loc)
	assert.Equal(t, "Koramangala", g.query)
}

func TestAddressLookup_Failures(t *testing.T) {
	tests := []struct {
		name     string
		geocoder domain.Geocoder
		address  string
	}{
		{"empty address", &stubGeocoder{}, "   "},
		{"no geocoder", nil, "MG Road"},
		{"no match", &stubGeocoder{}, "nowhere"},
		{"geocoder error", &stubGeocoder{err: errors.New("status 503")}, "MG Road"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddressLookup{Geocoder: tt.geocoder, Address: tt.address}.Locate(context.Background())
			require.ErrorIs(t, err, ErrLocationUnavailable)
		})
	}
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindDevice, Coordinates{}.Kind())
	assert.Equal(t, KindUnavailable, Unavailable{}.Kind())
	assert.Equal(t, KindAddress, AddressLookup{}.Kind())
}
