// Package capability provides the single-shot location and image sources a
// draft report draws on.
package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// ErrLocationUnavailable is returned by every location source that could not
// produce a position. The caller does not distinguish denial, timeout and
// missing hardware.
var ErrLocationUnavailable = errors.New("location unavailable")

// Source kinds, used as a metrics label.
const (
	KindDevice      = "device"
	KindAddress     = "address"
	KindUnavailable = "unavailable"
)

// Coordinates is a position measured by the client device.
type Coordinates struct {
	Lat, Lng float64
}

// Locate returns the measured position, or fails when it is not finite.
func (c Coordinates) Locate(context.Context) (domain.GeoLocation, error) {
	loc := domain.GeoLocation{Lat: c.Lat, Lng: c.Lng}
	if !loc.Valid() {
		return domain.GeoLocation{}, fmt.Errorf("%w: coordinates are not finite", ErrLocationUnavailable)
	}
	return loc, nil
}

// Kind implements the metrics label.
func (Coordinates) Kind() string { return KindDevice }

// Unavailable is a location source that always fails, for clients that report
// geolocation was denied or timed out.
type Unavailable struct {
	Reason string
}

// Locate always fails.
func (u Unavailable) Locate(context.Context) (domain.GeoLocation, error) {
	if u.Reason == "" {
		return domain.GeoLocation{}, ErrLocationUnavailable
	}
	return domain.GeoLocation{}, fmt.Errorf("%w: %s", ErrLocationUnavailable, u.Reason)
}

// Kind implements the metrics label.
func (Unavailable) Kind() string { return KindUnavailable }

// AddressLookup resolves a typed address through a geocoder.
type AddressLookup struct {
	Geocoder domain.Geocoder
	Address  string
}

// Locate forward geocodes the address. An empty address or a lookup with no
// match fails.
func (a AddressLookup) Locate(ctx context.Context) (domain.GeoLocation, error) {
	address := strings.TrimSpace(a.Address)
	if address == "" {
		return domain.GeoLocation{}, fmt.Errorf("%w: address is empty", ErrLocationUnavailable)
	}
	if a.Geocoder == nil {
		return domain.GeoLocation{}, fmt.Errorf("%w: address lookup is disabled", ErrLocationUnavailable)
	}

	result, err := a.Geocoder.ForwardGeocode(ctx, address)
	if err != nil {
		return domain.GeoLocation{}, fmt.Errorf("%w: geocode address: %w", ErrLocationUnavailable, err)
	}
	if !result.Found() {
		return domain.GeoLocation{}, fmt.Errorf("%w: no match for %q", ErrLocationUnavailable, address)
	}
	return domain.GeoLocation{Lat: result.Lat, Lng: result.Lon}, nil
}

// Kind implements the metrics label.
func (AddressLookup) Kind() string { return KindAddress }
