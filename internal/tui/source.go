package tui

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/city-pulse-service/internal/capability"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// locationSource reads the location field. "lat,lng" is taken as device
// coordinates; anything else is an address for the geocoder.
func locationSource(input string, geocoder domain.Geocoder) domain.LocationSource {
	if lat, lng, ok := parseCoordinates(input); ok {
		return capability.Coordinates{Lat: lat, Lng: lng}
	}
	return capability.AddressLookup{Geocoder: geocoder, Address: input}
}

func parseCoordinates(input string) (lat, lng float64, ok bool) {
	latText, lngText, found := strings.Cut(input, ",")
	if !found {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
