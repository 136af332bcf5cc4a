package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// Bounds is the latitude/longitude rectangle drawn by the map.
type Bounds struct {
	LatMin float64 `json:"latMin"`
	LatMax float64 `json:"latMax"`
	LngMin float64 `json:"lngMin"`
	LngMax float64 `json:"lngMax"`
}

// BengaluruBounds approximates the Bengaluru metropolitan area.
var BengaluruBounds = Bounds{
	LatMin: 12.82,
	LatMax: 13.15,
	LngMin: 77.45,
	LngMax: 77.78,
}

// Position is a marker position as percentages of the map height and width,
// measured from the top-left corner.
type Position struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// rect treats longitude as X and latitude as Y.
func (b Bounds) rect() r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: b.LngMin, Hi: b.LngMax},
		Y: r1.Interval{Lo: b.LatMin, Hi: b.LatMax},
	}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() GeoLocation {
	c := b.rect().Center()
	return GeoLocation{Lat: c.Y, Lng: c.X}
}

// Contains reports whether loc lies inside the closed rectangle.
func (b Bounds) Contains(loc GeoLocation) bool {
	if !loc.Valid() {
		return false
	}
	return b.rect().ContainsPoint(r2.Point{X: loc.Lng, Y: loc.Lat})
}

// Project maps loc onto the map. It returns false when loc is not
// displayable or b is not a valid rectangle; callers omit the marker rather
// than clamping.
func (b Bounds) Project(loc GeoLocation) (Position, bool) {
	if b.Validate() != nil || !b.Contains(loc) {
		return Position{}, false
	}
	r := b.rect()
	return Position{
		Top:  (1 - (loc.Lat-b.LatMin)/r.Y.Length()) * 100,
		Left: (loc.Lng - b.LngMin) / r.X.Length() * 100,
	}, true
}

// Validate rejects empty or inverted rectangles.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.LatMin, b.LatMax, b.LngMin, b.LngMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bounds must be finite: %+v", b)
		}
	}
	if b.LatMin >= b.LatMax {
		return fmt.Errorf("latMin %v must be below latMax %v", b.LatMin, b.LatMax)
	}
	if b.LngMin >= b.LngMax {
		return fmt.Errorf("lngMin %v must be below lngMax %v", b.LngMin, b.LngMax)
	}
	return nil
}

// ParseBounds reads "latMin,latMax,lngMin,lngMax".
func ParseBounds(s string) (Bounds, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return Bounds{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(fields))
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("parse bound %q: %w", f, err)
		}
		v[i] = n
	}
	b := Bounds{LatMin: v[0], LatMax: v[1], LngMin: v[2], LngMax: v[3]}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}
