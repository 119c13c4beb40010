package geospatial

import (
	"errors"

	"github.com/clicbook/clicbook/internal/core/domain"
)

// Defaults for viewport fitting: results get a 1.5x breathing margin and the
// camera never zooms tighter than 0.05 degrees of span.
const (
	DefaultMarginFactor = 1.5
	DefaultMinSpanDeg   = 0.05
)

// ErrNoPoints is returned when a viewport is requested for an empty point
// set. Callers must special-case "no results" and fall back to a default
// region instead.
var ErrNoPoints = errors.New("geospatial: no points to frame")

// BoundsOf returns the bounding box of a non-empty point set.
func BoundsOf(points []domain.Coordinate) (domain.Bounds, error) {
	if len(points) == 0 {
		return domain.Bounds{}, ErrNoPoints
	}

	b := domain.Bounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
	}
	return b, nil
}

// FitViewport computes a camera region containing every input point with a
// margin. Each span is the point spread scaled by marginFactor, floored at
// minSpanDeg so a single-point result set does not produce a degenerate
// zoom. Non-positive marginFactor or minSpanDeg select the defaults.
func FitViewport(points []domain.Coordinate, marginFactor, minSpanDeg float64) (domain.Viewport, error) {
	b, err := BoundsOf(points)
	if err != nil {
		return domain.Viewport{}, err
	}

	if marginFactor <= 0 {
		marginFactor = DefaultMarginFactor
	}
	if minSpanDeg <= 0 {
		minSpanDeg = DefaultMinSpanDeg
	}

	center := domain.Coordinate{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}

	latSpanDeg := (b.MaxLat - b.MinLat) * marginFactor
	if latSpanDeg < minSpanDeg {
		latSpanDeg = minSpanDeg
	}
	lonSpanDeg := (b.MaxLon - b.MinLon) * marginFactor
	if lonSpanDeg < minSpanDeg {
		lonSpanDeg = minSpanDeg
	}

	return domain.Viewport{
		Center:    center,
		LatSpanKm: LatSpanKm(latSpanDeg),
		LonSpanKm: LonSpanKm(lonSpanDeg, center.Lat),
	}, nil
}
