package geospatial

import (
	"math"

	"github.com/clicbook/clicbook/internal/core/domain"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the surface distance covered by one degree of latitude.
const kmPerDegreeLat = 111.32

// DistanceKm returns the great-circle distance in kilometers between two
// coordinates using the Haversine formula. The haversine term is clamped to
// [0,1] so that antipodal and near-identical points cannot push the argument
// of the square roots out of range.
func DistanceKm(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*sinLon*sinLon
	if h < 0 {
		h = 0
	} else if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// LatSpanKm converts a latitude span in degrees to kilometers.
func LatSpanKm(deg float64) float64 {
	return deg * kmPerDegreeLat
}

// LonSpanKm converts a longitude span in degrees to kilometers at the given
// latitude.
func LonSpanKm(deg, atLat float64) float64 {
	return deg * kmPerDegreeLat * math.Cos(toRad(atLat))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
