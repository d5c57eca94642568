package geospatial

import (
	"math"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm calculates the great-circle distance in kilometers between two
// points. Full precision is kept; use RoundKm for display values.
func DistanceKm(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// RoundKm rounds a distance to 2 decimal places for display.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
