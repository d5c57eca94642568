package domain

// GeoPoint represents a geographic coordinate (WGS 84).
// Latitude is in [-90, 90], longitude in [-180, 180].
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
