package model

import (
	"math"

	"github.com/jwalitptl/geonotify/pkg/errors"
)

// Coordinate is an immutable latitude/longitude pair. It is created at
// the system boundary and validated before any external lookup runs.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks both axes against their valid ranges. Boundary values
// (±90, ±180) are accepted.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return errors.BadRequest("latitude must be between -90 and 90", nil)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return errors.BadRequest("longitude must be between -180 and 180", nil)
	}
	return nil
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance to other in kilometers.
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - c.Latitude) * math.Pi / 180
	dLon := (other.Longitude - c.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
