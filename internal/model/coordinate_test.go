package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{name: "valid", coord: Coordinate{Latitude: 4.6, Longitude: -74.08}, wantErr: false},
		{name: "zero zero", coord: Coordinate{}, wantErr: false},
		{name: "north pole boundary", coord: Coordinate{Latitude: 90, Longitude: 0}, wantErr: false},
		{name: "south pole boundary", coord: Coordinate{Latitude: -90, Longitude: 0}, wantErr: false},
		{name: "date line east boundary", coord: Coordinate{Latitude: 0, Longitude: 180}, wantErr: false},
		{name: "date line west boundary", coord: Coordinate{Latitude: 0, Longitude: -180}, wantErr: false},
		{name: "latitude just above range", coord: Coordinate{Latitude: 90.0001, Longitude: 0}, wantErr: true},
		{name: "latitude just below range", coord: Coordinate{Latitude: -90.0001, Longitude: 0}, wantErr: true},
		{name: "longitude just above range", coord: Coordinate{Latitude: 0, Longitude: 180.0001}, wantErr: true},
		{name: "longitude just below range", coord: Coordinate{Latitude: 0, Longitude: -180.0001}, wantErr: true},
		{name: "both out of range", coord: Coordinate{Latitude: 120, Longitude: 200}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCoordinateDistanceKm(t *testing.T) {
	bogota := Coordinate{Latitude: 4.711, Longitude: -74.0721}
	medellin := Coordinate{Latitude: 6.2442, Longitude: -75.5812}

	d := bogota.DistanceKm(medellin)
	// Roughly 240 km between the two city centers.
	assert.InDelta(t, 240, d, 15)

	assert.Zero(t, bogota.DistanceKm(bogota))
}
