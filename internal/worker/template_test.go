package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/geonotify/internal/model"
)

func richNotification() *model.Notification {
	return &model.Notification{
		Message:   "You are near Bogotá. We recommend visiting Monserrate, about 15 min away.",
		PlaceName: "Monserrate",
		Metadata: model.Metadata{
			Place: &model.PlaceDetails{
				Name:         "Monserrate",
				Address:      "Cerro de Monserrate",
				Rating:       4.7,
				OpeningHours: "05:00-23:00",
			},
			Travel:   &model.TravelEstimate{Duration: "15 min", Distance: "4.2 km", Measured: true},
			Location: &model.LocationInfo{City: "Bogotá", Latitude: 4.6, Longitude: -74.08},
		},
	}
}

func TestEmailRichVariant(t *testing.T) {
	r := NewRenderer()
	n := richNotification()

	subject, body, err := r.Email(n)
	require.NoError(t, err)

	assert.Contains(t, subject, "Monserrate")
	assert.Contains(t, body, "Cerro de Monserrate")
	assert.Contains(t, body, "4.7")
	assert.Contains(t, body, "15 min")
	assert.Contains(t, body, "Bogotá")
	assert.NotContains(t, body, "estimated")
}

func TestEmailBasicVariant(t *testing.T) {
	r := NewRenderer()
	n := richNotification()
	n.Metadata.Travel = nil

	subject, body, err := r.Email(n)
	require.NoError(t, err)

	assert.Contains(t, subject, "Monserrate")
	assert.Contains(t, body, n.Message)
	assert.NotContains(t, body, "Cerro de Monserrate")
}

func TestEmailMarksEstimatedTravel(t *testing.T) {
	r := NewRenderer()
	n := richNotification()
	n.Metadata.Travel.Measured = false

	_, body, err := r.Email(n)
	require.NoError(t, err)

	assert.Contains(t, body, "estimated")
}

func TestSMSRichVariant(t *testing.T) {
	r := NewRenderer()
	n := richNotification()

	body := r.SMS(n)
	assert.Contains(t, body, n.Message)
	assert.Contains(t, body, "Cerro de Monserrate")
	assert.NotContains(t, body, "(est.)")
}

func TestSMSEstimatedTravel(t *testing.T) {
	r := NewRenderer()
	n := richNotification()
	n.Metadata.Travel.Measured = false

	body := r.SMS(n)
	assert.Contains(t, body, "(est.)")
}

func TestSMSBasicVariant(t *testing.T) {
	r := NewRenderer()
	n := richNotification()
	n.Metadata.Place = nil

	body := r.SMS(n)
	assert.Contains(t, body, "Recommended: Monserrate")
}
