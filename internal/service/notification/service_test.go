package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository/memory"
)

func testPlace() (model.ResolvedPlace, model.TravelEstimate, model.PlaceDetails) {
	place := model.ResolvedPlace{
		Name:       "Monserrate",
		Vicinity:   "Cerro de Monserrate, Bogotá",
		Rating:     4.7,
		Coordinate: model.Coordinate{Latitude: 4.6058, Longitude: -74.0556},
		SourceTier: model.TierLive,
	}
	travel := model.TravelEstimate{Duration: "15 min", Distance: "4.2 km", Measured: true}
	details := model.PlaceDetails{Name: "Monserrate", Address: "Cerro de Monserrate, Bogotá", Rating: 4.7}
	return place, travel, details
}

func TestBuildRecord(t *testing.T) {
	svc := NewService(memory.NewStore().Notifications())
	user := &model.User{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", PreferredChannel: model.ChannelSMS}
	coord := model.Coordinate{Latitude: 4.6, Longitude: -74.08}
	place, travel, details := testPlace()

	n := svc.BuildRecord(user, "Bogotá", coord, place, travel, details, true)

	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, user.ID, n.UserID)
	assert.Equal(t, model.ChannelSMS, n.Channel)
	assert.Equal(t, model.NotificationStatusPending, n.Status)
	assert.Equal(t, "Monserrate", n.PlaceName)
	assert.Contains(t, n.Message, "Bogotá")
	assert.Contains(t, n.Message, "Monserrate")

	require.NotNil(t, n.Metadata.Location)
	assert.False(t, n.Metadata.Location.Detected, "supplied city must not count as detected")
	assert.Equal(t, model.MetadataRich, n.Metadata.Variant())
}

func TestBuildRecordDetectedCity(t *testing.T) {
	svc := NewService(memory.NewStore().Notifications())
	user := &model.User{ID: uuid.New(), PreferredChannel: model.ChannelEmail}
	place, travel, details := testPlace()

	n := svc.BuildRecord(user, "current location", model.Coordinate{}, place, travel, details, false)

	require.NotNil(t, n.Metadata.Location)
	assert.True(t, n.Metadata.Location.Detected)
}

func TestBuildRecordDefaultsInvalidChannel(t *testing.T) {
	svc := NewService(memory.NewStore().Notifications())
	user := &model.User{ID: uuid.New(), PreferredChannel: model.Channel("carrier-pigeon")}
	place, travel, details := testPlace()

	n := svc.BuildRecord(user, "Bogotá", model.Coordinate{}, place, travel, details, true)

	assert.Equal(t, model.ChannelEmail, n.Channel)
}

func TestMarkFailedMergeIdempotence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Notifications())

	user := &model.User{ID: uuid.New(), PreferredChannel: model.ChannelEmail}
	place, travel, details := testPlace()
	n := svc.BuildRecord(user, "Bogotá", model.Coordinate{Latitude: 4.6, Longitude: -74.08}, place, travel, details, true)
	require.NoError(t, svc.Create(ctx, n))

	require.NoError(t, svc.MarkFailed(ctx, n.ID, "smtp timeout", 1))
	require.NoError(t, svc.MarkFailed(ctx, n.ID, "connection refused", 2))

	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)

	// Latest failure values win.
	assert.Equal(t, model.NotificationStatusFailed, got.Status)
	assert.Equal(t, "connection refused", got.Metadata.ErrorMessage)
	assert.Equal(t, 2, got.Metadata.RetryCount)

	// Unrelated metadata survives the merges.
	require.NotNil(t, got.Metadata.Place)
	assert.Equal(t, "Monserrate", got.Metadata.Place.Name)
	require.NotNil(t, got.Metadata.Location)
	assert.Equal(t, "Bogotá", got.Metadata.Location.City)
	require.NotNil(t, got.Metadata.Travel)
}

func TestMarkSent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Notifications())

	user := &model.User{ID: uuid.New(), PreferredChannel: model.ChannelEmail}
	place, travel, details := testPlace()
	n := svc.BuildRecord(user, "Bogotá", model.Coordinate{}, place, travel, details, true)
	require.NoError(t, svc.Create(ctx, n))

	require.NoError(t, svc.MarkSent(ctx, n.ID))

	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusSent, got.Status)
	require.NotNil(t, got.SentAt)
}

func TestMarkSentUnknownID(t *testing.T) {
	svc := NewService(memory.NewStore().Notifications())
	assert.Error(t, svc.MarkSent(context.Background(), uuid.New()))
}
