package location

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository/memory"
	"github.com/jwalitptl/geonotify/internal/service/notification"
	"github.com/jwalitptl/geonotify/internal/service/place"
	apperrors "github.com/jwalitptl/geonotify/pkg/errors"
	"github.com/jwalitptl/geonotify/pkg/logger"
	"github.com/jwalitptl/geonotify/pkg/metrics"
	brokermem "github.com/jwalitptl/geonotify/pkg/messaging/memory"
)

type fakeGeocoder struct {
	city  string
	err   error
	calls int
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _ model.Coordinate) (string, error) {
	f.calls++
	return f.city, f.err
}

type fakePlaces struct {
	rec place.Recommendation
}

func (f *fakePlaces) Resolve(_ context.Context, _ model.Coordinate) place.Recommendation {
	return f.rec
}

type failingHistory struct{}

func (failingHistory) Record(_ context.Context, _ *model.LocationHistory) error {
	return errors.New("history sink down")
}

func testRecommendation() place.Recommendation {
	return place.Recommendation{
		Place: model.ResolvedPlace{
			Name:       "Museo del Oro",
			Rating:     4.6,
			Coordinate: model.Coordinate{Latitude: 4.6019, Longitude: -74.0720},
			SourceTier: model.TierLive,
		},
		Travel:  model.TravelEstimate{Duration: "12 min", Distance: "3.1 km", Measured: true},
		Details: model.PlaceDetails{Name: "Museo del Oro", Rating: 4.6},
	}
}

type pipelineFixture struct {
	svc      Service
	store    *memory.Store
	geocoder *fakeGeocoder
	user     *model.User
}

func newPipeline(t *testing.T, geocoder *fakeGeocoder) *pipelineFixture {
	t.Helper()

	store := memory.NewStore()
	user := &model.User{
		ID:               uuid.New(),
		Name:             "Ana",
		Email:            "ana@example.com",
		PreferredChannel: model.ChannelEmail,
	}
	store.PutUser(user)

	notifSvc := notification.NewService(store.Notifications())
	dispatcher := notification.NewDispatcher(brokermem.NewBroker(), notification.JobPolicy{}, logger.NewNop())

	svc := NewService(
		store,
		store.History(),
		geocoder,
		&fakePlaces{rec: testRecommendation()},
		notifSvc,
		dispatcher,
		logger.NewNop(),
		metrics.New("test"),
	)
	return &pipelineFixture{svc: svc, store: store, geocoder: geocoder, user: user}
}

func TestProcessLocationSuppliedCityIsVerbatim(t *testing.T) {
	f := newPipeline(t, &fakeGeocoder{city: "Medellín"})

	res, err := f.svc.ProcessLocation(context.Background(), model.Coordinate{Latitude: 4.6, Longitude: -74.08}, "Bogotá", f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, "Bogotá", res.City)
	assert.Zero(t, f.geocoder.calls, "supplied city must skip the geocoder")
}

func TestProcessLocationGeocoderFailureUsesFallback(t *testing.T) {
	f := newPipeline(t, &fakeGeocoder{err: errors.New("upstream timeout")})

	res, err := f.svc.ProcessLocation(context.Background(), model.Coordinate{Latitude: 4.6, Longitude: -74.08}, "", f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, FallbackCity, res.City)

	n, err := f.store.Notifications().Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	require.NotNil(t, n.Metadata.Location)
	assert.True(t, n.Metadata.Location.Detected)
}

func TestProcessLocationDetectedCity(t *testing.T) {
	f := newPipeline(t, &fakeGeocoder{city: "Cartagena"})

	res, err := f.svc.ProcessLocation(context.Background(), model.Coordinate{Latitude: 10.4, Longitude: -75.5}, "", f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, "Cartagena", res.City)
	assert.Equal(t, 1, f.geocoder.calls)
}

func TestProcessLocationInvalidCoordinate(t *testing.T) {
	f := newPipeline(t, &fakeGeocoder{city: "Bogotá"})

	_, err := f.svc.ProcessLocation(context.Background(), model.Coordinate{Latitude: 91, Longitude: 0}, "", f.user.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))
	assert.Zero(t, f.geocoder.calls, "validation must reject before any lookup")
}

func TestProcessLocationUnknownUser(t *testing.T) {
	f := newPipeline(t, &fakeGeocoder{city: "Bogotá"})

	_, err := f.svc.ProcessLocation(context.Background(), model.Coordinate{Latitude: 4.6, Longitude: -74.08}, "Bogotá", uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProcessLocationHistoryFailureIsNonFatal(t *testing.T) {
	store := memory.NewStore()
	user := &model.User{ID: uuid.New(), PreferredChannel: model.ChannelEmail}
	store.PutUser(user)

	svc := NewService(
		store,
		failingHistory{},
		&fakeGeocoder{city: "Bogotá"},
		&fakePlaces{rec: testRecommendation()},
		notification.NewService(store.Notifications()),
		notification.NewDispatcher(brokermem.NewBroker(), notification.JobPolicy{}, logger.NewNop()),
		logger.NewNop(),
		metrics.New("test"),
	)

	res, err := svc.ProcessLocation(context.Background(), model.Coordinate{Latitude: 4.6, Longitude: -74.08}, "", user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.NotificationID)
}

func TestProcessLocationCreatesAndEnqueues(t *testing.T) {
	ctx := context.Background()
	broker := brokermem.NewBroker()
	defer broker.Close()

	jobs, err := broker.Subscribe(ctx, notification.TopicEmail)
	require.NoError(t, err)

	store := memory.NewStore()
	user := &model.User{ID: uuid.New(), PreferredChannel: model.ChannelEmail}
	store.PutUser(user)

	svc := NewService(
		store,
		store.History(),
		&fakeGeocoder{city: "Bogotá"},
		&fakePlaces{rec: testRecommendation()},
		notification.NewService(store.Notifications()),
		notification.NewDispatcher(broker, notification.JobPolicy{}, logger.NewNop()),
		logger.NewNop(),
		metrics.New("test"),
	)

	res, err := svc.ProcessLocation(ctx, model.Coordinate{Latitude: 4.6, Longitude: -74.08}, "", user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChannelEmail, res.Channel)
	assert.Equal(t, "Museo del Oro", res.Place.Name)

	n, err := store.Notifications().Get(ctx, res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusPending, n.Status)

	require.Len(t, jobs, 1, "one delivery job must be queued")
	assert.Len(t, store.HistoryEntries(), 1)
}
