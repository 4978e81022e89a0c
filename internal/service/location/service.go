package location

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/geonotify/internal/geo"
	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository"
	"github.com/jwalitptl/geonotify/internal/service/notification"
	"github.com/jwalitptl/geonotify/internal/service/place"
	"github.com/jwalitptl/geonotify/pkg/logger"
	"github.com/jwalitptl/geonotify/pkg/metrics"
)

// ProcessResult is what callers of the pipeline see once the delivery
// job is queued.
type ProcessResult struct {
	City           string               `json:"city"`
	Place          model.ResolvedPlace  `json:"recommended_place"`
	Travel         model.TravelEstimate `json:"travel_estimate"`
	NotificationID uuid.UUID            `json:"notification_id"`
	Channel        model.Channel        `json:"queued_channel"`
}

// Service runs the synchronous half of the pipeline: validate the
// coordinate, resolve city and place, build the record, enqueue the
// delivery job. Only invalid coordinates (and an unknown user) surface
// as errors; every other upstream failure is absorbed as degraded data.
type Service interface {
	ProcessLocation(ctx context.Context, coord model.Coordinate, cityName string, userID uuid.UUID) (*ProcessResult, error)
}

type service struct {
	users         repository.UserRepository
	history       repository.LocationHistoryRepository
	geocoder      geo.Geocoder
	places        place.Service
	notifications notification.Service
	dispatcher    *notification.Dispatcher
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

func NewService(
	users repository.UserRepository,
	history repository.LocationHistoryRepository,
	geocoder geo.Geocoder,
	places place.Service,
	notifications notification.Service,
	dispatcher *notification.Dispatcher,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) Service {
	return &service{
		users:         users,
		history:       history,
		geocoder:      geocoder,
		places:        places,
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
		metrics:       metrics,
	}
}

func (s *service) ProcessLocation(ctx context.Context, coord model.Coordinate, cityName string, userID uuid.UUID) (*ProcessResult, error) {
	if err := coord.Validate(); err != nil {
		s.metrics.PipelineRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		s.metrics.PipelineRequests.WithLabelValues("user_error").Inc()
		return nil, err
	}

	started := time.Now()

	// City and place resolution have no data dependency and run
	// concurrently. Both are total, the group never returns an error.
	var (
		city         string
		citySupplied bool
		rec          place.Recommendation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		city, citySupplied = s.resolveCity(gctx, coord, cityName)
		return nil
	})
	g.Go(func() error {
		rec = s.places.Resolve(gctx, coord)
		return nil
	})
	g.Wait()

	s.metrics.ResolveDuration.Observe(time.Since(started).Seconds())

	s.recordHistory(ctx, user, city, coord)

	n := s.notifications.BuildRecord(user, city, coord, rec.Place, rec.Travel, rec.Details, citySupplied)
	if err := s.notifications.Create(ctx, n); err != nil {
		s.metrics.PipelineRequests.WithLabelValues("store_error").Inc()
		return nil, err
	}

	handle, err := s.dispatcher.Enqueue(ctx, n)
	if err != nil {
		s.metrics.PipelineRequests.WithLabelValues("enqueue_error").Inc()
		return nil, err
	}

	s.metrics.PipelineRequests.WithLabelValues("accepted").Inc()
	s.logger.Info("location processed",
		"user_id", user.ID.String(),
		"city", city,
		"place", rec.Place.Name,
		"tier", string(rec.Place.SourceTier),
		"channel", string(handle.Channel))

	return &ProcessResult{
		City:           city,
		Place:          rec.Place,
		Travel:         rec.Travel,
		NotificationID: n.ID,
		Channel:        handle.Channel,
	}, nil
}

// recordHistory writes to the best-effort location sink. Failures are
// logged and ignored.
func (s *service) recordHistory(ctx context.Context, user *model.User, city string, coord model.Coordinate) {
	err := s.history.Record(ctx, &model.LocationHistory{
		UserID:    user.ID,
		City:      city,
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
	})
	if err != nil {
		s.logger.Warn(err, "failed to record location history", "user_id", user.ID.String())
	}
}
