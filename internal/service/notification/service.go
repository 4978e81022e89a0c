package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository"
)

// Service assembles notification records and owns their status
// transitions. The record is mutated only here, and only via
// merge-updates, so concurrent retries cannot lose prior context.
type Service interface {
	BuildRecord(user *model.User, city string, coord model.Coordinate, place model.ResolvedPlace, travel model.TravelEstimate, details model.PlaceDetails, citySupplied bool) *model.Notification
	Create(ctx context.Context, n *model.Notification) error
	Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error
}

type service struct {
	repo repository.NotificationRepository
}

func NewService(repo repository.NotificationRepository) Service {
	return &service{repo: repo}
}

// BuildRecord deterministically assembles a pending record from the
// resolved city and place. No external calls happen here.
func (s *service) BuildRecord(user *model.User, city string, coord model.Coordinate, place model.ResolvedPlace, travel model.TravelEstimate, details model.PlaceDetails, citySupplied bool) *model.Notification {
	channel := user.PreferredChannel
	if !channel.Valid() {
		channel = model.ChannelEmail
	}

	now := time.Now()
	return &model.Notification{
		ID:        uuid.New(),
		UserID:    user.ID,
		Channel:   channel,
		Message:   fmt.Sprintf("You are near %s. We recommend visiting %s, about %s away.", city, place.Name, travel.Duration),
		PlaceName: place.Name,
		Status:    model.NotificationStatusPending,
		Metadata: model.Metadata{
			Place:  &details,
			Travel: &travel,
			Location: &model.LocationInfo{
				City:      city,
				Latitude:  coord.Latitude,
				Longitude: coord.Longitude,
				Detected:  !citySupplied,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *service) Create(ctx context.Context, n *model.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	return s.repo.Get(ctx, id)
}

// MarkSent transitions the record to sent with a sent timestamp.
func (s *service) MarkSent(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkSent(ctx, id, time.Now())
}

// MarkFailed transitions the record to failed, merging the error and
// attempt count into metadata. Idempotent under retries: repeated calls
// overwrite only the latest error/retry values.
func (s *service) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error {
	return s.repo.MarkFailed(ctx, id, errMsg, retryCount)
}
