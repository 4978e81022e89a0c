package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/geonotify/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository is the user directory. Get must return a not-found
	// error (pkg/errors) distinctly from transient failures.
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	}

	// NotificationRepository persists notification records. Status
	// updates merge metadata: existing fields survive, the fields of the
	// update overwrite their previous values.
	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error
	}

	// LocationHistoryRepository is a best-effort sink; callers log and
	// continue on failure.
	LocationHistoryRepository interface {
		Record(ctx context.Context, h *model.LocationHistory) error
	}
)
