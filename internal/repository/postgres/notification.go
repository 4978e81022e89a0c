package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository"
	apperrors "github.com/jwalitptl/geonotify/pkg/errors"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, channel, message, place_name,
			status, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			n.ID,
			n.UserID,
			n.Channel,
			n.Message,
			n.PlaceName,
			n.Status,
			n.Metadata,
			n.CreatedAt,
			n.UpdatedAt,
		)
		return err
	})
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE id = $1
	`

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("notification", err)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &n, nil
}

// MarkSent transitions a record to sent, stamping the sent timestamp.
// The metadata column is left untouched.
func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE notifications SET
			status = $1,
			sent_at = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, model.NotificationStatusSent, sentAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return requireRow(result, "notification")
}

// MarkFailed transitions a record to failed, merging the error message
// and attempt count into metadata. The JSONB || operator keeps fields
// the patch does not name, so repeated calls only replace the latest
// error/retry values.
func (r *notificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error {
	patch, err := json.Marshal(map[string]interface{}{
		"error_message": errMsg,
		"retry_count":   retryCount,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata patch: %w", err)
	}

	query := `
		UPDATE notifications SET
			status = $1,
			metadata = metadata || $2::jsonb,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, model.NotificationStatusFailed, patch, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return requireRow(result, "notification")
}

func requireRow(result sql.Result, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NotFound(resource, nil)
	}
	return nil
}
