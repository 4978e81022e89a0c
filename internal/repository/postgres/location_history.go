package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository"
)

type locationHistoryRepository struct {
	BaseRepository
}

func NewLocationHistoryRepository(base BaseRepository) repository.LocationHistoryRepository {
	return &locationHistoryRepository{base}
}

func (r *locationHistoryRepository) Record(ctx context.Context, h *model.LocationHistory) error {
	query := `
		INSERT INTO location_history (
			id, user_id, city, latitude, longitude, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	h.ID = uuid.New()
	h.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			h.ID,
			h.UserID,
			h.City,
			h.Latitude,
			h.Longitude,
			h.CreatedAt,
		)
		return err
	})
}
