package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/geonotify/internal/model"
	apperrors "github.com/jwalitptl/geonotify/pkg/errors"
)

// Store is an in-memory implementation of the repository interfaces.
// It mirrors the merge-update semantics of the Postgres repositories and
// backs unit tests and local runs without a database.
type Store struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*model.User
	notifications map[uuid.UUID]*model.Notification
	history       []*model.LocationHistory
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]*model.User),
		notifications: make(map[uuid.UUID]*model.Notification),
	}
}

// PutUser seeds a user. Test helper.
func (s *Store) PutUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	cp := *u
	return &cp, nil
}

// Notifications returns a NotificationRepository view of the store.
func (s *Store) Notifications() *NotificationStore {
	return &NotificationStore{s: s}
}

// History returns a LocationHistoryRepository view of the store.
func (s *Store) History() *HistoryStore {
	return &HistoryStore{s: s}
}

type NotificationStore struct {
	s *Store
}

func (r *NotificationStore) Create(ctx context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *n
	r.s.notifications[n.ID] = &cp
	return nil
}

func (r *NotificationStore) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, apperrors.NotFound("notification", nil)
	}
	cp := *n
	return &cp, nil
}

func (r *NotificationStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return apperrors.NotFound("notification", nil)
	}
	n.Status = model.NotificationStatusSent
	n.SentAt = &sentAt
	n.UpdatedAt = time.Now()
	return nil
}

// MarkFailed merges the failure fields into metadata; everything else
// already present is kept, matching the JSONB || behavior in Postgres.
func (r *NotificationStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return apperrors.NotFound("notification", nil)
	}
	n.Status = model.NotificationStatusFailed
	n.Metadata.ErrorMessage = errMsg
	n.Metadata.RetryCount = retryCount
	n.UpdatedAt = time.Now()
	return nil
}

type HistoryStore struct {
	s *Store
}

func (r *HistoryStore) Record(ctx context.Context, h *model.LocationHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h.ID = uuid.New()
	h.CreatedAt = time.Now()
	cp := *h
	r.s.history = append(r.s.history, &cp)
	return nil
}

// HistoryEntries returns a snapshot of recorded history. Test helper.
func (s *Store) HistoryEntries() []*model.LocationHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.LocationHistory, len(s.history))
	copy(out, s.history)
	return out
}
