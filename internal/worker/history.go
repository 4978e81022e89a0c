package worker

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/geonotify/internal/model"
)

// JobOutcome is one finished delivery job, kept for observability.
type JobOutcome struct {
	NotificationID uuid.UUID     `json:"notification_id"`
	Channel        model.Channel `json:"channel"`
	Attempts       int           `json:"attempts"`
	Error          string        `json:"error,omitempty"`
	FinishedAt     time.Time     `json:"finished_at"`
}

// History retains a bounded window of completed and failed jobs. It is
// observability state only, never consulted for correctness.
type History struct {
	mu           sync.Mutex
	completed    []JobOutcome
	failed       []JobOutcome
	maxCompleted int
	maxFailed    int
}

func NewHistory(maxCompleted, maxFailed int) *History {
	if maxCompleted <= 0 {
		maxCompleted = 20
	}
	if maxFailed <= 0 {
		maxFailed = 50
	}
	return &History{
		maxCompleted: maxCompleted,
		maxFailed:    maxFailed,
	}
}

func (h *History) RecordCompleted(outcome JobOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = appendBounded(h.completed, outcome, h.maxCompleted)
}

func (h *History) RecordFailed(outcome JobOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = appendBounded(h.failed, outcome, h.maxFailed)
}

// Completed returns a snapshot of the retained completed jobs, newest
// last.
func (h *History) Completed() []JobOutcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]JobOutcome(nil), h.completed...)
}

// Failed returns a snapshot of the retained failed jobs, newest last.
func (h *History) Failed() []JobOutcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]JobOutcome(nil), h.failed...)
}

func appendBounded(list []JobOutcome, outcome JobOutcome, max int) []JobOutcome {
	list = append(list, outcome)
	if len(list) > max {
		list = list[len(list)-max:]
	}
	return list
}
