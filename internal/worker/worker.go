package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository"
	"github.com/jwalitptl/geonotify/internal/service/notification"
	"github.com/jwalitptl/geonotify/pkg/logger"
	"github.com/jwalitptl/geonotify/pkg/messaging"
	"github.com/jwalitptl/geonotify/pkg/metrics"
)

// ChannelWorker consumes delivery jobs for exactly one channel. Workers
// for different channels never share a queue, so a stall in one channel
// cannot block the other.
type ChannelWorker struct {
	channel       model.Channel
	broker        messaging.Broker
	users         repository.UserRepository
	notifications notification.Service
	sender        Sender
	policy        notification.JobPolicy
	history       *History
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

func NewChannelWorker(
	channel model.Channel,
	broker messaging.Broker,
	users repository.UserRepository,
	notifications notification.Service,
	sender Sender,
	policy notification.JobPolicy,
	history *History,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ChannelWorker {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = time.Second
	}
	return &ChannelWorker{
		channel:       channel,
		broker:        broker,
		users:         users,
		notifications: notifications,
		sender:        sender,
		policy:        policy,
		history:       history,
		logger:        logger.WithFields(map[string]interface{}{"channel": string(channel)}),
		metrics:       metrics,
	}
}

// Start subscribes to the channel's queue and consumes jobs until ctx
// is canceled. A dequeued job always runs to a terminal outcome; the
// context only stops further dequeues.
func (w *ChannelWorker) Start(ctx context.Context) error {
	msgs, err := w.broker.Subscribe(ctx, notification.TopicFor(w.channel))
	if err != nil {
		return fmt.Errorf("failed to subscribe to delivery queue: %w", err)
	}

	w.logger.Info("channel worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("channel worker shutting down")
			return nil
		case payload, ok := <-msgs:
			if !ok {
				w.logger.Info("delivery queue closed")
				return nil
			}
			w.handle(payload)
		}
	}
}

func (w *ChannelWorker) handle(payload []byte) {
	var job model.DeliveryJob
	if err := json.Unmarshal(payload, &job); err != nil {
		w.logger.Error(err, "failed to decode delivery job, dropping")
		return
	}
	w.Process(job)
}

// Process runs one job to a terminal outcome: up to MaxAttempts
// deliveries with exponential backoff, each attempt re-executing
// rendering and delivery from scratch. No cooperative cancellation
// happens after dequeue, so the job runs under its own context.
func (w *ChannelWorker) Process(job model.DeliveryJob) {
	ctx := context.Background()
	started := time.Now()
	w.metrics.QueueDepth.WithLabelValues(string(w.channel)).Inc()
	defer func() {
		w.metrics.QueueDepth.WithLabelValues(string(w.channel)).Dec()
		w.metrics.DeliveryDuration.WithLabelValues(string(w.channel)).Observe(time.Since(started).Seconds())
	}()

	var lastErr error
	for attempt := 1; attempt <= w.policy.MaxAttempts; attempt++ {
		if delay := w.policy.Backoff(attempt); delay > 0 {
			time.Sleep(delay)
		}

		w.metrics.DeliveryAttempts.WithLabelValues(string(w.channel)).Inc()
		err := w.attempt(ctx, job)
		if err == nil {
			if markErr := w.notifications.MarkSent(ctx, job.NotificationID); markErr != nil {
				w.logger.Error(markErr, "failed to mark notification sent",
					"notification_id", job.NotificationID.String())
			}
			w.metrics.DeliveryOutcomes.WithLabelValues(string(w.channel), "sent").Inc()
			w.history.RecordCompleted(JobOutcome{
				NotificationID: job.NotificationID,
				Channel:        job.Channel,
				Attempts:       attempt,
				FinishedAt:     time.Now(),
			})
			w.logger.Info("notification delivered",
				"notification_id", job.NotificationID.String(),
				"attempts", attempt)
			return
		}
		lastErr = err

		if IsFatal(err) {
			// Precondition failures are terminal; the retry budget
			// stays untouched.
			w.markFailed(ctx, job, err, 0)
			w.metrics.DeliveryOutcomes.WithLabelValues(string(w.channel), "fatal").Inc()
			w.history.RecordFailed(JobOutcome{
				NotificationID: job.NotificationID,
				Channel:        job.Channel,
				Attempts:       0,
				Error:          err.Error(),
				FinishedAt:     time.Now(),
			})
			w.logger.Error(err, "delivery failed with fatal precondition",
				"notification_id", job.NotificationID.String())
			return
		}

		w.markFailed(ctx, job, err, attempt)
		w.logger.Warn(err, "delivery attempt failed",
			"notification_id", job.NotificationID.String(),
			"attempt", attempt)
	}

	w.metrics.DeliveryOutcomes.WithLabelValues(string(w.channel), "failed").Inc()
	w.history.RecordFailed(JobOutcome{
		NotificationID: job.NotificationID,
		Channel:        job.Channel,
		Attempts:       w.policy.MaxAttempts,
		Error:          lastErr.Error(),
		FinishedAt:     time.Now(),
	})
	w.logger.Error(lastErr, "delivery abandoned after retry exhaustion",
		"notification_id", job.NotificationID.String(),
		"attempts", w.policy.MaxAttempts)
}

// attempt executes one full delivery: fetch the record and recipient,
// render, call the provider. Nothing is carried over between attempts.
func (w *ChannelWorker) attempt(ctx context.Context, job model.DeliveryJob) error {
	n, err := w.notifications.Get(ctx, job.NotificationID)
	if err != nil {
		return fmt.Errorf("failed to load notification: %w", err)
	}

	user, err := w.users.Get(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("failed to load recipient: %w", err)
	}

	return w.sender.Send(ctx, user, n)
}

func (w *ChannelWorker) markFailed(ctx context.Context, job model.DeliveryJob, err error, retryCount int) {
	if markErr := w.notifications.MarkFailed(ctx, job.NotificationID, err.Error(), retryCount); markErr != nil {
		w.logger.Error(markErr, "failed to mark notification failed",
			"notification_id", job.NotificationID.String())
	}
}
