package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/pkg/logger"
	"github.com/jwalitptl/geonotify/pkg/messaging"
)

// Queue topics, one per channel. Workers for different channels never
// share a topic or a consumer.
const (
	TopicEmail = "deliveries.email"
	TopicSMS   = "deliveries.sms"
)

// TopicFor maps a channel to its queue topic.
func TopicFor(channel model.Channel) string {
	if channel == model.ChannelSMS {
		return TopicSMS
	}
	return TopicEmail
}

// JobPolicy is the retry discipline a queued job is delivered under.
type JobPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Backoff returns the delay before the given retry (attempt is
// 1-based; the first attempt has no delay). Exponential, doubling from
// InitialBackoff.
func (p JobPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	backoff := p.InitialBackoff
	for i := 2; i < attempt; i++ {
		backoff *= 2
	}
	return backoff
}

// JobHandle confirms an enqueue. The synchronous request path ends
// here; delivery itself is asynchronous.
type JobHandle struct {
	NotificationID uuid.UUID     `json:"notification_id"`
	Channel        model.Channel `json:"channel"`
	Topic          string        `json:"topic"`
}

// Dispatcher places delivery jobs on the channel-appropriate queue.
// It only ever publishes; consuming belongs to the channel workers.
type Dispatcher struct {
	broker messaging.Publisher
	policy JobPolicy
	logger *logger.Logger
}

func NewDispatcher(broker messaging.Publisher, policy JobPolicy, logger *logger.Logger) *Dispatcher {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = time.Second
	}
	return &Dispatcher{
		broker: broker,
		policy: policy,
		logger: logger,
	}
}

// Policy returns the retry policy jobs on this dispatcher's queues are
// consumed under.
func (d *Dispatcher) Policy() JobPolicy {
	return d.policy
}

// Enqueue routes the notification to its channel queue. Fire-and-forget
// relative to the caller: returning confirms the enqueue, not delivery.
func (d *Dispatcher) Enqueue(ctx context.Context, n *model.Notification) (JobHandle, error) {
	topic := TopicFor(n.Channel)
	job := model.DeliveryJob{
		NotificationID: n.ID,
		Channel:        n.Channel,
	}

	if err := d.broker.Publish(ctx, topic, job); err != nil {
		return JobHandle{}, fmt.Errorf("failed to enqueue delivery job: %w", err)
	}

	d.logger.Debug("delivery job enqueued",
		"notification_id", n.ID.String(),
		"topic", topic)

	return JobHandle{
		NotificationID: n.ID,
		Channel:        n.Channel,
		Topic:          topic,
	}, nil
}
