package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository/memory"
	"github.com/jwalitptl/geonotify/internal/service/notification"
	"github.com/jwalitptl/geonotify/pkg/logger"
	brokermem "github.com/jwalitptl/geonotify/pkg/messaging/memory"
	"github.com/jwalitptl/geonotify/pkg/metrics"
)

type fakeEmailProvider struct {
	mu    sync.Mutex
	fails int
	err   error
	sent  []string
}

func (f *fakeEmailProvider) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeEmailProvider) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeSMSProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSMSProvider) Send(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeSMSProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var testPolicy = notification.JobPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond}

func seedNotification(t *testing.T, store *memory.Store, user *model.User, channel model.Channel) *model.Notification {
	t.Helper()

	store.PutUser(user)
	n := &model.Notification{
		ID:        uuid.New(),
		UserID:    user.ID,
		Channel:   channel,
		Message:   "You are near Bogotá. We recommend visiting Monserrate, about 15 min away.",
		PlaceName: "Monserrate",
		Status:    model.NotificationStatusPending,
		Metadata: model.Metadata{
			Place:    &model.PlaceDetails{Name: "Monserrate", Address: "Cerro de Monserrate"},
			Travel:   &model.TravelEstimate{Duration: "15 min", Distance: "4.2 km", Measured: true},
			Location: &model.LocationInfo{City: "Bogotá", Latitude: 4.6, Longitude: -74.08},
		},
	}
	require.NoError(t, store.Notifications().Create(context.Background(), n))
	return n
}

func newEmailWorker(store *memory.Store, provider *fakeEmailProvider) *ChannelWorker {
	return NewChannelWorker(
		model.ChannelEmail,
		nil,
		store,
		notification.NewService(store.Notifications()),
		NewEmailSender(provider, NewRenderer()),
		testPolicy,
		NewHistory(0, 0),
		logger.NewNop(),
		metrics.New("test"),
	)
}

func TestProcessDeliversOnFirstAttempt(t *testing.T) {
	store := memory.NewStore()
	user := &model.User{ID: uuid.New(), Email: "ana@example.com"}
	n := seedNotification(t, store, user, model.ChannelEmail)

	provider := &fakeEmailProvider{}
	w := newEmailWorker(store, provider)

	w.Process(model.DeliveryJob{NotificationID: n.ID, Channel: model.ChannelEmail})

	got, err := store.Notifications().Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusSent, got.Status)
	require.NotNil(t, got.SentAt)
	assert.Equal(t, []string{"ana@example.com"}, provider.sentTo())
}

func TestProcessSucceedsAfterRetries(t *testing.T) {
	store := memory.NewStore()
	user := &model.User{ID: uuid.New(), Email: "ana@example.com"}
	n := seedNotification(t, store, user, model.ChannelEmail)

	provider := &fakeEmailProvider{fails: 2, err: errors.New("smtp timeout")}
	w := newEmailWorker(store, provider)

	w.Process(model.DeliveryJob{NotificationID: n.ID, Channel: model.ChannelEmail})

	got, err := store.Notifications().Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusSent, got.Status)
	assert.Len(t, provider.sentTo(), 1)
	assert.Len(t, w.history.Completed(), 1)
	assert.Equal(t, 3, w.history.Completed()[0].Attempts)
}

func TestProcessRetryExhaustion(t *testing.T) {
	store := memory.NewStore()
	user := &model.User{ID: uuid.New(), Email: "ana@example.com"}
	n := seedNotification(t, store, user, model.ChannelEmail)

	provider := &fakeEmailProvider{fails: 10, err: errors.New("smtp down")}
	w := newEmailWorker(store, provider)

	w.Process(model.DeliveryJob{NotificationID: n.ID, Channel: model.ChannelEmail})

	got, err := store.Notifications().Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusFailed, got.Status)
	assert.Equal(t, 3, got.Metadata.RetryCount)
	assert.Contains(t, got.Metadata.ErrorMessage, "smtp down")

	failed := w.history.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Attempts)
}

func TestProcessFatalSkipsRetries(t *testing.T) {
	store := memory.NewStore()
	user := &model.User{ID: uuid.New(), Email: "ana@example.com", Phone: ""}
	n := seedNotification(t, store, user, model.ChannelSMS)

	provider := &fakeSMSProvider{}
	w := NewChannelWorker(
		model.ChannelSMS,
		nil,
		store,
		notification.NewService(store.Notifications()),
		NewSMSSender(provider, NewRenderer()),
		testPolicy,
		NewHistory(0, 0),
		logger.NewNop(),
		metrics.New("test"),
	)

	w.Process(model.DeliveryJob{NotificationID: n.ID, Channel: model.ChannelSMS})

	got, err := store.Notifications().Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusFailed, got.Status)
	assert.Zero(t, got.Metadata.RetryCount, "precondition failure must not consume the retry budget")
	assert.Zero(t, provider.callCount(), "provider must not be called without a phone number")

	failed := w.history.Failed()
	require.Len(t, failed, 1)
	assert.Zero(t, failed[0].Attempts)
}

func TestProcessMissingNotificationExhaustsRetries(t *testing.T) {
	store := memory.NewStore()
	w := newEmailWorker(store, &fakeEmailProvider{})

	// Does not panic and records the failure; nothing to update in the
	// store since the record never existed.
	w.Process(model.DeliveryJob{NotificationID: uuid.New(), Channel: model.ChannelEmail})

	require.Len(t, w.history.Failed(), 1)
}

func TestChannelOutageDoesNotBlockOtherChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := brokermem.NewBroker()
	defer broker.Close()

	store := memory.NewStore()
	user := &model.User{ID: uuid.New(), Email: "ana@example.com", Phone: "+573001112233"}
	emailN := seedNotification(t, store, user, model.ChannelEmail)
	smsN := seedNotification(t, store, user, model.ChannelSMS)

	emailProvider := &fakeEmailProvider{}
	smsProvider := &fakeSMSProvider{err: errors.New("gateway outage")}

	notifSvc := notification.NewService(store.Notifications())
	emailWorker := NewChannelWorker(
		model.ChannelEmail, broker, store, notifSvc,
		NewEmailSender(emailProvider, NewRenderer()),
		testPolicy, NewHistory(0, 0), logger.NewNop(), metrics.New("test"))
	smsWorker := NewChannelWorker(
		model.ChannelSMS, broker, store, notifSvc,
		NewSMSSender(smsProvider, NewRenderer()),
		testPolicy, NewHistory(0, 0), logger.NewNop(), metrics.New("test"))

	go emailWorker.Start(ctx)
	go smsWorker.Start(ctx)

	// Give both workers time to subscribe before publishing.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, broker.Publish(ctx, notification.TopicSMS, model.DeliveryJob{
		NotificationID: smsN.ID, Channel: model.ChannelSMS}))
	require.NoError(t, broker.Publish(ctx, notification.TopicEmail, model.DeliveryJob{
		NotificationID: emailN.ID, Channel: model.ChannelEmail}))

	// The SMS outage must not keep the email delivery from landing.
	require.Eventually(t, func() bool {
		n, err := store.Notifications().Get(ctx, emailN.ID)
		return err == nil && n.Status == model.NotificationStatusSent
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"ana@example.com"}, emailProvider.sentTo())

	require.Eventually(t, func() bool {
		n, err := store.Notifications().Get(ctx, smsN.ID)
		return err == nil && n.Status == model.NotificationStatusFailed
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, smsProvider.callCount())
}

func TestHistoryBounds(t *testing.T) {
	h := NewHistory(2, 3)

	for i := 0; i < 5; i++ {
		h.RecordCompleted(JobOutcome{NotificationID: uuid.New()})
		h.RecordFailed(JobOutcome{NotificationID: uuid.New()})
	}

	assert.Len(t, h.Completed(), 2)
	assert.Len(t, h.Failed(), 3)
}
