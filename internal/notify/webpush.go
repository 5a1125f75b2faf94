package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/internal/model"
)

// PushSender defines the interface for sending a single web push
// notification, so tests can substitute a fake transport.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionSource provides the push subscriptions registered for a
// session. The archive store satisfies it.
type SubscriptionSource interface {
	SubscriptionsForSession(ctx context.Context, sessionID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// pushPayload is the JSON body delivered to the service worker.
type pushPayload struct {
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	Session  string  `json:"session"`
	Earnings float64 `json:"earnings"`
}

// WorkerPool fans session-complete notifications out to web-push
// subscribers without blocking the scheduler sweep.
type WorkerPool struct {
	size    int
	jobs    chan model.Session
	subs    SubscriptionSource
	webpush *webpush.Options
	sender  PushSender
	logger  *zap.Logger
}

// NewWorkerPool creates a worker pool of the given size.
func NewWorkerPool(size int, subs SubscriptionSource, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.Session, size),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// SetSender replaces the transport, for tests.
func (wp *WorkerPool) SetSender(s PushSender) { wp.sender = s }

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("push worker started", zap.Int("worker", id))
	for {
		select {
		case sess := <-wp.jobs:
			wp.sendForSession(ctx, sess)
		case <-ctx.Done():
			wp.logger.Debug("push worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// EarningsUpdate implements the scheduler's Notifier. Per-second accruals
// are not worth a web push; the websocket stream carries those.
func (wp *WorkerPool) EarningsUpdate(model.Session) {}

// SessionComplete implements the scheduler's Notifier. The dispatch never
// blocks: if the pool is saturated the event is dropped and logged.
func (wp *WorkerPool) SessionComplete(s model.Session) {
	select {
	case wp.jobs <- s:
	default:
		wp.logger.Warn("push queue full, dropping completion event", zap.String("session", s.ID))
	}
}

// sendForSession fetches the session's subscribers and notifies each one.
func (wp *WorkerPool) sendForSession(ctx context.Context, sess model.Session) {
	subscriptions, err := wp.subs.SubscriptionsForSession(ctx, sess.ID)
	if err != nil {
		wp.logger.Error("fetch subscriptions", zap.String("session", sess.ID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{
		Title:    "Overtime session complete",
		Body:     fmt.Sprintf("You earned %.2f ETB in overtime pay.", sess.CurrentEarnings),
		Session:  sess.ID,
		Earnings: sess.CurrentEarnings,
	})
	if err != nil {
		wp.logger.Error("marshal push payload", zap.Error(err))
		return
	}

	wp.logger.Info("sending completion notifications",
		zap.String("session", sess.ID), zap.Int("subscribers", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendOne(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendOne(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Error("send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// 410 Gone means the browser dropped the subscription.
	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
