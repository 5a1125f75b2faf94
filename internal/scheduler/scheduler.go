package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/internal/model"
	"github.com/RoberaET/overtime-clock/internal/session"
)

// Notifier receives the events produced by a sweep. The websocket hub and
// the web-push worker pool both implement it.
type Notifier interface {
	EarningsUpdate(s model.Session)
	SessionComplete(s model.Session)
}

// Archiver persists terminated sessions.
type Archiver interface {
	SaveRecord(ctx context.Context, rec model.SessionRecord) error
}

// Scheduler is the shared heartbeat: one ticker, firing once per second for
// the process lifetime, advancing every active session. It is the sole
// source of outbound push events.
type Scheduler struct {
	store     *session.Store
	archive   Archiver
	notifiers []Notifier
	log       *zap.Logger
	interval  time.Duration
}

// New creates a scheduler with a 1 second heartbeat.
func New(store *session.Store, archive Archiver, log *zap.Logger, notifiers ...Notifier) *Scheduler {
	return &Scheduler{
		store:     store,
		archive:   archive,
		notifiers: notifiers,
		log:       log,
		interval:  time.Second,
	}
}

// SetInterval overrides the heartbeat cadence. Meant for load experiments;
// live earnings are specified as a one second stream.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Run drives the heartbeat until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one sweep: advance all active sessions, emit an
// earnings-update per still-active session and a one-time session-complete
// per finished one, then archive the finished ones. Exported so tests can
// drive the scheduler with a fake clock instead of real time.
func (s *Scheduler) Tick(ctx context.Context) {
	updates, completed := s.store.Sweep()

	for _, u := range updates {
		s.emit(u.ID, func(n Notifier, snap model.Session) { n.EarningsUpdate(snap) }, u)
	}

	for _, c := range completed {
		s.emit(c.ID, func(n Notifier, snap model.Session) { n.SessionComplete(snap) }, c)

		if s.archive == nil {
			continue
		}
		if err := s.archive.SaveRecord(ctx, model.CompletedRecord(c)); err != nil {
			s.log.Error("archive completed session", zap.String("session", c.ID), zap.Error(err))
		}
	}
}

// emit delivers one event to every notifier, isolating failures so one bad
// subscriber cannot stall the rest of the sweep.
func (s *Scheduler) emit(sessionID string, deliver func(Notifier, model.Session), snap model.Session) {
	for _, n := range s.notifiers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("notifier panic", zap.String("session", sessionID), zap.Any("panic", r))
				}
			}()
			deliver(n, snap)
		}()
	}
}
