package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RoberaET/overtime-clock/internal/model"
	"github.com/RoberaET/overtime-clock/internal/tracking"
)

var (
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
	// ErrNotActive is returned when stopping a session that has already
	// reached a terminal state.
	ErrNotActive = errors.New("session is not active")
)

// Clock supplies the current time. Injectable so tests can drive the
// lifecycle deterministically instead of sleeping.
type Clock func() time.Time

// Store is the in-memory session registry. Every operation takes the store
// mutex for its whole logical step, so a tick and a concurrent stop
// serialize cleanly: whichever wins, the other observes the already-updated
// state.
type Store struct {
	mu      sync.Mutex
	clock   Clock
	tracker *tracking.Tracker

	sessions map[string]*model.Session
	// completions that have not yet been handed to the scheduler. Natural
	// completions detected by a status poll land here too, so exactly one
	// completion event is emitted per session regardless of who noticed
	// first.
	pendingComplete []string
}

// NewStore creates a session store. A nil clock means wall-clock time.
func NewStore(tracker *tracking.Tracker, clock Clock) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		clock:    clock,
		tracker:  tracker,
		sessions: make(map[string]*model.Session),
	}
}

// newID builds a creation-ordered session id: nanosecond timestamp prefix,
// random suffix for uniqueness within the same instant.
func newID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()[:8])
}

// Start registers a new active session. Input validation and the pay
// calculation are the caller's responsibility; the store only owns the
// lifecycle.
func (s *Store) Start(userID string, hourlyRate float64, t model.OvertimeType, totalHours *float64, calc model.Calculation) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	sess := &model.Session{
		ID:           newID(now),
		UserID:       userID,
		HourlyRate:   hourlyRate,
		OvertimeType: t,
		Calculation:  calc,
		StartTime:    now,
		IsActive:     true,
		IsOpenEnded:  totalHours == nil,
	}
	if totalHours != nil {
		hours := *totalHours
		sess.TotalHours = &hours
		remaining := hours * 3600
		sess.RemainingSeconds = &remaining
	}
	s.sessions[sess.ID] = sess
	return snapshot(sess)
}

// Status applies the tick transition to the session and returns a snapshot.
// It is the polling fallback: same state machine as the scheduler sweep,
// but it never emits events itself (a completion it detects is queued for
// the next sweep).
func (s *Store) Status(id string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	s.advanceLocked(sess, s.clock())
	return snapshot(sess), nil
}

// Stop terminates a session manually. Stopping an unknown id is ErrNotFound;
// stopping a session that already reached a terminal state is ErrNotActive.
// If the session crossed its fixed duration before the stop arrived, the
// natural completion wins and its snapshot is returned.
func (s *Store) Stop(id string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	if !sess.IsActive {
		return model.Session{}, ErrNotActive
	}

	now := s.clock()
	if s.advanceLocked(sess, now) {
		// Crossed totalHours before the stop was processed.
		return snapshot(sess), nil
	}

	sess.IsActive = false
	end := now
	sess.EndTime = &end
	sess.DurationSeconds = now.Sub(sess.StartTime).Seconds()

	committed := sess.DurationSeconds / 3600
	if sess.TotalHours != nil && committed > *sess.TotalHours {
		committed = *sess.TotalHours
	}
	s.tracker.RecordCompletion(sess.UserID, committed)

	return snapshot(sess), nil
}

// List returns snapshots of every session, active or not, in no particular
// order.
func (s *Store) List() []model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, snapshot(sess))
	}
	return out
}

// Sweep advances every active session by one tick. It returns snapshots of
// the sessions that are still active (earnings updates) and of every
// session whose natural completion has not yet been reported.
func (s *Store) Sweep() (updates, completed []model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	for _, sess := range s.sessions {
		if !sess.IsActive {
			continue
		}
		if !s.advanceLocked(sess, now) {
			updates = append(updates, snapshot(sess))
		}
	}

	for _, id := range s.pendingComplete {
		if sess, ok := s.sessions[id]; ok {
			completed = append(completed, snapshot(sess))
		}
	}
	s.pendingComplete = s.pendingComplete[:0]
	return updates, completed
}

// advanceLocked recomputes the session's elapsed time and earnings at now,
// transitioning fixed sessions that crossed their duration into the
// completed state. Reports true on that transition. Caller holds the mutex.
func (s *Store) advanceLocked(sess *model.Session, now time.Time) bool {
	if !sess.IsActive {
		return false
	}

	elapsed := now.Sub(sess.StartTime).Seconds()
	sess.ElapsedSeconds = elapsed

	if sess.IsOpenEnded {
		sess.CurrentEarnings = sess.Calculation.RatePerSecond * elapsed
		return false
	}

	total := *sess.TotalHours * 3600
	if elapsed < total {
		sess.CurrentEarnings = sess.Calculation.RatePerSecond * elapsed
		remaining := total - elapsed
		sess.RemainingSeconds = &remaining
		return false
	}

	// Natural completion: freeze at the precomputed total pay, not the
	// slightly-over accrual.
	sess.CurrentEarnings = sess.Calculation.TotalPay
	sess.DurationSeconds = elapsed
	end := now
	sess.EndTime = &end
	sess.IsActive = false
	remaining := 0.0
	sess.RemainingSeconds = &remaining

	s.tracker.RecordCompletion(sess.UserID, *sess.TotalHours)
	s.pendingComplete = append(s.pendingComplete, sess.ID)
	return true
}

// snapshot copies a session, including its pointer fields, so callers can
// never mutate store-owned state and later transitions never leak into
// handed-out copies.
func snapshot(sess *model.Session) model.Session {
	out := *sess
	if sess.TotalHours != nil {
		v := *sess.TotalHours
		out.TotalHours = &v
	}
	if sess.EndTime != nil {
		v := *sess.EndTime
		out.EndTime = &v
	}
	if sess.RemainingSeconds != nil {
		v := *sess.RemainingSeconds
		out.RemainingSeconds = &v
	}
	return out
}
