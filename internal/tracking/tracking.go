package tracking

import "sync"

// DefaultUser is the account everything is attributed to until multi-user
// support exists.
const DefaultUser = "default"

// Totals are the running weekly and yearly overtime sums for one user.
// These are process-lifetime accumulators, not calendar windows.
type Totals struct {
	Weekly float64 `json:"weekly"`
	Yearly float64 `json:"yearly"`
}

// Tracker accumulates committed overtime hours per user. All access is
// serialized on an internal mutex so callers can share one instance.
type Tracker struct {
	mu     sync.Mutex
	byUser map[string]Totals
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{byUser: make(map[string]Totals)}
}

// RecordCompletion adds the session's committed hours to the user's weekly
// and yearly totals, creating a zeroed entry if none exists. It is called
// exactly once per session, at the terminal transition.
func (t *Tracker) RecordCompletion(userID string, hours float64) {
	if hours <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	totals := t.byUser[userID]
	totals.Weekly += hours
	totals.Yearly += hours
	t.byUser[userID] = totals
}

// Totals returns the user's current running sums, zeros if the user has
// never completed a session.
func (t *Tracker) Totals(userID string) Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byUser[userID]
}
