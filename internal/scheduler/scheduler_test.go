package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/internal/model"
	"github.com/RoberaET/overtime-clock/internal/pay"
	"github.com/RoberaET/overtime-clock/internal/session"
	"github.com/RoberaET/overtime-clock/internal/tracking"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// recordingNotifier captures every event it receives.
type recordingNotifier struct {
	updates   []string
	completed []string
}

func (n *recordingNotifier) EarningsUpdate(s model.Session)  { n.updates = append(n.updates, s.ID) }
func (n *recordingNotifier) SessionComplete(s model.Session) { n.completed = append(n.completed, s.ID) }

// panickyNotifier blows up on every delivery.
type panickyNotifier struct{}

func (panickyNotifier) EarningsUpdate(model.Session)  { panic("subscriber gone") }
func (panickyNotifier) SessionComplete(model.Session) { panic("subscriber gone") }

// memoryArchiver collects records instead of hitting a database.
type memoryArchiver struct {
	records []model.SessionRecord
}

func (a *memoryArchiver) SaveRecord(_ context.Context, rec model.SessionRecord) error {
	a.records = append(a.records, rec)
	return nil
}

func setup() (*session.Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)}
	return session.NewStore(tracking.NewTracker(), clock.Now), clock
}

func startFixed(store *session.Store, hours float64) model.Session {
	calc := pay.Compute(25, model.OvertimeNormal, hours, nil)
	return store.Start(tracking.DefaultUser, 25, model.OvertimeNormal, &hours, calc)
}

func TestTickEmitsEarningsUpdates(t *testing.T) {
	store, clock := setup()
	notifier := &recordingNotifier{}
	sched := New(store, nil, zap.NewNop(), notifier)

	snap := startFixed(store, 2)
	clock.Advance(time.Second)
	sched.Tick(context.Background())

	assert.Equal(t, []string{snap.ID}, notifier.updates)
	assert.Empty(t, notifier.completed)
}

func TestTickEmitsCompletionOnceAndArchives(t *testing.T) {
	store, clock := setup()
	notifier := &recordingNotifier{}
	archiver := &memoryArchiver{}
	sched := New(store, archiver, zap.NewNop(), notifier)

	snap := startFixed(store, 1)
	clock.Advance(time.Hour + time.Second)
	sched.Tick(context.Background())
	sched.Tick(context.Background())

	assert.Equal(t, []string{snap.ID}, notifier.completed, "exactly one completion event")
	require.Len(t, archiver.records, 1)

	rec := archiver.records[0]
	assert.Equal(t, snap.ID, rec.ID)
	assert.Equal(t, model.OutcomeCompleted, rec.Outcome)
	assert.Equal(t, snap.Calculation.TotalPay, rec.Earnings)
	assert.InDelta(t, 1.0, rec.RecordedHours, 1e-9)
}

func TestPanickingNotifierDoesNotStallSweep(t *testing.T) {
	store, clock := setup()
	notifier := &recordingNotifier{}
	// The panicky notifier comes first; the recording one must still get
	// every event.
	sched := New(store, nil, zap.NewNop(), panickyNotifier{}, notifier)

	first := startFixed(store, 2)
	second := startFixed(store, 2)
	clock.Advance(time.Second)

	assert.NotPanics(t, func() { sched.Tick(context.Background()) })
	assert.ElementsMatch(t, []string{first.ID, second.ID}, notifier.updates)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store, _ := setup()
	sched := New(store, nil, zap.NewNop())
	sched.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}
