package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RoberaET/overtime-clock/internal/archive"
	"github.com/RoberaET/overtime-clock/internal/model"
	"github.com/RoberaET/overtime-clock/internal/pay"
	"github.com/RoberaET/overtime-clock/internal/scheduler"
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

type recordingNotifier struct {
	mu        sync.Mutex
	updates   []model.Session
	completed []model.Session
}

func (n *recordingNotifier) EarningsUpdate(s model.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, s)
}

func (n *recordingNotifier) SessionComplete(s model.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, s)
}

// TestSessionLifecycle drives a fixed-duration session from start through
// natural completion with a fake clock and verifies the live state, the
// emitted events, the tracking totals and the archived row at each step.
func TestSessionLifecycle(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&model.SessionRecord{}, &model.PushSubscription{}, &model.SubscriptionSession{}))
	arch := archive.NewGormStore(testDB)

	clock := &fakeClock{now: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)}
	tracker := tracking.NewTracker()
	store := session.NewStore(tracker, clock.Now)
	notifier := &recordingNotifier{}
	sched := scheduler.New(store, arch, zap.NewNop(), notifier)

	// Start a 2 hour fixed session at the documented example rate.
	hours := 2.0
	calc := pay.Compute(20.83, model.OvertimeNormal, hours, pay.Defaults())
	snap := store.Start(tracking.DefaultUser, 20.83, model.OvertimeNormal, &hours, calc)
	require.True(t, snap.IsActive)

	ctx := context.Background()

	// One hour in, a tick reports accrued earnings but no completion.
	clock.Advance(time.Hour)
	sched.Tick(ctx)

	notifier.mu.Lock()
	require.Len(t, notifier.updates, 1)
	assert.InDelta(t, calc.TotalPay/2, notifier.updates[0].CurrentEarnings, 1e-6)
	assert.Empty(t, notifier.completed)
	notifier.mu.Unlock()

	totals := tracker.Totals(tracking.DefaultUser)
	assert.Zero(t, totals.Weekly, "tracking only records terminated sessions")

	// Past the planned duration the next tick completes the session.
	clock.Advance(time.Hour + time.Second)
	sched.Tick(ctx)

	notifier.mu.Lock()
	require.Len(t, notifier.completed, 1)
	done := notifier.completed[0]
	notifier.mu.Unlock()

	assert.False(t, done.IsActive)
	assert.Equal(t, calc.TotalPay, done.CurrentEarnings, "final earnings are the exact planned pay")
	assert.InDelta(t, 62.49, done.CurrentEarnings, 1e-9)
	assert.NotNil(t, done.EndTime)

	totals = tracker.Totals(tracking.DefaultUser)
	assert.InDelta(t, 2.0, totals.Weekly, 1e-9)
	assert.InDelta(t, 2.0, totals.Yearly, 1e-9)

	// The archive holds exactly one completed row for the session.
	records, err := arch.ListRecords(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, snap.ID, records[0].ID)
	assert.Equal(t, model.OutcomeCompleted, records[0].Outcome)
	assert.InDelta(t, 2.0, records[0].RecordedHours, 1e-9)
	assert.InDelta(t, 62.49, records[0].Earnings, 1e-9)

	// Further ticks are quiet; the completion fired exactly once.
	clock.Advance(time.Second)
	sched.Tick(ctx)

	notifier.mu.Lock()
	assert.Len(t, notifier.completed, 1)
	notifier.mu.Unlock()

	// Stopping the finished session reports a conflict.
	_, err = store.Stop(snap.ID)
	assert.ErrorIs(t, err, session.ErrNotActive)
}

// TestStopArchivesElapsedHours verifies the manual-stop path against the
// same SQLite-backed archive the scheduler writes to.
func TestStopArchivesElapsedHours(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&model.SessionRecord{}))
	arch := archive.NewGormStore(testDB)

	clock := &fakeClock{now: time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)}
	tracker := tracking.NewTracker()
	store := session.NewStore(tracker, clock.Now)

	calc := pay.Compute(15, model.OvertimeNight, 1, pay.Defaults())
	snap := store.Start(tracking.DefaultUser, 15, model.OvertimeNight, nil, calc)

	clock.Advance(90 * time.Minute)
	stopped, err := store.Stop(snap.ID)
	require.NoError(t, err)
	require.NoError(t, arch.SaveRecord(context.Background(), model.StoppedRecord(stopped)))

	records, err := arch.ListRecords(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.OutcomeStopped, records[0].Outcome)
	assert.InDelta(t, 1.5, records[0].RecordedHours, 1e-9)
	assert.Nil(t, records[0].TotalHours)
}
