package archive

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/RoberaET/overtime-clock/internal/model"
)

// newTestDB creates a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any matches any SQL argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface.
func (a Any) Match(v driver.Value) bool { return true }

func TestSaveRecord(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "session_records"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	rec := model.SessionRecord{
		ID:            "1700000000-abcd",
		UserID:        "default",
		HourlyRate:    20.83,
		OvertimeType:  "normal",
		Multiplier:    1.5,
		TotalPay:      62.49,
		Earnings:      62.49,
		RecordedHours: 2,
		StartTime:     now.Add(-2 * time.Hour),
		EndTime:       now,
		Outcome:       model.OutcomeCompleted,
	}
	assert.NoError(t, store.SaveRecord(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecords(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "session_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "outcome", "start_time"}).
			AddRow("2-bbbb", "default", model.OutcomeStopped, now).
			AddRow("1-aaaa", "default", model.OutcomeCompleted, now.Add(-time.Hour)))

	records, err := store.ListRecords(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2-bbbb", records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubscription(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "subscription_sessions"`)).
		WithArgs("https://push.example/x").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "push_subscriptions"`)).
		WithArgs("https://push.example/x").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, store.DeleteSubscription(context.Background(), "https://push.example/x"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionsForSession(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "push_subscriptions".`)).
		WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}).
			AddRow("https://push.example/a", "key", "auth"))

	subs, err := store.SubscriptionsForSession(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example/a", subs[0].Endpoint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSubscriptionNotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}))

	_, _, err := store.GetSubscription(context.Background(), "https://push.example/missing")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
