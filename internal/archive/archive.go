package archive

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RoberaET/overtime-clock/internal/model"
)

// ErrSubscriptionNotFound is returned when no subscription exists for an
// endpoint.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// Store defines the persistence operations for terminated sessions and
// web-push subscriptions.
type Store interface {
	SaveRecord(ctx context.Context, rec model.SessionRecord) error
	ListRecords(ctx context.Context, limit int) ([]model.SessionRecord, error)
	UpsertSubscription(ctx context.Context, sub model.PushSubscription, sessionIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, []string, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForSession(ctx context.Context, sessionID string) ([]model.PushSubscription, error)
}

// gormStore implements Store using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GORM-backed archive store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// SaveRecord upserts a terminated session. A stop racing a natural
// completion writes the same primary key, so the later write simply
// replaces the earlier one.
func (s *gormStore) SaveRecord(ctx context.Context, rec model.SessionRecord) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"earnings", "recorded_hours", "end_time", "duration_seconds", "outcome"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to archive session %s: %w", rec.ID, err)
	}
	return nil
}

// ListRecords returns archived sessions, newest first.
func (s *gormStore) ListRecords(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var records []model.SessionRecord
	err := s.db.WithContext(ctx).
		Order("start_time DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	return records, nil
}

// UpsertSubscription creates or refreshes a push subscription and replaces
// its session mapping.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription, sessionIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).
			Delete(&model.SubscriptionSession{}).Error; err != nil {
			return fmt.Errorf("failed to clear session mapping: %w", err)
		}

		if len(sessionIDs) == 0 {
			return nil
		}
		mappings := make([]model.SubscriptionSession, 0, len(sessionIDs))
		for _, id := range sessionIDs {
			mappings = append(mappings, model.SubscriptionSession{Endpoint: sub.Endpoint, SessionID: id})
		}
		if err := tx.Create(&mappings).Error; err != nil {
			return fmt.Errorf("failed to create session mapping: %w", err)
		}
		return nil
	})
}

// GetSubscription returns a subscription and the session ids it follows.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, []string, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PushSubscription{}, nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return model.PushSubscription{}, nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}

	var mappings []model.SubscriptionSession
	if err := s.db.WithContext(ctx).
		Where("endpoint = ?", endpoint).
		Find(&mappings).Error; err != nil {
		return model.PushSubscription{}, nil, fmt.Errorf("failed to fetch session mapping: %w", err)
	}

	sessionIDs := make([]string, len(mappings))
	for i, m := range mappings {
		sessionIDs[i] = m.SessionID
	}
	return sub, sessionIDs, nil
}

// DeleteSubscription removes a subscription and its session mapping.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).
			Delete(&model.SubscriptionSession{}).Error; err != nil {
			return fmt.Errorf("failed to delete session mapping: %w", err)
		}
		if err := tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

// SubscriptionsForSession returns every push subscription following the
// given session.
func (s *gormStore) SubscriptionsForSession(ctx context.Context, sessionID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_sessions ss ON ss.endpoint = push_subscriptions.endpoint").
		Where("ss.session_id = ?", sessionID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for session %s: %w", sessionID, err)
	}
	return subs, nil
}
