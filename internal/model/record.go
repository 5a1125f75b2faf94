package model

import "time"

// Session outcomes stored in the archive.
const (
	OutcomeStopped   = "stopped"
	OutcomeCompleted = "completed"
)

// SessionRecord is the archived form of a terminated session (cold table).
// The live registry stays in memory; this is history only.
type SessionRecord struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	UserID          string    `gorm:"index;size:64;not null" json:"userId"`
	HourlyRate      float64   `gorm:"not null" json:"hourlyRate"`
	OvertimeType    string    `gorm:"size:16;not null" json:"overtimeType"`
	TotalHours      *float64  `json:"totalHours,omitempty"`
	Multiplier      float64   `gorm:"not null" json:"multiplier"`
	TotalPay        float64   `gorm:"not null" json:"totalPay"`
	Earnings        float64   `gorm:"not null" json:"earnings"`
	RecordedHours   float64   `gorm:"not null" json:"recordedHours"`
	StartTime       time.Time `gorm:"not null;index" json:"startTime"`
	EndTime         time.Time `gorm:"not null" json:"endTime"`
	DurationSeconds float64   `gorm:"not null" json:"duration"`
	Outcome         string    `gorm:"size:16;not null" json:"outcome"`
	CreatedAt       time.Time `json:"-"`
}

// CompletedRecord converts a naturally completed session snapshot into its
// archive form. The recorded hours are the session's planned duration.
func CompletedRecord(s Session) SessionRecord {
	var hours float64
	if s.TotalHours != nil {
		hours = *s.TotalHours
	}
	return newRecord(s, OutcomeCompleted, hours)
}

// StoppedRecord converts a manually stopped session snapshot into its
// archive form. The recorded hours are the actual elapsed hours, capped at
// the planned duration for fixed sessions.
func StoppedRecord(s Session) SessionRecord {
	hours := s.DurationSeconds / 3600
	if s.TotalHours != nil && hours > *s.TotalHours {
		hours = *s.TotalHours
	}
	return newRecord(s, OutcomeStopped, hours)
}

func newRecord(s Session, outcome string, recordedHours float64) SessionRecord {
	end := s.StartTime
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return SessionRecord{
		ID:              s.ID,
		UserID:          s.UserID,
		HourlyRate:      s.HourlyRate,
		OvertimeType:    string(s.OvertimeType),
		TotalHours:      s.TotalHours,
		Multiplier:      s.Calculation.Multiplier,
		TotalPay:        s.Calculation.TotalPay,
		Earnings:        s.CurrentEarnings,
		RecordedHours:   recordedHours,
		StartTime:       s.StartTime,
		EndTime:         end,
		DurationSeconds: s.DurationSeconds,
		Outcome:         outcome,
	}
}

// PushSubscription holds a browser web-push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// SubscriptionSession maps a push subscription to the sessions it follows.
// Sessions live in memory, so this is a plain mapping table rather than a
// foreign-keyed association.
type SubscriptionSession struct {
	Endpoint  string `gorm:"primaryKey;size:512"`
	SessionID string `gorm:"primaryKey;size:64;index"`
}
