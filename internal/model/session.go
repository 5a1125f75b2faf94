package model

import "time"

// OvertimeType categorizes overtime work and selects the pay multiplier.
type OvertimeType string

const (
	OvertimeNormal  OvertimeType = "normal"
	OvertimeNight   OvertimeType = "night"
	OvertimeSunday  OvertimeType = "sunday"
	OvertimeHoliday OvertimeType = "holiday"
)

// Calculation is the pay snapshot taken when a session (or preview) is
// created. It is never recomputed afterwards.
type Calculation struct {
	HourlyRate    float64 `json:"hourlyRate"`
	Multiplier    float64 `json:"multiplier"`
	TotalPay      float64 `json:"totalPay"`
	RatePerSecond float64 `json:"ratePerSecond"`
}

// Session is a live overtime session. The session store owns the canonical
// instance; everything that crosses a package boundary is a copy.
type Session struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	HourlyRate   float64      `json:"hourlyRate"`
	OvertimeType OvertimeType `json:"overtimeType"`
	// TotalHours is nil for open-ended sessions.
	TotalHours  *float64    `json:"totalHours,omitempty"`
	Calculation Calculation `json:"calculation"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     *time.Time  `json:"endTime,omitempty"`
	// DurationSeconds is set once, on termination.
	DurationSeconds float64 `json:"duration"`
	IsActive        bool    `json:"isActive"`

	// Live values, recomputed on every tick or status query.
	CurrentEarnings float64  `json:"currentEarnings"`
	ElapsedSeconds  float64  `json:"elapsedTime"`
	RemainingSeconds *float64 `json:"remainingTime"`

	IsOpenEnded bool `json:"isOpenEnded"`
}
