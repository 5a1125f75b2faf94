package limits

import (
	"fmt"

	"github.com/RoberaET/overtime-clock/internal/tracking"
)

// Caps are the statutory overtime limits, in hours.
type Caps struct {
	DailyHours       float64 `json:"dailyHours" yaml:"daily_hours"`
	WeeklyHours      float64 `json:"weeklyHours" yaml:"weekly_hours"`
	YearlyHours      float64 `json:"yearlyHours" yaml:"yearly_hours"`
	SustainableHours float64 `json:"sustainableHours" yaml:"sustainable_hours"`
}

// DefaultCaps returns the statutory limits: 4h/day, 12h/week, 100h/year,
// with an 8h single-stretch sustainability threshold.
func DefaultCaps() Caps {
	return Caps{
		DailyHours:       4,
		WeeklyHours:      12,
		YearlyHours:      100,
		SustainableHours: 8,
	}
}

// Result is the outcome of validating a proposed overtime duration.
// Errors block; warnings are advisory and always accompany a valid result.
type Result struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks a proposed duration against the caps and the user's
// running totals. Only non-positive hours are a hard error; every limit
// exceedance is advisory, so over-limit sessions are warned about but never
// blocked.
func Validate(hours float64, totals tracking.Totals, caps Caps) Result {
	res := Result{IsValid: true, Errors: []string{}, Warnings: []string{}}

	if hours <= 0 {
		res.IsValid = false
		res.Errors = append(res.Errors, "overtime hours must be greater than zero")
		return res
	}

	if hours > caps.DailyHours {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%.2f hours exceeds the daily overtime limit of %.0f hours", hours, caps.DailyHours))
	}

	if newWeekly := totals.Weekly + hours; newWeekly > caps.WeeklyHours {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"weekly overtime would reach %.2f hours (current %.2f + proposed %.2f), over the %.0f hour limit",
			newWeekly, totals.Weekly, hours, caps.WeeklyHours))
	}

	if newYearly := totals.Yearly + hours; newYearly > caps.YearlyHours {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"yearly overtime would reach %.2f hours (current %.2f + proposed %.2f), over the %.0f hour limit",
			newYearly, totals.Yearly, hours, caps.YearlyHours))
	}

	if hours > caps.SustainableHours {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"working %.2f hours of overtime in one stretch is not sustainable", hours))
	}

	return res
}
