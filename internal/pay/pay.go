package pay

import (
	"fmt"

	"github.com/RoberaET/overtime-clock/internal/model"
)

// defaultMultiplier applies when the overtime type is not recognized.
const defaultMultiplier = 1.5

// monthDays is the divisor used to turn a monthly salary into a daily wage.
// The statute approximates every month as 30 days.
const monthDays = 30

// Multipliers maps overtime types to their statutory pay multipliers.
// A nil map falls back to Defaults.
type Multipliers map[model.OvertimeType]float64

// Defaults returns the statutory multiplier table.
func Defaults() Multipliers {
	return Multipliers{
		model.OvertimeNormal:  1.5,
		model.OvertimeNight:   1.75,
		model.OvertimeSunday:  2.0,
		model.OvertimeHoliday: 2.5,
	}
}

// For returns the multiplier for the given overtime type, falling back to
// the default for unknown types.
func (m Multipliers) For(t model.OvertimeType) float64 {
	if m == nil {
		m = Defaults()
	}
	if v, ok := m[t]; ok && v > 0 {
		return v
	}
	return defaultMultiplier
}

// HourlyRateFromSalary converts a monthly salary into an hourly rate using
// the 30-day month approximation.
func HourlyRateFromSalary(salary, dailyHours float64) (float64, error) {
	if dailyHours <= 0 {
		return 0, fmt.Errorf("daily hours must be positive, got %v", dailyHours)
	}
	return salary / (monthDays * dailyHours), nil
}

// Compute produces the pay snapshot for the given rate, overtime type and
// duration. It is a pure calculation, not tied to any session; callers must
// ensure hours > 0.
func Compute(hourlyRate float64, t model.OvertimeType, hours float64, m Multipliers) model.Calculation {
	multiplier := m.For(t)
	totalPay := hourlyRate * multiplier * hours
	return model.Calculation{
		HourlyRate:    hourlyRate,
		Multiplier:    multiplier,
		TotalPay:      totalPay,
		RatePerSecond: totalPay / (hours * 3600),
	}
}
