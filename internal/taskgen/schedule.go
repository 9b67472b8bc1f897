package taskgen

import (
	"math"
	"time"

	"maintenance-dashboard/internal/models"
)

// NextGenerationDate advances base by value units of the frequency. Unknown frequencies
// advance by one month regardless of value. Month and year arithmetic normalizes overflow
// the way time.AddDate does, so Jan 31 plus one month lands in early March.
func NextGenerationDate(frequency models.FrequencyType, value int, base time.Time) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return base.AddDate(0, 0, value)
	case models.FrequencyWeekly:
		return base.AddDate(0, 0, value*7)
	case models.FrequencyMonthly:
		return base.AddDate(0, value, 0)
	case models.FrequencyQuarterly:
		return base.AddDate(0, value*3, 0)
	case models.FrequencyAnnual:
		return base.AddDate(value, 0, 0)
	default:
		return base.AddDate(0, 1, 0)
	}
}

// plannedWindow starts on the day of now at startHour and lasts the duration rounded up to
// whole hours.
func plannedWindow(now time.Time, startHour int, durationHours float64) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), startHour, 0, 0, 0, now.Location())
	hours := 0
	if durationHours > 0 {
		hours = int(math.Ceil(durationHours))
	}
	return start, start.Add(time.Duration(hours) * time.Hour)
}
