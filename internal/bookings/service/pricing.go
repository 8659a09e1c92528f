package service

import (
	"math"
	"time"

	"agrirent/pkg/model"
)

// RentalDays is the billable duration: the date span rounded up to whole
// days.
func RentalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// ComputeTotal applies the tiered rate schedule. Short rentals bill per day,
// mid-length per started week, long per started month. The jump at the tier
// boundaries is intentional and documented behavior.
func ComputeTotal(days int, equipment *model.Equipment) float64 {
	switch {
	case days <= 7:
		return float64(days) * equipment.DailyRate
	case days <= 30:
		weeks := math.Ceil(float64(days) / 7)
		return weeks * equipment.WeeklyRate
	default:
		months := math.Ceil(float64(days) / 30)
		return months * equipment.MonthlyRate
	}
}
