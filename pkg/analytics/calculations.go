package analytics

import "github.com/Ramsey-B/fern/pkg/models"

// EfficiencyRating is the monthly cost per active user, or the whole cost when nobody uses the
// tool. Rounded to cents.
func EfficiencyRating(monthlyCost float64, activeUsers int) float64 {
	if activeUsers > 0 {
		return models.RoundCurrency(monthlyCost / float64(activeUsers))
	}
	return models.RoundCurrency(monthlyCost)
}

// WarningLevelFor classifies a tool below the usage threshold. Half the threshold uses integer
// division.
func WarningLevelFor(activeUsers, threshold int) models.WarningLevel {
	switch {
	case activeUsers == 0:
		return models.WarningLevelCritical
	case activeUsers < threshold/2:
		return models.WarningLevelHigh
	default:
		return models.WarningLevelMedium
	}
}

// Percentage is part's share of total rounded to one decimal, zero for an empty total.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return models.RoundPercent(part / total * 100)
}
