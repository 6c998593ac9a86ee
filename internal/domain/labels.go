// internal/domain/labels.go
package domain

// Price positioning bands for the bidco vs competitor price index.
const (
	PositioningPremium        = "PREMIUM"
	PositioningSlightPremium  = "SLIGHT PREMIUM"
	PositioningAtMarket       = "AT MARKET"
	PositioningSlightDiscount = "SLIGHT DISCOUNT"
	PositioningDeepDiscount   = "DEEP DISCOUNT"
)

// Performance tiers for the SKU promo leaderboard.
const (
	TierElite   = "Elite"
	TierTop     = "Top Performer"
	TierStrong  = "Strong"
	TierAverage = "Average"
	TierLow     = "Low Impact"
)

// Reliability statuses ordered from worst to best.
const (
	StatusCritical = "CRITICAL"
	StatusHigh     = "HIGH"
	StatusMedium   = "MEDIUM"
	StatusMonitor  = "MONITOR"
	StatusLow      = "LOW"
	StatusReliable = "RELIABLE"
)

// PricePositioning maps a price index value to its band. Bands are checked
// top-down with inclusive lower bounds, so exactly 1.10 is PREMIUM and
// exactly 0.95 is AT MARKET.
func PricePositioning(index float64) string {
	switch {
	case index >= 1.10:
		return PositioningPremium
	case index >= 1.05:
		return PositioningSlightPremium
	case index >= 0.95:
		return PositioningAtMarket
	case index >= 0.90:
		return PositioningSlightDiscount
	default:
		return PositioningDeepDiscount
	}
}

// PerformanceTier maps a composite performance score to its tier label.
func PerformanceTier(score float64) string {
	switch {
	case score >= 80:
		return TierElite
	case score >= 60:
		return TierTop
	case score >= 40:
		return TierStrong
	case score >= 20:
		return TierAverage
	default:
		return TierLow
	}
}

// ReliabilityGrade maps a reliability score to its letter grade.
func ReliabilityGrade(score float64) string {
	switch {
	case score >= 99.5:
		return "A+"
	case score >= 99:
		return "A"
	case score >= 98:
		return "B+"
	case score >= 95:
		return "B"
	case score >= 90:
		return "C"
	case score >= 80:
		return "D"
	default:
		return "F"
	}
}
