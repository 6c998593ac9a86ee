package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricePositioningBandsAreLowerBoundInclusive(t *testing.T) {
	cases := []struct {
		index float64
		want  string
	}{
		{1.25, PositioningPremium},
		{1.10, PositioningPremium}, // exactly 1.10 is PREMIUM
		{1.09, PositioningSlightPremium},
		{1.05, PositioningSlightPremium},
		{1.00, PositioningAtMarket},
		{0.95, PositioningAtMarket}, // exactly 0.95 is AT MARKET
		{0.94, PositioningSlightDiscount},
		{0.90, PositioningSlightDiscount},
		{0.89, PositioningDeepDiscount},
		{0.50, PositioningDeepDiscount},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PricePositioning(tc.index), "index %v", tc.index)
	}
}

func TestPerformanceTierBoundaries(t *testing.T) {
	assert.Equal(t, TierElite, PerformanceTier(80))
	assert.Equal(t, TierTop, PerformanceTier(79.9))
	assert.Equal(t, TierTop, PerformanceTier(60))
	assert.Equal(t, TierStrong, PerformanceTier(40))
	assert.Equal(t, TierAverage, PerformanceTier(20))
	assert.Equal(t, TierLow, PerformanceTier(19.9))
}

func TestReliabilityGradeBoundaries(t *testing.T) {
	assert.Equal(t, "A+", ReliabilityGrade(100))
	assert.Equal(t, "A+", ReliabilityGrade(99.5))
	assert.Equal(t, "A", ReliabilityGrade(99))
	assert.Equal(t, "B+", ReliabilityGrade(98))
	assert.Equal(t, "B", ReliabilityGrade(95))
	assert.Equal(t, "C", ReliabilityGrade(90))
	assert.Equal(t, "D", ReliabilityGrade(80))
	assert.Equal(t, "F", ReliabilityGrade(79.9))
	assert.Equal(t, "F", ReliabilityGrade(0))
}

func TestQualityFlagSeverityOrdering(t *testing.T) {
	assert.True(t, QualityLow.Worse(QualityMedium))
	assert.True(t, QualityMedium.Worse(QualityClean))
	assert.False(t, QualityClean.Worse(QualityMedium))
	assert.False(t, QualityLow.Worse(QualityLow))
}

func TestUnitPriceUndefinedAtZeroQuantity(t *testing.T) {
	r := CleanRecord{Quantity: 0, TotalSales: 50}
	_, ok := r.UnitPrice()
	assert.False(t, ok)

	r.Quantity = 2
	p, ok := r.UnitPrice()
	assert.True(t, ok)
	assert.Equal(t, 25.0, p)
}
