package reliability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

func defaults() Thresholds {
	return Thresholds{
		ExtremeDeviation:      0.5,
		StoreExtremeRatio:     0.05,
		SupplierExtremeRatio:  0.10,
		ZeroQuantityThreshold: 10,
		DistributionMinStores: 3,
		DistributionMinTxns:   100,
	}
}

func dims() domain.DimensionSet {
	return domain.DimensionSet{
		Stores:    map[int64]domain.DimStore{1: {ID: 1, Name: "Naivas"}},
		Suppliers: map[int64]domain.DimSupplier{1: {ID: 1, Name: "Kapa"}},
	}
}

func cleanFact(storeID, supplierID int64, qty, sales, unitPrice, rrp float64) domain.EnrichedFact {
	return domain.EnrichedFact{
		StoreID:        storeID,
		ItemID:         1,
		SupplierID:     supplierID,
		Quantity:       qty,
		TotalSales:     sales,
		UnitPrice:      unitPrice,
		UnitPriceValid: qty != 0,
		RRP:            rrp,
		QualityFlag:    domain.QualityClean,
	}
}

func TestScoreMonotonicAndClamped(t *testing.T) {
	assert.Equal(t, 100.0, Score(0, 0, 0))
	assert.Equal(t, 50.0, Score(1, 0, 0))
	assert.Equal(t, 0.0, Score(1, 1, 1))

	prev := Score(0, 0, 0)
	for _, r := range []float64{0.01, 0.1, 0.5, 1} {
		cur := Score(r, r, r)
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestZeroToleranceSingleNegativeAmongManyIsCritical(t *testing.T) {
	facts := make([]domain.EnrichedFact, 0, 10000)
	for i := 0; i < 9999; i++ {
		facts = append(facts, cleanFact(1, 1, 1, 100, 100, 100))
	}
	neg := cleanFact(1, 1, -1, -100, 100, 100)
	neg.QualityFlag = domain.QualityLow
	facts = append(facts, neg)

	records := New(defaults()).ScoreStores(facts, dims())

	require.Len(t, records, 1)
	rec := records[0]
	assert.True(t, rec.Unreliable)
	assert.Equal(t, domain.StatusCritical, rec.Status)
	assert.InDelta(t, 99.993, rec.Score, 0.001, "numeric score stays near-perfect; status does not")
	assert.NotEmpty(t, rec.Issues)
}

func TestStoreWithSixPercentExtremePricesFlaggedAtLeastMedium(t *testing.T) {
	facts := make([]domain.EnrichedFact, 0, 100)
	for i := 0; i < 94; i++ {
		facts = append(facts, cleanFact(1, 1, 1, 100, 100, 100))
	}
	for i := 0; i < 6; i++ {
		f := cleanFact(1, 1, 1, 160, 160, 100) // 60% above rrp
		f.QualityFlag = domain.QualityMedium
		facts = append(facts, f)
	}

	records := New(defaults()).ScoreStores(facts, dims())

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 6, rec.ExtremePriceCount)
	assert.True(t, rec.PricingInconsistent)
	assert.True(t, rec.QualityIssues)
	assert.Equal(t, domain.StatusHigh, rec.Status)
	assert.False(t, rec.Unreliable)
}

func TestSupplierExtremeThresholdIsLooser(t *testing.T) {
	// 6% extreme trips the 5% store threshold but not the 10% supplier one
	facts := make([]domain.EnrichedFact, 0, 100)
	for i := 0; i < 94; i++ {
		facts = append(facts, cleanFact(1, 1, 1, 100, 100, 100))
	}
	for i := 0; i < 6; i++ {
		f := cleanFact(1, 1, 1, 160, 160, 100)
		f.QualityFlag = domain.QualityMedium
		facts = append(facts, f)
	}

	suppliers := New(defaults()).ScoreSuppliers(facts, dims())

	require.Len(t, suppliers, 1)
	assert.False(t, suppliers[0].PricingInconsistent)
	assert.True(t, suppliers[0].QualityIssues)
	assert.Equal(t, domain.StatusLow, suppliers[0].Status)
}

func TestLimitedDistributionSupplierFlag(t *testing.T) {
	facts := make([]domain.EnrichedFact, 0, 150)
	for i := 0; i < 150; i++ {
		facts = append(facts, cleanFact(int64(i%2+1), 1, 1, 100, 100, 100))
	}

	suppliers := New(defaults()).ScoreSuppliers(facts, dims())

	require.Len(t, suppliers, 1)
	rec := suppliers[0]
	assert.Equal(t, 2, rec.StoresServed)
	assert.True(t, rec.LimitedDistribution)
	assert.Equal(t, domain.StatusLow, rec.Status)
}

func TestSuspiciousZerosFlag(t *testing.T) {
	facts := make([]domain.EnrichedFact, 0, 30)
	for i := 0; i < 15; i++ {
		facts = append(facts, cleanFact(1, 1, 1, 100, 100, 100))
	}
	for i := 0; i < 15; i++ {
		facts = append(facts, cleanFact(1, 1, 0, 0, 0, 100))
	}

	records := New(defaults()).ScoreStores(facts, dims())

	require.Len(t, records, 1)
	assert.True(t, records[0].SuspiciousZeros)
}

func TestCleanEntityIsReliable(t *testing.T) {
	facts := []domain.EnrichedFact{
		cleanFact(1, 1, 1, 100, 100, 100),
		cleanFact(1, 1, 2, 200, 100, 100),
	}

	records := New(defaults()).ScoreStores(facts, dims())

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 100.0, rec.Score)
	assert.Equal(t, "A+", rec.Grade)
	assert.Equal(t, domain.StatusReliable, rec.Status)
	assert.Empty(t, rec.Issues)
}

func TestWorstScoresSortFirst(t *testing.T) {
	facts := []domain.EnrichedFact{
		cleanFact(1, 1, 1, 100, 100, 100),
	}
	bad := cleanFact(2, 1, -1, -50, 50, 100)
	bad.QualityFlag = domain.QualityLow
	facts = append(facts, bad)

	d := dims()
	d.Stores[2] = domain.DimStore{ID: 2, Name: "Problem Store"}
	records := New(defaults()).ScoreStores(facts, d)

	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].EntityID)
	assert.Equal(t, domain.StatusCritical, records[0].Status)
}

func TestOverallSummary(t *testing.T) {
	stores := []domain.ReliabilityRecord{
		{Score: 100, Status: domain.StatusReliable},
		{Score: 50, Status: domain.StatusCritical, Unreliable: true},
	}
	out := New(defaults()).Overall(stores, nil)

	storeSummary := out["stores"].(map[string]any)
	assert.Equal(t, 2, storeSummary["count"])
	assert.Equal(t, 75.0, storeSummary["avg_score"])
	assert.Equal(t, 1, storeSummary["unreliable"])
}
