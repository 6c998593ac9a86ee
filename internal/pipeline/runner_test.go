package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaysongor/ducklens-backend/internal/config"
	"github.com/jaysongor/ducklens-backend/internal/domain"
)

func testCfg() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		FocalBrand:            "bidco",
		PromoMinDiscount:      0.10,
		PromoMinRunDays:       2,
		ExtremePriceDeviation: 0.5,
		StoreExtremeRatio:     0.05,
		SupplierExtremeRatio:  0.10,
		ZeroQuantityThreshold: 10,
		WorkerCount:           4,
		DistributionMinStores: 3,
		DistributionMinTxns:   100,
	}
}

// memWarehouse is an in-memory Warehouse for runner tests.
type memWarehouse struct {
	staging []domain.RawTransaction

	dims        domain.DimensionSet
	facts       []domain.EnrichedFact
	summaries   []domain.SKUPromoSummary
	priceIndex  []domain.PriceIndexRow
	categories  []domain.CategoryPriceIndex
	reliability []domain.ReliabilityRecord
	kpis        domain.KPIMetrics
	quality     domain.DataQualityReport
	runs        []*RunResult

	failFacts bool
}

func (m *memWarehouse) LoadStaging(context.Context) ([]domain.RawTransaction, error) {
	return m.staging, nil
}

func (m *memWarehouse) LoadDimensions(context.Context) (domain.DimensionSet, error) {
	return m.dims, nil
}

func (m *memWarehouse) ReplaceDimensions(_ context.Context, set domain.DimensionSet) error {
	m.dims = set
	return nil
}

func (m *memWarehouse) ReplaceFacts(_ context.Context, facts []domain.EnrichedFact) error {
	if m.failFacts {
		return errors.New("connection reset")
	}
	m.facts = facts
	return nil
}

func (m *memWarehouse) ReplaceSKUSummaries(_ context.Context, s []domain.SKUPromoSummary) error {
	m.summaries = s
	return nil
}

func (m *memWarehouse) ReplacePriceIndex(_ context.Context, rows []domain.PriceIndexRow, cats []domain.CategoryPriceIndex) error {
	m.priceIndex = rows
	m.categories = cats
	return nil
}

func (m *memWarehouse) ReplaceReliability(_ context.Context, recs []domain.ReliabilityRecord) error {
	m.reliability = recs
	return nil
}

func (m *memWarehouse) ReplaceKPIs(_ context.Context, k domain.KPIMetrics, q domain.DataQualityReport) error {
	m.kpis = k
	m.quality = q
	return nil
}

func (m *memWarehouse) RecordRun(_ context.Context, r *RunResult) error {
	m.runs = append(m.runs, r)
	return nil
}

func raw(store, item, supplier, date, qty, sales, rrp string) domain.RawTransaction {
	return domain.RawTransaction{
		StoreName:     store,
		ItemCode:      item,
		Supplier:      supplier,
		DateOfSale:    date,
		Quantity:      qty,
		TotalSales:    sales,
		RRP:           rrp,
		Category:      "oils",
		SubDepartment: "cooking oil",
		Section:       "1l",
	}
}

func sampleBatch() []domain.RawTransaction {
	return []domain.RawTransaction{
		// two consecutive discount days for (naivas, bk-001) form a promo run
		raw("naivas", "bk-001", "bidco africa", "2024-05-01", "10", "850", "100"),
		raw("naivas", "bk-001", "bidco africa", "2024-05-02", "12", "1020", "100"),
		raw("naivas", "bk-001", "bidco africa", "2024-05-03", "8", "800", "100"),
		// competitor item at the same store for the price index
		raw("naivas", "kp-002", "kapa oil", "2024-05-01", "10", "1000", "100"),
		// business duplicate of the first record
		raw("naivas", "bk-001", "bidco africa", "2024-05-01", "99", "9900", "100"),
	}
}

func TestRunPublishesAllOutputs(t *testing.T) {
	w := &memWarehouse{staging: sampleBatch()}
	result, err := NewRunner(w, testCfg()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.RawRecords)
	assert.Equal(t, 4, result.FactRecords)
	assert.Equal(t, 1, result.BusinessDuplicates)
	assert.Equal(t, 2, result.PromoRecords)

	require.Len(t, w.facts, 4)
	assert.NotEmpty(t, w.summaries)
	assert.NotEmpty(t, w.priceIndex)
	assert.NotEmpty(t, w.reliability)
	assert.Equal(t, 4, w.quality.TotalRecords)
	require.Len(t, w.runs, 1)

	// promo mask: days 1-2 are a run, day 3 is full price
	promoCount := 0
	for _, f := range w.facts {
		if f.IsPromo {
			promoCount++
		}
	}
	assert.Equal(t, 2, promoCount)
}

func TestRunLeavesOutputsUntouchedOnFailure(t *testing.T) {
	w := &memWarehouse{staging: sampleBatch(), failFacts: true}
	w.summaries = []domain.SKUPromoSummary{{ItemCode: "OLD"}}

	_, err := NewRunner(w, testCfg()).Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, w.facts)
	// downstream outputs were never reached
	require.Len(t, w.summaries, 1)
	assert.Equal(t, "OLD", w.summaries[0].ItemCode)
	assert.Empty(t, w.runs)
}

func TestComputeDeterministicRoundTrip(t *testing.T) {
	batch := make([]domain.RawTransaction, 0, 300)
	for s := 0; s < 3; s++ {
		for d := 1; d <= 10; d++ {
			for i := 0; i < 10; i++ {
				price := 100.0
				if d <= 4 {
					price = 85
				}
				batch = append(batch, raw(
					fmt.Sprintf("store-%d", s),
					fmt.Sprintf("sku-%d", i),
					map[bool]string{true: "bidco africa", false: "kapa oil"}[i%2 == 0],
					fmt.Sprintf("2024-05-%02d", d),
					"10",
					fmt.Sprintf("%g", price*10),
					"100",
				))
			}
		}
	}

	first, err := Compute(context.Background(), batch, domain.DimensionSet{}, testCfg())
	require.NoError(t, err)

	for run := 0; run < 3; run++ {
		again, err := Compute(context.Background(), batch, domain.DimensionSet{}, testCfg())
		require.NoError(t, err)
		assert.Equal(t, first.Facts, again.Facts)
		assert.Equal(t, first.Summaries, again.Summaries)
		assert.Equal(t, first.PriceIndex, again.PriceIndex)
		assert.Equal(t, first.Categories, again.Categories)
		assert.Equal(t, first.KPIs, again.KPIs)
		assert.Equal(t, first.Stores, again.Stores)
		assert.Equal(t, first.Suppliers, again.Suppliers)
	}
}

func TestComputeSeededDimensionsKeepIDs(t *testing.T) {
	seed := domain.DimensionSet{
		Stores: map[int64]domain.DimStore{
			42: {ID: 42, Name: "Naivas"},
		},
		Suppliers: map[int64]domain.DimSupplier{},
		Items:     map[int64]domain.DimItem{},
		Dates:     map[int64]domain.DimDate{},
	}

	a, err := Compute(context.Background(), sampleBatch(), seed, testCfg())
	require.NoError(t, err)

	for _, f := range a.Facts {
		assert.Equal(t, int64(42), f.StoreID)
	}
}
