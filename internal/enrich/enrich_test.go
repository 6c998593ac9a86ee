package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaysongor/ducklens-backend/internal/dimension"
	"github.com/jaysongor/ducklens-backend/internal/domain"
)

func clean(store, item, supplier string, qty, sales, rrp float64) domain.CleanRecord {
	return domain.CleanRecord{
		StoreName:   store,
		ItemCode:    item,
		Supplier:    supplier,
		Date:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		DateValid:   true,
		Quantity:    qty,
		TotalSales:  sales,
		RRP:         rrp,
		QualityFlag: domain.QualityClean,
	}
}

func TestEnrichComputesDerivedFields(t *testing.T) {
	res := dimension.New("bidco")
	e := New(0.5)

	recs := []domain.CleanRecord{clean("Naivas", "BK-001", "Bidco Africa", 4, 360, 100)}
	facts := e.Enrich(recs, []bool{true}, res)

	require.Len(t, facts, 1)
	f := facts[0]
	assert.Equal(t, 90.0, f.UnitPrice)
	assert.True(t, f.UnitPriceValid)
	assert.InDelta(t, 0.10, f.DiscountPct, 1e-9)
	assert.True(t, f.IsPromo)
	assert.Equal(t, int64(20240610), f.DateID)
	assert.Equal(t, domain.QualityClean, f.QualityFlag)
	assert.True(t, res.Set().Items[f.ItemID].IsBidco)
}

func TestEnrichZeroQuantityLeavesUnitPriceUndefined(t *testing.T) {
	res := dimension.New("bidco")
	facts := New(0.5).Enrich(
		[]domain.CleanRecord{clean("S", "A", "X", 0, 0, 100)},
		[]bool{false}, res,
	)

	f := facts[0]
	assert.False(t, f.UnitPriceValid)
	assert.Zero(t, f.UnitPrice)
	assert.Zero(t, f.DiscountPct)
}

func TestEnrichNegativeValuesFlagLow(t *testing.T) {
	res := dimension.New("bidco")
	facts := New(0.5).Enrich(
		[]domain.CleanRecord{
			clean("S", "A", "X", -2, 100, 100),
			clean("S", "B", "X", 2, -100, 100),
		},
		[]bool{false, false}, res,
	)

	assert.Equal(t, domain.QualityLow, facts[0].QualityFlag)
	assert.Equal(t, domain.QualityLow, facts[1].QualityFlag)
}

func TestEnrichMissingRRPFlagsMedium(t *testing.T) {
	res := dimension.New("bidco")
	facts := New(0.5).Enrich(
		[]domain.CleanRecord{clean("S", "A", "X", 2, 100, 0)},
		[]bool{false}, res,
	)

	assert.Equal(t, domain.QualityMedium, facts[0].QualityFlag)
}

func TestEnrichExtremePriceDeviationFlagsMedium(t *testing.T) {
	res := dimension.New("bidco")
	facts := New(0.5).Enrich(
		[]domain.CleanRecord{
			clean("S", "A", "X", 1, 160, 100), // 60% above rrp
			clean("S", "B", "X", 1, 140, 100), // 40% above rrp, inside tolerance
		},
		[]bool{false, false}, res,
	)

	assert.Equal(t, domain.QualityMedium, facts[0].QualityFlag)
	assert.Equal(t, domain.QualityClean, facts[1].QualityFlag)
}

func TestEnrichKeepsWorseNormalizerFlag(t *testing.T) {
	res := dimension.New("bidco")
	rec := clean("S", "A", "X", 1, 100, 100)
	rec.QualityFlag = domain.QualityLow

	facts := New(0.5).Enrich([]domain.CleanRecord{rec}, []bool{false}, res)

	assert.Equal(t, domain.QualityLow, facts[0].QualityFlag)
}

func TestEnrichInvalidDateGetsZeroSurrogate(t *testing.T) {
	res := dimension.New("bidco")
	rec := clean("S", "A", "X", 1, 100, 100)
	rec.DateValid = false

	facts := New(0.5).Enrich([]domain.CleanRecord{rec}, []bool{false}, res)

	assert.Zero(t, facts[0].DateID)
	assert.True(t, facts[0].Date.IsZero())
}
