package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

func rec(store, item string, day int, qty, sales float64) domain.CleanRecord {
	return domain.CleanRecord{
		StoreName:   store,
		ItemCode:    item,
		Date:        time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		DateValid:   true,
		Quantity:    qty,
		TotalSales:  sales,
		QualityFlag: domain.QualityClean,
	}
}

func TestDeduplicateKeepsFirstOccurrence(t *testing.T) {
	in := []domain.CleanRecord{
		rec("Naivas", "SKU1", 1, 5, 100),
		rec("Naivas", "SKU1", 1, 9, 999), // business dup, different amounts
		rec("Naivas", "SKU1", 2, 3, 60),
	}

	out, stats := Deduplicate(in)

	require.Len(t, out, 2)
	assert.Equal(t, 5.0, out[0].Quantity, "survivor must be the first occurrence")
	assert.Equal(t, 1, stats.BusinessDuplicates)
	assert.Equal(t, 0, stats.ExactDuplicates)
	assert.Equal(t, 3, stats.Input)
	assert.Equal(t, 2, stats.Output)
}

func TestDeduplicateDistinguishesExactFromBusiness(t *testing.T) {
	in := []domain.CleanRecord{
		rec("Naivas", "SKU1", 1, 5, 100),
		rec("Naivas", "SKU1", 1, 5, 100), // exact dup
		rec("Naivas", "SKU1", 1, 7, 140), // business dup
	}

	out, stats := Deduplicate(in)

	require.Len(t, out, 1)
	assert.Equal(t, 1, stats.ExactDuplicates)
	assert.Equal(t, 1, stats.BusinessDuplicates)
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	in := []domain.CleanRecord{
		rec("A", "S1", 1, 1, 10),
		rec("A", "S1", 1, 2, 20),
		rec("B", "S1", 1, 3, 30),
		rec("A", "S2", 2, 4, 40),
	}

	first, stats1 := Deduplicate(in)
	second, stats2 := Deduplicate(first)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stats1.BusinessDuplicates)
	assert.Zero(t, stats2.ExactDuplicates)
	assert.Zero(t, stats2.BusinessDuplicates)
}

func TestDeduplicateDifferentStoresNotDuplicates(t *testing.T) {
	in := []domain.CleanRecord{
		rec("A", "S1", 1, 1, 10),
		rec("B", "S1", 1, 1, 10),
	}

	out, stats := Deduplicate(in)

	assert.Len(t, out, 2)
	assert.Zero(t, stats.ExactDuplicates)
	assert.Zero(t, stats.BusinessDuplicates)
}
