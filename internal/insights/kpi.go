// internal/insights/kpi.go
package insights

import "github.com/jaysongor/ducklens-backend/internal/domain"

// KPIs computes the executive summary over the whole fact set.
func (a *Aggregator) KPIs(facts []domain.EnrichedFact) domain.KPIMetrics {
	var m domain.KPIMetrics

	stores := make(map[int64]struct{})
	promoStores := make(map[int64]struct{})
	skus := make(map[int64]struct{})
	promoSKUs := make(map[int64]struct{})

	var discountSum float64
	var promoUnits, promoDays float64
	var baselineUnits, baselineDays float64

	for i := range facts {
		f := &facts[i]
		m.TotalTransactions++
		stores[f.StoreID] = struct{}{}
		skus[f.ItemID] = struct{}{}
		if f.IsPromo {
			m.PromoTransactions++
			m.PromoRevenue += f.TotalSales
			discountSum += f.DiscountPct
			promoStores[f.StoreID] = struct{}{}
			promoSKUs[f.ItemID] = struct{}{}
			promoUnits += f.Quantity
			promoDays++
		} else {
			baselineUnits += f.Quantity
			baselineDays++
		}
	}

	m.TotalStores = len(stores)
	m.TotalSKUs = len(skus)
	m.StoresWithPromo = len(promoStores)
	m.SKUsOnPromo = len(promoSKUs)

	if m.TotalTransactions > 0 {
		m.PromoPenetration = float64(m.PromoTransactions) / float64(m.TotalTransactions) * 100
	}
	if m.PromoTransactions > 0 {
		m.AvgDiscountPct = discountSum / float64(m.PromoTransactions) * 100
	}
	if baselineDays > 0 && promoDays > 0 {
		baselineAvg := baselineUnits / baselineDays
		if baselineAvg != 0 {
			m.UnitsUpliftPct = (promoUnits/promoDays - baselineAvg) / baselineAvg * 100
		}
	}
	return m
}

// DataQuality summarizes batch-level quality counters. Duplicate counts come
// from the deduplication stage since removed records are no longer visible
// in the fact set.
func (a *Aggregator) DataQuality(facts []domain.EnrichedFact, exactDups, businessDups int) domain.DataQualityReport {
	rep := domain.DataQualityReport{
		TotalRecords:       len(facts),
		ExactDuplicates:    exactDups,
		BusinessDuplicates: businessDups,
	}
	for i := range facts {
		f := &facts[i]
		switch f.QualityFlag {
		case domain.QualityLow:
			rep.LowRecords++
		case domain.QualityMedium:
			rep.MediumRecords++
		default:
			rep.CleanRecords++
		}
		if f.Quantity < 0 {
			rep.NegativeQuantity++
		}
		if f.TotalSales < 0 {
			rep.NegativeSales++
		}
	}
	if rep.TotalRecords > 0 {
		rep.QualityScore = float64(rep.CleanRecords) / float64(rep.TotalRecords) * 100
	}
	return rep
}
