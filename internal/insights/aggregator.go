// internal/insights/aggregator.go
package insights

import (
	"sort"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// Aggregator derives summary metrics from an enriched fact set. Every method
// is a pure function of its inputs; rerunning over the same facts yields
// identical outputs.
type Aggregator struct{}

func New() *Aggregator {
	return &Aggregator{}
}

// Score weights for the composite SKU performance score.
const (
	upliftWeight   = 0.50
	coverageWeight = 0.30
	revenueWeight  = 0.20
)

type skuAccumulator struct {
	baselineUnits float64
	baselineDays  int
	promoUnits    float64
	promoDays     int
	promoRevenue  float64
	totalRevenue  float64
	stores        map[int64]struct{}
	promoStores   map[int64]struct{}
}

// SKUSummaries computes per-item promo effectiveness, the composite
// performance score and the leaderboard rank. Output order is rank order:
// score descending, ties broken by promo revenue descending, then item ID.
func (a *Aggregator) SKUSummaries(facts []domain.EnrichedFact, dims domain.DimensionSet) []domain.SKUPromoSummary {
	accs := make(map[int64]*skuAccumulator)
	for i := range facts {
		f := &facts[i]
		acc, ok := accs[f.ItemID]
		if !ok {
			acc = &skuAccumulator{
				stores:      make(map[int64]struct{}),
				promoStores: make(map[int64]struct{}),
			}
			accs[f.ItemID] = acc
		}
		acc.stores[f.StoreID] = struct{}{}
		acc.totalRevenue += f.TotalSales
		if f.IsPromo {
			acc.promoStores[f.StoreID] = struct{}{}
			acc.promoRevenue += f.TotalSales
			acc.promoUnits += f.Quantity
			acc.promoDays++
		} else {
			acc.baselineUnits += f.Quantity
			acc.baselineDays++
		}
	}

	out := make([]domain.SKUPromoSummary, 0, len(accs))
	for itemID, acc := range accs {
		item := dims.Items[itemID]
		s := domain.SKUPromoSummary{
			ItemID:         itemID,
			ItemCode:       item.Code,
			Description:    item.Description,
			Category:       item.Category,
			IsBidco:        item.IsBidco,
			StoresCarrying: len(acc.stores),
			StoresOnPromo:  len(acc.promoStores),
			PromoRevenue:   acc.promoRevenue,
			TotalRevenue:   acc.totalRevenue,
		}
		if acc.baselineDays > 0 {
			s.BaselineAvgUnits = acc.baselineUnits / float64(acc.baselineDays)
			s.HasBaseline = true
		}
		if acc.promoDays > 0 {
			s.PromoAvgUnits = acc.promoUnits / float64(acc.promoDays)
			s.HasPromo = true
		}
		s.UpliftPct = UpliftPct(s.BaselineAvgUnits, s.HasBaseline, s.PromoAvgUnits, s.HasPromo)
		s.CoveragePct = CoveragePct(s.StoresOnPromo, s.StoresCarrying)
		s.PerformanceScore = PerformanceScore(s.UpliftPct, s.CoveragePct, s.PromoRevenue, s.TotalRevenue)
		s.PerformanceTier = domain.PerformanceTier(s.PerformanceScore)
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PerformanceScore != out[j].PerformanceScore {
			return out[i].PerformanceScore > out[j].PerformanceScore
		}
		if out[i].PromoRevenue != out[j].PromoRevenue {
			return out[i].PromoRevenue > out[j].PromoRevenue
		}
		return out[i].ItemID < out[j].ItemID
	})
	for i := range out {
		out[i].OverallRank = i + 1
	}
	return out
}

// UpliftPct is the relative gain of promo-day average units over the
// baseline. Missing or zero baseline, or missing promo observations, yield
// zero rather than an error or an infinity.
func UpliftPct(baselineAvg float64, hasBaseline bool, promoAvg float64, hasPromo bool) float64 {
	if !hasBaseline || baselineAvg == 0 || !hasPromo {
		return 0
	}
	return (promoAvg - baselineAvg) / baselineAvg * 100
}

// CoveragePct is the share of carrying stores that ran the promo.
func CoveragePct(storesOnPromo, storesCarrying int) float64 {
	if storesCarrying == 0 {
		return 0
	}
	return float64(storesOnPromo) / float64(storesCarrying) * 100
}

// PerformanceScore blends uplift, coverage and promo revenue share into a
// 0-100 composite. Uplift and revenue-share components are capped at 100
// before weighting so one runaway metric cannot dominate.
func PerformanceScore(upliftPct, coveragePct, promoRevenue, totalRevenue float64) float64 {
	upliftComponent := capAt100(upliftPct * 0.5)
	revenueComponent := 0.0
	if totalRevenue > 0 {
		revenueComponent = capAt100(promoRevenue / totalRevenue * 200)
	}
	return upliftWeight*upliftComponent + coverageWeight*coveragePct + revenueWeight*revenueComponent
}

func capAt100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}
