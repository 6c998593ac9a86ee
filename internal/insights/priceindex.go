// internal/insights/priceindex.go
package insights

import (
	"sort"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

type priceGroupKey struct {
	storeID       int64
	subDepartment string
	section       string
}

type priceGroupAcc struct {
	bidcoSum        float64
	bidcoCount      int
	competitorSum   float64
	competitorCount int
	bidcoRevenue    float64
	compRevenue     float64
	category        string
}

// PriceIndex compares own-brand average realized unit price against
// competitor items within each (store, sub-department, section) group.
// Groups without data on both sides are excluded: an index against nothing
// is meaningless. Output order is deterministic (store, sub-department,
// section ascending).
func (a *Aggregator) PriceIndex(facts []domain.EnrichedFact, dims domain.DimensionSet) []domain.PriceIndexRow {
	groups := make(map[priceGroupKey]*priceGroupAcc)
	for i := range facts {
		f := &facts[i]
		if !f.UnitPriceValid {
			continue
		}
		item, ok := dims.Items[f.ItemID]
		if !ok {
			continue
		}
		k := priceGroupKey{storeID: f.StoreID, subDepartment: item.SubDepartment, section: item.Section}
		acc, ok := groups[k]
		if !ok {
			acc = &priceGroupAcc{category: item.Category}
			groups[k] = acc
		}
		if item.IsBidco {
			acc.bidcoSum += f.UnitPrice
			acc.bidcoCount++
			acc.bidcoRevenue += f.TotalSales
		} else {
			acc.competitorSum += f.UnitPrice
			acc.competitorCount++
			acc.compRevenue += f.TotalSales
		}
	}

	out := make([]domain.PriceIndexRow, 0, len(groups))
	for k, acc := range groups {
		if acc.bidcoCount == 0 || acc.competitorCount == 0 {
			continue
		}
		bidcoAvg := acc.bidcoSum / float64(acc.bidcoCount)
		compAvg := acc.competitorSum / float64(acc.competitorCount)
		index := bidcoAvg / compAvg
		out = append(out, domain.PriceIndexRow{
			StoreID:                k.storeID,
			StoreName:              dims.Stores[k.storeID].Name,
			SubDepartment:          k.subDepartment,
			Section:                k.section,
			BidcoAvgPrice:          bidcoAvg,
			CompetitorAvgPrice:     compAvg,
			PriceIndex:             index,
			Positioning:            domain.PricePositioning(index),
			BidcoTransactions:      acc.bidcoCount,
			CompetitorTransactions: acc.competitorCount,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StoreID != out[j].StoreID {
			return out[i].StoreID < out[j].StoreID
		}
		if out[i].SubDepartment != out[j].SubDepartment {
			return out[i].SubDepartment < out[j].SubDepartment
		}
		return out[i].Section < out[j].Section
	})
	return out
}

// CategoryPriceIndex rolls store-level price index groups up to categories.
// It reuses the per-fact pass so revenue splits stay exact rather than
// averaging averages of averages.
func (a *Aggregator) CategoryPriceIndex(facts []domain.EnrichedFact, dims domain.DimensionSet) []domain.CategoryPriceIndex {
	type catAcc struct {
		indexSum     float64
		bidcoAvgSum  float64
		compAvgSum   float64
		segments     int
		bidcoRevenue float64
		compRevenue  float64
	}

	// per-group pass mirrors PriceIndex but keyed with category retained
	groups := make(map[priceGroupKey]*priceGroupAcc)
	for i := range facts {
		f := &facts[i]
		if !f.UnitPriceValid {
			continue
		}
		item, ok := dims.Items[f.ItemID]
		if !ok {
			continue
		}
		k := priceGroupKey{storeID: f.StoreID, subDepartment: item.SubDepartment, section: item.Section}
		acc, ok := groups[k]
		if !ok {
			acc = &priceGroupAcc{category: item.Category}
			groups[k] = acc
		}
		if item.IsBidco {
			acc.bidcoSum += f.UnitPrice
			acc.bidcoCount++
			acc.bidcoRevenue += f.TotalSales
		} else {
			acc.competitorSum += f.UnitPrice
			acc.competitorCount++
			acc.compRevenue += f.TotalSales
		}
	}

	cats := make(map[string]*catAcc)
	for _, acc := range groups {
		if acc.bidcoCount == 0 || acc.competitorCount == 0 {
			continue
		}
		c, ok := cats[acc.category]
		if !ok {
			c = &catAcc{}
			cats[acc.category] = c
		}
		bidcoAvg := acc.bidcoSum / float64(acc.bidcoCount)
		compAvg := acc.competitorSum / float64(acc.competitorCount)
		c.indexSum += bidcoAvg / compAvg
		c.bidcoAvgSum += bidcoAvg
		c.compAvgSum += compAvg
		c.segments++
		c.bidcoRevenue += acc.bidcoRevenue
		c.compRevenue += acc.compRevenue
	}

	out := make([]domain.CategoryPriceIndex, 0, len(cats))
	for name, c := range cats {
		avgIndex := c.indexSum / float64(c.segments)
		out = append(out, domain.CategoryPriceIndex{
			Category:           name,
			SegmentCount:       c.segments,
			AvgPriceIndex:      avgIndex,
			AvgBidcoPrice:      c.bidcoAvgSum / float64(c.segments),
			AvgCompetitorPrice: c.compAvgSum / float64(c.segments),
			Positioning:        domain.PricePositioning(avgIndex),
			BidcoRevenue:       c.bidcoRevenue,
			CompetitorRevenue:  c.compRevenue,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
