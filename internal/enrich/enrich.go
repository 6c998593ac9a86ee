// internal/enrich/enrich.go
package enrich

import (
	"github.com/jaysongor/ducklens-backend/internal/domain"
	"github.com/jaysongor/ducklens-backend/internal/dimension"
)

// Enricher builds enriched facts from deduplicated records, the promo mask
// and the dimension resolver. ExtremeDeviation is the |unit_price - rrp|/rrp
// ratio above which a record is flagged medium.
type Enricher struct {
	ExtremeDeviation float64
}

func New(extremeDeviation float64) *Enricher {
	return &Enricher{ExtremeDeviation: extremeDeviation}
}

// Enrich maps each record to a fact row. promoMask must be index-aligned
// with records. Records whose date failed to parse get a zero date surrogate
// and are excluded from date-sensitive analytics downstream via the flag.
func (e *Enricher) Enrich(records []domain.CleanRecord, promoMask []bool, res *dimension.Resolver) []domain.EnrichedFact {
	facts := make([]domain.EnrichedFact, 0, len(records))
	for i := range records {
		rec := &records[i]

		fact := domain.EnrichedFact{
			StoreID:    res.ResolveStore(rec.StoreName),
			ItemID:     res.ResolveItem(rec),
			SupplierID: res.ResolveSupplier(rec.Supplier),
			Quantity:   rec.Quantity,
			TotalSales: rec.TotalSales,
			RRP:        rec.RRP,
			IsPromo:    promoMask[i],
		}
		if rec.DateValid {
			fact.DateID = res.ResolveDate(rec.Date)
			fact.Date = rec.Date
		}
		fact.UnitPrice, fact.UnitPriceValid = rec.UnitPrice()
		fact.DiscountPct = rec.DiscountPct()
		fact.QualityFlag = e.qualityFlag(rec, fact.UnitPrice, fact.UnitPriceValid)

		facts = append(facts, fact)
	}
	return facts
}

// qualityFlag computes the enrichment-time flag and combines it with the
// flag the normalizer already attached, keeping the more severe of the two.
func (e *Enricher) qualityFlag(rec *domain.CleanRecord, unitPrice float64, unitPriceValid bool) domain.QualityFlag {
	flag := domain.QualityClean

	switch {
	case rec.Quantity < 0 || rec.TotalSales < 0:
		flag = domain.QualityLow
	case rec.RRP <= 0:
		flag = domain.QualityMedium
	case unitPriceValid && deviation(unitPrice, rec.RRP) > e.ExtremeDeviation:
		flag = domain.QualityMedium
	}

	if rec.QualityFlag.Worse(flag) {
		return rec.QualityFlag
	}
	return flag
}

func deviation(unitPrice, rrp float64) float64 {
	d := (unitPrice - rrp) / rrp
	if d < 0 {
		return -d
	}
	return d
}
