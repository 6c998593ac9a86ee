// internal/reliability/scorer.go
package reliability

import (
	"fmt"
	"sort"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// Thresholds for the boolean issue flags.
type Thresholds struct {
	ExtremeDeviation      float64 // |unit_price - rrp| / rrp above this is an extreme-price record
	StoreExtremeRatio     float64 // pricing-inconsistent for stores
	SupplierExtremeRatio  float64 // pricing-inconsistent for suppliers
	ZeroQuantityThreshold int     // suspicious-zeros absolute count
	DistributionMinStores int     // limited-distribution store floor (suppliers)
	DistributionMinTxns   int     // limited-distribution transaction floor (suppliers)
}

// Score weights. Ratios are fractions of the entity's transactions, so a
// fully-negative entity loses 50 points on the negative term alone.
const (
	negativeWeight = 50
	extremeWeight  = 30
	criticalWeight = 20
)

// Scorer computes per-store and per-supplier data-reliability scorecards
// from the enriched fact set.
type Scorer struct {
	thresholds Thresholds
}

func New(t Thresholds) *Scorer {
	return &Scorer{thresholds: t}
}

type entityAcc struct {
	total    int
	negative int
	extreme  int
	critical int
	zeroQty  int
	stores   map[int64]struct{}
}

// ScoreStores returns one scorecard per store, ordered by ascending score so
// the worst entities surface first.
func (s *Scorer) ScoreStores(facts []domain.EnrichedFact, dims domain.DimensionSet) []domain.ReliabilityRecord {
	accs := s.accumulate(facts, func(f *domain.EnrichedFact) int64 { return f.StoreID })
	out := make([]domain.ReliabilityRecord, 0, len(accs))
	for id, acc := range accs {
		rec := s.build(domain.EntityStore, id, dims.Stores[id].Name, acc)
		out = append(out, rec)
	}
	sortRecords(out)
	return out
}

// ScoreSuppliers returns one scorecard per supplier, ordered by ascending
// score. Suppliers additionally carry the limited-distribution flag.
func (s *Scorer) ScoreSuppliers(facts []domain.EnrichedFact, dims domain.DimensionSet) []domain.ReliabilityRecord {
	accs := s.accumulate(facts, func(f *domain.EnrichedFact) int64 { return f.SupplierID })
	out := make([]domain.ReliabilityRecord, 0, len(accs))
	for id, acc := range accs {
		rec := s.build(domain.EntitySupplier, id, dims.Suppliers[id].Name, acc)
		out = append(out, rec)
	}
	sortRecords(out)
	return out
}

// Overall aggregates the scorecards into the warehouse-wide health summary.
func (s *Scorer) Overall(stores, suppliers []domain.ReliabilityRecord) map[string]any {
	return map[string]any{
		"stores":    Summarize(stores),
		"suppliers": Summarize(suppliers),
	}
}

// Summarize rolls a set of scorecards up into count, average score, status
// histogram and unreliable count.
func Summarize(records []domain.ReliabilityRecord) map[string]any {
	var scoreSum float64
	byStatus := make(map[string]int)
	unreliable := 0
	for i := range records {
		scoreSum += records[i].Score
		byStatus[records[i].Status]++
		if records[i].Unreliable {
			unreliable++
		}
	}
	avg := 0.0
	if len(records) > 0 {
		avg = scoreSum / float64(len(records))
	}
	return map[string]any{
		"count":      len(records),
		"avg_score":  avg,
		"by_status":  byStatus,
		"unreliable": unreliable,
	}
}

func (s *Scorer) accumulate(facts []domain.EnrichedFact, key func(*domain.EnrichedFact) int64) map[int64]*entityAcc {
	accs := make(map[int64]*entityAcc)
	for i := range facts {
		f := &facts[i]
		id := key(f)
		acc, ok := accs[id]
		if !ok {
			acc = &entityAcc{stores: make(map[int64]struct{})}
			accs[id] = acc
		}
		acc.total++
		acc.stores[f.StoreID] = struct{}{}
		if f.Quantity < 0 || f.TotalSales < 0 {
			acc.negative++
		}
		if s.isExtreme(f) {
			acc.extreme++
		}
		if f.QualityFlag != domain.QualityClean {
			acc.critical++
		}
		if f.Quantity == 0 {
			acc.zeroQty++
		}
	}
	return accs
}

func (s *Scorer) isExtreme(f *domain.EnrichedFact) bool {
	if f.RRP <= 0 || !f.UnitPriceValid {
		return false
	}
	dev := (f.UnitPrice - f.RRP) / f.RRP
	if dev < 0 {
		dev = -dev
	}
	return dev > s.thresholds.ExtremeDeviation
}

func (s *Scorer) build(kind domain.EntityKind, id int64, name string, acc *entityAcc) domain.ReliabilityRecord {
	rec := domain.ReliabilityRecord{
		Kind:              kind,
		EntityID:          id,
		Name:              name,
		TotalTransactions: acc.total,
		NegativeCount:     acc.negative,
		ExtremePriceCount: acc.extreme,
		CriticalCount:     acc.critical,
		ZeroQuantityCount: acc.zeroQty,
		StoresServed:      len(acc.stores),
	}

	total := float64(acc.total)
	rec.Score = Score(
		float64(acc.negative)/total,
		float64(acc.extreme)/total,
		float64(acc.critical)/total,
	)
	rec.Grade = domain.ReliabilityGrade(rec.Score)

	extremeThreshold := s.thresholds.StoreExtremeRatio
	if kind == domain.EntitySupplier {
		extremeThreshold = s.thresholds.SupplierExtremeRatio
	}
	rec.PricingInconsistent = float64(acc.extreme)/total > extremeThreshold
	rec.QualityIssues = acc.critical > 0
	rec.SuspiciousZeros = acc.zeroQty > s.thresholds.ZeroQuantityThreshold
	if kind == domain.EntitySupplier {
		rec.LimitedDistribution = len(acc.stores) < s.thresholds.DistributionMinStores &&
			acc.total > s.thresholds.DistributionMinTxns
	}
	rec.Unreliable = acc.negative > 0

	rec.Status = status(&rec)
	rec.Issues = issues(&rec)
	return rec
}

// Score applies the weighted penalty and clamps to [0,100]. It is
// monotonically non-increasing in every ratio.
func Score(negRatio, extremeRatio, criticalRatio float64) float64 {
	score := 100 - (negativeWeight*negRatio + extremeWeight*extremeRatio + criticalWeight*criticalRatio)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// status derives the classification cascade. A single negative transaction
// outranks everything else: it means returns or corrections are flowing
// through the sales feed.
func status(rec *domain.ReliabilityRecord) string {
	if rec.Unreliable {
		return domain.StatusCritical
	}
	if rec.PricingInconsistent && rec.QualityIssues {
		return domain.StatusHigh
	}
	switch flagCount(rec) {
	case 0:
		return domain.StatusReliable
	case 1:
		return domain.StatusLow
	case 2:
		return domain.StatusMonitor
	default:
		return domain.StatusMedium
	}
}

func flagCount(rec *domain.ReliabilityRecord) int {
	n := 0
	for _, f := range []bool{rec.PricingInconsistent, rec.QualityIssues, rec.SuspiciousZeros, rec.LimitedDistribution} {
		if f {
			n++
		}
	}
	return n
}

func issues(rec *domain.ReliabilityRecord) []string {
	var out []string
	if rec.NegativeCount > 0 {
		out = append(out, fmt.Sprintf("%d negative quantity/sales transactions", rec.NegativeCount))
	}
	if rec.PricingInconsistent {
		out = append(out, fmt.Sprintf("extreme price deviations in %d of %d transactions", rec.ExtremePriceCount, rec.TotalTransactions))
	}
	if rec.QualityIssues {
		out = append(out, fmt.Sprintf("%d transactions with data quality flags", rec.CriticalCount))
	}
	if rec.SuspiciousZeros {
		out = append(out, fmt.Sprintf("%d zero-quantity transactions", rec.ZeroQuantityCount))
	}
	if rec.LimitedDistribution {
		out = append(out, fmt.Sprintf("only %d stores served across %d transactions", rec.StoresServed, rec.TotalTransactions))
	}
	return out
}

func sortRecords(records []domain.ReliabilityRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score < records[j].Score
		}
		return records[i].EntityID < records[j].EntityID
	})
}
