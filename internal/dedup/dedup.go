// internal/dedup/dedup.go
package dedup

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// Stats counts what deduplication found and removed.
type Stats struct {
	Input              int `json:"input"`
	Output             int `json:"output"`
	ExactDuplicates    int `json:"exact_duplicates"`
	BusinessDuplicates int `json:"business_duplicates"`
}

// Deduplicate removes business-key duplicates from a normalized batch,
// keeping the first occurrence in input order. Exact duplicates (same
// business key AND same quantity/total_sales) are counted separately from
// business duplicates, but both are removed from the carried-forward set.
// Running the output through again is a no-op.
func Deduplicate(records []domain.CleanRecord) ([]domain.CleanRecord, Stats) {
	stats := Stats{Input: len(records)}

	seenBusiness := make(map[string]int, len(records))
	seenExact := make(map[string]struct{}, len(records))
	out := make([]domain.CleanRecord, 0, len(records))

	for i := range records {
		rec := &records[i]
		bkey := businessKey(rec)
		ekey := exactKey(rec)

		if _, dup := seenBusiness[bkey]; !dup {
			seenBusiness[bkey] = len(out)
			seenExact[ekey] = struct{}{}
			out = append(out, *rec)
			continue
		}

		if _, exact := seenExact[ekey]; exact {
			stats.ExactDuplicates++
		} else {
			stats.BusinessDuplicates++
			seenExact[ekey] = struct{}{}
		}
	}

	stats.Output = len(out)
	if stats.ExactDuplicates > 0 || stats.BusinessDuplicates > 0 {
		log.Info().
			Int("input", stats.Input).
			Int("exact_duplicates", stats.ExactDuplicates).
			Int("business_duplicates", stats.BusinessDuplicates).
			Msg("removed duplicate transactions")
	}
	return out, stats
}

// businessKey identifies a transaction as (store, item, date). Invalid dates
// key on the raw zero time so flagged records still dedupe consistently.
func businessKey(r *domain.CleanRecord) string {
	return fmt.Sprintf("%s|%s|%s", r.StoreName, r.ItemCode, r.Date.Format("2006-01-02"))
}

func exactKey(r *domain.CleanRecord) string {
	return fmt.Sprintf("%s|%s|%s|%g|%g", r.StoreName, r.ItemCode, r.Date.Format("2006-01-02"), r.Quantity, r.TotalSales)
}
