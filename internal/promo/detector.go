// internal/promo/detector.go
package promo

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// Detector marks promotional transactions. A transaction is promotional only
// when it belongs to a run of at least MinRunDays CONSECUTIVE calendar days
// on which the same (store, item) sold at a discount of at least MinDiscount
// off RRP. A qualifying run marks every member retroactively, including the
// first day; a missing calendar day resets the run.
type Detector struct {
	MinDiscount float64
	MinRunDays  int
	Workers     int
}

func New(minDiscount float64, minRunDays, workers int) *Detector {
	if workers < 1 {
		workers = 1
	}
	return &Detector{MinDiscount: minDiscount, MinRunDays: minRunDays, Workers: workers}
}

// Detect returns a slice aligned with records where out[i] reports whether
// records[i] is promotional. Series are independent, so they are processed
// by a bounded worker pool; each series writes a disjoint set of indices.
func (d *Detector) Detect(ctx context.Context, records []domain.CleanRecord) ([]bool, error) {
	out := make([]bool, len(records))

	series := groupSeries(records)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)
	for _, idxs := range series {
		idxs := idxs
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			d.markSeries(records, idxs, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	promoCount := 0
	for _, p := range out {
		if p {
			promoCount++
		}
	}
	log.Debug().
		Int("series", len(series)).
		Int("records", len(records)).
		Int("promo_records", promoCount).
		Msg("promo detection complete")
	return out, nil
}

// groupSeries buckets record indices by (store, item), excluding records
// whose date failed to parse: without a calendar position they cannot join
// a run.
func groupSeries(records []domain.CleanRecord) map[seriesKey][]int {
	series := make(map[seriesKey][]int)
	for i := range records {
		if !records[i].DateValid {
			continue
		}
		k := seriesKey{store: records[i].StoreName, item: records[i].ItemCode}
		series[k] = append(series[k], i)
	}
	return series
}

type seriesKey struct {
	store string
	item  string
}

// markSeries runs the consecutive-day state machine over one (store, item)
// series and flips out[i] for every member of a qualifying run.
func (d *Detector) markSeries(records []domain.CleanRecord, idxs []int, out []bool) {
	sort.Slice(idxs, func(a, b int) bool {
		return records[idxs[a]].Date.Before(records[idxs[b]].Date)
	})

	run := make([]int, 0, len(idxs))

	flush := func() {
		if len(run) >= d.MinRunDays {
			for _, i := range run {
				out[i] = true
			}
		}
		run = run[:0]
	}

	for _, i := range idxs {
		rec := &records[i]
		if !d.discounted(rec) {
			flush()
			continue
		}
		if len(run) > 0 {
			prev := records[run[len(run)-1]].Date
			if rec.Date.Sub(prev).Hours() > 24 {
				flush()
			}
		}
		run = append(run, i)
	}
	flush()
}

// discounted reports whether a record sold at a qualifying discount.
// Non-positive RRP and undefined unit prices never qualify.
func (d *Detector) discounted(rec *domain.CleanRecord) bool {
	if rec.RRP <= 0 {
		return false
	}
	unitPrice, ok := rec.UnitPrice()
	if !ok || unitPrice >= rec.RRP {
		return false
	}
	return rec.DiscountPct() >= d.MinDiscount
}
