// internal/pipeline/runner.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jaysongor/ducklens-backend/internal/config"
	"github.com/jaysongor/ducklens-backend/internal/dedup"
	"github.com/jaysongor/ducklens-backend/internal/dimension"
	"github.com/jaysongor/ducklens-backend/internal/domain"
	"github.com/jaysongor/ducklens-backend/internal/enrich"
	"github.com/jaysongor/ducklens-backend/internal/insights"
	"github.com/jaysongor/ducklens-backend/internal/normalize"
	"github.com/jaysongor/ducklens-backend/internal/promo"
	"github.com/jaysongor/ducklens-backend/internal/reliability"
)

// Warehouse is what the runner needs from persistence. Each Replace method
// must swap its output atomically (one transaction per named output) so a
// failed run leaves previously published tables untouched.
type Warehouse interface {
	LoadStaging(ctx context.Context) ([]domain.RawTransaction, error)
	LoadDimensions(ctx context.Context) (domain.DimensionSet, error)
	ReplaceDimensions(ctx context.Context, set domain.DimensionSet) error
	ReplaceFacts(ctx context.Context, facts []domain.EnrichedFact) error
	ReplaceSKUSummaries(ctx context.Context, summaries []domain.SKUPromoSummary) error
	ReplacePriceIndex(ctx context.Context, rows []domain.PriceIndexRow, categories []domain.CategoryPriceIndex) error
	ReplaceReliability(ctx context.Context, records []domain.ReliabilityRecord) error
	ReplaceKPIs(ctx context.Context, kpis domain.KPIMetrics, quality domain.DataQualityReport) error
	RecordRun(ctx context.Context, result *RunResult) error
}

// Artifacts is everything one batch pass derives, before publication.
type Artifacts struct {
	Dimensions  domain.DimensionSet
	Facts       []domain.EnrichedFact
	DedupStats  dedup.Stats
	Summaries   []domain.SKUPromoSummary
	PriceIndex  []domain.PriceIndexRow
	Categories  []domain.CategoryPriceIndex
	KPIs        domain.KPIMetrics
	DataQuality domain.DataQualityReport
	Stores      []domain.ReliabilityRecord
	Suppliers   []domain.ReliabilityRecord
}

// RunResult summarizes a completed refresh for run tracking and API callers.
type RunResult struct {
	StartedAt          time.Time     `json:"started_at" db:"started_at"`
	Duration           time.Duration `json:"duration" db:"-"`
	RawRecords         int           `json:"raw_records" db:"raw_records"`
	FactRecords        int           `json:"fact_records" db:"fact_records"`
	ExactDuplicates    int           `json:"exact_duplicates" db:"exact_duplicates"`
	BusinessDuplicates int           `json:"business_duplicates" db:"business_duplicates"`
	PromoRecords       int           `json:"promo_records" db:"promo_records"`
}

// Runner executes the full batch pass: normalize, dedupe, resolve
// dimensions, detect promos, enrich, then derive and publish every summary.
type Runner struct {
	warehouse Warehouse
	cfg       config.AnalyticsConfig
}

func NewRunner(w Warehouse, cfg config.AnalyticsConfig) *Runner {
	return &Runner{warehouse: w, cfg: cfg}
}

// Run executes one full refresh. It is idempotent: re-running over an
// unchanged staging batch reproduces identical facts and summaries.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()

	raws, err := r.warehouse.LoadStaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("load staging: %w", err)
	}
	seed, err := r.warehouse.LoadDimensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dimensions: %w", err)
	}

	log.Info().Int("raw_records", len(raws)).Msg("starting refresh")

	artifacts, err := Compute(ctx, raws, seed, r.cfg)
	if err != nil {
		return nil, err
	}

	if err := r.publish(ctx, artifacts); err != nil {
		return nil, err
	}

	result := &RunResult{
		StartedAt:          started,
		Duration:           time.Since(started),
		RawRecords:         len(raws),
		FactRecords:        len(artifacts.Facts),
		ExactDuplicates:    artifacts.DedupStats.ExactDuplicates,
		BusinessDuplicates: artifacts.DedupStats.BusinessDuplicates,
		PromoRecords:       artifacts.KPIs.PromoTransactions,
	}
	if err := r.warehouse.RecordRun(ctx, result); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	log.Info().
		Dur("duration", result.Duration).
		Int("facts", result.FactRecords).
		Int("promo_records", result.PromoRecords).
		Msg("refresh complete")
	return result, nil
}

// Compute derives all artifacts from a raw batch in memory. It performs no
// I/O, which is what makes the determinism round-trip testable: same input,
// same artifacts.
func Compute(ctx context.Context, raws []domain.RawTransaction, seed domain.DimensionSet, cfg config.AnalyticsConfig) (*Artifacts, error) {
	records := normalize.New().NormalizeAll(raws)
	records, stats := dedup.Deduplicate(records)

	resolver := dimension.New(cfg.FocalBrand)
	if seed.Stores != nil {
		resolver.Seed(seed)
	}
	// single-writer resolution phase: all dimension entries exist before any
	// parallel stage starts
	for i := range records {
		rec := &records[i]
		resolver.ResolveStore(rec.StoreName)
		resolver.ResolveSupplier(rec.Supplier)
		resolver.ResolveItem(rec)
		if rec.DateValid {
			resolver.ResolveDate(rec.Date)
		}
	}

	detector := promo.New(cfg.PromoMinDiscount, cfg.PromoMinRunDays, cfg.WorkerCount)
	promoMask, err := detector.Detect(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("promo detection: %w", err)
	}

	facts := enrich.New(cfg.ExtremePriceDeviation).Enrich(records, promoMask, resolver)
	dims := resolver.Set()

	a := &Artifacts{
		Dimensions: dims,
		Facts:      facts,
		DedupStats: stats,
	}

	// the aggregator and the scorer both read the complete fact set; they
	// are independent of each other and run concurrently past this barrier
	agg := insights.New()
	scorer := reliability.New(reliability.Thresholds{
		ExtremeDeviation:      cfg.ExtremePriceDeviation,
		StoreExtremeRatio:     cfg.StoreExtremeRatio,
		SupplierExtremeRatio:  cfg.SupplierExtremeRatio,
		ZeroQuantityThreshold: cfg.ZeroQuantityThreshold,
		DistributionMinStores: cfg.DistributionMinStores,
		DistributionMinTxns:   cfg.DistributionMinTxns,
	})

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Summaries = agg.SKUSummaries(facts, dims)
		a.PriceIndex = agg.PriceIndex(facts, dims)
		a.Categories = agg.CategoryPriceIndex(facts, dims)
		a.KPIs = agg.KPIs(facts)
		a.DataQuality = agg.DataQuality(facts, stats.ExactDuplicates, stats.BusinessDuplicates)
		return nil
	})
	g.Go(func() error {
		a.Stores = scorer.ScoreStores(facts, dims)
		a.Suppliers = scorer.ScoreSuppliers(facts, dims)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return a, nil
}

// publish writes each derived output in its own transaction. Order matters
// only for referential sanity: dimensions before facts before summaries.
func (r *Runner) publish(ctx context.Context, a *Artifacts) error {
	if err := r.warehouse.ReplaceDimensions(ctx, a.Dimensions); err != nil {
		return fmt.Errorf("publish dimensions: %w", err)
	}
	if err := r.warehouse.ReplaceFacts(ctx, a.Facts); err != nil {
		return fmt.Errorf("publish facts: %w", err)
	}
	if err := r.warehouse.ReplaceSKUSummaries(ctx, a.Summaries); err != nil {
		return fmt.Errorf("publish sku summaries: %w", err)
	}
	if err := r.warehouse.ReplacePriceIndex(ctx, a.PriceIndex, a.Categories); err != nil {
		return fmt.Errorf("publish price index: %w", err)
	}
	reliabilityRecords := make([]domain.ReliabilityRecord, 0, len(a.Stores)+len(a.Suppliers))
	reliabilityRecords = append(reliabilityRecords, a.Stores...)
	reliabilityRecords = append(reliabilityRecords, a.Suppliers...)
	if err := r.warehouse.ReplaceReliability(ctx, reliabilityRecords); err != nil {
		return fmt.Errorf("publish reliability: %w", err)
	}
	if err := r.warehouse.ReplaceKPIs(ctx, a.KPIs, a.DataQuality); err != nil {
		return fmt.Errorf("publish kpis: %w", err)
	}
	return nil
}
