// internal/service/insights.go
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jaysongor/ducklens-backend/internal/cache"
	"github.com/jaysongor/ducklens-backend/internal/domain"
	"github.com/jaysongor/ducklens-backend/internal/reliability"
	"github.com/jaysongor/ducklens-backend/internal/warehouse"
)

// SummaryReader is the slice of the warehouse the read API needs.
type SummaryReader interface {
	SKUSummaries(ctx context.Context, limit int) ([]domain.SKUPromoSummary, error)
	PriceIndex(ctx context.Context, filter warehouse.PriceIndexFilter) ([]domain.PriceIndexRow, error)
	CategoryPriceIndex(ctx context.Context) ([]domain.CategoryPriceIndex, error)
	Reliability(ctx context.Context, kind domain.EntityKind) ([]domain.ReliabilityRecord, error)
	KPIs(ctx context.Context) (domain.KPIMetrics, error)
	DataQuality(ctx context.Context) (domain.DataQualityReport, error)
}

// InsightsService serves summary payloads, fronted by the summary cache.
// Payloads are cached as serialized JSON keyed by endpoint and parameters.
type InsightsService struct {
	reader SummaryReader
	cache  cache.SummaryCache
}

func NewInsights(reader SummaryReader, c cache.SummaryCache) *InsightsService {
	return &InsightsService{reader: reader, cache: c}
}

// cached runs fetch on a cache miss and stores the marshaled result.
func (s *InsightsService) cached(ctx context.Context, key string, fetch func() (any, error)) (json.RawMessage, error) {
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}
	value, err := fetch()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", key, err)
	}
	s.cache.Set(ctx, key, payload)
	return payload, nil
}

func (s *InsightsService) PromoKPIs(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, "promo_kpis", func() (any, error) {
		return s.reader.KPIs(ctx)
	})
}

func (s *InsightsService) PromoSummary(ctx context.Context, limit int) (json.RawMessage, error) {
	key := fmt.Sprintf("promo_summary:%d", limit)
	return s.cached(ctx, key, func() (any, error) {
		skus, err := s.reader.SKUSummaries(ctx, limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"count": len(skus), "skus": skus}, nil
	})
}

func (s *InsightsService) StorePriceIndex(ctx context.Context, filter warehouse.PriceIndexFilter) (json.RawMessage, error) {
	key := fmt.Sprintf("price_index:%s:%s:%s:%d",
		filter.StoreName, filter.SubDepartment, filter.Positioning, filter.Limit)
	return s.cached(ctx, key, func() (any, error) {
		rows, err := s.reader.PriceIndex(ctx, filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"count": len(rows), "segments": rows}, nil
	})
}

func (s *InsightsService) CategoryPriceIndex(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, "price_index_by_category", func() (any, error) {
		cats, err := s.reader.CategoryPriceIndex(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"count": len(cats), "categories": cats}, nil
	})
}

func (s *InsightsService) Reliability(ctx context.Context, kind domain.EntityKind) (json.RawMessage, error) {
	key := "reliability:" + string(kind)
	return s.cached(ctx, key, func() (any, error) {
		records, err := s.reader.Reliability(ctx, kind)
		if err != nil {
			return nil, err
		}
		return map[string]any{"count": len(records), "records": records}, nil
	})
}

func (s *InsightsService) OverallReliability(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, "reliability:overall", func() (any, error) {
		stores, err := s.reader.Reliability(ctx, domain.EntityStore)
		if err != nil {
			return nil, err
		}
		suppliers, err := s.reader.Reliability(ctx, domain.EntitySupplier)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"stores":    reliability.Summarize(stores),
			"suppliers": reliability.Summarize(suppliers),
		}, nil
	})
}

func (s *InsightsService) DataQuality(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, "data_quality", func() (any, error) {
		return s.reader.DataQuality(ctx)
	})
}

// Invalidate drops all cached payloads, called after each refresh.
func (s *InsightsService) Invalidate(ctx context.Context) {
	s.cache.InvalidateAll(ctx)
	log.Debug().Msg("summary cache invalidated")
}
