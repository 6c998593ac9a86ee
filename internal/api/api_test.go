package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaysongor/ducklens-backend/internal/cache"
	"github.com/jaysongor/ducklens-backend/internal/config"
	"github.com/jaysongor/ducklens-backend/internal/domain"
	"github.com/jaysongor/ducklens-backend/internal/pipeline"
	"github.com/jaysongor/ducklens-backend/internal/service"
	"github.com/jaysongor/ducklens-backend/internal/warehouse"
)

type stubReader struct {
	priceFilter warehouse.PriceIndexFilter
}

func (s *stubReader) SKUSummaries(_ context.Context, limit int) ([]domain.SKUPromoSummary, error) {
	out := []domain.SKUPromoSummary{
		{ItemCode: "BK-001", OverallRank: 1, PerformanceTier: domain.TierElite},
		{ItemCode: "BK-002", OverallRank: 2, PerformanceTier: domain.TierTop},
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubReader) PriceIndex(_ context.Context, f warehouse.PriceIndexFilter) ([]domain.PriceIndexRow, error) {
	s.priceFilter = f
	return []domain.PriceIndexRow{{StoreName: "Naivas", PriceIndex: 1.1, Positioning: domain.PositioningPremium}}, nil
}

func (s *stubReader) CategoryPriceIndex(context.Context) ([]domain.CategoryPriceIndex, error) {
	return []domain.CategoryPriceIndex{{Category: "Oils"}}, nil
}

func (s *stubReader) Reliability(_ context.Context, kind domain.EntityKind) ([]domain.ReliabilityRecord, error) {
	return []domain.ReliabilityRecord{{Kind: kind, Score: 100, Status: domain.StatusReliable}}, nil
}

func (s *stubReader) KPIs(context.Context) (domain.KPIMetrics, error) {
	return domain.KPIMetrics{TotalTransactions: 7}, nil
}

func (s *stubReader) DataQuality(context.Context) (domain.DataQualityReport, error) {
	return domain.DataQualityReport{TotalRecords: 7, QualityScore: 100}, nil
}

type stubRunner struct{ err error }

func (r *stubRunner) Run(context.Context) (*pipeline.RunResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.RunResult{RawRecords: 5, FactRecords: 4}, nil
}

func testRouter(reader *stubReader, runner *stubRunner) http.Handler {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test", AllowedOrigins: []string{"*"}},
	}
	insights := service.NewInsights(reader, cache.NewNoop())
	refresh := service.NewRefresh(runner, insights)
	return NewRouter(cfg, insights, refresh)
}

func get(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(&stubReader{}, &stubRunner{})
	rec, body := get(t, router, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestPromoSummaryRespectsLimit(t *testing.T) {
	router := testRouter(&stubReader{}, &stubRunner{})
	rec, body := get(t, router, "/api/v1/promo/summary?limit=1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestPromoKPIs(t *testing.T) {
	router := testRouter(&stubReader{}, &stubRunner{})
	rec, body := get(t, router, "/api/v1/promo/kpis")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(7), body["total_transactions"])
}

func TestStorePriceIndexPassesFilters(t *testing.T) {
	reader := &stubReader{}
	router := testRouter(reader, &stubRunner{})
	rec, _ := get(t, router, "/api/v1/price_index/store_level?store=Naivas&positioning=PREMIUM&limit=10")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Naivas", reader.priceFilter.StoreName)
	assert.Equal(t, "PREMIUM", reader.priceFilter.Positioning)
	assert.Equal(t, 10, reader.priceFilter.Limit)
}

func TestReliabilityEndpoints(t *testing.T) {
	router := testRouter(&stubReader{}, &stubRunner{})

	for _, path := range []string{
		"/api/v1/reliability/stores",
		"/api/v1/reliability/suppliers",
		"/api/v1/reliability/overall",
		"/api/v1/price_index/by_category",
		"/api/v1/data_quality",
	} {
		rec, _ := get(t, router, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	router := testRouter(&stubReader{}, &stubRunner{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(4), body["fact_records"])
}

func TestRefreshFailureReturns500(t *testing.T) {
	router := testRouter(&stubReader{}, &stubRunner{err: assert.AnError})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
