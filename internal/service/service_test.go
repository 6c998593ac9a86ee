package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaysongor/ducklens-backend/internal/cache"
	"github.com/jaysongor/ducklens-backend/internal/domain"
	"github.com/jaysongor/ducklens-backend/internal/pipeline"
	"github.com/jaysongor/ducklens-backend/internal/warehouse"
)

type fakeReader struct {
	kpiCalls int
}

func (f *fakeReader) SKUSummaries(context.Context, int) ([]domain.SKUPromoSummary, error) {
	return []domain.SKUPromoSummary{{ItemCode: "BK-001", OverallRank: 1}}, nil
}

func (f *fakeReader) PriceIndex(context.Context, warehouse.PriceIndexFilter) ([]domain.PriceIndexRow, error) {
	return nil, nil
}

func (f *fakeReader) CategoryPriceIndex(context.Context) ([]domain.CategoryPriceIndex, error) {
	return nil, nil
}

func (f *fakeReader) Reliability(context.Context, domain.EntityKind) ([]domain.ReliabilityRecord, error) {
	return []domain.ReliabilityRecord{{Score: 100, Status: domain.StatusReliable}}, nil
}

func (f *fakeReader) KPIs(context.Context) (domain.KPIMetrics, error) {
	f.kpiCalls++
	return domain.KPIMetrics{TotalTransactions: 42}, nil
}

func (f *fakeReader) DataQuality(context.Context) (domain.DataQualityReport, error) {
	return domain.DataQualityReport{TotalRecords: 42}, nil
}

// mapCache is a test double that actually stores payloads.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = payload
}

func (c *mapCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string][]byte{}
}

func TestInsightsCachesPayloads(t *testing.T) {
	reader := &fakeReader{}
	svc := NewInsights(reader, newMapCache())

	first, err := svc.PromoKPIs(context.Background())
	require.NoError(t, err)
	second, err := svc.PromoKPIs(context.Background())
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, 1, reader.kpiCalls, "second call must hit the cache")

	var kpis domain.KPIMetrics
	require.NoError(t, json.Unmarshal(first, &kpis))
	assert.Equal(t, 42, kpis.TotalTransactions)
}

func TestInsightsNoopCacheAlwaysFetches(t *testing.T) {
	reader := &fakeReader{}
	svc := NewInsights(reader, cache.NewNoop())

	_, err := svc.PromoKPIs(context.Background())
	require.NoError(t, err)
	_, err = svc.PromoKPIs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, reader.kpiCalls)
}

type fakeRunner struct {
	mu    sync.Mutex
	calls int
	block chan struct{}
	err   error
}

func (r *fakeRunner) Run(context.Context) (*pipeline.RunResult, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.block != nil {
		<-r.block
	}
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.RunResult{FactRecords: 10}, nil
}

func TestRefreshInvalidatesCacheOnSuccess(t *testing.T) {
	reader := &fakeReader{}
	c := newMapCache()
	insights := NewInsights(reader, c)

	_, err := insights.PromoKPIs(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, c.data)

	svc := NewRefresh(&fakeRunner{}, insights)
	result, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, result.FactRecords)
	assert.Empty(t, c.data)
}

func TestRefreshKeepsCacheOnFailure(t *testing.T) {
	reader := &fakeReader{}
	c := newMapCache()
	insights := NewInsights(reader, c)
	_, err := insights.PromoKPIs(context.Background())
	require.NoError(t, err)

	svc := NewRefresh(&fakeRunner{err: errors.New("db down")}, insights)
	_, err = svc.Refresh(context.Background())

	require.Error(t, err)
	assert.NotEmpty(t, c.data, "failed refresh must not drop served summaries")
}

func TestRefreshRejectsConcurrentRuns(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	svc := NewRefresh(runner, NewInsights(&fakeReader{}, cache.NewNoop()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Refresh(context.Background())
	}()

	// wait for the first refresh to start
	require.Eventually(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return runner.calls == 1
	}, time.Second, 5*time.Millisecond)

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInProgress)

	close(runner.block)
	<-done
}
