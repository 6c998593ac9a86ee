// internal/warehouse/runs.go
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jaysongor/ducklens-backend/internal/pipeline"
)

type runRow struct {
	StartedAt          time.Time `db:"started_at"`
	DurationMs         int64     `db:"duration_ms"`
	RawRecords         int       `db:"raw_records"`
	FactRecords        int       `db:"fact_records"`
	ExactDuplicates    int       `db:"exact_duplicates"`
	BusinessDuplicates int       `db:"business_duplicates"`
	PromoRecords       int       `db:"promo_records"`
}

// RecordRun appends one row to the run log.
func (w *Warehouse) RecordRun(ctx context.Context, result *pipeline.RunResult) error {
	row := runRow{
		StartedAt:          result.StartedAt,
		DurationMs:         result.Duration.Milliseconds(),
		RawRecords:         result.RawRecords,
		FactRecords:        result.FactRecords,
		ExactDuplicates:    result.ExactDuplicates,
		BusinessDuplicates: result.BusinessDuplicates,
		PromoRecords:       result.PromoRecords,
	}
	if _, err := w.db.NamedExecContext(ctx, `
		INSERT INTO pipeline_runs (
			started_at, duration_ms, raw_records, fact_records,
			exact_duplicates, business_duplicates, promo_records
		) VALUES (
			:started_at, :duration_ms, :raw_records, :fact_records,
			:exact_duplicates, :business_duplicates, :promo_records
		)`, row); err != nil {
		return fmt.Errorf("insert pipeline run: %w", err)
	}
	return nil
}

// LatestRun returns the most recent run, or nil when none has happened.
func (w *Warehouse) LatestRun(ctx context.Context) (*pipeline.RunResult, error) {
	var row runRow
	err := w.db.GetContext(ctx, &row, `
		SELECT started_at, duration_ms, raw_records, fact_records,
		       exact_duplicates, business_duplicates, promo_records
		FROM pipeline_runs
		ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select latest run: %w", err)
	}
	return &pipeline.RunResult{
		StartedAt:          row.StartedAt,
		Duration:           time.Duration(row.DurationMs) * time.Millisecond,
		RawRecords:         row.RawRecords,
		FactRecords:        row.FactRecords,
		ExactDuplicates:    row.ExactDuplicates,
		BusinessDuplicates: row.BusinessDuplicates,
		PromoRecords:       row.PromoRecords,
	}, nil
}
