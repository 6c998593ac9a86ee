// internal/warehouse/schema.go
package warehouse

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS staging_transactions (
		id BIGSERIAL PRIMARY KEY,
		store_name TEXT NOT NULL DEFAULT '',
		item_code TEXT NOT NULL DEFAULT '',
		item_barcode TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		sub_department TEXT NOT NULL DEFAULT '',
		section TEXT NOT NULL DEFAULT '',
		quantity TEXT NOT NULL DEFAULT '',
		total_sales TEXT NOT NULL DEFAULT '',
		rrp TEXT NOT NULL DEFAULT '',
		supplier TEXT NOT NULL DEFAULT '',
		date_of_sale TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS dim_store (
		store_id BIGINT PRIMARY KEY,
		store_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS dim_supplier (
		supplier_id BIGINT PRIMARY KEY,
		supplier_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS dim_item (
		item_id BIGINT PRIMARY KEY,
		item_code TEXT NOT NULL UNIQUE,
		item_barcode TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		sub_department TEXT NOT NULL DEFAULT '',
		section TEXT NOT NULL DEFAULT '',
		is_bidco BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS dim_date (
		date_id BIGINT PRIMARY KEY,
		full_date DATE NOT NULL,
		year INT NOT NULL,
		month INT NOT NULL,
		day INT NOT NULL,
		weekday_name TEXT NOT NULL,
		is_weekend BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fact_sales (
		store_id BIGINT NOT NULL,
		item_id BIGINT NOT NULL,
		supplier_id BIGINT NOT NULL,
		date_id BIGINT NOT NULL,
		full_date DATE,
		quantity DOUBLE PRECISION NOT NULL,
		total_sales DOUBLE PRECISION NOT NULL,
		rrp DOUBLE PRECISION NOT NULL,
		unit_price DOUBLE PRECISION NOT NULL,
		unit_price_valid BOOLEAN NOT NULL,
		discount_pct DOUBLE PRECISION NOT NULL,
		is_promo BOOLEAN NOT NULL,
		data_quality_flag TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_sales_item ON fact_sales (item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_sales_store ON fact_sales (store_id)`,
	`CREATE TABLE IF NOT EXISTS summary_sku_promo (
		item_id BIGINT PRIMARY KEY,
		item_code TEXT NOT NULL,
		item_description TEXT NOT NULL,
		category TEXT NOT NULL,
		is_bidco BOOLEAN NOT NULL,
		baseline_avg_units DOUBLE PRECISION NOT NULL,
		has_baseline BOOLEAN NOT NULL,
		promo_avg_units DOUBLE PRECISION NOT NULL,
		has_promo BOOLEAN NOT NULL,
		uplift_pct DOUBLE PRECISION NOT NULL,
		stores_carrying INT NOT NULL,
		stores_on_promo INT NOT NULL,
		coverage_pct DOUBLE PRECISION NOT NULL,
		promo_revenue DOUBLE PRECISION NOT NULL,
		total_revenue DOUBLE PRECISION NOT NULL,
		performance_score DOUBLE PRECISION NOT NULL,
		performance_tier TEXT NOT NULL,
		overall_rank INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS summary_price_index (
		store_id BIGINT NOT NULL,
		store_name TEXT NOT NULL,
		sub_department TEXT NOT NULL,
		section TEXT NOT NULL,
		bidco_avg_price DOUBLE PRECISION NOT NULL,
		competitor_avg_price DOUBLE PRECISION NOT NULL,
		price_index DOUBLE PRECISION NOT NULL,
		price_positioning TEXT NOT NULL,
		bidco_transactions INT NOT NULL,
		competitor_transactions INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS summary_category_price_index (
		category TEXT PRIMARY KEY,
		segment_count INT NOT NULL,
		avg_price_index DOUBLE PRECISION NOT NULL,
		avg_bidco_price DOUBLE PRECISION NOT NULL,
		avg_competitor_price DOUBLE PRECISION NOT NULL,
		overall_positioning TEXT NOT NULL,
		bidco_revenue DOUBLE PRECISION NOT NULL,
		competitor_revenue DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS summary_reliability (
		entity_kind TEXT NOT NULL,
		entity_id BIGINT NOT NULL,
		entity_name TEXT NOT NULL,
		total_transactions INT NOT NULL,
		negative_count INT NOT NULL,
		extreme_price_count INT NOT NULL,
		critical_count INT NOT NULL,
		zero_quantity_count INT NOT NULL,
		stores_served INT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		grade TEXT NOT NULL,
		status TEXT NOT NULL,
		unreliable BOOLEAN NOT NULL,
		pricing_inconsistent BOOLEAN NOT NULL,
		quality_issues BOOLEAN NOT NULL,
		suspicious_zeros BOOLEAN NOT NULL,
		limited_distribution BOOLEAN NOT NULL,
		PRIMARY KEY (entity_kind, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS summary_kpi (
		id INT PRIMARY KEY DEFAULT 1,
		promo_revenue DOUBLE PRECISION NOT NULL,
		promo_penetration_pct DOUBLE PRECISION NOT NULL,
		avg_discount_pct DOUBLE PRECISION NOT NULL,
		stores_with_promo INT NOT NULL,
		skus_on_promo INT NOT NULL,
		total_stores INT NOT NULL,
		total_skus INT NOT NULL,
		promo_transactions INT NOT NULL,
		total_transactions INT NOT NULL,
		units_uplift_pct DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS summary_data_quality (
		id INT PRIMARY KEY DEFAULT 1,
		total_records INT NOT NULL,
		clean_records INT NOT NULL,
		medium_records INT NOT NULL,
		low_records INT NOT NULL,
		negative_quantity INT NOT NULL,
		negative_sales INT NOT NULL,
		exact_duplicates INT NOT NULL,
		business_duplicates INT NOT NULL,
		quality_score DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id BIGSERIAL PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		raw_records INT NOT NULL,
		fact_records INT NOT NULL,
		exact_duplicates INT NOT NULL,
		business_duplicates INT NOT NULL,
		promo_records INT NOT NULL
	)`,
}

// EnsureSchema creates all warehouse tables when missing. Safe to call on
// every start.
func (w *Warehouse) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
