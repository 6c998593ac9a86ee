// internal/warehouse/summaries.go
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// ReplaceSKUSummaries swaps the SKU promo leaderboard.
func (w *Warehouse) ReplaceSKUSummaries(ctx context.Context, summaries []domain.SKUPromoSummary) error {
	return w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`TRUNCATE summary_sku_promo`); err != nil {
			return fmt.Errorf("truncate summary_sku_promo: %w", err)
		}
		err := namedInsert(tx, `
			INSERT INTO summary_sku_promo (
				item_id, item_code, item_description, category, is_bidco,
				baseline_avg_units, has_baseline, promo_avg_units, has_promo,
				uplift_pct, stores_carrying, stores_on_promo, coverage_pct,
				promo_revenue, total_revenue, performance_score,
				performance_tier, overall_rank
			) VALUES (
				:item_id, :item_code, :item_description, :category, :is_bidco,
				:baseline_avg_units, :has_baseline, :promo_avg_units, :has_promo,
				:uplift_pct, :stores_carrying, :stores_on_promo, :coverage_pct,
				:promo_revenue, :total_revenue, :performance_score,
				:performance_tier, :overall_rank
			)`, summaries, 500)
		if err != nil {
			return fmt.Errorf("insert summary_sku_promo: %w", err)
		}
		return nil
	})
}

// ReplacePriceIndex swaps both price-index outputs together; they derive
// from the same grouping pass and must stay consistent with each other.
func (w *Warehouse) ReplacePriceIndex(ctx context.Context, rows []domain.PriceIndexRow, categories []domain.CategoryPriceIndex) error {
	return w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`TRUNCATE summary_price_index`); err != nil {
			return fmt.Errorf("truncate summary_price_index: %w", err)
		}
		if _, err := tx.Exec(`TRUNCATE summary_category_price_index`); err != nil {
			return fmt.Errorf("truncate summary_category_price_index: %w", err)
		}
		err := namedInsert(tx, `
			INSERT INTO summary_price_index (
				store_id, store_name, sub_department, section,
				bidco_avg_price, competitor_avg_price, price_index,
				price_positioning, bidco_transactions, competitor_transactions
			) VALUES (
				:store_id, :store_name, :sub_department, :section,
				:bidco_avg_price, :competitor_avg_price, :price_index,
				:price_positioning, :bidco_transactions, :competitor_transactions
			)`, rows, 500)
		if err != nil {
			return fmt.Errorf("insert summary_price_index: %w", err)
		}
		err = namedInsert(tx, `
			INSERT INTO summary_category_price_index (
				category, segment_count, avg_price_index, avg_bidco_price,
				avg_competitor_price, overall_positioning, bidco_revenue,
				competitor_revenue
			) VALUES (
				:category, :segment_count, :avg_price_index, :avg_bidco_price,
				:avg_competitor_price, :overall_positioning, :bidco_revenue,
				:competitor_revenue
			)`, categories, 500)
		if err != nil {
			return fmt.Errorf("insert summary_category_price_index: %w", err)
		}
		return nil
	})
}

// ReplaceReliability swaps the store and supplier scorecards.
func (w *Warehouse) ReplaceReliability(ctx context.Context, records []domain.ReliabilityRecord) error {
	return w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`TRUNCATE summary_reliability`); err != nil {
			return fmt.Errorf("truncate summary_reliability: %w", err)
		}
		err := namedInsert(tx, `
			INSERT INTO summary_reliability (
				entity_kind, entity_id, entity_name, total_transactions,
				negative_count, extreme_price_count, critical_count,
				zero_quantity_count, stores_served, score, grade, status,
				unreliable, pricing_inconsistent, quality_issues,
				suspicious_zeros, limited_distribution
			) VALUES (
				:entity_kind, :entity_id, :entity_name, :total_transactions,
				:negative_count, :extreme_price_count, :critical_count,
				:zero_quantity_count, :stores_served, :score, :grade, :status,
				:unreliable, :pricing_inconsistent, :quality_issues,
				:suspicious_zeros, :limited_distribution
			)`, records, 500)
		if err != nil {
			return fmt.Errorf("insert summary_reliability: %w", err)
		}
		return nil
	})
}

// ReplaceKPIs swaps the single-row executive summary and quality report.
func (w *Warehouse) ReplaceKPIs(ctx context.Context, kpis domain.KPIMetrics, quality domain.DataQualityReport) error {
	return w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`TRUNCATE summary_kpi`); err != nil {
			return fmt.Errorf("truncate summary_kpi: %w", err)
		}
		if _, err := tx.NamedExec(`
			INSERT INTO summary_kpi (
				promo_revenue, promo_penetration_pct, avg_discount_pct,
				stores_with_promo, skus_on_promo, total_stores, total_skus,
				promo_transactions, total_transactions, units_uplift_pct
			) VALUES (
				:promo_revenue, :promo_penetration_pct, :avg_discount_pct,
				:stores_with_promo, :skus_on_promo, :total_stores, :total_skus,
				:promo_transactions, :total_transactions, :units_uplift_pct
			)`, kpis); err != nil {
			return fmt.Errorf("insert summary_kpi: %w", err)
		}
		if _, err := tx.Exec(`TRUNCATE summary_data_quality`); err != nil {
			return fmt.Errorf("truncate summary_data_quality: %w", err)
		}
		if _, err := tx.NamedExec(`
			INSERT INTO summary_data_quality (
				total_records, clean_records, medium_records, low_records,
				negative_quantity, negative_sales, exact_duplicates,
				business_duplicates, quality_score
			) VALUES (
				:total_records, :clean_records, :medium_records, :low_records,
				:negative_quantity, :negative_sales, :exact_duplicates,
				:business_duplicates, :quality_score
			)`, quality); err != nil {
			return fmt.Errorf("insert summary_data_quality: %w", err)
		}
		return nil
	})
}

// SKUSummaries reads the leaderboard in rank order.
func (w *Warehouse) SKUSummaries(ctx context.Context, limit int) ([]domain.SKUPromoSummary, error) {
	query := `
		SELECT item_id, item_code, item_description, category, is_bidco,
		       baseline_avg_units, has_baseline, promo_avg_units, has_promo,
		       uplift_pct, stores_carrying, stores_on_promo, coverage_pct,
		       promo_revenue, total_revenue, performance_score,
		       performance_tier, overall_rank
		FROM summary_sku_promo
		ORDER BY overall_rank`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	var out []domain.SKUPromoSummary
	if err := w.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select sku summaries: %w", err)
	}
	return out, nil
}

// PriceIndexFilter narrows the store-level price index query.
type PriceIndexFilter struct {
	StoreName     string
	SubDepartment string
	Positioning   string
	Limit         int
}

// PriceIndex reads store-level price index rows with optional filters,
// mirroring the dynamic WHERE style used elsewhere in the repo.
func (w *Warehouse) PriceIndex(ctx context.Context, filter PriceIndexFilter) ([]domain.PriceIndexRow, error) {
	var conditions []string
	var args []any

	if filter.StoreName != "" {
		args = append(args, filter.StoreName)
		conditions = append(conditions, fmt.Sprintf("store_name = $%d", len(args)))
	}
	if filter.SubDepartment != "" {
		args = append(args, filter.SubDepartment)
		conditions = append(conditions, fmt.Sprintf("sub_department = $%d", len(args)))
	}
	if filter.Positioning != "" {
		args = append(args, filter.Positioning)
		conditions = append(conditions, fmt.Sprintf("price_positioning = $%d", len(args)))
	}

	query := `
		SELECT store_id, store_name, sub_department, section,
		       bidco_avg_price, competitor_avg_price, price_index,
		       price_positioning, bidco_transactions, competitor_transactions
		FROM summary_price_index`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY store_name, sub_department, section"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var out []domain.PriceIndexRow
	if err := w.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select price index: %w", err)
	}
	return out, nil
}

// CategoryPriceIndex reads the category roll-up.
func (w *Warehouse) CategoryPriceIndex(ctx context.Context) ([]domain.CategoryPriceIndex, error) {
	var out []domain.CategoryPriceIndex
	err := w.db.SelectContext(ctx, &out, `
		SELECT category, segment_count, avg_price_index, avg_bidco_price,
		       avg_competitor_price, overall_positioning, bidco_revenue,
		       competitor_revenue
		FROM summary_category_price_index
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("select category price index: %w", err)
	}
	return out, nil
}

// Reliability reads scorecards for one entity kind, worst first.
func (w *Warehouse) Reliability(ctx context.Context, kind domain.EntityKind) ([]domain.ReliabilityRecord, error) {
	var out []domain.ReliabilityRecord
	err := w.db.SelectContext(ctx, &out, `
		SELECT entity_kind, entity_id, entity_name, total_transactions,
		       negative_count, extreme_price_count, critical_count,
		       zero_quantity_count, stores_served, score, grade, status,
		       unreliable, pricing_inconsistent, quality_issues,
		       suspicious_zeros, limited_distribution
		FROM summary_reliability
		WHERE entity_kind = $1
		ORDER BY score, entity_id`, kind)
	if err != nil {
		return nil, fmt.Errorf("select reliability: %w", err)
	}
	return out, nil
}

// KPIs reads the single-row executive summary.
func (w *Warehouse) KPIs(ctx context.Context) (domain.KPIMetrics, error) {
	var out domain.KPIMetrics
	err := w.db.GetContext(ctx, &out, `
		SELECT promo_revenue, promo_penetration_pct, avg_discount_pct,
		       stores_with_promo, skus_on_promo, total_stores, total_skus,
		       promo_transactions, total_transactions, units_uplift_pct
		FROM summary_kpi LIMIT 1`)
	if err != nil {
		return out, fmt.Errorf("select kpis: %w", err)
	}
	return out, nil
}

// DataQuality reads the single-row batch quality report.
func (w *Warehouse) DataQuality(ctx context.Context) (domain.DataQualityReport, error) {
	var out domain.DataQualityReport
	err := w.db.GetContext(ctx, &out, `
		SELECT total_records, clean_records, medium_records, low_records,
		       negative_quantity, negative_sales, exact_duplicates,
		       business_duplicates, quality_score
		FROM summary_data_quality LIMIT 1`)
	if err != nil {
		return out, fmt.Errorf("select data quality: %w", err)
	}
	return out, nil
}
