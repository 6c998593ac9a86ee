// internal/warehouse/facts.go
package warehouse

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// ReplaceFacts swaps the authoritative fact table in one transaction.
func (w *Warehouse) ReplaceFacts(ctx context.Context, facts []domain.EnrichedFact) error {
	return w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`TRUNCATE fact_sales`); err != nil {
			return fmt.Errorf("truncate fact_sales: %w", err)
		}
		err := namedInsert(tx, `
			INSERT INTO fact_sales (
				store_id, item_id, supplier_id, date_id, full_date,
				quantity, total_sales, rrp, unit_price, unit_price_valid,
				discount_pct, is_promo, data_quality_flag
			) VALUES (
				:store_id, :item_id, :supplier_id, :date_id, :full_date,
				:quantity, :total_sales, :rrp, :unit_price, :unit_price_valid,
				:discount_pct, :is_promo, :data_quality_flag
			)`, facts, 500)
		if err != nil {
			return fmt.Errorf("insert fact_sales: %w", err)
		}
		return nil
	})
}

// CountFacts reports the size of the published fact set.
func (w *Warehouse) CountFacts(ctx context.Context) (int, error) {
	var n int
	if err := w.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM fact_sales`); err != nil {
		return 0, fmt.Errorf("count facts: %w", err)
	}
	return n, nil
}
