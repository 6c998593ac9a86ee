// internal/warehouse/staging.go
package warehouse

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

const insertStagingQuery = `
	INSERT INTO staging_transactions (
		store_name, item_code, item_barcode, description, category,
		department, sub_department, section, quantity, total_sales,
		rrp, supplier, date_of_sale
	) VALUES (
		:store_name, :item_code, :item_barcode, :description, :category,
		:department, :sub_department, :section, :quantity, :total_sales,
		:rrp, :supplier, :date_of_sale
	)`

// LoadStaging reads the current staged batch in insertion order. Insertion
// order is the dedup survivor order, so it must be stable.
func (w *Warehouse) LoadStaging(ctx context.Context) ([]domain.RawTransaction, error) {
	var out []domain.RawTransaction
	err := w.db.SelectContext(ctx, &out, `
		SELECT store_name, item_code, item_barcode, description, category,
		       department, sub_department, section, quantity, total_sales,
		       rrp, supplier, date_of_sale
		FROM staging_transactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load staging: %w", err)
	}
	return out, nil
}

// ReplaceStaging swaps the staged batch for a new one.
func (w *Warehouse) ReplaceStaging(ctx context.Context, raws []domain.RawTransaction) error {
	return w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`TRUNCATE staging_transactions RESTART IDENTITY`); err != nil {
			return fmt.Errorf("truncate staging: %w", err)
		}
		if err := namedInsert(tx, insertStagingQuery, raws, 500); err != nil {
			return fmt.Errorf("insert staging: %w", err)
		}
		return nil
	})
}

// AppendStaging adds raw records to the staged batch without clearing it,
// used when a batch arrives split across several files.
func (w *Warehouse) AppendStaging(ctx context.Context, raws []domain.RawTransaction) error {
	if len(raws) == 0 {
		return nil
	}
	return w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := namedInsert(tx, insertStagingQuery, raws, 500); err != nil {
			return fmt.Errorf("append staging: %w", err)
		}
		return nil
	})
}
