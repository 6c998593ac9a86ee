// internal/warehouse/dimensions.go
package warehouse

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// LoadDimensions reads all dimension rows so the resolver can keep surrogate
// IDs stable across runs.
func (w *Warehouse) LoadDimensions(ctx context.Context) (domain.DimensionSet, error) {
	set := domain.DimensionSet{
		Stores:    make(map[int64]domain.DimStore),
		Suppliers: make(map[int64]domain.DimSupplier),
		Items:     make(map[int64]domain.DimItem),
		Dates:     make(map[int64]domain.DimDate),
	}

	var stores []domain.DimStore
	if err := w.db.SelectContext(ctx, &stores, `SELECT store_id, store_name FROM dim_store`); err != nil {
		return set, fmt.Errorf("load dim_store: %w", err)
	}
	for _, s := range stores {
		set.Stores[s.ID] = s
	}

	var suppliers []domain.DimSupplier
	if err := w.db.SelectContext(ctx, &suppliers, `SELECT supplier_id, supplier_name FROM dim_supplier`); err != nil {
		return set, fmt.Errorf("load dim_supplier: %w", err)
	}
	for _, s := range suppliers {
		set.Suppliers[s.ID] = s
	}

	var items []domain.DimItem
	if err := w.db.SelectContext(ctx, &items, `
		SELECT item_id, item_code, item_barcode, description, category,
		       department, sub_department, section, is_bidco
		FROM dim_item`); err != nil {
		return set, fmt.Errorf("load dim_item: %w", err)
	}
	for _, it := range items {
		set.Items[it.ID] = it
	}

	var dates []domain.DimDate
	if err := w.db.SelectContext(ctx, &dates, `
		SELECT date_id, full_date, year, month, day, weekday_name, is_weekend
		FROM dim_date`); err != nil {
		return set, fmt.Errorf("load dim_date: %w", err)
	}
	for _, d := range dates {
		set.Dates[d.ID] = d
	}

	return set, nil
}

// ReplaceDimensions upserts the dimension tables. Dimensions are
// append-only: existing rows keep their IDs, new natural keys get new rows,
// nothing is deleted.
func (w *Warehouse) ReplaceDimensions(ctx context.Context, set domain.DimensionSet) error {
	return w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range set.Stores {
			if _, err := tx.NamedExec(`
				INSERT INTO dim_store (store_id, store_name)
				VALUES (:store_id, :store_name)
				ON CONFLICT (store_id) DO NOTHING`, s); err != nil {
				return fmt.Errorf("upsert dim_store: %w", err)
			}
		}
		for _, s := range set.Suppliers {
			if _, err := tx.NamedExec(`
				INSERT INTO dim_supplier (supplier_id, supplier_name)
				VALUES (:supplier_id, :supplier_name)
				ON CONFLICT (supplier_id) DO NOTHING`, s); err != nil {
				return fmt.Errorf("upsert dim_supplier: %w", err)
			}
		}
		for _, it := range set.Items {
			if _, err := tx.NamedExec(`
				INSERT INTO dim_item (
					item_id, item_code, item_barcode, description, category,
					department, sub_department, section, is_bidco
				) VALUES (
					:item_id, :item_code, :item_barcode, :description, :category,
					:department, :sub_department, :section, :is_bidco
				) ON CONFLICT (item_id) DO NOTHING`, it); err != nil {
				return fmt.Errorf("upsert dim_item: %w", err)
			}
		}
		for _, d := range set.Dates {
			if _, err := tx.NamedExec(`
				INSERT INTO dim_date (
					date_id, full_date, year, month, day, weekday_name, is_weekend
				) VALUES (
					:date_id, :full_date, :year, :month, :day, :weekday_name, :is_weekend
				) ON CONFLICT (date_id) DO NOTHING`, d); err != nil {
				return fmt.Errorf("upsert dim_date: %w", err)
			}
		}
		return nil
	})
}
