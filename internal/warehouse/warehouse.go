// internal/warehouse/warehouse.go
package warehouse

import (
	"github.com/jmoiron/sqlx"
)

// Warehouse is the Postgres-backed star schema: staging, dimensions, facts
// and the derived summary tables. Each Replace method swaps one output
// inside its own transaction so readers never see a half-published table.
type Warehouse struct {
	db *DB
}

func New(db *DB) *Warehouse {
	return &Warehouse{db: db}
}

// chunked batches a slice for multi-row named inserts; Postgres caps bind
// parameters at 65535, so chunks stay small.
func chunked[T any](items []T, size int, fn func(chunk []T) error) error {
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		if err := fn(items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func namedInsert[T any](tx *sqlx.Tx, query string, items []T, chunkSize int) error {
	return chunked(items, chunkSize, func(chunk []T) error {
		_, err := tx.NamedExec(query, chunk)
		return err
	})
}
