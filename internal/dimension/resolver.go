// internal/dimension/resolver.go
package dimension

import (
	"strings"
	"time"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// Resolver assigns stable surrogate IDs to stores, suppliers, items and
// dates. Entries are created lazily on first sight and never mutated after;
// resolving the same natural key always returns the same ID. The resolver is
// single-writer: the pipeline runs resolution as one sequential phase, so no
// locking is needed here.
type Resolver struct {
	focalBrand string

	stores    map[string]int64
	suppliers map[string]int64
	items     map[string]int64

	set domain.DimensionSet

	nextStoreID    int64
	nextSupplierID int64
	nextItemID     int64
}

// New creates an empty resolver. focalBrand is the supplier substring that
// marks own-brand items, matched case-insensitively.
func New(focalBrand string) *Resolver {
	return &Resolver{
		focalBrand: strings.ToLower(strings.TrimSpace(focalBrand)),
		stores:     make(map[string]int64),
		suppliers:  make(map[string]int64),
		items:      make(map[string]int64),
		set: domain.DimensionSet{
			Stores:    make(map[int64]domain.DimStore),
			Suppliers: make(map[int64]domain.DimSupplier),
			Items:     make(map[int64]domain.DimItem),
			Dates:     make(map[int64]domain.DimDate),
		},
		nextStoreID:    1,
		nextSupplierID: 1,
		nextItemID:     1,
	}
}

// Seed preloads existing dimension rows so surrogate IDs stay stable across
// runs. Natural keys already present keep their IDs; counters advance past
// the highest seeded ID.
func (r *Resolver) Seed(set domain.DimensionSet) {
	for id, s := range set.Stores {
		r.stores[s.Name] = id
		r.set.Stores[id] = s
		if id >= r.nextStoreID {
			r.nextStoreID = id + 1
		}
	}
	for id, s := range set.Suppliers {
		r.suppliers[s.Name] = id
		r.set.Suppliers[id] = s
		if id >= r.nextSupplierID {
			r.nextSupplierID = id + 1
		}
	}
	for id, it := range set.Items {
		r.items[it.Code] = id
		r.set.Items[id] = it
		if id >= r.nextItemID {
			r.nextItemID = id + 1
		}
	}
	for id, d := range set.Dates {
		r.set.Dates[id] = d
	}
}

// ResolveStore returns the surrogate ID for a store name, creating the
// dimension entry on first sight.
func (r *Resolver) ResolveStore(name string) int64 {
	if id, ok := r.stores[name]; ok {
		return id
	}
	id := r.nextStoreID
	r.nextStoreID++
	r.stores[name] = id
	r.set.Stores[id] = domain.DimStore{ID: id, Name: name}
	return id
}

// ResolveSupplier returns the surrogate ID for a supplier name.
func (r *Resolver) ResolveSupplier(name string) int64 {
	if id, ok := r.suppliers[name]; ok {
		return id
	}
	id := r.nextSupplierID
	r.nextSupplierID++
	r.suppliers[name] = id
	r.set.Suppliers[id] = domain.DimSupplier{ID: id, Name: name}
	return id
}

// ResolveItem returns the surrogate ID for an item, keyed on item code.
// is_bidco is derived from the supplier name at first sight and kept for the
// life of the item.
func (r *Resolver) ResolveItem(rec *domain.CleanRecord) int64 {
	if id, ok := r.items[rec.ItemCode]; ok {
		return id
	}
	id := r.nextItemID
	r.nextItemID++
	r.items[rec.ItemCode] = id
	r.set.Items[id] = domain.DimItem{
		ID:            id,
		Code:          rec.ItemCode,
		Barcode:       rec.ItemBarcode,
		Description:   rec.Description,
		Category:      rec.Category,
		Department:    rec.Department,
		SubDepartment: rec.SubDepartment,
		Section:       rec.Section,
		IsBidco:       r.isFocalBrand(rec.Supplier),
	}
	return id
}

// ResolveDate returns the YYYYMMDD surrogate for a calendar date and records
// the date dimension row on first sight.
func (r *Resolver) ResolveDate(d time.Time) int64 {
	id := DateID(d)
	if _, ok := r.set.Dates[id]; ok {
		return id
	}
	wd := d.Weekday()
	r.set.Dates[id] = domain.DimDate{
		ID:        id,
		Date:      d,
		Year:      d.Year(),
		Month:     int(d.Month()),
		Day:       d.Day(),
		Weekday:   wd.String(),
		IsWeekend: wd == time.Saturday || wd == time.Sunday,
	}
	return id
}

// Set exposes the accumulated dimension rows for persistence and joins.
func (r *Resolver) Set() domain.DimensionSet {
	return r.set
}

// DateID encodes a date as its YYYYMMDD integer surrogate.
func DateID(d time.Time) int64 {
	return int64(d.Year())*10000 + int64(d.Month())*100 + int64(d.Day())
}

func (r *Resolver) isFocalBrand(supplier string) bool {
	if r.focalBrand == "" {
		return false
	}
	return strings.Contains(strings.ToLower(supplier), r.focalBrand)
}
