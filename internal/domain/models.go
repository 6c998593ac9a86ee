// internal/domain/models.go
package domain

import "time"

// QualityFlag classifies the data quality of a single record.
type QualityFlag string

const (
	QualityClean  QualityFlag = "clean"
	QualityMedium QualityFlag = "medium"
	QualityLow    QualityFlag = "low"
)

// Worse reports whether a is a more severe flag than b.
func (a QualityFlag) Worse(b QualityFlag) bool {
	return a.severity() > b.severity()
}

func (a QualityFlag) severity() int {
	switch a {
	case QualityLow:
		return 2
	case QualityMedium:
		return 1
	default:
		return 0
	}
}

// RawTransaction is a single point-of-sale record as it arrives from the
// extraction collaborator. Everything is text; nothing is trusted yet.
type RawTransaction struct {
	StoreName     string `json:"store_name" db:"store_name"`
	ItemCode      string `json:"item_code" db:"item_code"`
	ItemBarcode   string `json:"item_barcode" db:"item_barcode"`
	Description   string `json:"description" db:"description"`
	Category      string `json:"category" db:"category"`
	Department    string `json:"department" db:"department"`
	SubDepartment string `json:"sub_department" db:"sub_department"`
	Section       string `json:"section" db:"section"`
	Quantity      string `json:"quantity" db:"quantity"`
	TotalSales    string `json:"total_sales" db:"total_sales"`
	RRP           string `json:"rrp" db:"rrp"`
	Supplier      string `json:"supplier" db:"supplier"`
	DateOfSale    string `json:"date_of_sale" db:"date_of_sale"`
}

// CleanRecord is a normalized transaction: text standardized, numerics and
// date coerced, preliminary quality flag attached. Records are never dropped
// during normalization; unparsable values are flagged instead.
type CleanRecord struct {
	StoreName     string
	ItemCode      string
	ItemBarcode   string
	Description   string
	Category      string
	Department    string
	SubDepartment string
	Section       string
	Supplier      string
	Date          time.Time
	DateValid     bool
	Quantity      float64
	TotalSales    float64
	RRP           float64
	QualityFlag   QualityFlag
}

// UnitPrice returns total sales divided by quantity. The second return value
// is false when quantity is zero and the unit price is undefined.
func (r *CleanRecord) UnitPrice() (float64, bool) {
	if r.Quantity == 0 {
		return 0, false
	}
	return r.TotalSales / r.Quantity, true
}

// DiscountPct returns (rrp - unit_price) / rrp, or 0 when rrp is not positive
// or the unit price is undefined.
func (r *CleanRecord) DiscountPct() float64 {
	if r.RRP <= 0 {
		return 0
	}
	unitPrice, ok := r.UnitPrice()
	if !ok {
		return 0
	}
	return (r.RRP - unitPrice) / r.RRP
}

// DimStore is the store dimension entry.
type DimStore struct {
	ID   int64  `json:"id" db:"store_id"`
	Name string `json:"name" db:"store_name"`
}

// DimSupplier is the supplier dimension entry.
type DimSupplier struct {
	ID   int64  `json:"id" db:"supplier_id"`
	Name string `json:"name" db:"supplier_name"`
}

// DimItem is the item dimension entry. IsBidco is derived once per item from
// the supplier name and participates in every own-brand vs competitor split.
type DimItem struct {
	ID            int64  `json:"id" db:"item_id"`
	Code          string `json:"code" db:"item_code"`
	Barcode       string `json:"barcode" db:"item_barcode"`
	Description   string `json:"description" db:"description"`
	Category      string `json:"category" db:"category"`
	Department    string `json:"department" db:"department"`
	SubDepartment string `json:"sub_department" db:"sub_department"`
	Section       string `json:"section" db:"section"`
	IsBidco       bool   `json:"is_bidco" db:"is_bidco"`
}

// DimDate is the date dimension entry. The surrogate ID is the date encoded
// as YYYYMMDD so it stays stable across runs without a lookup.
type DimDate struct {
	ID        int64     `json:"id" db:"date_id"`
	Date      time.Time `json:"date" db:"full_date"`
	Year      int       `json:"year" db:"year"`
	Month     int       `json:"month" db:"month"`
	Day       int       `json:"day" db:"day"`
	Weekday   string    `json:"weekday" db:"weekday_name"`
	IsWeekend bool      `json:"is_weekend" db:"is_weekend"`
}

// EnrichedFact is a single row of the sales fact table. Facts are immutable
// once built; a refresh replaces the whole set.
type EnrichedFact struct {
	StoreID        int64       `json:"store_id" db:"store_id"`
	ItemID         int64       `json:"item_id" db:"item_id"`
	SupplierID     int64       `json:"supplier_id" db:"supplier_id"`
	DateID         int64       `json:"date_id" db:"date_id"`
	Date           time.Time   `json:"date" db:"full_date"`
	Quantity       float64     `json:"quantity" db:"quantity"`
	TotalSales     float64     `json:"total_sales" db:"total_sales"`
	RRP            float64     `json:"rrp" db:"rrp"`
	UnitPrice      float64     `json:"unit_price" db:"unit_price"`
	UnitPriceValid bool        `json:"unit_price_valid" db:"unit_price_valid"`
	DiscountPct    float64     `json:"discount_pct" db:"discount_pct"`
	IsPromo        bool        `json:"is_promo" db:"is_promo"`
	QualityFlag    QualityFlag `json:"data_quality_flag" db:"data_quality_flag"`
}

// DimensionSet bundles the per-run dimension lookups that downstream
// aggregations join against.
type DimensionSet struct {
	Stores    map[int64]DimStore
	Suppliers map[int64]DimSupplier
	Items     map[int64]DimItem
	Dates     map[int64]DimDate
}

// SKUPromoSummary holds per-SKU promo effectiveness metrics and the composite
// performance score used for the leaderboard.
type SKUPromoSummary struct {
	ItemID           int64   `json:"item_id" db:"item_id"`
	ItemCode         string  `json:"item_code" db:"item_code"`
	Description      string  `json:"item_description" db:"item_description"`
	Category         string  `json:"category" db:"category"`
	IsBidco          bool    `json:"is_bidco" db:"is_bidco"`
	BaselineAvgUnits float64 `json:"baseline_avg_units" db:"baseline_avg_units"`
	HasBaseline      bool    `json:"has_baseline" db:"has_baseline"`
	PromoAvgUnits    float64 `json:"promo_avg_units" db:"promo_avg_units"`
	HasPromo         bool    `json:"has_promo" db:"has_promo"`
	UpliftPct        float64 `json:"uplift_pct" db:"uplift_pct"`
	StoresCarrying   int     `json:"stores_carrying" db:"stores_carrying"`
	StoresOnPromo    int     `json:"stores_on_promo" db:"stores_on_promo"`
	CoveragePct      float64 `json:"coverage_pct" db:"coverage_pct"`
	PromoRevenue     float64 `json:"promo_revenue" db:"promo_revenue"`
	TotalRevenue     float64 `json:"total_revenue" db:"total_revenue"`
	PerformanceScore float64 `json:"performance_score" db:"performance_score"`
	PerformanceTier  string  `json:"performance_tier" db:"performance_tier"`
	OverallRank      int     `json:"overall_rank" db:"overall_rank"`
}

// PriceIndexRow compares own-brand average realized price against competitors
// within one (store, sub-department, section) group.
type PriceIndexRow struct {
	StoreID                int64   `json:"store_id" db:"store_id"`
	StoreName              string  `json:"store_name" db:"store_name"`
	SubDepartment          string  `json:"sub_department" db:"sub_department"`
	Section                string  `json:"section" db:"section"`
	BidcoAvgPrice          float64 `json:"bidco_avg_price" db:"bidco_avg_price"`
	CompetitorAvgPrice     float64 `json:"competitor_avg_price" db:"competitor_avg_price"`
	PriceIndex             float64 `json:"price_index" db:"price_index"`
	Positioning            string  `json:"price_positioning" db:"price_positioning"`
	BidcoTransactions      int     `json:"bidco_transactions" db:"bidco_transactions"`
	CompetitorTransactions int     `json:"competitor_transactions" db:"competitor_transactions"`
}

// CategoryPriceIndex is the category-level roll-up of the price index.
type CategoryPriceIndex struct {
	Category           string  `json:"category" db:"category"`
	SegmentCount       int     `json:"segment_count" db:"segment_count"`
	AvgPriceIndex      float64 `json:"avg_price_index" db:"avg_price_index"`
	AvgBidcoPrice      float64 `json:"avg_bidco_price" db:"avg_bidco_price"`
	AvgCompetitorPrice float64 `json:"avg_competitor_price" db:"avg_competitor_price"`
	Positioning        string  `json:"overall_positioning" db:"overall_positioning"`
	BidcoRevenue       float64 `json:"bidco_revenue" db:"bidco_revenue"`
	CompetitorRevenue  float64 `json:"competitor_revenue" db:"competitor_revenue"`
}

// KPIMetrics is the executive summary computed over the whole fact set.
type KPIMetrics struct {
	PromoRevenue       float64 `json:"promo_revenue" db:"promo_revenue"`
	PromoPenetration   float64 `json:"promo_penetration_pct" db:"promo_penetration_pct"`
	AvgDiscountPct     float64 `json:"avg_discount_pct" db:"avg_discount_pct"`
	StoresWithPromo    int     `json:"stores_with_promo" db:"stores_with_promo"`
	SKUsOnPromo        int     `json:"skus_on_promo" db:"skus_on_promo"`
	TotalStores        int     `json:"total_stores" db:"total_stores"`
	TotalSKUs          int     `json:"total_skus" db:"total_skus"`
	PromoTransactions  int     `json:"promo_transactions" db:"promo_transactions"`
	TotalTransactions  int     `json:"total_transactions" db:"total_transactions"`
	UnitsUpliftPct     float64 `json:"units_uplift_pct" db:"units_uplift_pct"`
}

// EntityKind distinguishes the two reliability scopes.
type EntityKind string

const (
	EntityStore    EntityKind = "store"
	EntitySupplier EntityKind = "supplier"
)

// ReliabilityRecord is the data-quality scorecard for one store or supplier.
type ReliabilityRecord struct {
	Kind                EntityKind `json:"kind" db:"entity_kind"`
	EntityID            int64      `json:"entity_id" db:"entity_id"`
	Name                string     `json:"name" db:"entity_name"`
	TotalTransactions   int        `json:"total_transactions" db:"total_transactions"`
	NegativeCount       int        `json:"negative_count" db:"negative_count"`
	ExtremePriceCount   int        `json:"extreme_price_count" db:"extreme_price_count"`
	CriticalCount       int        `json:"critical_count" db:"critical_count"`
	ZeroQuantityCount   int        `json:"zero_quantity_count" db:"zero_quantity_count"`
	StoresServed        int        `json:"stores_served" db:"stores_served"`
	Score               float64    `json:"score" db:"score"`
	Grade               string     `json:"grade" db:"grade"`
	Status              string     `json:"status" db:"status"`
	Unreliable          bool       `json:"unreliable" db:"unreliable"`
	PricingInconsistent bool       `json:"pricing_inconsistent" db:"pricing_inconsistent"`
	QualityIssues       bool       `json:"quality_issues" db:"quality_issues"`
	SuspiciousZeros     bool       `json:"suspicious_zeros" db:"suspicious_zeros"`
	LimitedDistribution bool       `json:"limited_distribution" db:"limited_distribution"`
	Issues              []string   `json:"issues" db:"-"`
}

// DataQualityReport summarizes batch-level quality counters for the
// data_quality API surface.
type DataQualityReport struct {
	TotalRecords       int     `json:"total_records" db:"total_records"`
	CleanRecords       int     `json:"clean_records" db:"clean_records"`
	MediumRecords      int     `json:"medium_records" db:"medium_records"`
	LowRecords         int     `json:"low_records" db:"low_records"`
	NegativeQuantity   int     `json:"negative_quantity" db:"negative_quantity"`
	NegativeSales      int     `json:"negative_sales" db:"negative_sales"`
	ExactDuplicates    int     `json:"exact_duplicates" db:"exact_duplicates"`
	BusinessDuplicates int     `json:"business_duplicates" db:"business_duplicates"`
	QualityScore       float64 `json:"quality_score" db:"quality_score"`
}
