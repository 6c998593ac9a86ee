// internal/normalize/normalize.go
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// Date layouts tried in order. POS exports are inconsistent about
// separators and ordering, so we accept the common variants.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	time.RFC3339,
}

// Normalizer standardizes raw transactions into clean records. It is pure:
// no I/O, no shared state, and it never drops a record.
type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// NormalizeAll maps a raw batch to clean records, preserving input order.
func (n *Normalizer) NormalizeAll(raws []domain.RawTransaction) []domain.CleanRecord {
	out := make([]domain.CleanRecord, len(raws))
	for i := range raws {
		out[i] = n.Normalize(&raws[i])
	}
	return out
}

// Normalize standardizes one raw transaction. Text fields are trimmed and
// title-cased (item code upper-cased), numerics coerced, the date parsed
// against the known layouts. Unparsable values are zeroed and flagged
// instead of dropping the record.
func (n *Normalizer) Normalize(raw *domain.RawTransaction) domain.CleanRecord {
	rec := domain.CleanRecord{
		StoreName:     TitleCase(raw.StoreName),
		ItemCode:      strings.ToUpper(strings.TrimSpace(raw.ItemCode)),
		ItemBarcode:   strings.TrimSpace(raw.ItemBarcode),
		Description:   TitleCase(raw.Description),
		Category:      TitleCase(raw.Category),
		Department:    TitleCase(raw.Department),
		SubDepartment: TitleCase(raw.SubDepartment),
		Section:       TitleCase(raw.Section),
		Supplier:      TitleCase(raw.Supplier),
		QualityFlag:   domain.QualityClean,
	}

	flag := func(f domain.QualityFlag) {
		if f.Worse(rec.QualityFlag) {
			rec.QualityFlag = f
		}
	}

	if d, ok := ParseDate(raw.DateOfSale); ok {
		rec.Date = d
		rec.DateValid = true
	} else {
		flag(domain.QualityLow)
	}

	var ok bool
	if rec.Quantity, ok = ParseNumeric(raw.Quantity); !ok {
		flag(domain.QualityLow)
	}
	if rec.TotalSales, ok = ParseNumeric(raw.TotalSales); !ok {
		flag(domain.QualityLow)
	}
	if rec.RRP, ok = ParseNumeric(raw.RRP); !ok {
		flag(domain.QualityMedium)
	}

	// Store and item code are join keys; a record without them cannot be
	// attributed and is only good for quality counters.
	if rec.StoreName == "" || rec.ItemCode == "" {
		flag(domain.QualityLow)
	}

	return rec
}

// TitleCase trims, collapses inner whitespace and title-cases each word.
func TitleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = titleWord(strings.ToLower(f))
	}
	return strings.Join(fields, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// ParseNumeric coerces a raw numeric string, tolerating thousands separators
// and surrounding whitespace. Empty or unparsable input returns (0, false).
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseDate tries the known layouts in order and normalizes the result to
// midnight UTC so calendar-day arithmetic stays exact.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
