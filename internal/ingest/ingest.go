// internal/ingest/ingest.go
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/jaysongor/ducklens-backend/internal/domain"
)

// headerAliases maps normalized header names to canonical field names.
// POS exports disagree on column naming, so each field accepts the variants
// seen in the wild.
var headerAliases = map[string]string{
	"store_name":     "store_name",
	"store":          "store_name",
	"branch":         "store_name",
	"item_code":      "item_code",
	"sku":            "item_code",
	"product_code":   "item_code",
	"item_barcode":   "item_barcode",
	"barcode":        "item_barcode",
	"description":    "description",
	"item_name":      "description",
	"product_name":   "description",
	"category":       "category",
	"department":     "department",
	"sub_department": "sub_department",
	"subdepartment":  "sub_department",
	"section":        "section",
	"quantity":       "quantity",
	"qty":            "quantity",
	"units_sold":     "quantity",
	"total_sales":    "total_sales",
	"sales_value":    "total_sales",
	"amount":         "total_sales",
	"rrp":            "rrp",
	"retail_price":   "rrp",
	"supplier":       "supplier",
	"supplier_name":  "supplier",
	"vendor":         "supplier",
	"date_of_sale":   "date_of_sale",
	"date":           "date_of_sale",
	"sale_date":      "date_of_sale",
	"trans_date":     "date_of_sale",
}

// ReadFile loads raw transactions from a CSV or XLSX file, dispatching on
// the extension.
func ReadFile(path string) ([]domain.RawTransaction, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// ReadCSV parses raw transactions from CSV. The first row is the header;
// unknown columns are ignored, short rows padded.
func ReadCSV(r io.Reader) ([]domain.RawTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := mapHeader(header)

	var out []domain.RawTransaction
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		out = append(out, rowToRaw(row, cols))
	}
	return out, nil
}

// ReadXLSX parses raw transactions from the first sheet of a workbook.
func ReadXLSX(path string) ([]domain.RawTransaction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("path", path).Msg("failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := mapHeader(rows[0])
	out := make([]domain.RawTransaction, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, rowToRaw(row, cols))
	}
	return out, nil
}

// mapHeader resolves each column index to a canonical field name; -1 marked
// columns are ignored.
func mapHeader(header []string) map[int]string {
	cols := make(map[int]string, len(header))
	for i, h := range header {
		norm := normalizeHeader(h)
		if field, ok := headerAliases[norm]; ok {
			cols[i] = field
		}
	}
	return cols
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

func rowToRaw(row []string, cols map[int]string) domain.RawTransaction {
	var raw domain.RawTransaction
	for i, field := range cols {
		if i >= len(row) {
			continue
		}
		val := row[i]
		switch field {
		case "store_name":
			raw.StoreName = val
		case "item_code":
			raw.ItemCode = val
		case "item_barcode":
			raw.ItemBarcode = val
		case "description":
			raw.Description = val
		case "category":
			raw.Category = val
		case "department":
			raw.Department = val
		case "sub_department":
			raw.SubDepartment = val
		case "section":
			raw.Section = val
		case "quantity":
			raw.Quantity = val
		case "total_sales":
			raw.TotalSales = val
		case "rrp":
			raw.RRP = val
		case "supplier":
			raw.Supplier = val
		case "date_of_sale":
			raw.DateOfSale = val
		}
	}
	return raw
}
