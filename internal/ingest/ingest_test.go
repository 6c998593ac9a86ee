package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVWithCanonicalHeaders(t *testing.T) {
	input := strings.Join([]string{
		"store_name,item_code,quantity,total_sales,rrp,supplier,date_of_sale",
		"Naivas,BK-001,3,450,160,Bidco Africa,2024-03-01",
		"Quickmart,KP-002,1,95,100,Kapa Oil,2024-03-01",
	}, "\n")

	out, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Naivas", out[0].StoreName)
	assert.Equal(t, "BK-001", out[0].ItemCode)
	assert.Equal(t, "450", out[0].TotalSales)
	assert.Equal(t, "2024-03-01", out[0].DateOfSale)
	assert.Equal(t, "Kapa Oil", out[1].Supplier)
}

func TestReadCSVResolvesHeaderAliases(t *testing.T) {
	input := strings.Join([]string{
		"Branch,SKU,Qty,Sales Value,Retail Price,Vendor,Sale Date",
		"Naivas,BK-001,3,450,160,Bidco Africa,2024-03-01",
	}, "\n")

	out, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "Naivas", out[0].StoreName)
	assert.Equal(t, "BK-001", out[0].ItemCode)
	assert.Equal(t, "3", out[0].Quantity)
	assert.Equal(t, "450", out[0].TotalSales)
	assert.Equal(t, "160", out[0].RRP)
	assert.Equal(t, "Bidco Africa", out[0].Supplier)
	assert.Equal(t, "2024-03-01", out[0].DateOfSale)
}

func TestReadCSVIgnoresUnknownColumnsAndShortRows(t *testing.T) {
	input := strings.Join([]string{
		"store_name,mystery_column,item_code,quantity",
		"Naivas,whatever,BK-001,3",
		"Quickmart,x,KP-002",
	}, "\n")

	out, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "BK-001", out[0].ItemCode)
	assert.Equal(t, "3", out[0].Quantity)
	assert.Equal(t, "KP-002", out[1].ItemCode)
	assert.Empty(t, out[1].Quantity)
}

func TestReadFileRejectsUnknownExtension(t *testing.T) {
	_, err := ReadFile("batch.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
