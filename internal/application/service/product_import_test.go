package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseProductSheet(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Name", "Barcode", "Price", "Stock", "Sold_By_Weight", "Weight_Unit", "Price_Per_Unit"},
		{"Arroz selecto", "7460100", "45.50", "20", "", "", ""},
		{},
		{"Salami", "", "", "3.5", "sí", "lb", "150"},
		{"Habichuelas", "7460101", "abc", "1", "", "", ""},
	})

	rows, err := ParseProductSheet(buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "Arroz selecto", rows[0].Input.Name)
	require.NotNil(t, rows[0].Input.Code)
	assert.Equal(t, "7460100", *rows[0].Input.Code)
	assert.True(t, dec("45.5").Equal(rows[0].Input.Price))

	assert.Equal(t, 4, rows[1].Row)
	assert.True(t, rows[1].Input.SoldByWeight)
	assert.Equal(t, "lb", rows[1].Input.WeightUnit)
	assert.True(t, dec("3.5").Equal(rows[1].Input.Stock))
	assert.Nil(t, rows[1].Input.Code)

	require.NotNil(t, rows[2].Err)
	assert.Equal(t, "price", rows[2].Err.Field)
}

func TestParseProductSheetNeedsNameColumn(t *testing.T) {
	_, err := ParseProductSheet(workbook(t, [][]interface{}{{"barcode", "price"}, {"1", "2"}}))
	require.Error(t, err)
}

func TestImportProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.pan(t)

	rows, err := ParseProductSheet(workbook(t, [][]interface{}{
		{"name", "barcode", "price", "stock", "sold_by_weight", "weight_unit", "price_per_unit"},
		{"Arroz selecto", "7460100", "45.50", "20"},
		{"Arroz repetido", "7460100", "40", "1"},
		{"Pan duplicado", "7460001", "25", "1"},
		{"Salami", "", "", "3.5", "x", "lb", "150"},
		{"Sin unidad", "", "", "1", "x", "", "10"},
	}))
	require.NoError(t, err)

	result, err := env.products.ImportProducts(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 3, result.Failed)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "weight_unit", result.Errors[2].Field)

	list, err := env.products.ListProducts(ctx, &repository.ProductFilterParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Pagination.Total)
}
