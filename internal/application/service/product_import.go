package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Columns recognized in the header row of an import sheet
var importColumns = []string{
	"name", "barcode", "price", "stock", "sold_by_weight",
	"weight_unit", "price_per_unit", "min_sale_weight", "package_price",
}

// ImportProductRow is one parsed data row. Row is the 1-based sheet row;
// Err is set when the row could not be parsed.
type ImportProductRow struct {
	Row   int
	Input ProductInput
	Err   *ImportRowError
}

// ParseProductSheet reads the first sheet of an .xlsx workbook. The first
// row is the header; columns are matched by name in any order and blank
// rows are skipped.
func ParseProductSheet(r io.Reader) ([]ImportProductRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "name")
	}

	var out []ImportProductRow
	for i, cells := range rows[1:] {
		rowNum := i + 2
		cell := func(col string) string {
			j, ok := index[col]
			if !ok || j >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[j])
		}
		if isBlankRow(cells) {
			continue
		}

		parsed := ImportProductRow{Row: rowNum}
		in := ProductInput{
			Name:         cell("name"),
			SoldByWeight: parseBool(cell("sold_by_weight")),
			WeightUnit:   cell("weight_unit"),
		}
		if code := cell("barcode"); code != "" {
			in.Code = &code
		}

		amounts := map[string]*decimal.Decimal{
			"price":           &in.Price,
			"stock":           &in.Stock,
			"price_per_unit":  &in.PricePerUnit,
			"min_sale_weight": &in.MinSaleWeight,
			"package_price":   &in.PackagePrice,
		}
		for _, col := range importColumns {
			dst, ok := amounts[col]
			if !ok {
				continue
			}
			raw := cell(col)
			if raw == "" {
				continue
			}
			v := checkout.ParseAmount(raw)
			if v.IsZero() && !isZeroText(raw) {
				parsed.Err = &ImportRowError{Row: rowNum, Field: col, Message: fmt.Sprintf("Valor numérico inválido: %q", raw)}
				break
			}
			*dst = v
		}
		parsed.Input = in
		out = append(out, parsed)
	}
	return out, nil
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isZeroText(s string) bool {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	return err == nil && d.IsZero()
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "si", "sí", "x":
		return true
	}
	return false
}
