package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

var widget = Product{ID: "p-widget", Name: "Widget", UnitPrice: dec("100")}

var rice = Product{
	ID:            "p-rice",
	Name:          "Arroz",
	SoldByWeight:  true,
	WeightUnit:    "kg",
	PricePerUnit:  dec("40"),
	MinSaleWeight: dec("0.25"),
	PackagePrice:  dec("95"),
}
