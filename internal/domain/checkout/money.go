package checkout

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is the flat ITBIS rate applied when tax is enabled on a sale.
var TaxRate = decimal.New(18, -2)

func init() {
	// amounts travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Round2 rounds an amount to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

const (
	// MaxScale is the most decimal places an amount or weight may carry.
	MaxScale = 3
	// maxIntegerDigits keeps every amount below 10^12.
	maxIntegerDigits = 12
)

var plainAmount = regexp.MustCompile(`^\d{1,15}(\.\d{1,3})?$`)

// InRange reports whether d is small enough to compute with: below 10^12 in
// magnitude with at most MaxScale decimals. It only inspects the exponent
// and coefficient length, so huge exponents are rejected without expanding
// them.
func InRange(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp < -MaxScale {
		return false
	}
	if d.IsZero() {
		return exp <= maxIntegerDigits
	}
	return d.NumDigits()+exp <= maxIntegerDigits
}

// CheckAmount is InRange as a field validation error.
func CheckAmount(field string, d decimal.Decimal) error {
	if !InRange(d) {
		return invalid(field, "Monto fuera de rango")
	}
	return nil
}

// ParseAmount coerces free text typed at the register into a non-negative
// amount. Only plain digits with an optional fraction of up to MaxScale
// places are accepted, after dropping thousands separators and the currency
// symbol; anything else, or anything out of range, becomes zero.
func ParseAmount(text string) decimal.Decimal {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "RD$")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if !plainAmount.MatchString(s) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !InRange(d) {
		return decimal.Zero
	}
	return d
}

// FormatReceiptNumber renders the monthly sequential receipt number,
// e.g. FAC-202610-0042.
func FormatReceiptNumber(t time.Time, seq int) string {
	return fmt.Sprintf("FAC-%s-%04d", t.Format("200601"), seq)
}

// ReceiptPrefix returns the FAC-YYYYMM- prefix shared by every receipt of a month.
func ReceiptPrefix(t time.Time) string {
	return fmt.Sprintf("FAC-%s-", t.Format("200601"))
}
