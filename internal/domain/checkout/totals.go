package checkout

import "github.com/shopspring/decimal"

// Totals are the derived amounts of a sale.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"taxAmount"`
	Total    decimal.Decimal `json:"total"`
	Change   decimal.Decimal `json:"change"`
}

// Compute derives the totals of a cart. It has no side effects and may be
// called on every mutation. Only the tax term is rounded here.
func Compute(cart Cart, applyTax bool, payment Payment) Totals {
	subtotal := cart.Subtotal()
	tax := decimal.Zero
	if applyTax {
		tax = Round2(subtotal.Mul(TaxRate))
	}
	total := subtotal.Add(tax)

	change := decimal.Zero
	if cash, ok := payment.(Cash); ok {
		change = cash.Change(total)
	}
	return Totals{Subtotal: subtotal, Tax: tax, Total: total, Change: change}
}

// Rounded returns the totals rounded to cents for display or submission.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: Round2(t.Subtotal),
		Tax:      Round2(t.Tax),
		Total:    Round2(t.Total),
		Change:   Round2(t.Change),
	}
}
