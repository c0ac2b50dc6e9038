// Package checkout holds the register-side sale logic: the cart, totals,
// the payment method state machine and assembly of the invoice payload.
// Nothing in here performs I/O.
package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the slice of a catalog product the cart needs to price a line.
type Product struct {
	ID            string
	Name          string
	UnitPrice     decimal.Decimal
	SoldByWeight  bool
	WeightUnit    string
	PricePerUnit  decimal.Decimal
	MinSaleWeight decimal.Decimal
	PackagePrice  decimal.Decimal
}

// Weight is the measured quantity of a weight-priced line.
type Weight struct {
	Value        decimal.Decimal `json:"value"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	Min          decimal.Decimal `json:"min"`
}

// Line is a single cart entry. Weight is nil for unit-priced lines.
type Line struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity,omitempty"`
	Weight        *Weight         `json:"weight,omitempty"`
	IsFullPackage bool            `json:"isFullPackage,omitempty"`
	PackagePrice  decimal.Decimal `json:"packagePrice"`
}

// IsWeighted reports whether the line is priced by weight.
func (l Line) IsWeighted() bool {
	return l.Weight != nil
}

// Total returns the unrounded line total.
func (l Line) Total() decimal.Decimal {
	if l.Weight == nil {
		return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	}
	if l.IsFullPackage {
		return l.PackagePrice
	}
	return l.Weight.Value.Mul(l.Weight.PricePerUnit)
}

// Cart is the ordered list of lines of an open sale.
type Cart struct {
	Lines []Line `json:"lines"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// AddUnits adds qty units of a unit-priced product, merging into the
// existing line for the same product.
func (c *Cart) AddUnits(p Product, qty int) (Line, error) {
	if p.SoldByWeight {
		return Line{}, ErrWeightRequired
	}
	if qty < 1 {
		return Line{}, ErrInvalidQuantity
	}
	for i := range c.Lines {
		l := &c.Lines[i]
		if l.ProductID == p.ID && !l.IsWeighted() {
			l.Quantity += qty
			return *l, nil
		}
	}
	line := Line{
		ID:        uuid.NewString(),
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  qty,
	}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// AddWeight appends a weighing of a weight-priced product. Weighings are
// never merged: each call creates a new line.
func (c *Cart) AddWeight(p Product, value decimal.Decimal, fullPackage bool) (Line, error) {
	if !p.SoldByWeight {
		return Line{}, ErrNotSoldByWeight
	}
	if !value.IsPositive() || !InRange(value) {
		return Line{}, ErrInvalidWeight
	}
	if value.LessThan(p.MinSaleWeight) {
		return Line{}, ErrBelowMinimumWeight
	}
	if fullPackage && !p.PackagePrice.IsPositive() {
		return Line{}, ErrNoPackagePrice
	}
	line := Line{
		ID:        uuid.NewString(),
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.PricePerUnit,
		Weight: &Weight{
			Value:        value,
			Unit:         p.WeightUnit,
			PricePerUnit: p.PricePerUnit,
			Min:          p.MinSaleWeight,
		},
		IsFullPackage: fullPackage,
		PackagePrice:  p.PackagePrice,
	}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// UpdateQuantity sets the quantity of a unit line. Quantities below 1
// remove the line.
func (c *Cart) UpdateQuantity(lineID string, n int) error {
	i := c.index(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	if n < 1 {
		c.removeAt(i)
		return nil
	}
	if c.Lines[i].IsWeighted() {
		return ErrWeightRequired
	}
	c.Lines[i].Quantity = n
	return nil
}

// UpdateWeight re-weighs a weight line, keeping the product minimum.
func (c *Cart) UpdateWeight(lineID string, value decimal.Decimal) error {
	i := c.index(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	w := c.Lines[i].Weight
	if w == nil {
		return ErrNotSoldByWeight
	}
	if !value.IsPositive() || !InRange(value) {
		return ErrInvalidWeight
	}
	if value.LessThan(w.Min) {
		return ErrBelowMinimumWeight
	}
	w.Value = value
	return nil
}

// Remove deletes a line.
func (c *Cart) Remove(lineID string) error {
	i := c.index(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.removeAt(i)
	return nil
}

// Subtotal is the unrounded sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) index(lineID string) int {
	for i, l := range c.Lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}
