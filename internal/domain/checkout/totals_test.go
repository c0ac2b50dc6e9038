package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartOf(t *testing.T, prices ...string) Cart {
	t.Helper()
	var c Cart
	for i, p := range prices {
		_, err := c.AddUnits(Product{ID: string(rune('a' + i)), Name: p, UnitPrice: dec(p)}, 1)
		require.NoError(t, err)
	}
	return c
}

func TestTotalsWithoutTaxEqualSubtotal(t *testing.T) {
	for _, prices := range [][]string{{}, {"0.01"}, {"19.99", "5.01"}, {"1234.567", "0.333"}} {
		got := Compute(cartOf(t, prices...), false, nil)
		assert.True(t, got.Total.Equal(got.Subtotal), prices)
		assert.True(t, got.Tax.IsZero(), prices)
	}
}

func TestTotalsWithTax(t *testing.T) {
	for _, prices := range [][]string{{"100"}, {"19.99", "5.01"}, {"33.33"}, {"0.05"}, {"1234.567", "0.333"}} {
		c := cartOf(t, prices...)
		got := Compute(c, true, nil)
		sub := c.Subtotal()
		assert.True(t, got.Total.Equal(sub.Add(sub.Mul(dec("0.18")).Round(2))), prices)
		assert.Equal(t, int32(-2), got.Tax.Exponent(), "tax is rounded to cents")
	}
}

func TestEmptyCartTotals(t *testing.T) {
	s := NewSession("s", "u", fixedNow)
	require.NoError(t, s.Payment.Select(MethodCash))
	require.NoError(t, s.SetCashReceived("500"))

	got := s.Totals()
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
	assert.False(t, s.CanSubmit())
}

func TestCashChange(t *testing.T) {
	c := cartOf(t, "100")
	cases := map[string]string{
		"0":      "0",
		"50":     "0",
		"118":    "0",
		"118.01": "0.01",
		"1000":   "882",
		"100000": "99882",
	}
	for received, change := range cases {
		got := Compute(c, true, Cash{Received: dec(received)})
		assertAmount(t, change, got.Change, received)
	}
}

func TestChangeOnlyForCash(t *testing.T) {
	c := cartOf(t, "100")
	got := Compute(c, true, BankTransfer{ReferenceNumber: "x", TransferAmount: dec("500")})
	assert.True(t, got.Change.IsZero())
}

func TestWidgetScenario(t *testing.T) {
	s := NewSession("s", "u", fixedNow)
	_, err := s.Cart.AddUnits(widget, 2)
	require.NoError(t, err)
	require.NoError(t, s.Payment.Select(MethodCash))

	require.NoError(t, s.SetCashReceived("300"))
	got := s.Totals()
	assertAmount(t, "200", got.Subtotal)
	assertAmount(t, "36", got.Tax)
	assertAmount(t, "236", got.Total)
	assertAmount(t, "64", got.Change)
	assert.True(t, s.CanSubmit())

	require.NoError(t, s.SetCashReceived("200"))
	assert.False(t, s.CanSubmit())
	_, err = newTestAssembler(t).Submission(s, fixedNow)
	assert.ErrorIs(t, err, ErrInsufficientCash)
}

func TestToggleTaxRecomputesChange(t *testing.T) {
	s := NewSession("s", "u", fixedNow)
	_, err := s.Cart.AddUnits(widget, 2)
	require.NoError(t, err)
	require.NoError(t, s.Payment.Select(MethodCash))
	require.NoError(t, s.SetCashReceived("300"))
	assertAmount(t, "64", s.Totals().Change)

	s.ApplyTax = false
	assertAmount(t, "200", s.Totals().Total)
	assertAmount(t, "100", s.Totals().Change)
}

func TestComputeIsIdempotent(t *testing.T) {
	var c Cart
	_, err := c.AddWeight(rice, dec("1.337"), false)
	require.NoError(t, err)
	_, err = c.AddUnits(Product{ID: "x", Name: "x", UnitPrice: dec("19.99")}, 3)
	require.NoError(t, err)
	pay := Cash{Received: dec("250")}

	first := Compute(c, true, pay)
	second := Compute(c, true, pay)
	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.Tax.String(), second.Tax.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
	assert.Equal(t, first.Change.String(), second.Change.String())
	assert.Len(t, c.Lines, 2)
}

func TestParseAmount(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "0"},
		{"   ", "0"},
		{"abc", "0"},
		{"-5", "0"},
		{"NaN", "0"},
		{"Inf", "0"},
		{"12.50", "12.5"},
		{" 1,250.75", "1250.75"},
		{"RD$300", "300"},
		{"RD$ 45", "45"},
		{"0.125", "0.125"},
		{"1e50000000", "0"},
		{"1E5", "0"},
		{"0x10", "0"},
		{"0.0001", "0"},
		{"999999999999.99", "999999999999.99"},
		{"1000000000000", "0"},
		{"1,000,000,000,000", "0"},
		{"0000000000000000001", "0"},
	}
	for _, tc := range cases {
		assertAmount(t, tc.want, ParseAmount(tc.in), tc.in)
	}
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(decimal.Zero))
	assert.True(t, InRange(dec("0.125")))
	assert.True(t, InRange(dec("-250.5")))
	assert.True(t, InRange(dec("999999999999")))
	assert.True(t, InRange(decimal.New(1, 11)))

	assert.False(t, InRange(decimal.New(1, 12)))
	assert.False(t, InRange(decimal.New(1, 50000000)))
	assert.False(t, InRange(decimal.New(1, -50000000)))
	assert.False(t, InRange(decimal.New(0, -50000000)))
	assert.False(t, InRange(decimal.New(0, 50000000)))
	assert.False(t, InRange(dec("1.0001")))

	err := CheckAmount("received", decimal.New(1, 50000000))
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "received", ve.Field)
	assert.NoError(t, CheckAmount("received", dec("300")))
}

func TestHugeCashInputStaysCheap(t *testing.T) {
	s := NewSession("s", "u", fixedNow)
	_, err := s.Cart.AddUnits(widget, 1)
	require.NoError(t, err)
	require.NoError(t, s.Payment.Select(MethodCash))
	require.NoError(t, s.SetCashReceived("1e50000000"))

	assert.False(t, s.CanSubmit())
	_, err = newTestAssembler(t).Submission(s, fixedNow)
	assert.ErrorIs(t, err, ErrInsufficientCash)
}

func TestRound2(t *testing.T) {
	assertAmount(t, "0.01", Round2(dec("0.005")))
	assertAmount(t, "2.35", Round2(dec("2.345")))
	assert.True(t, Round2(decimal.Zero).IsZero())
}
