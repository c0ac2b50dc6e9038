package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCustomerName is printed on walk-in sales with no named customer.
const DefaultCustomerName = "Consumidor Final"

// CustomerInfo identifies the buyer printed on the invoice.
type CustomerInfo struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Session is one open sale at the register.
type Session struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Cart      Cart          `json:"cart"`
	ApplyTax  bool          `json:"applyTax"`
	Payment   Selector      `json:"payment"`
	Customer  *CustomerInfo `json:"customer,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewSession opens an empty sale. Tax is on by default.
func NewSession(id, userID string, now time.Time) *Session {
	return &Session{ID: id, UserID: userID, ApplyTax: true, CreatedAt: now, UpdatedAt: now}
}

// Totals recomputes the sale totals from the current state.
func (s *Session) Totals() Totals {
	return Compute(s.Cart, s.ApplyTax, s.Payment.Active())
}

// CanSubmit reports whether the register would enable the submit action.
func (s *Session) CanSubmit() bool {
	if s.Cart.IsEmpty() {
		return false
	}
	p := s.Payment.Active()
	if p == nil {
		return false
	}
	return p.Validate(s.Totals().Rounded().Total) == nil
}

// SetCashReceived stores the cash amount typed by the cashier.
func (s *Session) SetCashReceived(text string) error {
	if s.Payment.Method() != MethodCash {
		return ErrNotCash
	}
	s.Payment.Set(Cash{Received: ParseAmount(text)})
	return nil
}

// SetCreditCustomer selects the account a fiado sale is charged to.
func (s *Session) SetCreditCustomer(c CustomerInfo) error {
	if s.Payment.Method() != MethodCredit {
		return ErrNotCredit
	}
	if c.ID == "" {
		return ErrCustomerRequired
	}
	s.Payment.Set(Credit{CustomerID: c.ID, CustomerName: c.Name})
	s.Customer = &c
	return nil
}

// ApplyTerminalResult stores an approved terminal authorization on the
// active card payment.
func (s *Session) ApplyTerminalResult(r TerminalResult) {
	amount := s.AmountDue()
	s.Payment.Set(Card{Mode: CardTerminal, Last4: r.Last4, AuthorizationCode: r.AuthorizationCode, Authorized: &amount})
}

// AmountDue is the rounded total the payment has to cover.
func (s *Session) AmountDue() decimal.Decimal {
	return s.Totals().Rounded().Total
}

// Reset empties the sale after a successful submission.
func (s *Session) Reset() {
	s.Cart.Clear()
	s.Payment.Reset()
	s.Customer = nil
}
