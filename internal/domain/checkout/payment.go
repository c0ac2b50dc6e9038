package checkout

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Method is a selectable state of the payment method selector.
type Method string

const (
	MethodNone         Method = ""
	MethodCash         Method = "cash"
	MethodCardTerminal Method = "card_terminal"
	MethodCardManual   Method = "card_manual"
	MethodBankTransfer Method = "bank_transfer"
	MethodCredit       Method = "credit"
)

// Wire values of paymentMethod in the invoice payload.
const (
	WireCash         = "cash"
	WireCard         = "credit_card"
	WireBankTransfer = "bank_transfer"
	WireCredit       = "credit"
)

// ParseMethod maps a selector state name to a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodCash, MethodCardTerminal, MethodCardManual, MethodBankTransfer, MethodCredit:
		return m, nil
	}
	return MethodNone, ErrUnknownPaymentMethod
}

// Payment is the active payment variant. The set of variants is closed.
type Payment interface {
	Method() Method
	WireMethod() string
	Validate(total decimal.Decimal) error
	details(total decimal.Decimal) PaymentDetails
}

// Cash is paid at the register; change is derived, never stored.
type Cash struct {
	Received decimal.Decimal `json:"received"`
}

func (Cash) Method() Method     { return MethodCash }
func (Cash) WireMethod() string { return WireCash }

// Change returns max(0, received - total).
func (c Cash) Change(total decimal.Decimal) decimal.Decimal {
	diff := c.Received.Sub(total)
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

func (c Cash) Validate(total decimal.Decimal) error {
	if c.Received.LessThan(total) {
		return ErrInsufficientCash
	}
	return nil
}

func (c Cash) details(total decimal.Decimal) PaymentDetails {
	received := Round2(c.Received)
	change := Round2(c.Change(total))
	return PaymentDetails{Received: &received, Change: &change}
}

// CardMode distinguishes the terminal flow from manual entry.
type CardMode string

const (
	CardTerminal CardMode = "terminal"
	CardManual   CardMode = "manual"
)

// Card covers both card sub-modes; they share the output shape.
// Authorized is the amount a terminal approval covers.
type Card struct {
	Mode              CardMode         `json:"mode"`
	Last4             string           `json:"cardLast4,omitempty"`
	AuthorizationCode string           `json:"authorizationCode,omitempty"`
	HolderName        string           `json:"holderName,omitempty"`
	Expiry            string           `json:"expiry,omitempty"`
	Authorized        *decimal.Decimal `json:"authorizedAmount,omitempty"`
}

func (c Card) Method() Method {
	if c.Mode == CardManual {
		return MethodCardManual
	}
	return MethodCardTerminal
}

func (Card) WireMethod() string { return WireCard }

var (
	last4Pattern  = regexp.MustCompile(`^\d{4}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

func (c Card) Validate(total decimal.Decimal) error {
	if c.Mode == CardManual {
		if !last4Pattern.MatchString(c.Last4) ||
			strings.TrimSpace(c.HolderName) == "" ||
			!expiryPattern.MatchString(c.Expiry) ||
			strings.TrimSpace(c.AuthorizationCode) == "" {
			return ErrCardDetailsRequired
		}
		return nil
	}
	if strings.TrimSpace(c.AuthorizationCode) == "" {
		return ErrCardNotAuthorized
	}
	if c.Authorized != nil && !c.Authorized.Equal(Round2(total)) {
		return ErrCardNotAuthorized
	}
	return nil
}

func (c Card) details(decimal.Decimal) PaymentDetails {
	return PaymentDetails{
		CardNumber:        MaskCard(c.Last4),
		AuthorizationCode: c.AuthorizationCode,
	}
}

// MaskCard renders the last four digits behind a mask.
func MaskCard(last4 string) string {
	if last4 == "" {
		return ""
	}
	return "**** **** **** " + last4
}

// BankTransfer is a transfer confirmed by reference number.
type BankTransfer struct {
	ReferenceNumber string          `json:"referenceNumber"`
	TransferAmount  decimal.Decimal `json:"transferAmount"`
}

func (BankTransfer) Method() Method     { return MethodBankTransfer }
func (BankTransfer) WireMethod() string { return WireBankTransfer }

func (b BankTransfer) Validate(total decimal.Decimal) error {
	if strings.TrimSpace(b.ReferenceNumber) == "" {
		return ErrTransferReferenceRequired
	}
	if b.TransferAmount.LessThan(total) {
		return ErrTransferInsufficient
	}
	return nil
}

func (b BankTransfer) details(decimal.Decimal) PaymentDetails {
	amount := Round2(b.TransferAmount)
	return PaymentDetails{
		TransactionID:  strings.TrimSpace(b.ReferenceNumber),
		TransferAmount: &amount,
	}
}

// Credit is a fiado sale charged to a customer account.
type Credit struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
}

func (Credit) Method() Method     { return MethodCredit }
func (Credit) WireMethod() string { return WireCredit }

func (c Credit) Validate(decimal.Decimal) error {
	if c.CustomerID == "" {
		return ErrCustomerRequired
	}
	return nil
}

func (c Credit) details(decimal.Decimal) PaymentDetails {
	return PaymentDetails{ClientID: c.CustomerID, ClientName: c.CustomerName}
}

// PaymentDetails is the method-specific part of the invoice payload. Only
// the keys of the active variant are ever set.
type PaymentDetails struct {
	ClientID          string           `json:"clientId,omitempty"`
	ClientName        string           `json:"clientName,omitempty"`
	Received          *decimal.Decimal `json:"received,omitempty"`
	Change            *decimal.Decimal `json:"change,omitempty"`
	CardNumber        string           `json:"cardNumber,omitempty"`
	AuthorizationCode string           `json:"authorizationCode,omitempty"`
	TransactionID     string           `json:"transactionId,omitempty"`
	TransferAmount    *decimal.Decimal `json:"transferAmount,omitempty"`
}

// Selector is the payment method state machine. The zero value has no
// method selected.
type Selector struct {
	active Payment
}

// Active returns the current variant, or nil when nothing is selected.
func (s *Selector) Active() Payment {
	return s.active
}

// Method returns the current state.
func (s *Selector) Method() Method {
	if s.active == nil {
		return MethodNone
	}
	return s.active.Method()
}

// Select switches to m with a freshly built, empty variant. Whatever was
// entered for the previous method is discarded.
func (s *Selector) Select(m Method) error {
	switch m {
	case MethodNone:
		s.active = nil
	case MethodCash:
		s.active = Cash{}
	case MethodCardTerminal:
		s.active = Card{Mode: CardTerminal}
	case MethodCardManual:
		s.active = Card{Mode: CardManual}
	case MethodBankTransfer:
		s.active = BankTransfer{}
	case MethodCredit:
		s.active = Credit{}
	default:
		return ErrUnknownPaymentMethod
	}
	return nil
}

// Set replaces the active variant with p.
func (s *Selector) Set(p Payment) {
	s.active = p
}

// Reset clears the selection.
func (s *Selector) Reset() {
	s.active = nil
}

type selectorJSON struct {
	Method   Method        `json:"method"`
	Cash     *Cash         `json:"cash,omitempty"`
	Card     *Card         `json:"card,omitempty"`
	Transfer *BankTransfer `json:"transfer,omitempty"`
	Credit   *Credit       `json:"credit,omitempty"`
}

func (s Selector) MarshalJSON() ([]byte, error) {
	var out selectorJSON
	switch p := s.active.(type) {
	case Cash:
		out.Cash = &p
	case Card:
		out.Card = &p
	case BankTransfer:
		out.Transfer = &p
	case Credit:
		out.Credit = &p
	}
	if s.active != nil {
		out.Method = s.active.Method()
	}
	return json.Marshal(out)
}

func (s *Selector) UnmarshalJSON(data []byte) error {
	var in selectorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.Cash != nil:
		s.active = *in.Cash
	case in.Card != nil:
		s.active = *in.Card
	case in.Transfer != nil:
		s.active = *in.Transfer
	case in.Credit != nil:
		s.active = *in.Credit
	default:
		return s.Select(in.Method)
	}
	return nil
}
