package checkout

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Business is the store identity and print configuration handed to the
// assembler.
type Business struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	TaxID          string `json:"rnc"`
	Email          string `json:"email"`
	CurrencySymbol string `json:"currencySymbol"`
	Locale         string `json:"locale"`
	TimeZone       string `json:"timeZone"`
	Footer         string `json:"footer"`
	PaperWidth     int    `json:"paperWidth"`
}

// DefaultBusiness returns the Dominican defaults used when nothing is configured.
func DefaultBusiness() Business {
	return Business{
		Name:           "Colmado",
		CurrencySymbol: "RD$",
		Locale:         "es-DO",
		TimeZone:       "America/Santo_Domingo",
		Footer:         "¡Gracias por su compra!",
		PaperWidth:     32,
	}
}

// InvoicePayload is the body of the invoice creation request.
type InvoicePayload struct {
	Customer       PayloadCustomer `json:"customer"`
	IsCredit       bool            `json:"isCredit"`
	ClienteID      *string         `json:"clienteId"`
	Items          []PayloadItem   `json:"items"`
	PaymentMethod  string          `json:"paymentMethod"`
	PaymentDetails PaymentDetails  `json:"paymentDetails"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
	Date           time.Time       `json:"date"`
}

// PayloadCustomer is the buyer block of the payload.
type PayloadCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// PayloadItem is the projection of a cart line sent to the server.
// Quantity is the unit count, or the measured weight for weighed items.
type PayloadItem struct {
	Product       string          `json:"product"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Name          string          `json:"name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	WeightInfo    *WeightInfo     `json:"weightInfo,omitempty"`
	IsFullPackage bool            `json:"isFullPackage,omitempty"`
}

// WeightInfo describes a weighed item.
type WeightInfo struct {
	Value        decimal.Decimal `json:"value"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

// ExpectedSubtotal recomputes what the item subtotal must be.
func (it PayloadItem) ExpectedSubtotal() decimal.Decimal {
	if it.WeightInfo != nil {
		if it.IsFullPackage {
			return it.Price
		}
		return it.WeightInfo.Value.Mul(it.WeightInfo.PricePerUnit)
	}
	return it.Quantity.Mul(it.Price)
}

type amountField struct {
	name  string
	value *decimal.Decimal
}

// CheckBounds rejects any amount too large or too precise to compute with.
// It runs before any arithmetic on a payload received from outside.
func (p *InvoicePayload) CheckBounds() error {
	fields := []amountField{
		{"subtotal", &p.Subtotal},
		{"taxAmount", &p.TaxAmount},
		{"total", &p.Total},
		{"paymentDetails.received", p.PaymentDetails.Received},
		{"paymentDetails.change", p.PaymentDetails.Change},
		{"paymentDetails.transferAmount", p.PaymentDetails.TransferAmount},
	}
	for i := range p.Items {
		it := &p.Items[i]
		prefix := fmt.Sprintf("items[%d].", i)
		fields = append(fields,
			amountField{prefix + "quantity", &it.Quantity},
			amountField{prefix + "price", &it.Price},
			amountField{prefix + "subtotal", &it.Subtotal},
		)
		if it.WeightInfo != nil {
			fields = append(fields,
				amountField{prefix + "weightInfo.value", &it.WeightInfo.Value},
				amountField{prefix + "weightInfo.pricePerUnit", &it.WeightInfo.PricePerUnit},
			)
		}
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := CheckAmount(f.name, *f.value); err != nil {
			return err
		}
	}
	return nil
}

// PrintView is the receipt/preview view model: the payload numbers
// formatted for display.
type PrintView struct {
	Business      Business    `json:"business"`
	ReceiptNumber string      `json:"receiptNumber"`
	IssuedAt      string      `json:"issuedAt"`
	CustomerName  string      `json:"customerName"`
	Items         []PrintItem `json:"items"`
	Rounding      string      `json:"rounding,omitempty"`
	Subtotal      string      `json:"subtotal"`
	Tax           string      `json:"tax"`
	Total         string      `json:"total"`
	PaymentLabel  string      `json:"paymentLabel"`
	Received      string      `json:"received,omitempty"`
	Change        string      `json:"change,omitempty"`
	Reference     string      `json:"reference,omitempty"`
	IsCredit      bool        `json:"isCredit"`
	Footer        string      `json:"footer"`
}

// PrintItem is one formatted receipt line.
type PrintItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

// Assembler turns a session into the invoice payload and payloads into
// print views.
type Assembler struct {
	business Business
	printer  *message.Printer
	loc      *time.Location
}

// NewAssembler validates the locale and time zone of b.
func NewAssembler(b Business) (*Assembler, error) {
	def := DefaultBusiness()
	if b.CurrencySymbol == "" {
		b.CurrencySymbol = def.CurrencySymbol
	}
	if b.Locale == "" {
		b.Locale = def.Locale
	}
	if b.TimeZone == "" {
		b.TimeZone = def.TimeZone
	}
	if b.PaperWidth <= 0 {
		b.PaperWidth = def.PaperWidth
	}
	tag, err := language.Parse(b.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", b.Locale, err)
	}
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", b.TimeZone, err)
	}
	return &Assembler{business: b, printer: message.NewPrinter(tag), loc: loc}, nil
}

// Business returns the configuration the assembler prints with.
func (a *Assembler) Business() Business {
	return a.business
}

// Submission validates the session and builds its payload. Payment fields
// come only from the active variant.
func (a *Assembler) Submission(s *Session, now time.Time) (InvoicePayload, error) {
	if s.Cart.IsEmpty() {
		return InvoicePayload{}, ErrEmptyCart
	}
	payment := s.Payment.Active()
	if payment == nil {
		return InvoicePayload{}, ErrNoPaymentMethod
	}
	totals := s.Totals().Rounded()
	if err := payment.Validate(totals.Total); err != nil {
		return InvoicePayload{}, err
	}

	payload := InvoicePayload{
		Customer:       PayloadCustomer{Name: DefaultCustomerName},
		PaymentMethod:  payment.WireMethod(),
		PaymentDetails: payment.details(totals.Total),
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.Tax,
		Total:          totals.Total,
		Date:           now.UTC(),
		Items:          make([]PayloadItem, 0, len(s.Cart.Lines)),
	}
	if s.Customer != nil && s.Customer.Name != "" {
		payload.Customer = PayloadCustomer{
			Name:    s.Customer.Name,
			Email:   s.Customer.Email,
			Phone:   s.Customer.Phone,
			Address: s.Customer.Address,
		}
	}
	if credit, ok := payment.(Credit); ok {
		id := credit.CustomerID
		payload.IsCredit = true
		payload.ClienteID = &id
		if s.Customer == nil || s.Customer.ID != credit.CustomerID {
			payload.Customer = PayloadCustomer{Name: credit.CustomerName}
		}
	}

	for _, l := range s.Cart.Lines {
		item := PayloadItem{
			Product:  l.ProductID,
			Name:     l.Name,
			Price:    l.UnitPrice,
			Quantity: decimal.NewFromInt(int64(l.Quantity)),
			Subtotal: Round2(l.Total()),
		}
		if l.Weight != nil {
			item.Quantity = l.Weight.Value
			item.WeightInfo = &WeightInfo{
				Value:        l.Weight.Value,
				Unit:         l.Weight.Unit,
				PricePerUnit: l.Weight.PricePerUnit,
			}
			if l.IsFullPackage {
				item.IsFullPackage = true
				item.Price = l.PackagePrice
			}
		}
		payload.Items = append(payload.Items, item)
	}
	return payload, nil
}

// Money formats an amount with the currency symbol, e.g. RD$1,234.50.
func (a *Assembler) Money(d decimal.Decimal) string {
	return a.business.CurrencySymbol + a.printer.Sprintf("%.2f", Round2(d).InexactFloat64())
}

// Preview renders the print view of a payload.
func (a *Assembler) Preview(p InvoicePayload, receiptNumber string, issuedAt time.Time) PrintView {
	view := PrintView{
		Business:      a.business,
		ReceiptNumber: receiptNumber,
		IssuedAt:      a.FormatDate(issuedAt),
		CustomerName:  p.Customer.Name,
		Subtotal:      a.Money(p.Subtotal),
		Tax:           a.Money(p.TaxAmount),
		Total:         a.Money(p.Total),
		PaymentLabel:  paymentLabel(p.PaymentMethod),
		IsCredit:      p.IsCredit,
		Footer:        a.business.Footer,
	}
	if view.CustomerName == "" {
		view.CustomerName = DefaultCustomerName
	}
	d := p.PaymentDetails
	if !p.IsCredit && d.Received != nil {
		view.Received = a.Money(*d.Received)
	}
	if !p.IsCredit && d.Change != nil {
		view.Change = a.Money(*d.Change)
	}
	switch {
	case d.AuthorizationCode != "":
		view.Reference = strings.TrimSpace(d.CardNumber + " Aut. " + d.AuthorizationCode)
	case d.TransactionID != "":
		view.Reference = "Ref. " + d.TransactionID
	}

	lines := decimal.Zero
	for _, it := range p.Items {
		pi := PrintItem{
			Name:  it.Name,
			Price: a.Money(it.Price),
			Total: a.Money(it.Subtotal),
		}
		if it.WeightInfo != nil {
			pi.Quantity = a.printer.Sprintf("%.3f %s", it.WeightInfo.Value.InexactFloat64(), it.WeightInfo.Unit)
			if !it.IsFullPackage {
				pi.Price = a.Money(it.WeightInfo.PricePerUnit) + "/" + it.WeightInfo.Unit
			}
		} else {
			pi.Quantity = it.Quantity.String()
		}
		view.Items = append(view.Items, pi)
		lines = lines.Add(it.Subtotal)
	}
	// line totals are rounded one by one; the difference is printed so the
	// column adds up to the subtotal
	if adj := Round2(p.Subtotal).Sub(lines); !adj.IsZero() {
		view.Rounding = a.SignedMoney(adj)
	}
	return view
}

// SignedMoney is Money with the sign ahead of the symbol, e.g. -RD$0.03.
func (a *Assembler) SignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + a.Money(d.Neg())
	}
	return a.Money(d)
}

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDate renders t in the store time zone, e.g. "14 de octubre de 2026, 15:04".
func (a *Assembler) FormatDate(t time.Time) string {
	lt := t.In(a.loc)
	return fmt.Sprintf("%d de %s de %d, %s", lt.Day(), monthsES[lt.Month()-1], lt.Year(), lt.Format("15:04"))
}

func paymentLabel(wire string) string {
	switch wire {
	case WireCash:
		return "Efectivo"
	case WireCard:
		return "Tarjeta"
	case WireBankTransfer:
		return "Transferencia"
	case WireCredit:
		return "Crédito (fiado)"
	}
	return wire
}
