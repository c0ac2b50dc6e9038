package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddLineRequest adds a product by id or barcode
type AddLineRequest struct {
	ProductID     *uuid.UUID      `json:"productId"`
	Code          string          `json:"code"`
	Quantity      int             `json:"quantity" binding:"min=0"`
	Weight        decimal.Decimal `json:"weight"`
	IsFullPackage bool            `json:"isFullPackage"`
}

// UpdateLineRequest changes the unit count or the weight of a line
type UpdateLineRequest struct {
	Quantity *int             `json:"quantity"`
	Weight   *decimal.Decimal `json:"weight"`
}

// SetTaxRequest turns ITBIS on or off
type SetTaxRequest struct {
	ApplyTax bool `json:"applyTax"`
}

// SelectPaymentRequest picks a payment method with optional fields.
// Amounts are taken as typed by the cashier.
type SelectPaymentRequest struct {
	Method            string     `json:"method" binding:"required"`
	Received          string     `json:"received"`
	CardLast4         string     `json:"cardLast4"`
	HolderName        string     `json:"holderName"`
	Expiry            string     `json:"expiry"`
	AuthorizationCode string     `json:"authorizationCode"`
	ReferenceNumber   string     `json:"referenceNumber"`
	TransferAmount    string     `json:"transferAmount"`
	CustomerID        *uuid.UUID `json:"customerId"`
}

// CashReceivedRequest stores the cash handed over
type CashReceivedRequest struct {
	Received string `json:"received"`
}

// CreditCustomerRequest selects the fiado account
type CreditCustomerRequest struct {
	CustomerID uuid.UUID `json:"customerId" binding:"required"`
}

// CustomerInfoRequest names the buyer of a non-credit sale
type CustomerInfoRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// SettingsRequest replaces the store identity
type SettingsRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	RNC        string `json:"rnc"`
	Email      string `json:"email" binding:"omitempty,email"`
	Footer     string `json:"footer"`
	PaperWidth int    `json:"paper_width"`
	ApplyTax   bool   `json:"apply_tax"`
}
