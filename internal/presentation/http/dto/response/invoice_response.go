package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Invoice is the camelCase wire form of a stored invoice, shaped like the
// submission payload plus the server-assigned fields
type Invoice struct {
	ID             uuid.UUID                `json:"id"`
	ReceiptNumber  string                   `json:"receiptNumber"`
	Status         string                   `json:"status"`
	Customer       checkout.PayloadCustomer `json:"customer"`
	IsCredit       bool                     `json:"isCredit"`
	ClienteID      *uuid.UUID               `json:"clienteId"`
	Items          []checkout.PayloadItem   `json:"items"`
	PaymentMethod  string                   `json:"paymentMethod"`
	PaymentDetails checkout.PaymentDetails  `json:"paymentDetails"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	TaxAmount      decimal.Decimal          `json:"taxAmount"`
	Total          decimal.Decimal          `json:"total"`
	Date           time.Time                `json:"date"`
	CreatedAt      time.Time                `json:"createdAt"`
}

// NewInvoice converts an invoice and its rebuilt payload
func NewInvoice(inv *entity.Invoice, p checkout.InvoicePayload) Invoice {
	return Invoice{
		ID:             inv.ID,
		ReceiptNumber:  inv.ReceiptNumber,
		Status:         inv.Status.String(),
		Customer:       p.Customer,
		IsCredit:       inv.IsCredit,
		ClienteID:      inv.CustomerID,
		Items:          p.Items,
		PaymentMethod:  p.PaymentMethod,
		PaymentDetails: p.PaymentDetails,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		Total:          inv.Total,
		Date:           inv.IssuedAt,
		CreatedAt:      inv.CreatedAt,
	}
}
