package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/shopspring/decimal"
)

// Invoice is a stored sale as returned by the server
type Invoice struct {
	ID             string                   `json:"id"`
	ReceiptNumber  string                   `json:"receiptNumber"`
	Status         string                   `json:"status"`
	Customer       checkout.PayloadCustomer `json:"customer"`
	IsCredit       bool                     `json:"isCredit"`
	ClienteID      *string                  `json:"clienteId"`
	Items          []checkout.PayloadItem   `json:"items"`
	PaymentMethod  string                   `json:"paymentMethod"`
	PaymentDetails checkout.PaymentDetails  `json:"paymentDetails"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	TaxAmount      decimal.Decimal          `json:"taxAmount"`
	Total          decimal.Decimal          `json:"total"`
	Date           time.Time                `json:"date"`
	CreatedAt      time.Time                `json:"createdAt"`
}

// CreateInvoice submits an assembled payload. It is not retried except
// after a token refresh; pass a ctx from WithIdempotencyKey to make a
// manual retry safe.
func (c *Client) CreateInvoice(ctx context.Context, p checkout.InvoicePayload) (*Invoice, error) {
	var out Invoice
	if err := c.do(ctx, http.MethodPost, "/api/v1/invoices", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInvoice fetches an invoice by id or receipt number
func (c *Client) GetInvoice(ctx context.Context, ref string) (*Invoice, error) {
	var out Invoice
	if err := c.do(ctx, http.MethodGet, "/api/v1/invoices/"+url.PathEscape(ref), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
