package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest represents the customer fields for create and update.
// Credit limit and balance use the names the register sends.
type CustomerRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Phone       string          `json:"phone" binding:"required,max=50"`
	Email       *string         `json:"email" binding:"omitempty,email"`
	TaxID       *string         `json:"tax_id" binding:"omitempty,max=50"`
	Address     *string         `json:"address"`
	CreditLimit decimal.Decimal `json:"credito"`
}

// CustomerPaymentRequest is an abono against a customer's debt
type CustomerPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   *string         `json:"note"`
}

// SettleDebtRequest pays off the whole balance
type SettleDebtRequest struct {
	Note *string `json:"note"`
}

// SupplierRequest represents the supplier fields for create and update
type SupplierRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	RNC     *string `json:"rnc"`
	Type    string  `json:"type" binding:"omitempty,oneof=distributor wholesaler producer"`
}

// SupplierTransactionRequest records a purchase on account or a payment
type SupplierTransactionRequest struct {
	Type        string          `json:"type" binding:"required,oneof=purchase payment"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   *string         `json:"reference"`
	Description *string         `json:"description"`
	Date        *time.Time      `json:"date"`
}

// UpdateCustomerRequest is a partial customer update; the debt is not editable
type UpdateCustomerRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Phone       *string          `json:"phone" binding:"omitempty,max=50"`
	Email       *string          `json:"email" binding:"omitempty,email"`
	TaxID       *string          `json:"tax_id" binding:"omitempty,max=50"`
	Address     *string          `json:"address"`
	CreditLimit *decimal.Decimal `json:"credito"`
}
