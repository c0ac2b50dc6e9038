package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrCreditLimitExceeded is returned when a fiado sale would push a
	// customer's debt past their credit limit
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	// ErrPaymentExceedsDebt is returned when a payment is larger than the
	// outstanding balance
	ErrPaymentExceedsDebt = errors.New("payment exceeds outstanding debt")
	// ErrInvoiceVoided is returned when voiding an already voided invoice
	ErrInvoiceVoided = errors.New("invoice already voided")
	// ErrCustomerMissing is returned when a credit sale references an unknown customer
	ErrCustomerMissing = errors.New("customer not found")
)

// InsufficientStockError lists the products that could not be decremented.
type InsufficientStockError struct {
	ProductIDs []uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d product(s)", len(e.ProductIDs))
}
