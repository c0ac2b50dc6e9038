package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/enum"
	"github.com/sangkips/colmado-pos/pkg/pagination"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// CreateSale persists a sale in one transaction: stock decrements, the
	// credit charge for fiado invoices, the monthly receipt number and the
	// invoice with its items. Nothing is written if any step fails.
	CreateSale(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByReceiptNumber(ctx context.Context, number string) (*entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// Void restocks the items and reverses the credit charge
	Void(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	SummaryByMethod(ctx context.Context, from, to time.Time) ([]MethodSummary, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination    *pagination.PaginationParams
	From          *time.Time
	To            *time.Time
	CustomerID    *uuid.UUID
	PaymentMethod *enum.PaymentMethod
	CreditOnly    bool
}

// MethodSummary aggregates sales of one payment method
type MethodSummary struct {
	Method enum.PaymentMethod `json:"payment_method"`
	Count  int64              `json:"count"`
	Total  decimal.Decimal    `json:"total"`
}
