package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	// Search matches name, phone or tax id partially, case-insensitive
	Search(ctx context.Context, query string, limit int) ([]entity.Customer, error)
	ListAll(ctx context.Context) ([]entity.Customer, error)
	// Debtors returns customers with a positive balance, highest first
	Debtors(ctx context.Context) ([]entity.Customer, error)
	Stats(ctx context.Context) (*CustomerStats, error)
	// ApplyPayment lowers the customer's debt by payment.Amount and stores the
	// payment with the balances filled in. Settle payments take the whole debt.
	ApplyPayment(ctx context.Context, payment *entity.CustomerPayment) (*entity.Customer, error)
	Payments(ctx context.Context, customerID uuid.UUID) ([]entity.CustomerPayment, error)
}

// CustomerStats summarizes the customer book
type CustomerStats struct {
	TotalCustomers int64           `json:"total_customers"`
	Debtors        int64           `json:"debtors"`
	TotalDebt      decimal.Decimal `json:"total_debt"`
	TotalCredit    decimal.Decimal `json:"total_credit_limit"`
}

// SupplierRepository defines the interface for supplier data operations
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Supplier, int64, error)
	// RecordTransaction stores the transaction and moves the supplier debt in
	// the same database transaction
	RecordTransaction(ctx context.Context, txn *entity.SupplierTransaction) (*entity.Supplier, error)
	Transactions(ctx context.Context, supplierID uuid.UUID, params *pagination.PaginationParams) ([]entity.SupplierTransaction, int64, error)
}
