package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var customerSearchColumns = []string{"name", "phone", "tax_id", "email"}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).First(&customer, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	// debt only moves through ApplyPayment and sales
	return r.db.WithContext(ctx).Model(customer).
		Select("name", "phone", "email", "tax_id", "address", "credit_limit").
		Updates(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Customer{}, "id = ?", id).Error
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Scopes(SearchScope(search, customerSearchColumns...))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(PageScope(params)).
		Order("name ASC").
		Find(&customers).Error

	return customers, total, err
}

func (r *customerRepository) Search(ctx context.Context, q string, limit int) ([]entity.Customer, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	var customers []entity.Customer
	err := r.db.WithContext(ctx).
		Scopes(SearchScope(q, customerSearchColumns...)).
		Order("name ASC").
		Limit(limit).
		Find(&customers).Error
	return customers, err
}

func (r *customerRepository) ListAll(ctx context.Context) ([]entity.Customer, error) {
	var customers []entity.Customer
	err := r.db.WithContext(ctx).Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepository) Debtors(ctx context.Context) ([]entity.Customer, error) {
	var customers []entity.Customer
	err := r.db.WithContext(ctx).
		Where("debt > 0").
		Order("debt DESC, name ASC").
		Find(&customers).Error
	return customers, err
}

func (r *customerRepository) Stats(ctx context.Context) (*domainRepo.CustomerStats, error) {
	var row struct {
		TotalCustomers int64
		Debtors        int64
		TotalDebt      decimal.Decimal
		TotalCredit    decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Select(`COUNT(*) AS total_customers,
			COALESCE(SUM(CASE WHEN debt > 0 THEN 1 ELSE 0 END), 0) AS debtors,
			COALESCE(SUM(debt), 0) AS total_debt,
			COALESCE(SUM(credit_limit), 0) AS total_credit`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domainRepo.CustomerStats{
		TotalCustomers: row.TotalCustomers,
		Debtors:        row.Debtors,
		TotalDebt:      row.TotalDebt.Round(2),
		TotalCredit:    row.TotalCredit.Round(2),
	}, nil
}

// ApplyPayment decrements the debt with a guarded update so two concurrent
// payments can never take the balance below zero
func (r *customerRepository) ApplyPayment(ctx context.Context, payment *entity.CustomerPayment) (*entity.Customer, error) {
	var updated entity.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer entity.Customer
		if err := tx.First(&customer, "id = ?", payment.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrCustomerMissing
			}
			return err
		}
		if payment.Kind == entity.PaymentKindSettle {
			payment.Amount = customer.Debt
		}
		if payment.Amount.GreaterThan(customer.Debt) {
			return domainRepo.ErrPaymentExceedsDebt
		}

		result := tx.Model(&entity.Customer{}).
			Where("id = ? AND debt >= ?", customer.ID, payment.Amount).
			Update("debt", gorm.Expr("debt - ?", payment.Amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrPaymentExceedsDebt
		}

		payment.BalanceBefore = customer.Debt
		payment.BalanceAfter = customer.Debt.Sub(payment.Amount)
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return tx.First(&updated, "id = ?", customer.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *customerRepository) Payments(ctx context.Context, customerID uuid.UUID) ([]entity.CustomerPayment, error) {
	var payments []entity.CustomerPayment
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
