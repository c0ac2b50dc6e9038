package repository

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

// CreateSale runs every side effect of a sale in a single transaction. The
// receipt number is assigned from the month of invoice.IssuedAt in its own
// location; the timestamp is then stored in UTC.
func (r *invoiceRepository) CreateSale(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decrementStock(tx, invoice.Items); err != nil {
			return err
		}

		if invoice.IsCredit {
			if err := chargeCustomer(tx, invoice.CustomerID, invoice.Total); err != nil {
				return err
			}
		}

		seq, err := nextReceiptNumber(tx, invoice.IssuedAt.Format("200601"))
		if err != nil {
			return err
		}
		invoice.ReceiptNumber = checkout.FormatReceiptNumber(invoice.IssuedAt, seq)
		invoice.IssuedAt = invoice.IssuedAt.UTC()

		return tx.Omit("User", "Customer").Create(invoice).Error
	})
}

// decrementStock takes every product down by the sold quantity, only if
// enough stock is left. Products are updated in id order so concurrent sales
// lock rows in the same order.
func decrementStock(tx *gorm.DB, items []entity.InvoiceItem) error {
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, it := range items {
		totals[it.ProductID] = totals[it.ProductID].Add(it.Quantity)
	}
	ids := make([]uuid.UUID, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	var failed []uuid.UUID
	for _, id := range ids {
		qty := totals[id]
		result := tx.Model(&entity.Product{}).
			Where("id = ? AND stock >= ?", id, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return &domainRepo.InsufficientStockError{ProductIDs: failed}
	}
	return nil
}

// chargeCustomer adds amount to the customer's debt, capped by the credit
// limit when one is set
func chargeCustomer(tx *gorm.DB, customerID *uuid.UUID, amount decimal.Decimal) error {
	if customerID == nil {
		return domainRepo.ErrCustomerMissing
	}
	var customer entity.Customer
	if err := tx.First(&customer, "id = ?", *customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainRepo.ErrCustomerMissing
		}
		return err
	}

	query := tx.Model(&entity.Customer{}).Where("id = ?", customer.ID)
	if customer.HasCreditLimit() {
		query = query.Where("debt + ? <= credit_limit", amount)
	}
	result := query.Update("debt", gorm.Expr("debt + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrCreditLimitExceeded
	}
	return nil
}

// nextReceiptNumber seeds the month's row when missing, then bumps it in a
// single statement so concurrent first sales of a month cannot collide.
func nextReceiptNumber(tx *gorm.DB, period string) (int, error) {
	seq := entity.ReceiptSequence{Period: period}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return 0, err
	}
	result := tx.Model(&seq).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "last_number"}}}).
		Update("last_number", gorm.Expr("last_number + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return seq.LastNumber, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByReceiptNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&invoice, "receipt_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Scopes(DateRangeScope("issued_at", params.From, params.To))
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *params.PaymentMethod)
	}
	if params.CreditOnly {
		query = query.Where("is_credit = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(PageScope(params.Pagination)).
		Order("issued_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) Void(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
			return err
		}
		if invoice.Status == enum.InvoiceStatusVoid {
			return domainRepo.ErrInvoiceVoided
		}

		for _, it := range invoice.Items {
			if err := tx.Model(&entity.Product{}).
				Where("id = ?", it.ProductID).
				Update("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}

		if invoice.IsCredit && invoice.CustomerID != nil {
			if err := tx.Model(&entity.Customer{}).
				Where("id = ?", *invoice.CustomerID).
				Update("debt", gorm.Expr("CASE WHEN debt > ? THEN debt - ? ELSE 0 END", invoice.Total, invoice.Total)).Error; err != nil {
				return err
			}
		}

		invoice.Status = enum.InvoiceStatusVoid
		return tx.Model(&invoice).Update("status", enum.InvoiceStatusVoid).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) SummaryByMethod(ctx context.Context, from, to time.Time) ([]domainRepo.MethodSummary, error) {
	var rows []domainRepo.MethodSummary
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Select("payment_method AS method, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("status <> ?", enum.InvoiceStatusVoid).
		Where("issued_at >= ? AND issued_at < ?", from, to).
		Group("payment_method").
		Order("payment_method").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	return rows, err
}
