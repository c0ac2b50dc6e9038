package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/pagination"
	"gorm.io/gorm"
)

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *gorm.DB) domainRepo.SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *supplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	var supplier entity.Supplier
	err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &supplier, err
}

func (r *supplierRepository) Update(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Model(supplier).
		Select("name", "email", "phone", "address", "rnc", "type").
		Updates(supplier).Error
}

func (r *supplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Supplier{}, "id = ?", id).Error
}

func (r *supplierRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Supplier, int64, error) {
	var suppliers []entity.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Supplier{}).
		Scopes(SearchScope(search, "name", "phone", "rnc", "email"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(PageScope(params)).
		Order("name ASC").
		Find(&suppliers).Error

	return suppliers, total, err
}

func (r *supplierRepository) RecordTransaction(ctx context.Context, txn *entity.SupplierTransaction) (*entity.Supplier, error) {
	var supplier entity.Supplier
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&entity.Supplier{}).Where("id = ?", txn.SupplierID)
		var result *gorm.DB
		if txn.Type == enum.SupplierTransactionPayment {
			result = query.Where("debt >= ?", txn.Amount).
				Update("debt", gorm.Expr("debt - ?", txn.Amount))
		} else {
			result = query.Update("debt", gorm.Expr("debt + ?", txn.Amount))
		}
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&entity.Supplier{}).Where("id = ?", txn.SupplierID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return domainRepo.ErrPaymentExceedsDebt
		}

		if err := tx.First(&supplier, "id = ?", txn.SupplierID).Error; err != nil {
			return err
		}
		txn.BalanceAfter = supplier.Debt
		return tx.Create(txn).Error
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) Transactions(ctx context.Context, supplierID uuid.UUID, params *pagination.PaginationParams) ([]entity.SupplierTransaction, int64, error) {
	var txns []entity.SupplierTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SupplierTransaction{}).
		Where("supplier_id = ?", supplierID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(PageScope(params)).
		Order("date DESC, created_at DESC").
		Find(&txns).Error
	return txns, total, err
}
