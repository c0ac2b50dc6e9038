package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/enum"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/apperror"
	"github.com/sangkips/colmado-pos/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierService handles suppliers and the store's debt with them
type SupplierService struct {
	supplierRepo repository.SupplierRepository
	now          func() time.Time
}

// NewSupplierService creates a new supplier service
func NewSupplierService(supplierRepo repository.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo, now: time.Now}
}

// SupplierInput carries supplier fields for create and update
type SupplierInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
	RNC     *string
	Type    enum.SupplierType
}

func (in *SupplierInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.NewFieldError("name", "El nombre es obligatorio")
	}
	if in.Type == "" {
		in.Type = enum.SupplierTypeDistributor
	}
	if !in.Type.Valid() {
		return apperror.NewFieldError("type", "Tipo de suplidor inválido")
	}
	return nil
}

// CreateSupplier creates a supplier with zero debt
func (s *SupplierService) CreateSupplier(ctx context.Context, userID uuid.UUID, input *SupplierInput) (*entity.Supplier, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	supplier := &entity.Supplier{
		UserID:  userID,
		Name:    strings.TrimSpace(input.Name),
		Email:   trimmed(input.Email),
		Phone:   trimmed(input.Phone),
		Address: trimmed(input.Address),
		RNC:     trimmed(input.RNC),
		Type:    input.Type,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// GetSupplier retrieves a supplier by ID
func (s *SupplierService) GetSupplier(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Suplidor")
	}
	return supplier, nil
}

// ListSuppliers returns a page of suppliers
func (s *SupplierService) ListSuppliers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Supplier], error) {
	params.Validate()
	suppliers, total, err := s.supplierRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(suppliers, params, total), nil
}

// UpdateSupplier replaces the contact data of a supplier
func (s *SupplierService) UpdateSupplier(ctx context.Context, id uuid.UUID, input *SupplierInput) (*entity.Supplier, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = strings.TrimSpace(input.Name)
	supplier.Email = trimmed(input.Email)
	supplier.Phone = trimmed(input.Phone)
	supplier.Address = trimmed(input.Address)
	supplier.RNC = trimmed(input.RNC)
	supplier.Type = input.Type
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// DeleteSupplier removes a supplier the store no longer owes
func (s *SupplierService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return err
	}
	if supplier.Debt.IsPositive() {
		return apperror.NewConflictError("Hay deuda pendiente con este suplidor")
	}
	return s.supplierRepo.Delete(ctx, id)
}

// RecordTransactionInput represents a purchase on account or a payment
type RecordTransactionInput struct {
	UserID      uuid.UUID
	SupplierID  uuid.UUID
	Type        enum.SupplierTransactionType
	Amount      decimal.Decimal
	Reference   *string
	Description *string
	Date        *time.Time
}

// RecordTransaction moves the supplier debt: purchases add, payments subtract
func (s *SupplierService) RecordTransaction(ctx context.Context, input *RecordTransactionInput) (*entity.Supplier, *entity.SupplierTransaction, error) {
	if !checkout.InRange(input.Amount) {
		return nil, nil, apperror.NewFieldError("amount", msgOutOfRange)
	}
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, nil, apperror.NewFieldError("amount", "El monto debe ser mayor que cero")
	}
	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}
	txn := &entity.SupplierTransaction{
		SupplierID:  input.SupplierID,
		UserID:      input.UserID,
		Type:        input.Type,
		Amount:      amount,
		Reference:   trimmed(input.Reference),
		Description: trimmed(input.Description),
		Date:        date.UTC(),
	}

	supplier, err := s.supplierRepo.RecordTransaction(ctx, txn)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, apperror.NewNotFoundError("Suplidor")
	case errors.Is(err, repository.ErrPaymentExceedsDebt):
		return nil, nil, apperror.NewFieldError("amount", "El pago excede la deuda con el suplidor")
	case err != nil:
		return nil, nil, err
	}
	return supplier, txn, nil
}

// Transactions lists the transactions of a supplier, newest first
func (s *SupplierService) Transactions(ctx context.Context, supplierID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.SupplierTransaction], error) {
	if _, err := s.GetSupplier(ctx, supplierID); err != nil {
		return nil, err
	}
	params.Validate()
	txns, total, err := s.supplierRepo.Transactions(ctx, supplierID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(txns, params, total), nil
}
