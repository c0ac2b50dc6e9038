package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/apperror"
	"github.com/sangkips/colmado-pos/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerService handles customers and their fiado accounts
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	UserID      uuid.UUID
	Name        string
	Phone       string
	Email       *string
	TaxID       *string
	Address     *string
	CreditLimit decimal.Decimal
}

// CreateCustomer creates a new customer. Name and phone are required; the
// created customer is returned so the register can select it right away.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)

	var fieldErrors []apperror.FieldError
	if name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "El nombre es obligatorio"})
	}
	if phone == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "phone", Message: "El teléfono es obligatorio"})
	}
	if input.CreditLimit.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "credito", Message: "El límite de crédito no puede ser negativo"})
	} else if !checkout.InRange(input.CreditLimit) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "credito", Message: msgOutOfRange})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	existing, err := s.customerRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Ya existe un cliente con ese teléfono")
	}

	customer := &entity.Customer{
		UserID:      input.UserID,
		Name:        name,
		Phone:       phone,
		Email:       trimmed(input.Email),
		TaxID:       trimmed(input.TaxID),
		Address:     trimmed(input.Address),
		CreditLimit: input.CreditLimit.Round(2),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Cliente")
	}
	return customer, nil
}

// ListCustomers returns a page of customers
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(customers, params, total), nil
}

// SearchCustomers matches name, phone or tax id partially. An empty query
// returns nothing.
func (s *CustomerService) SearchCustomers(ctx context.Context, query string, limit int) ([]entity.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Customer{}, nil
	}
	customers, err := s.customerRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []entity.Customer{}
	}
	return customers, nil
}

// ListAllCustomers returns every customer, used by clients as the search fallback
func (s *CustomerService) ListAllCustomers(ctx context.Context) ([]entity.Customer, error) {
	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []entity.Customer{}
	}
	return customers, nil
}

// UpdateCustomerInput represents the update customer input; nil fields are kept
type UpdateCustomerInput struct {
	ID          uuid.UUID
	Name        *string
	Phone       *string
	Email       *string
	TaxID       *string
	Address     *string
	CreditLimit *decimal.Decimal
}

// UpdateCustomer updates contact data and the credit limit. The debt is
// never edited directly.
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperror.NewFieldError("name", "El nombre es obligatorio")
		}
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, apperror.NewFieldError("phone", "El teléfono es obligatorio")
		}
		if phone != customer.Phone {
			other, err := s.customerRepo.GetByPhone(ctx, phone)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != customer.ID {
				return nil, apperror.NewConflictError("Ya existe un cliente con ese teléfono")
			}
		}
		customer.Phone = phone
	}
	if input.Email != nil {
		customer.Email = trimmed(input.Email)
	}
	if input.TaxID != nil {
		customer.TaxID = trimmed(input.TaxID)
	}
	if input.Address != nil {
		customer.Address = trimmed(input.Address)
	}
	if input.CreditLimit != nil {
		if input.CreditLimit.IsNegative() {
			return nil, apperror.NewFieldError("credito", "El límite de crédito no puede ser negativo")
		}
		if !checkout.InRange(*input.CreditLimit) {
			return nil, apperror.NewFieldError("credito", msgOutOfRange)
		}
		customer.CreditLimit = input.CreditLimit.Round(2)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer removes a customer without outstanding debt
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if customer.Debt.IsPositive() {
		return apperror.NewConflictError("El cliente tiene cuentas pendientes")
	}
	return s.customerRepo.Delete(ctx, id)
}

// Stats summarizes the customer book
func (s *CustomerService) Stats(ctx context.Context) (*repository.CustomerStats, error) {
	return s.customerRepo.Stats(ctx)
}

// Debtors returns customers that owe money, highest balance first
func (s *CustomerService) Debtors(ctx context.Context) ([]entity.Customer, error) {
	customers, err := s.customerRepo.Debtors(ctx)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []entity.Customer{}
	}
	return customers, nil
}

// SettleDebt pays off the whole balance of a customer
func (s *CustomerService) SettleDebt(ctx context.Context, userID, customerID uuid.UUID, note *string) (*entity.Customer, *entity.CustomerPayment, error) {
	customer, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if !customer.Debt.IsPositive() {
		return nil, nil, apperror.NewBadRequestError("El cliente no tiene cuentas pendientes")
	}
	payment := &entity.CustomerPayment{
		CustomerID: customerID,
		UserID:     userID,
		Kind:       entity.PaymentKindSettle,
		Note:       trimmed(note),
	}
	return s.applyPayment(ctx, payment)
}

// ApplyPartialPayment records an abono of 0 < amount <= debt
func (s *CustomerService) ApplyPartialPayment(ctx context.Context, userID, customerID uuid.UUID, amount decimal.Decimal, note *string) (*entity.Customer, *entity.CustomerPayment, error) {
	customer, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if !checkout.InRange(amount) {
		return nil, nil, apperror.NewFieldError("amount", msgOutOfRange)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, nil, apperror.NewFieldError("amount", "El monto debe ser mayor que cero")
	}
	if amount.GreaterThan(customer.Debt) {
		return nil, nil, apperror.NewFieldError("amount", "El monto excede las cuentas pendientes")
	}
	payment := &entity.CustomerPayment{
		CustomerID: customerID,
		UserID:     userID,
		Kind:       entity.PaymentKindPartial,
		Amount:     amount,
		Note:       trimmed(note),
	}
	return s.applyPayment(ctx, payment)
}

func (s *CustomerService) applyPayment(ctx context.Context, payment *entity.CustomerPayment) (*entity.Customer, *entity.CustomerPayment, error) {
	customer, err := s.customerRepo.ApplyPayment(ctx, payment)
	switch {
	case errors.Is(err, repository.ErrPaymentExceedsDebt):
		// balance moved under us
		return nil, nil, apperror.NewFieldError("amount", "El monto excede las cuentas pendientes")
	case errors.Is(err, repository.ErrCustomerMissing):
		return nil, nil, apperror.NewNotFoundError("Cliente")
	case err != nil:
		return nil, nil, err
	}
	return customer, payment, nil
}

// Payments lists the payments received from a customer, newest first
func (s *CustomerService) Payments(ctx context.Context, customerID uuid.UUID) ([]entity.CustomerPayment, error) {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	payments, err := s.customerRepo.Payments(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []entity.CustomerPayment{}
	}
	return payments, nil
}

// trimmed returns nil for nil or blank strings
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
