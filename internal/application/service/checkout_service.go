package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CheckoutService drives an open sale held on the server. Every mutation
// loads the session, applies the change and stores it back; a failed change
// leaves the stored session as it was.
type CheckoutService struct {
	sessions  repository.SessionRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	invoices  *InvoiceService
	settings  *SettingsService
	terminal  checkout.Terminal
	locks     sync.Map // session id -> *sync.Mutex
	now       func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	sessions repository.SessionRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	invoices *InvoiceService,
	settings *SettingsService,
	terminal checkout.Terminal,
) *CheckoutService {
	return &CheckoutService{
		sessions:  sessions,
		products:  products,
		customers: customers,
		invoices:  invoices,
		settings:  settings,
		terminal:  terminal,
		now:       time.Now,
	}
}

// CheckoutView is a session with its derived amounts
type CheckoutView struct {
	Session   *checkout.Session `json:"session"`
	Totals    checkout.Totals   `json:"totals"`
	AmountDue decimal.Decimal   `json:"amountDue"`
	CanSubmit bool              `json:"canSubmit"`
}

func newCheckoutView(s *checkout.Session) *CheckoutView {
	return &CheckoutView{
		Session:   s,
		Totals:    s.Totals().Rounded(),
		AmountDue: s.AmountDue(),
		CanSubmit: s.CanSubmit(),
	}
}

// CreateSession opens an empty sale for userID
func (s *CheckoutService) CreateSession(ctx context.Context, userID uuid.UUID) (*CheckoutView, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	sess := checkout.NewSession(uuid.NewString(), userID.String(), s.now().UTC())
	sess.ApplyTax = settings.ApplyTax
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return newCheckoutView(sess), nil
}

// GetSession returns a session owned by userID
func (s *CheckoutService) GetSession(ctx context.Context, userID uuid.UUID, id string) (*CheckoutView, error) {
	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return newCheckoutView(sess), nil
}

func (s *CheckoutService) load(ctx context.Context, userID uuid.UUID, id string) (*checkout.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		// expired in the store; drop its lock with it
		s.locks.Delete(id)
		return nil, apperror.NewNotFoundError("Venta")
	}
	// sessions of other cashiers are invisible
	if sess.UserID != userID.String() {
		return nil, apperror.NewNotFoundError("Venta")
	}
	return sess, nil
}

func (s *CheckoutService) lock(id string) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// mutate applies fn to the stored session and saves it when fn succeeds
func (s *CheckoutService) mutate(ctx context.Context, userID uuid.UUID, id string, fn func(*checkout.Session) error) (*CheckoutView, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, mapCheckoutError(err)
	}
	sess.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return newCheckoutView(sess), nil
}

// AddLineInput identifies a product by id or barcode. Quantity applies to
// unit products, Weight to weighed ones.
type AddLineInput struct {
	ProductID     *uuid.UUID
	Code          string
	Quantity      int
	Weight        decimal.Decimal
	IsFullPackage bool
}

// AddLine adds a catalog product to the cart
func (s *CheckoutService) AddLine(ctx context.Context, userID uuid.UUID, id string, input *AddLineInput) (*CheckoutView, error) {
	product, err := s.resolveProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		if product.SoldByWeight {
			_, err := sess.Cart.AddWeight(product.ForCart(), input.Weight, input.IsFullPackage)
			return err
		}
		qty := input.Quantity
		if qty == 0 {
			qty = 1
		}
		_, err := sess.Cart.AddUnits(product.ForCart(), qty)
		return err
	})
}

func (s *CheckoutService) resolveProduct(ctx context.Context, input *AddLineInput) (*entity.Product, error) {
	var (
		product *entity.Product
		err     error
	)
	switch {
	case input.ProductID != nil:
		product, err = s.products.GetByID(ctx, *input.ProductID)
	case strings.TrimSpace(input.Code) != "":
		product, err = s.products.GetByCode(ctx, strings.TrimSpace(input.Code))
	default:
		return nil, apperror.NewFieldError("product_id", "Indique el producto o su código")
	}
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Producto")
	}
	if product.Archived {
		return nil, apperror.NewFieldError("product_id", "El producto está archivado")
	}
	return product, nil
}

// UpdateLineInput changes either the unit count or the weight of a line
type UpdateLineInput struct {
	Quantity *int
	Weight   *decimal.Decimal
}

// UpdateLine edits a cart line; a quantity below 1 removes it
func (s *CheckoutService) UpdateLine(ctx context.Context, userID uuid.UUID, id, lineID string, input *UpdateLineInput) (*CheckoutView, error) {
	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		switch {
		case input.Weight != nil:
			return sess.Cart.UpdateWeight(lineID, *input.Weight)
		case input.Quantity != nil:
			return sess.Cart.UpdateQuantity(lineID, *input.Quantity)
		}
		return checkout.ErrInvalidQuantity
	})
}

// RemoveLine deletes a cart line
func (s *CheckoutService) RemoveLine(ctx context.Context, userID uuid.UUID, id, lineID string) (*CheckoutView, error) {
	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		return sess.Cart.Remove(lineID)
	})
}

// SetTax turns ITBIS on or off for the sale
func (s *CheckoutService) SetTax(ctx context.Context, userID uuid.UUID, id string, apply bool) (*CheckoutView, error) {
	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		sess.ApplyTax = apply
		return nil
	})
}

// SetCustomer names the buyer printed on a non-credit invoice
func (s *CheckoutService) SetCustomer(ctx context.Context, userID uuid.UUID, id string, info *checkout.CustomerInfo) (*CheckoutView, error) {
	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		if info == nil || strings.TrimSpace(info.Name) == "" {
			sess.Customer = nil
			return nil
		}
		c := *info
		c.Name = strings.TrimSpace(c.Name)
		sess.Customer = &c
		return nil
	})
}

// SelectPaymentInput picks a method and optionally fills its fields. The
// fields of other methods are ignored.
type SelectPaymentInput struct {
	Method            string
	Received          string
	Last4             string
	HolderName        string
	Expiry            string
	AuthorizationCode string
	ReferenceNumber   string
	TransferAmount    string
	CustomerID        *uuid.UUID
}

// SelectPayment switches the payment method. Whatever was entered for the
// previous method is discarded.
func (s *CheckoutService) SelectPayment(ctx context.Context, userID uuid.UUID, id string, input *SelectPaymentInput) (*CheckoutView, error) {
	method, err := checkout.ParseMethod(input.Method)
	if err != nil {
		return nil, mapCheckoutError(err)
	}
	var customer *entity.Customer
	if method == checkout.MethodCredit && input.CustomerID != nil {
		if customer, err = s.findCustomer(ctx, *input.CustomerID); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		if err := sess.Payment.Select(method); err != nil {
			return err
		}
		switch method {
		case checkout.MethodCash:
			if input.Received != "" {
				return sess.SetCashReceived(input.Received)
			}
		case checkout.MethodCardManual:
			sess.Payment.Set(checkout.Card{
				Mode:              checkout.CardManual,
				Last4:             strings.TrimSpace(input.Last4),
				HolderName:        strings.TrimSpace(input.HolderName),
				Expiry:            strings.TrimSpace(input.Expiry),
				AuthorizationCode: strings.TrimSpace(input.AuthorizationCode),
			})
		case checkout.MethodBankTransfer:
			sess.Payment.Set(checkout.BankTransfer{
				ReferenceNumber: strings.TrimSpace(input.ReferenceNumber),
				TransferAmount:  checkout.ParseAmount(input.TransferAmount),
			})
		case checkout.MethodCredit:
			if customer != nil {
				return sess.SetCreditCustomer(customerInfo(customer))
			}
		}
		return nil
	})
}

// SetCashReceived stores the amount handed over by the buyer
func (s *CheckoutService) SetCashReceived(ctx context.Context, userID uuid.UUID, id, received string) (*CheckoutView, error) {
	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		return sess.SetCashReceived(received)
	})
}

// SetCreditCustomer selects the account a fiado sale is charged to
func (s *CheckoutService) SetCreditCustomer(ctx context.Context, userID uuid.UUID, id string, customerID uuid.UUID) (*CheckoutView, error) {
	customer, err := s.findCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		return sess.SetCreditCustomer(customerInfo(customer))
	})
}

func (s *CheckoutService) findCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Cliente")
	}
	return customer, nil
}

func customerInfo(c *entity.Customer) checkout.CustomerInfo {
	return checkout.CustomerInfo{
		ID:      c.ID.String(),
		Name:    c.Name,
		Email:   deref(c.Email),
		Phone:   c.Phone,
		Address: deref(c.Address),
	}
}

// RunTerminal authorizes the amount due on the card terminal. progress is
// called for every device step and may be nil.
func (s *CheckoutService) RunTerminal(ctx context.Context, userID uuid.UUID, id string, progress func(checkout.TerminalStep)) (*CheckoutView, error) {
	view, err := s.GetSession(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if view.Session.Payment.Method() != checkout.MethodCardTerminal {
		return nil, apperror.NewFieldError("paymentMethod", "El método de pago activo no es tarjeta por terminal")
	}
	if view.Session.Cart.IsEmpty() {
		return nil, mapCheckoutError(checkout.ErrEmptyCart)
	}

	amount := view.AmountDue
	result, err := s.terminal.Authorize(ctx, amount, progress)
	if err != nil {
		return nil, mapCheckoutError(err)
	}
	log.Printf("[checkout] terminal approved %s for session %s", amount, id)

	return s.mutate(ctx, userID, id, func(sess *checkout.Session) error {
		// the authorization only covers the amount it was run for
		if sess.Payment.Method() != checkout.MethodCardTerminal || !sess.AmountDue().Equal(amount) {
			return apperror.NewConflictError("La venta cambió durante la autorización")
		}
		sess.ApplyTerminalResult(result)
		return nil
	})
}

// Preview renders the invoice as it would print, before it is submitted
func (s *CheckoutService) Preview(ctx context.Context, userID uuid.UUID, id string) (*checkout.PrintView, error) {
	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	assembler, err := s.settings.Assembler(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	payload, err := assembler.Submission(sess, now)
	if err != nil {
		return nil, mapCheckoutError(err)
	}
	loc, err := time.LoadLocation(assembler.Business().TimeZone)
	if err != nil {
		return nil, err
	}
	// the number is only assigned when the invoice is created
	view := assembler.Preview(payload, checkout.ReceiptPrefix(now.In(loc))+"----", now)
	return &view, nil
}

// Submit assembles the payload and creates the invoice. The session is
// deleted only when the invoice was created.
func (s *CheckoutService) Submit(ctx context.Context, userID uuid.UUID, id string) (*entity.Invoice, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	assembler, err := s.settings.Assembler(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := assembler.Submission(sess, s.now())
	if err != nil {
		return nil, mapCheckoutError(err)
	}
	invoice, err := s.invoices.CreateInvoice(ctx, userID, &payload)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		log.Printf("[checkout] failed to delete submitted session %s: %v", id, err)
	}
	s.locks.Delete(id)
	return invoice, nil
}

// Discard abandons the sale
func (s *CheckoutService) Discard(ctx context.Context, userID uuid.UUID, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.locks.Delete(id)
	return nil
}
