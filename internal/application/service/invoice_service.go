package service

import (
	"context"
	"errors"
	"fmt"
	"log"
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
)

// Largest accepted gap between a client amount and the server recomputation
var amountTolerance = decimal.New(1, -2)

// InvoiceService creates and reads invoices
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	settings    *SettingsService
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	settings *SettingsService,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		settings:    settings,
		now:         time.Now,
	}
}

func closeEnough(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}

// CreateInvoice checks a submitted payload against a server-side
// recomputation and persists the sale. Stock, customer debt and the
// receipt sequence move in the same transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, userID uuid.UUID, p *checkout.InvoicePayload) (*entity.Invoice, error) {
	if err := p.CheckBounds(); err != nil {
		return nil, mapCheckoutError(err)
	}
	method, customerID, err := validatePayment(p)
	if err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := validateAmounts(p); err != nil {
		return nil, err
	}

	assembler, err := s.settings.Assembler(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(assembler.Business().TimeZone)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(p.Customer.Name)
	if name == "" {
		name = checkout.DefaultCustomerName
	}
	d := p.PaymentDetails
	invoice := &entity.Invoice{
		UserID:            userID,
		CustomerID:        customerID,
		CustomerName:      name,
		CustomerEmail:     optional(p.Customer.Email),
		CustomerPhone:     optional(p.Customer.Phone),
		CustomerAddr:      optional(p.Customer.Address),
		IsCredit:          p.IsCredit,
		Status:            enum.InvoiceStatusPaid,
		PaymentMethod:     method,
		Received:          nullable(d.Received),
		Change:            nullable(d.Change),
		CardNumber:        optional(d.CardNumber),
		AuthorizationCode: optional(d.AuthorizationCode),
		TransactionID:     optional(d.TransactionID),
		TransferAmount:    nullable(d.TransferAmount),
		Subtotal:          checkout.Round2(p.Subtotal),
		TaxAmount:         checkout.Round2(p.TaxAmount),
		Total:             checkout.Round2(p.Total),
		IssuedAt:          s.now().In(loc),
		Items:             items,
	}
	if p.IsCredit {
		invoice.Status = enum.InvoiceStatusPending
	}

	if err := s.invoiceRepo.CreateSale(ctx, invoice); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreditLimitExceeded):
			return nil, apperror.ErrCreditLimit
		case errors.Is(err, repository.ErrCustomerMissing):
			return nil, apperror.NewFieldError("clienteId", "Cliente no encontrado")
		}
		return nil, mapStockError(err)
	}

	log.Printf("[invoice] %s created: %s %s by %s", invoice.ReceiptNumber, invoice.PaymentMethod, invoice.Total, userID)
	return s.GetInvoice(ctx, invoice.ID)
}

// validatePayment checks the method against the credit flag and the
// payment detail keys that may accompany it
func validatePayment(p *checkout.InvoicePayload) (enum.PaymentMethod, *uuid.UUID, error) {
	method, err := enum.ParsePaymentMethod(p.PaymentMethod)
	if err != nil {
		return "", nil, mapCheckoutError(checkout.ErrUnknownPaymentMethod)
	}
	d := p.PaymentDetails
	total := checkout.Round2(p.Total)

	if p.IsCredit != (method == enum.PaymentMethodCredit) {
		return "", nil, apperror.NewFieldError("isCredit", "isCredit no corresponde al método de pago")
	}
	if !p.IsCredit {
		if p.ClienteID != nil {
			return "", nil, apperror.NewFieldError("clienteId", "Solo las ventas a crédito llevan cliente de crédito")
		}
	}

	switch method {
	case enum.PaymentMethodCredit:
		if d.Received != nil || d.Change != nil {
			return "", nil, apperror.NewFieldError("paymentDetails", "Una venta a crédito no lleva monto recibido ni devuelta")
		}
		if p.ClienteID == nil || *p.ClienteID == "" {
			return "", nil, mapCheckoutError(checkout.ErrCustomerRequired)
		}
		id, err := uuid.Parse(*p.ClienteID)
		if err != nil {
			return "", nil, apperror.NewFieldError("clienteId", "Cliente inválido")
		}
		return method, &id, nil

	case enum.PaymentMethodCash:
		if d.Received == nil || d.Received.LessThan(total) {
			return "", nil, mapCheckoutError(checkout.ErrInsufficientCash)
		}
		change := d.Received.Sub(total)
		if d.Change == nil || !closeEnough(*d.Change, change) {
			return "", nil, apperror.NewFieldError("change", "La devuelta no corresponde al monto recibido")
		}

	case enum.PaymentMethodCard:
		if strings.TrimSpace(d.AuthorizationCode) == "" {
			return "", nil, mapCheckoutError(checkout.ErrCardNotAuthorized)
		}

	case enum.PaymentMethodBankTransfer:
		if strings.TrimSpace(d.TransactionID) == "" {
			return "", nil, mapCheckoutError(checkout.ErrTransferReferenceRequired)
		}
		if d.TransferAmount == nil || d.TransferAmount.LessThan(total) {
			return "", nil, mapCheckoutError(checkout.ErrTransferInsufficient)
		}
	}
	return method, nil, nil
}

// buildItems resolves the products and re-checks every item subtotal
func (s *InvoiceService) buildItems(ctx context.Context, p *checkout.InvoicePayload) ([]entity.InvoiceItem, error) {
	if len(p.Items) == 0 {
		return nil, mapCheckoutError(checkout.ErrEmptyCart)
	}

	ids := make([]uuid.UUID, 0, len(p.Items))
	for i, it := range p.Items {
		id, err := uuid.Parse(it.Product)
		if err != nil {
			return nil, apperror.NewFieldError(fmt.Sprintf("items[%d].product", i), "Producto inválido")
		}
		ids = append(ids, id)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]entity.InvoiceItem, 0, len(p.Items))
	for i, it := range p.Items {
		field := fmt.Sprintf("items[%d]", i)
		product, ok := byID[ids[i]]
		if !ok {
			return nil, apperror.NewFieldError(field+".product", "Producto no encontrado")
		}
		if !it.Quantity.IsPositive() {
			return nil, apperror.NewFieldError(field+".quantity", "La cantidad debe ser mayor que cero")
		}
		if (it.WeightInfo != nil) != product.SoldByWeight {
			return nil, apperror.NewFieldError(field+".weightInfo", "El producto "+product.Name+" no coincide con su modo de venta")
		}
		if !closeEnough(it.Subtotal, it.ExpectedSubtotal()) {
			return nil, apperror.NewFieldError(field+".subtotal", "El subtotal del artículo no corresponde")
		}

		item := entity.InvoiceItem{
			ProductID: product.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     checkout.Round2(it.Price),
			Subtotal:  checkout.Round2(it.Subtotal),
		}
		if item.Name == "" {
			item.Name = product.Name
		}
		if w := it.WeightInfo; w != nil {
			unit := w.Unit
			item.Quantity = w.Value
			item.WeightUnit = &unit
			item.PricePerUnit = decimal.NewNullDecimal(w.PricePerUnit)
			item.IsFullPackage = it.IsFullPackage
		}
		items = append(items, item)
	}
	return items, nil
}

// validateAmounts recomputes subtotal, tax and total from the items
func validateAmounts(p *checkout.InvoicePayload) error {
	subtotal := decimal.Zero
	for _, it := range p.Items {
		subtotal = subtotal.Add(it.ExpectedSubtotal())
	}
	if !closeEnough(p.Subtotal, subtotal) {
		return apperror.NewFieldError("subtotal", "El subtotal no corresponde a los artículos")
	}
	// tax is either off or exactly the flat rate
	if !p.TaxAmount.IsZero() && !closeEnough(p.TaxAmount, checkout.Round2(subtotal.Mul(checkout.TaxRate))) {
		return apperror.NewFieldError("taxAmount", "El ITBIS no corresponde al subtotal")
	}
	if !closeEnough(p.Total, p.Subtotal.Add(p.TaxAmount)) {
		return apperror.NewFieldError("total", "El total no corresponde")
	}
	return nil
}

// GetInvoice returns an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Factura")
	}
	return invoice, nil
}

// GetByReceiptNumber finds an invoice by its FAC number
func (s *InvoiceService) GetByReceiptNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByReceiptNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Factura")
	}
	return invoice, nil
}

// ListInvoices returns a page of invoices, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	if params.From != nil {
		from := params.From.UTC()
		params.From = &from
	}
	if params.To != nil {
		to := params.To.UTC()
		params.To = &to
	}
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(invoices, params.Pagination, total), nil
}

// SalesSummary totals the non-void sales of [from, to) per payment method
type SalesSummary struct {
	From     time.Time                  `json:"from"`
	To       time.Time                  `json:"to"`
	Count    int64                      `json:"count"`
	Total    decimal.Decimal            `json:"total"`
	ByMethod []repository.MethodSummary `json:"by_method"`
}

// SalesSummary aggregates sales of a period
func (s *InvoiceService) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	if !to.After(from) {
		return nil, apperror.NewBadRequestError("El rango de fechas es inválido")
	}
	rows, err := s.invoiceRepo.SummaryByMethod(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	summary := &SalesSummary{From: from, To: to, Total: decimal.Zero, ByMethod: rows}
	if summary.ByMethod == nil {
		summary.ByMethod = []repository.MethodSummary{}
	}
	for _, r := range rows {
		summary.Count += r.Count
		summary.Total = summary.Total.Add(r.Total)
	}
	return summary, nil
}

// DailySummary is SalesSummary for the store-local calendar day holding day
func (s *InvoiceService) DailySummary(ctx context.Context, day time.Time) (*SalesSummary, error) {
	assembler, err := s.settings.Assembler(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(assembler.Business().TimeZone)
	if err != nil {
		return nil, err
	}
	local := day.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return s.SalesSummary(ctx, from, from.AddDate(0, 0, 1))
}

// VoidInvoice cancels a sale, restocking its items and reversing the credit
func (s *InvoiceService) VoidInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.Void(ctx, id)
	if errors.Is(err, repository.ErrInvoiceVoided) {
		return nil, apperror.NewConflictError("La factura ya fue anulada")
	}
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Factura")
	}
	log.Printf("[invoice] %s voided", invoice.ReceiptNumber)
	return s.GetInvoice(ctx, id)
}

// Receipt builds the print view of a stored invoice
func (s *InvoiceService) Receipt(ctx context.Context, id uuid.UUID) (*checkout.PrintView, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	assembler, err := s.settings.Assembler(ctx)
	if err != nil {
		return nil, err
	}
	view := assembler.Preview(PayloadFromInvoice(invoice), invoice.ReceiptNumber, invoice.IssuedAt)
	return &view, nil
}

// PayloadFromInvoice rebuilds the submission shape of a stored invoice
func PayloadFromInvoice(inv *entity.Invoice) checkout.InvoicePayload {
	p := checkout.InvoicePayload{
		Customer: checkout.PayloadCustomer{
			Name:    inv.CustomerName,
			Email:   deref(inv.CustomerEmail),
			Phone:   deref(inv.CustomerPhone),
			Address: deref(inv.CustomerAddr),
		},
		IsCredit:      inv.IsCredit,
		PaymentMethod: inv.PaymentMethod.String(),
		PaymentDetails: checkout.PaymentDetails{
			Received:          fromNullable(inv.Received),
			Change:            fromNullable(inv.Change),
			CardNumber:        deref(inv.CardNumber),
			AuthorizationCode: deref(inv.AuthorizationCode),
			TransactionID:     deref(inv.TransactionID),
			TransferAmount:    fromNullable(inv.TransferAmount),
		},
		Subtotal:  inv.Subtotal,
		TaxAmount: inv.TaxAmount,
		Total:     inv.Total,
		Date:      inv.IssuedAt,
		Items:     make([]checkout.PayloadItem, 0, len(inv.Items)),
	}
	if inv.CustomerID != nil {
		id := inv.CustomerID.String()
		p.ClienteID = &id
		if inv.IsCredit {
			p.PaymentDetails.ClientID = id
			p.PaymentDetails.ClientName = inv.CustomerName
		}
	}
	for _, it := range inv.Items {
		item := checkout.PayloadItem{
			Product:       it.ProductID.String(),
			Name:          it.Name,
			Quantity:      it.Quantity,
			Price:         it.Price,
			Subtotal:      it.Subtotal,
			IsFullPackage: it.IsFullPackage,
		}
		if it.IsWeighted() {
			item.WeightInfo = &checkout.WeightInfo{
				Value:        it.Quantity,
				Unit:         *it.WeightUnit,
				PricePerUnit: it.PricePerUnit.Decimal,
			}
		}
		p.Items = append(p.Items, item)
	}
	return p
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(checkout.Round2(*d))
}

func fromNullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
