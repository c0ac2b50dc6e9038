package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/enum"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/internal/infrastructure/database"
	infraRepo "github.com/sangkips/colmado-pos/internal/infrastructure/repository"
	"github.com/sangkips/colmado-pos/internal/infrastructure/session"
	"github.com/sangkips/colmado-pos/pkg/apperror"
	"github.com/sangkips/colmado-pos/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 11:00 in Santo Domingo
var fixedNow = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

type testEnv struct {
	db        *gorm.DB
	user      *entity.User
	customers *CustomerService
	suppliers *SupplierService
	products  *ProductService
	settings  *SettingsService
	invoices  *InvoiceService
	checkout  *CheckoutService
	sessions  *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewSQLiteDB("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	user := &entity.User{Name: "Cajera", Email: "caja@colmado.do", Password: "x", Active: true}
	require.NoError(t, db.Create(user).Error)

	productRepo := infraRepo.NewProductRepository(db)
	customerRepo := infraRepo.NewCustomerRepository(db)

	env := &testEnv{db: db, user: user, sessions: session.NewMemoryStore(time.Hour)}
	env.customers = NewCustomerService(customerRepo)
	env.suppliers = NewSupplierService(infraRepo.NewSupplierRepository(db))
	env.products = NewProductService(productRepo, infraRepo.NewCategoryRepository(db))
	env.settings = NewSettingsService(infraRepo.NewSettingsRepository(db), checkout.DefaultBusiness())
	env.invoices = NewInvoiceService(infraRepo.NewInvoiceRepository(db), productRepo, env.settings)
	env.invoices.now = func() time.Time { return fixedNow }
	env.checkout = NewCheckoutService(env.sessions, productRepo, customerRepo, env.invoices, env.settings, checkout.NewSimulatedTerminal(0))
	env.checkout.now = func() time.Time { return fixedNow }
	return env
}

func (e *testEnv) product(t *testing.T, p entity.Product) *entity.Product {
	t.Helper()
	require.NoError(t, e.db.Create(&p).Error)
	return &p
}

func (e *testEnv) pan(t *testing.T) *entity.Product {
	code := "7460001"
	return e.product(t, entity.Product{Name: "Pan sobao", Code: &code, Price: dec("25"), Stock: dec("10")})
}

func (e *testEnv) queso(t *testing.T) *entity.Product {
	return e.product(t, entity.Product{
		Name: "Queso de freír", SoldByWeight: true, WeightUnit: "lb",
		PricePerUnit: dec("180"), Stock: dec("5"),
	})
}

func (e *testEnv) customer(t *testing.T, limit string) *entity.Customer {
	t.Helper()
	c, err := e.customers.CreateCustomer(context.Background(), &CreateCustomerInput{
		UserID: e.user.ID, Name: "Doña Carmen", Phone: "809-555-0101", CreditLimit: dec(limit),
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) stock(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var p entity.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.Stock
}

func (e *testEnv) debt(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var c entity.Customer
	require.NoError(t, e.db.First(&c, "id = ?", id).Error)
	return c.Debt
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// payload builds a submission the way the register does
func payload(t *testing.T, build func(s *checkout.Session)) *checkout.InvoicePayload {
	t.Helper()
	s := checkout.NewSession("s", "u", fixedNow)
	build(s)
	a, err := checkout.NewAssembler(checkout.DefaultBusiness())
	require.NoError(t, err)
	p, err := a.Submission(s, fixedNow)
	require.NoError(t, err)
	return &p
}

func cashSale(t *testing.T, p *entity.Product, qty int, received string) *checkout.InvoicePayload {
	return payload(t, func(s *checkout.Session) {
		_, err := s.Cart.AddUnits(p.ForCart(), qty)
		require.NoError(t, err)
		require.NoError(t, s.Payment.Select(checkout.MethodCash))
		require.NoError(t, s.SetCashReceived(received))
	})
}

func creditSale(t *testing.T, p *entity.Product, qty int, c *entity.Customer) *checkout.InvoicePayload {
	return payload(t, func(s *checkout.Session) {
		_, err := s.Cart.AddUnits(p.ForCart(), qty)
		require.NoError(t, err)
		require.NoError(t, s.Payment.Select(checkout.MethodCredit))
		require.NoError(t, s.SetCreditCustomer(checkout.CustomerInfo{ID: c.ID.String(), Name: c.Name}))
	})
}

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.Equal(t, code, appErr.Code, err.Error())
	return appErr
}

func TestCreateInvoiceCash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)

	inv, err := env.invoices.CreateInvoice(ctx, env.user.ID, cashSale(t, pan, 3, "100"))
	require.NoError(t, err)

	assert.Equal(t, "FAC-202610-0001", inv.ReceiptNumber)
	assert.Equal(t, checkout.DefaultCustomerName, inv.CustomerName)
	assert.True(t, dec("75").Equal(inv.Subtotal))
	assert.True(t, dec("13.5").Equal(inv.TaxAmount))
	assert.True(t, dec("88.5").Equal(inv.Total))
	assert.True(t, dec("11.5").Equal(inv.Change.Decimal))
	require.Len(t, inv.Items, 1)
	assert.True(t, dec("3").Equal(inv.Items[0].Quantity))
	assert.True(t, dec("7").Equal(env.stock(t, pan.ID)))

	second, err := env.invoices.CreateInvoice(ctx, env.user.ID, cashSale(t, pan, 1, "50"))
	require.NoError(t, err)
	assert.Equal(t, "FAC-202610-0002", second.ReceiptNumber)
}

func TestReceiptNumberRestartsEachMonth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)

	_, err := env.invoices.CreateInvoice(ctx, env.user.ID, cashSale(t, pan, 1, "50"))
	require.NoError(t, err)

	// 2026-11-01 01:00 UTC is still October 31 in Santo Domingo
	env.invoices.now = func() time.Time { return time.Date(2026, 11, 1, 1, 0, 0, 0, time.UTC) }
	inv, err := env.invoices.CreateInvoice(ctx, env.user.ID, cashSale(t, pan, 1, "50"))
	require.NoError(t, err)
	assert.Equal(t, "FAC-202610-0002", inv.ReceiptNumber)

	env.invoices.now = func() time.Time { return time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC) }
	inv, err = env.invoices.CreateInvoice(ctx, env.user.ID, cashSale(t, pan, 1, "50"))
	require.NoError(t, err)
	assert.Equal(t, "FAC-202611-0001", inv.ReceiptNumber)
}

func TestCreateInvoiceWeighed(t *testing.T) {
	env := newTestEnv(t)
	queso := env.queso(t)

	p := payload(t, func(s *checkout.Session) {
		_, err := s.Cart.AddWeight(queso.ForCart(), dec("0.75"), false)
		require.NoError(t, err)
		require.NoError(t, s.Payment.Select(checkout.MethodCash))
		require.NoError(t, s.SetCashReceived("200"))
	})
	inv, err := env.invoices.CreateInvoice(context.Background(), env.user.ID, p)
	require.NoError(t, err)

	require.Len(t, inv.Items, 1)
	item := inv.Items[0]
	require.True(t, item.IsWeighted())
	assert.Equal(t, "lb", *item.WeightUnit)
	assert.True(t, dec("135").Equal(item.Subtotal))
	assert.True(t, dec("4.25").Equal(env.stock(t, queso.ID)))
}

func TestCreateInvoiceRejectsTamperedAmounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)

	p := cashSale(t, pan, 2, "100")
	p.Items[0].Subtotal = dec("40")
	appErr := requireAppError(t, func() error { _, err := env.invoices.CreateInvoice(ctx, env.user.ID, p); return err }(), http.StatusUnprocessableEntity)
	assert.Equal(t, "items[0].subtotal", appErr.Errors[0].Field)

	p = cashSale(t, pan, 2, "100")
	p.TaxAmount = dec("5")
	p.Total = p.Subtotal.Add(p.TaxAmount)
	_, err := env.invoices.CreateInvoice(ctx, env.user.ID, p)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	p = cashSale(t, pan, 2, "100")
	p.Total = dec("10")
	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, p)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	assert.True(t, dec("10").Equal(env.stock(t, pan.ID)))
}

func TestCreateInvoiceRejectsOutOfRangeAmounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)

	p := cashSale(t, pan, 1, "50")
	p.Total = decimal.New(1, 50000000)
	appErr := requireAppError(t, func() error { _, err := env.invoices.CreateInvoice(ctx, env.user.ID, p); return err }(), http.StatusUnprocessableEntity)
	assert.Equal(t, "total", appErr.Errors[0].Field)

	p = cashSale(t, pan, 1, "50")
	huge := decimal.New(1, 50000000)
	p.PaymentDetails.Received = &huge
	appErr = requireAppError(t, func() error { _, err := env.invoices.CreateInvoice(ctx, env.user.ID, p); return err }(), http.StatusUnprocessableEntity)
	assert.Equal(t, "paymentDetails.received", appErr.Errors[0].Field)

	p = cashSale(t, pan, 1, "50")
	p.Items[0].Quantity = dec("1.00001")
	appErr = requireAppError(t, func() error { _, err := env.invoices.CreateInvoice(ctx, env.user.ID, p); return err }(), http.StatusUnprocessableEntity)
	assert.Equal(t, "items[0].quantity", appErr.Errors[0].Field)

	assert.True(t, dec("10").Equal(env.stock(t, pan.ID)))
}

func TestCreateInvoiceTaxOff(t *testing.T) {
	env := newTestEnv(t)
	pan := env.pan(t)

	p := payload(t, func(s *checkout.Session) {
		s.ApplyTax = false
		_, err := s.Cart.AddUnits(pan.ForCart(), 2)
		require.NoError(t, err)
		require.NoError(t, s.Payment.Select(checkout.MethodCash))
		require.NoError(t, s.SetCashReceived("50"))
	})
	inv, err := env.invoices.CreateInvoice(context.Background(), env.user.ID, p)
	require.NoError(t, err)
	assert.True(t, inv.TaxAmount.IsZero())
	assert.True(t, dec("50").Equal(inv.Total))
}

func TestCreateInvoicePaymentShape(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	c := env.customer(t, "0")

	// cash sale naming a credit account
	p := cashSale(t, pan, 1, "50")
	id := c.ID.String()
	p.ClienteID = &id
	_, err := env.invoices.CreateInvoice(ctx, env.user.ID, p)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	// credit sale with cash keys
	p = creditSale(t, pan, 1, c)
	received := dec("50")
	p.PaymentDetails.Received = &received
	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, p)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	// isCredit out of sync with the method
	p = creditSale(t, pan, 1, c)
	p.IsCredit = false
	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, p)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	p = cashSale(t, pan, 1, "50")
	p.PaymentMethod = "cheque"
	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, p)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	p = cashSale(t, pan, 1, "50")
	short := dec("10")
	p.PaymentDetails.Received = &short
	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, p)
	requireAppError(t, err, http.StatusUnprocessableEntity)
}

func TestCreateInvoiceInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	pan := env.pan(t)

	_, err := env.invoices.CreateInvoice(context.Background(), env.user.ID, cashSale(t, pan, 11, "500"))
	appErr := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, apperror.ReasonStock, appErr.Reason)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "items."+pan.ID.String(), appErr.Errors[0].Field)
	assert.True(t, dec("10").Equal(env.stock(t, pan.ID)))
}

func TestCreditSaleChargesCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	c := env.customer(t, "100")

	inv, err := env.invoices.CreateInvoice(ctx, env.user.ID, creditSale(t, pan, 2, c))
	require.NoError(t, err)
	assert.True(t, inv.IsCredit)
	require.NotNil(t, inv.CustomerID)
	assert.Equal(t, c.ID, *inv.CustomerID)
	assert.Equal(t, c.Name, inv.CustomerName)
	assert.False(t, inv.Received.Valid)
	assert.True(t, dec("59").Equal(env.debt(t, c.ID)))

	// 59 + 59 > 100
	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, creditSale(t, pan, 2, c))
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, apperror.ReasonCreditLimit, appErr.Reason)
	assert.True(t, dec("59").Equal(env.debt(t, c.ID)))
	assert.True(t, dec("8").Equal(env.stock(t, pan.ID)))
}

func TestCreditSaleWithoutLimit(t *testing.T) {
	env := newTestEnv(t)
	pan := env.pan(t)
	c := env.customer(t, "0")

	_, err := env.invoices.CreateInvoice(context.Background(), env.user.ID, creditSale(t, pan, 10, c))
	require.NoError(t, err)
	assert.True(t, dec("295").Equal(env.debt(t, c.ID)))
}

func TestCreditSaleUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)
	pan := env.pan(t)
	ghost := &entity.Customer{ID: uuid.New(), Name: "Nadie"}

	_, err := env.invoices.CreateInvoice(context.Background(), env.user.ID, creditSale(t, pan, 1, ghost))
	requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.True(t, dec("10").Equal(env.stock(t, pan.ID)))
}

func TestVoidInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	c := env.customer(t, "0")

	inv, err := env.invoices.CreateInvoice(ctx, env.user.ID, creditSale(t, pan, 2, c))
	require.NoError(t, err)

	voided, err := env.invoices.VoidInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, voided.Status)
	assert.True(t, dec("10").Equal(env.stock(t, pan.ID)))
	assert.True(t, env.debt(t, c.ID).IsZero())

	_, err = env.invoices.VoidInvoice(ctx, inv.ID)
	requireAppError(t, err, http.StatusConflict)

	_, err = env.invoices.VoidInvoice(ctx, uuid.New())
	requireAppError(t, err, http.StatusNotFound)
}

func TestSalesSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	c := env.customer(t, "0")

	_, err := env.invoices.CreateInvoice(ctx, env.user.ID, cashSale(t, pan, 1, "50"))
	require.NoError(t, err)
	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, cashSale(t, pan, 2, "100"))
	require.NoError(t, err)
	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, creditSale(t, pan, 1, c))
	require.NoError(t, err)

	summary, err := env.invoices.DailySummary(ctx, fixedNow)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Count)
	// 29.50 + 59.00 + 29.50
	assert.True(t, dec("118").Equal(summary.Total), summary.Total.String())
	require.Len(t, summary.ByMethod, 2)

	list, err := env.invoices.ListInvoices(ctx, &repository.InvoiceFilterParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Pagination.Total)
}

func TestReceiptAndPrint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)

	inv, err := env.invoices.CreateInvoice(ctx, env.user.ID, cashSale(t, pan, 3, "100"))
	require.NoError(t, err)

	view, err := env.invoices.Receipt(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-202610-0001", view.ReceiptNumber)
	assert.Equal(t, "14 de octubre de 2026, 11:00", view.IssuedAt)
	assert.Equal(t, "Efectivo", view.PaymentLabel)
	assert.True(t, strings.HasPrefix(view.Total, "RD$"), view.Total)
	assert.NotEmpty(t, view.Change)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "3", view.Items[0].Quantity)

	var out strings.Builder
	ps := NewPrinterService(printer.NewWriterPrinter(&out), env.invoices, env.settings, "usb")
	_, err = ps.PrintInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "FAC-202610-0001")
	assert.Contains(t, out.String(), "Pan sobao")
	assert.Contains(t, out.String(), view.Total)
	assert.True(t, ps.GetStatus(ctx).Connected)
}

func TestCustomerPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	c := env.customer(t, "0")

	_, _, err := env.customers.SettleDebt(ctx, env.user.ID, c.ID, nil)
	requireAppError(t, err, http.StatusBadRequest)

	_, err = env.invoices.CreateInvoice(ctx, env.user.ID, creditSale(t, pan, 2, c))
	require.NoError(t, err)

	updated, payment, err := env.customers.ApplyPartialPayment(ctx, env.user.ID, c.ID, dec("20"), nil)
	require.NoError(t, err)
	assert.True(t, dec("39").Equal(updated.Debt))
	assert.True(t, dec("20").Equal(payment.Amount))

	_, _, err = env.customers.ApplyPartialPayment(ctx, env.user.ID, c.ID, dec("100"), nil)
	requireAppError(t, err, http.StatusUnprocessableEntity)
	_, _, err = env.customers.ApplyPartialPayment(ctx, env.user.ID, c.ID, dec("0"), nil)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	updated, _, err = env.customers.SettleDebt(ctx, env.user.ID, c.ID, nil)
	require.NoError(t, err)
	assert.True(t, updated.Debt.IsZero())

	payments, err := env.customers.Payments(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	stats, err := env.customers.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalCustomers)
	assert.EqualValues(t, 0, stats.Debtors)
}

func TestCreateCustomerValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.customers.CreateCustomer(ctx, &CreateCustomerInput{UserID: env.user.ID, Name: " "})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Len(t, appErr.Errors, 2)

	env.customer(t, "0")
	_, err = env.customers.CreateCustomer(ctx, &CreateCustomerInput{UserID: env.user.ID, Name: "Otra", Phone: "809-555-0101"})
	requireAppError(t, err, http.StatusConflict)

	found, err := env.customers.SearchCustomers(ctx, "carmen", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = env.customers.SearchCustomers(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSupplierDebt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	supplier, err := env.suppliers.CreateSupplier(ctx, env.user.ID, &SupplierInput{Name: "Distribuidora del Cibao"})
	require.NoError(t, err)

	record := func(kind enum.SupplierTransactionType, amount string) error {
		_, _, err := env.suppliers.RecordTransaction(ctx, &RecordTransactionInput{
			UserID: env.user.ID, SupplierID: supplier.ID, Type: kind, Amount: dec(amount),
		})
		return err
	}
	require.NoError(t, record(enum.SupplierTransactionPurchase, "500"))
	require.NoError(t, record(enum.SupplierTransactionPayment, "200"))
	requireAppError(t, record(enum.SupplierTransactionPayment, "400"), http.StatusUnprocessableEntity)
	requireAppError(t, record(enum.SupplierTransactionPurchase, "-1"), http.StatusUnprocessableEntity)

	got, err := env.suppliers.GetSupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, dec("300").Equal(got.Debt))

	requireAppError(t, env.suppliers.DeleteSupplier(ctx, supplier.ID), http.StatusConflict)
}

func TestSettingsOverrideBusiness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	got, err := env.settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, got.ApplyTax)
	assert.Equal(t, "Colmado", got.Business.Name)

	_, err = env.settings.UpdateSettings(ctx, &UpdateSettingsInput{Name: "Colmado La Esquina", PaperWidth: 10})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	got, err = env.settings.UpdateSettings(ctx, &UpdateSettingsInput{Name: "Colmado La Esquina", RNC: "101-00000-1", PaperWidth: 48})
	require.NoError(t, err)
	assert.Equal(t, "Colmado La Esquina", got.Business.Name)
	assert.Equal(t, "101-00000-1", got.Business.TaxID)
	assert.Equal(t, 48, got.Business.PaperWidth)
	assert.Equal(t, "RD$", got.Business.CurrencySymbol)
	assert.False(t, got.ApplyTax)
}
