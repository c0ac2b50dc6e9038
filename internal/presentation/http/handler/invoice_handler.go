package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/application/service"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/enum"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/colmado-pos/pkg/apperror"
	"github.com/sangkips/colmado-pos/pkg/pagination"
)

// InvoiceHandler handles invoice submission and sales history
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func invoiceBody(inv *entity.Invoice) response.Invoice {
	return response.NewInvoice(inv, service.PayloadFromInvoice(inv))
}

// Create stores an assembled invoice payload
// @Summary Create invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var payload checkout.InvoicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), userID, &payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Factura creada", invoiceBody(inv))
}

// parseDay accepts YYYY-MM-DD or RFC 3339
func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// List handles listing invoices with filters
func (h *InvoiceHandler) List(c *gin.Context) {
	params := &repository.InvoiceFilterParams{
		Pagination: pageParams(c),
		CreditOnly: c.Query("credit_only") == "true",
	}
	if v := c.Query("from"); v != "" {
		t, err := parseDay(v)
		if err != nil {
			response.BadRequest(c, "Fecha inicial inválida")
			return
		}
		params.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseDay(v)
		if err != nil {
			response.BadRequest(c, "Fecha final inválida")
			return
		}
		params.To = &t
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "Cliente inválido")
			return
		}
		params.CustomerID = &id
	}
	if v := c.Query("payment_method"); v != "" {
		m, err := enum.ParsePaymentMethod(v)
		if err != nil {
			response.BadRequest(c, "Método de pago inválido")
			return
		}
		params.PaymentMethod = &m
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]response.Invoice, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, invoiceBody(&result.Items[i]))
	}
	response.SuccessWithPagination(c, "Facturas obtenidas", &pagination.PaginatedResult[response.Invoice]{
		Items:      items,
		Pagination: result.Pagination,
	})
}

// Get handles getting one invoice by id or receipt number
func (h *InvoiceHandler) Get(c *gin.Context) {
	ref := c.Param("id")
	var (
		inv *entity.Invoice
		err error
	)
	if id, perr := uuid.Parse(ref); perr == nil {
		inv, err = h.invoiceService.GetInvoice(c.Request.Context(), id)
	} else if strings.HasPrefix(strings.ToUpper(ref), "FAC-") {
		inv, err = h.invoiceService.GetByReceiptNumber(c.Request.Context(), strings.ToUpper(ref))
	} else {
		err = apperror.NewBadRequestError("Identificador de factura inválido")
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Factura obtenida", invoiceBody(inv))
}

// Void marks an invoice void, returning stock and any fiado debt
func (h *InvoiceHandler) Void(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoiceService.VoidInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Factura anulada", invoiceBody(inv))
}

// Receipt returns the printable view of an invoice
func (h *InvoiceHandler) Receipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.invoiceService.Receipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Recibo", view)
}

// Summary totals sales between from and to, or for one day with ?date=
func (h *InvoiceHandler) Summary(c *gin.Context) {
	if v := c.Query("date"); v != "" || (c.Query("from") == "" && c.Query("to") == "") {
		day := time.Now()
		if v != "" {
			t, err := parseDay(v)
			if err != nil {
				response.BadRequest(c, "Fecha inválida")
				return
			}
			// a bare date names the store day; noon UTC falls inside it
			day = t
			if len(v) == len(time.DateOnly) {
				day = t.Add(12 * time.Hour)
			}
		}
		summary, err := h.invoiceService.DailySummary(c.Request.Context(), day)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Resumen del día", summary)
		return
	}

	from, err := parseDay(c.Query("from"))
	if err != nil {
		response.BadRequest(c, "Fecha inicial inválida")
		return
	}
	to, err := parseDay(c.Query("to"))
	if err != nil {
		response.BadRequest(c, "Fecha final inválida")
		return
	}
	summary, err := h.invoiceService.SalesSummary(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Resumen de ventas", summary)
}
