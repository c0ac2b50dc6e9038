package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/colmado-pos/internal/application/service"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/colmado-pos/pkg/apperror"
)

// CheckoutHandler drives an open sale at the register
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// reply sends the updated checkout or the error
func reply(c *gin.Context, message string, view *service.CheckoutView, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, view)
}

// Create opens a new sale
func (h *CheckoutHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.CreateSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Venta abierta", view)
}

// Get returns the sale with computed totals
func (h *CheckoutHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.GetSession(c.Request.Context(), userID, c.Param("id"))
	reply(c, "Venta obtenida", view, err)
}

// AddLine adds a product to the cart
func (h *CheckoutHandler) AddLine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req request.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.checkoutService.AddLine(c.Request.Context(), userID, c.Param("id"), &service.AddLineInput{
		ProductID:     req.ProductID,
		Code:          req.Code,
		Quantity:      req.Quantity,
		Weight:        req.Weight,
		IsFullPackage: req.IsFullPackage,
	})
	reply(c, "Producto agregado", view, err)
}

// UpdateLine edits the quantity or weight of a line
func (h *CheckoutHandler) UpdateLine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req request.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.checkoutService.UpdateLine(c.Request.Context(), userID, c.Param("id"), c.Param("lineID"), &service.UpdateLineInput{
		Quantity: req.Quantity,
		Weight:   req.Weight,
	})
	reply(c, "Línea actualizada", view, err)
}

// RemoveLine deletes a line from the cart
func (h *CheckoutHandler) RemoveLine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.RemoveLine(c.Request.Context(), userID, c.Param("id"), c.Param("lineID"))
	reply(c, "Línea eliminada", view, err)
}

// SetTax turns ITBIS on or off for this sale
func (h *CheckoutHandler) SetTax(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req request.SetTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.checkoutService.SetTax(c.Request.Context(), userID, c.Param("id"), req.ApplyTax)
	reply(c, "Impuesto actualizado", view, err)
}

// SetCustomer names the buyer of a non-credit sale
func (h *CheckoutHandler) SetCustomer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req request.CustomerInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.checkoutService.SetCustomer(c.Request.Context(), userID, c.Param("id"), &checkout.CustomerInfo{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	reply(c, "Cliente actualizado", view, err)
}

// SelectPayment switches the payment method
func (h *CheckoutHandler) SelectPayment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req request.SelectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.checkoutService.SelectPayment(c.Request.Context(), userID, c.Param("id"), &service.SelectPaymentInput{
		Method:            req.Method,
		Received:          req.Received,
		Last4:             req.CardLast4,
		HolderName:        req.HolderName,
		Expiry:            req.Expiry,
		AuthorizationCode: req.AuthorizationCode,
		ReferenceNumber:   req.ReferenceNumber,
		TransferAmount:    req.TransferAmount,
		CustomerID:        req.CustomerID,
	})
	reply(c, "Método de pago seleccionado", view, err)
}

// SetCashReceived stores the cash handed over
func (h *CheckoutHandler) SetCashReceived(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req request.CashReceivedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.checkoutService.SetCashReceived(c.Request.Context(), userID, c.Param("id"), req.Received)
	reply(c, "Efectivo recibido", view, err)
}

// SetCreditCustomer picks the fiado account
func (h *CheckoutHandler) SetCreditCustomer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req request.CreditCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.checkoutService.SetCreditCustomer(c.Request.Context(), userID, c.Param("id"), req.CustomerID)
	reply(c, "Cliente de crédito seleccionado", view, err)
}

// RunTerminal authorizes the card on the terminal. With
// Accept: text/event-stream each step is streamed as a "step" event and the
// outcome as a final "result" or "error" event.
func (h *CheckoutHandler) RunTerminal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	if !strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		var steps []checkout.TerminalStep
		view, err := h.checkoutService.RunTerminal(ctx, userID, id, func(s checkout.TerminalStep) {
			steps = append(steps, s)
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Tarjeta aprobada", gin.H{"steps": steps, "checkout": view})
		return
	}

	events := make(chan checkout.TerminalStep, 8)
	type outcome struct {
		view *service.CheckoutView
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		view, err := h.checkoutService.RunTerminal(ctx, userID, id, func(s checkout.TerminalStep) {
			events <- s
		})
		close(events)
		done <- outcome{view, err}
	}()

	c.Stream(func(w io.Writer) bool {
		if step, ok := <-events; ok {
			c.SSEvent("step", step)
			return true
		}
		res := <-done
		if res.err != nil {
			appErr := apperror.GetAppError(res.err)
			c.SSEvent("error", gin.H{"message": appErr.Message, "code": appErr.Reason})
			return false
		}
		c.SSEvent("result", res.view)
		return false
	})
}

// Preview renders the receipt before the sale is stored
func (h *CheckoutHandler) Preview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.Preview(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Vista previa", view)
}

// Submit stores the sale as an invoice and closes it
func (h *CheckoutHandler) Submit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	inv, err := h.checkoutService.Submit(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Factura creada", invoiceBody(inv))
}

// Discard abandons the sale
func (h *CheckoutHandler) Discard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.checkoutService.Discard(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
