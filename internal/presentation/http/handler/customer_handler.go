package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/colmado-pos/internal/application/service"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer and fiado account requests
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List handles listing customers. With all=true the whole directory is
// returned unpaginated, which the register uses as its search fallback.
func (h *CustomerHandler) List(c *gin.Context) {
	if c.Query("all") == "true" {
		customers, err := h.customerService.ListAllCustomers(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Clientes obtenidos", customers)
		return
	}

	result, err := h.customerService.ListCustomers(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Clientes obtenidos", result)
}

// Search matches name, phone or tax id
func (h *CustomerHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	customers, err := h.customerService.SearchCustomers(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Clientes encontrados", customers)
}

// Create handles creating a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req request.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &service.CreateCustomerInput{
		UserID:      userID,
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		TaxID:       req.TaxID,
		Address:     req.Address,
		CreditLimit: req.CreditLimit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Cliente creado", customer)
}

// Get handles getting a single customer
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cliente obtenido", customer)
}

// Update handles updating a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), &service.UpdateCustomerInput{
		ID:          id,
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		TaxID:       req.TaxID,
		Address:     req.Address,
		CreditLimit: req.CreditLimit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cliente actualizado", customer)
}

// Delete handles deleting a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cliente eliminado", nil)
}

// Stats returns the totals of the credit book
func (h *CustomerHandler) Stats(c *gin.Context) {
	stats, err := h.customerService.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Estadísticas de clientes", stats)
}

// Debtors lists customers that owe money, largest debt first
func (h *CustomerHandler) Debtors(c *gin.Context) {
	customers, err := h.customerService.Debtors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Clientes con deuda", customers)
}

// Payments lists the debt payments of a customer
func (h *CustomerHandler) Payments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.customerService.Payments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Pagos del cliente", payments)
}

// Pay records a partial payment (abono)
func (h *CustomerHandler) Pay(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request.CustomerPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	customer, payment, err := h.customerService.ApplyPartialPayment(c.Request.Context(), userID, id, req.Amount, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Abono registrado", gin.H{"customer": customer, "payment": payment})
}

// Settle pays off the whole debt
func (h *CustomerHandler) Settle(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request.SettleDebtRequest
	// the body is optional
	_ = c.ShouldBindJSON(&req)

	customer, payment, err := h.customerService.SettleDebt(c.Request.Context(), userID, id, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Deuda saldada", gin.H{"customer": customer, "payment": payment})
}
