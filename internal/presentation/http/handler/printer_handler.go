package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/colmado-pos/internal/application/service"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Estado de la impresora", h.printerService.GetStatus(c.Request.Context()))
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint(c.Request.Context())
	if err != nil && receipt == nil {
		response.Error(c, err)
		return
	}
	if err != nil {
		// the receipt still renders on screen when the printer is off
		response.OK(c, "Prueba generada, la impresora no respondió", gin.H{
			"receipt": receipt,
			"warning": err.Error(),
		})
		return
	}
	response.OK(c, "Página de prueba enviada", gin.H{"receipt": receipt})
}

// PrintInvoice prints the receipt of a stored invoice.
func (h *PrinterHandler) PrintInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	receipt, err := h.printerService.PrintInvoice(c.Request.Context(), id)
	if err != nil && receipt == nil {
		response.Error(c, err)
		return
	}
	if err != nil {
		response.OK(c, "Recibo generado, la impresión falló", gin.H{
			"receipt": receipt,
			"warning": err.Error(),
		})
		return
	}
	response.OK(c, "Recibo impreso", gin.H{"receipt": receipt})
}
