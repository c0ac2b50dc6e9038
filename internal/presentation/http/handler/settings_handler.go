package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/colmado-pos/internal/application/service"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/response"
)

// SettingsHandler handles the store identity
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the effective store settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Configuración obtenida", settings)
}

// UpdateSettings replaces the stored store identity
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req request.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), &service.UpdateSettingsInput{
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		RNC:        req.RNC,
		Email:      req.Email,
		Footer:     req.Footer,
		PaperWidth: req.PaperWidth,
		ApplyTax:   req.ApplyTax,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Configuración actualizada", settings)
}
