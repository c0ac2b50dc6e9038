package service

import (
	"errors"
	"net/http"

	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/apperror"
)

const msgOutOfRange = "Monto fuera de rango"

// mapCheckoutError turns register-side validation failures into 422s and
// passes everything else through
func mapCheckoutError(err error) error {
	if err == nil {
		return nil
	}
	if ve, ok := checkout.IsValidation(err); ok {
		return apperror.NewFieldError(ve.Field, ve.Message)
	}
	if errors.Is(err, checkout.ErrLineNotFound) {
		return apperror.NewNotFoundError("Línea del carrito")
	}
	return err
}

// mapStockError reports which products ran out
func mapStockError(err error) error {
	var stockErr *repository.InsufficientStockError
	if !errors.As(err, &stockErr) {
		return err
	}
	fieldErrors := make([]apperror.FieldError, 0, len(stockErr.ProductIDs))
	for _, id := range stockErr.ProductIDs {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "items." + id.String(), Message: "Inventario insuficiente"})
	}
	return &apperror.AppError{
		Code:    http.StatusConflict,
		Reason:  apperror.ReasonStock,
		Message: "Inventario insuficiente para completar la venta",
		Errors:  fieldErrors,
	}
}
