package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code. Reason is
// a stable machine-readable code clients may branch on.
type AppError struct {
	Code    int          `json:"code"`
	Reason  string       `json:"reason,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Machine-readable reasons
const (
	ReasonTokenExpired = "token_expired"
	ReasonInvalidToken = "invalid_token"
	ReasonValidation   = "validation_failed"
	ReasonStock        = "insufficient_stock"
	ReasonCreditLimit  = "credit_limit_exceeded"
	ReasonRateLimited  = "rate_limited"
	ReasonKeyReused    = "idempotency_key_reused"
)

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Recurso no encontrado"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "No autorizado"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Acceso denegado"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Solicitud inválida"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Error interno del servidor"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "El recurso ya existe"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Correo o contraseña incorrectos"}
	ErrInactiveUser       = &AppError{Code: http.StatusForbidden, Message: "Usuario desactivado"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Reason: ReasonTokenExpired, Message: "La sesión ha expirado"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Reason: ReasonInvalidToken, Message: "Token inválido"}
	ErrCreditLimit        = &AppError{Code: http.StatusUnprocessableEntity, Reason: ReasonCreditLimit, Message: "La venta excede el límite de crédito del cliente"}
	ErrKeyReused          = &AppError{Code: http.StatusUnprocessableEntity, Reason: ReasonKeyReused, Message: "La clave de idempotencia ya se usó con otra solicitud"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  ReasonValidation,
		Message: "Datos inválidos",
		Errors:  fieldErrors,
	}
}

// NewFieldError is a validation error on a single field whose message is
// also the error message
func NewFieldError(field, message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  ReasonValidation,
		Message: message,
		Errors:  []FieldError{{Field: field, Message: message}},
	}
}

// NewNotFoundError creates a not found error for a named resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " no encontrado",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible. Unknown errors
// become a generic 500 so internals never leak to clients.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer
}
