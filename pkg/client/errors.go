package client

import (
	"errors"
	"fmt"
)

// Error codes sent by the server in the "code" field of the envelope.
const (
	CodeTokenExpired = "token_expired"
	CodeValidation   = "validation_failed"
	CodeStock        = "insufficient_stock"
	CodeCreditLimit  = "credit_limit_exceeded"
	CodeRateLimited  = "rate_limited"
)

// ErrSessionEnded is returned when the access token expired and could not
// be refreshed. The stored tokens have been cleared; the user must log in.
var ErrSessionEnded = errors.New("la sesión ha terminado, inicie sesión de nuevo")

// FieldError is one invalid field reported by the server
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response. Message is the server's text, unchanged.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// IsCode reports whether err is an APIError with the given code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func isTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401 && apiErr.Code == CodeTokenExpired
}
