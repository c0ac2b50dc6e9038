package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAppErrorUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("create invoice: %w", ErrCreditLimit)
	got := GetAppError(wrapped)
	assert.Equal(t, http.StatusUnprocessableEntity, got.Code)
	assert.Equal(t, ReasonCreditLimit, got.Reason)
	assert.True(t, IsAppError(wrapped))
}

func TestGetAppErrorHidesUnknown(t *testing.T) {
	got := GetAppError(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, got.Code)
	assert.NotContains(t, got.Message, "pq")
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("received", "Monto recibido insuficiente")
	assert.Equal(t, "Monto recibido insuficiente", err.Error())
	assert.Equal(t, []FieldError{{Field: "received", Message: "Monto recibido insuficiente"}}, err.Errors)
}
