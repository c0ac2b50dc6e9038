package checkout

import "errors"

// ValidationError is a user-facing input problem detected before anything
// is sent to the server. Field names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Cart errors
var (
	ErrLineNotFound       = errors.New("cart line not found")
	ErrInvalidQuantity    = invalid("quantity", "La cantidad debe ser al menos 1")
	ErrInvalidWeight      = invalid("weight", "El peso debe ser mayor que cero")
	ErrBelowMinimumWeight = invalid("weight", "El peso es menor que el mínimo de venta del producto")
	ErrWeightRequired     = invalid("weight", "Este producto se vende por peso")
	ErrNotSoldByWeight    = invalid("weight", "Este producto se vende por unidad")
	ErrNoPackagePrice     = invalid("isFullPackage", "El producto no tiene precio de paquete")
)

// Submission errors
var (
	ErrEmptyCart                 = invalid("items", "El carrito está vacío")
	ErrNoPaymentMethod           = invalid("paymentMethod", "Seleccione un método de pago")
	ErrUnknownPaymentMethod      = invalid("paymentMethod", "Método de pago desconocido")
	ErrInsufficientCash          = invalid("received", "Monto recibido insuficiente")
	ErrCardNotAuthorized         = invalid("authorizationCode", "La tarjeta no ha sido autorizada")
	ErrCardDetailsRequired       = invalid("card", "Complete los datos de la tarjeta")
	ErrTransferReferenceRequired = invalid("referenceNumber", "Ingrese el número de referencia de la transferencia")
	ErrTransferInsufficient      = invalid("transferAmount", "El monto transferido es menor que el total")
	ErrCustomerRequired          = invalid("clienteId", "Seleccione un cliente para la venta a crédito")
	ErrNotCredit                 = invalid("paymentMethod", "El método de pago activo no es crédito")
	ErrNotCash                   = invalid("paymentMethod", "El método de pago activo no es efectivo")
)

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
