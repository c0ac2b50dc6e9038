package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// SupplierType represents the kind of business supplying the store
type SupplierType string

const (
	SupplierTypeDistributor SupplierType = "distributor"
	SupplierTypeWholesaler  SupplierType = "wholesaler"
	SupplierTypeProducer    SupplierType = "producer"
)

// Valid reports whether t is a known supplier type.
func (t SupplierType) Valid() bool {
	switch t {
	case SupplierTypeDistributor, SupplierTypeWholesaler, SupplierTypeProducer:
		return true
	}
	return false
}

func (t SupplierType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *SupplierType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = SupplierType(v)
	case []byte:
		*t = SupplierType(string(v))
	default:
		*t = SupplierTypeDistributor
	}
	return nil
}

// SupplierTransactionType tells whether a transaction raises or lowers
// what the store owes a supplier
type SupplierTransactionType int

const (
	SupplierTransactionPurchase SupplierTransactionType = 0
	SupplierTransactionPayment  SupplierTransactionType = 1
)

func (t SupplierTransactionType) String() string {
	if t == SupplierTransactionPayment {
		return "payment"
	}
	return "purchase"
}

func (t SupplierTransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *SupplierTransactionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = SupplierTransactionType(i)
		return nil
	}
	switch str {
	case "payment", "pago":
		*t = SupplierTransactionPayment
	default:
		*t = SupplierTransactionPurchase
	}
	return nil
}

func (t SupplierTransactionType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *SupplierTransactionType) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*t = SupplierTransactionType(v)
	case int:
		*t = SupplierTransactionType(v)
	default:
		*t = SupplierTransactionPurchase
	}
	return nil
}
