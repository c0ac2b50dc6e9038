package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// InvoiceStatus represents the settlement state of an invoice
type InvoiceStatus int

const (
	InvoiceStatusPaid    InvoiceStatus = 0
	InvoiceStatusPending InvoiceStatus = 1 // fiado, charged to the customer account
	InvoiceStatusVoid    InvoiceStatus = 2
)

func (s InvoiceStatus) String() string {
	names := [...]string{"paid", "pending", "void"}
	if int(s) < 0 || int(s) >= len(names) {
		return "paid"
	}
	return names[s]
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	switch str {
	case "pending":
		*s = InvoiceStatusPending
	case "void":
		*s = InvoiceStatusVoid
	default:
		*s = InvoiceStatusPaid
	}
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusPaid
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	}
	return nil
}
