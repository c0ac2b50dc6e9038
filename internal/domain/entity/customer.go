package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is a store customer. Debt is the running fiado balance and
// CreditLimit caps it when positive.
type Customer struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Phone       string          `gorm:"size:50;not null;index" json:"phone"`
	Email       *string         `gorm:"size:255" json:"email,omitempty"`
	TaxID       *string         `gorm:"size:50;column:tax_id;index" json:"tax_id,omitempty"` // cédula or RNC
	Address     *string         `gorm:"type:text" json:"address,omitempty"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"credito"`
	Debt        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cuentas_pendientes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	User     User              `gorm:"foreignKey:UserID" json:"-"`
	Invoices []Invoice         `gorm:"foreignKey:CustomerID" json:"-"`
	Payments []CustomerPayment `gorm:"foreignKey:CustomerID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// HasCreditLimit reports whether fiado sales are capped for this customer.
func (c *Customer) HasCreditLimit() bool {
	return c.CreditLimit.IsPositive()
}

// AvailableCredit returns what can still be charged, or zero when unlimited.
func (c *Customer) AvailableCredit() decimal.Decimal {
	if !c.HasCreditLimit() {
		return decimal.Zero
	}
	left := c.CreditLimit.Sub(c.Debt)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

// Customer payment kinds
const (
	PaymentKindSettle  = "settle"
	PaymentKindPartial = "partial"
)

// CustomerPayment records money received against a customer's debt.
type CustomerPayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind          string          `gorm:"size:20;not null" json:"kind"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	Note          *string         `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *CustomerPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CustomerPayment model
func (CustomerPayment) TableName() string {
	return "customer_payments"
}
