package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Supplier is a vendor the store buys from. Debt is what the store owes.
type Supplier struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string            `gorm:"size:255;not null" json:"name"`
	Email     *string           `gorm:"size:255" json:"email,omitempty"`
	Phone     *string           `gorm:"size:50" json:"phone,omitempty"`
	Address   *string           `gorm:"type:text" json:"address,omitempty"`
	RNC       *string           `gorm:"size:50;column:rnc" json:"rnc,omitempty"`
	Type      enum.SupplierType `gorm:"size:50;default:'distributor'" json:"type"`
	Debt      decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"debt"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	User         User                  `gorm:"foreignKey:UserID" json:"-"`
	Transactions []SupplierTransaction `gorm:"foreignKey:SupplierID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new supplier
func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierTransaction is a purchase on account or a payment to a supplier.
type SupplierTransaction struct {
	ID           uuid.UUID                    `gorm:"type:uuid;primary_key" json:"id"`
	SupplierID   uuid.UUID                    `gorm:"type:uuid;not null;index" json:"supplier_id"`
	UserID       uuid.UUID                    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type         enum.SupplierTransactionType `gorm:"not null" json:"type"`
	Amount       decimal.Decimal              `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal              `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	Reference    *string                      `gorm:"size:100" json:"reference,omitempty"`
	Description  *string                      `gorm:"type:text" json:"description,omitempty"`
	Date         time.Time                    `gorm:"not null;index" json:"date"`
	CreatedAt    time.Time                    `json:"created_at"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *SupplierTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SupplierTransaction model
func (SupplierTransaction) TableName() string {
	return "supplier_transactions"
}
