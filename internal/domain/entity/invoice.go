package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a completed sale. Once created it is never edited by checkout.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptNumber string             `gorm:"size:32;uniqueIndex;not null" json:"receipt_number"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID    *uuid.UUID         `gorm:"type:uuid;index" json:"cliente_id"`
	CustomerName  string             `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail *string            `gorm:"size:255" json:"customer_email,omitempty"`
	CustomerPhone *string            `gorm:"size:50" json:"customer_phone,omitempty"`
	CustomerAddr  *string            `gorm:"type:text;column:customer_address" json:"customer_address,omitempty"`
	IsCredit      bool               `gorm:"not null;default:false" json:"is_credit"`
	Status        enum.InvoiceStatus `gorm:"default:0" json:"status"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20;not null;index" json:"payment_method"`

	// Payment details; only the columns of the method used are set
	Received          decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"received"`
	Change            decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"change"`
	CardNumber        *string             `gorm:"size:32" json:"card_number,omitempty"`
	AuthorizationCode *string             `gorm:"size:64" json:"authorization_code,omitempty"`
	TransactionID     *string             `gorm:"size:100" json:"transaction_id,omitempty"`
	TransferAmount    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"transfer_amount"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	IssuedAt  time.Time       `gorm:"not null;index" json:"issued_at"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is one sold line. Quantity holds the weight for weighed items.
type InvoiceItem struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	Name          string              `gorm:"size:255;not null" json:"name"`
	Quantity      decimal.Decimal     `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Price         decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"price"`
	Subtotal      decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	WeightUnit    *string             `gorm:"size:10" json:"weight_unit,omitempty"`
	PricePerUnit  decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price_per_unit"`
	IsFullPackage bool                `gorm:"default:false" json:"is_full_package"`
	CreatedAt     time.Time           `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// IsWeighted reports whether the item was sold by weight.
func (i *InvoiceItem) IsWeighted() bool {
	return i.WeightUnit != nil
}

// ReceiptSequence holds the last receipt number issued in a month (YYYYMM).
type ReceiptSequence struct {
	Period     string `gorm:"size:6;primary_key" json:"period"`
	LastNumber int    `gorm:"not null;default:0" json:"last_number"`
}

// TableName returns the table name for the ReceiptSequence model
func (ReceiptSequence) TableName() string {
	return "receipt_sequences"
}
