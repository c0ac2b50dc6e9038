package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog item, sold by unit or by weight. Stock is in units
// or in WeightUnit for weighed products.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name          string          `gorm:"size:255;not null;index" json:"name"`
	Code          *string         `gorm:"size:100;uniqueIndex" json:"code,omitempty"` // barcode
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Cost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost"`
	Stock         decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock"`
	StockAlert    decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock_alert"`
	SoldByWeight  bool            `gorm:"not null;default:false" json:"sold_by_weight"`
	WeightUnit    string          `gorm:"size:10" json:"weight_unit,omitempty"`
	PricePerUnit  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_per_unit"`
	MinSaleWeight decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"min_sale_weight"`
	PackagePrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"package_price"`
	Archived      bool            `gorm:"not null;default:false;index" json:"archived"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether stock reached the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.StockAlert.IsPositive() && p.Stock.LessThanOrEqual(p.StockAlert)
}

// ForCart returns the pricing facts the cart needs.
func (p *Product) ForCart() checkout.Product {
	return checkout.Product{
		ID:            p.ID.String(),
		Name:          p.Name,
		UnitPrice:     p.Price,
		SoldByWeight:  p.SoldByWeight,
		WeightUnit:    p.WeightUnit,
		PricePerUnit:  p.PricePerUnit,
		MinSaleWeight: p.MinSaleWeight,
		PackagePrice:  p.PackagePrice,
	}
}

// Category groups products on the register screen
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
