package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"gorm.io/gorm"
)

// BusinessSettings is the single row of store identity printed on invoices.
// Empty fields fall back to configuration.
type BusinessSettings struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name       string         `gorm:"size:255" json:"name"`
	Address    string         `gorm:"type:text" json:"address"`
	Phone      string         `gorm:"size:50" json:"phone"`
	RNC        string         `gorm:"size:50;column:rnc" json:"rnc"`
	Email      string         `gorm:"size:255" json:"email"`
	Footer     string         `gorm:"type:text" json:"footer"`
	PaperWidth int            `gorm:"default:32" json:"paper_width"` // characters per line
	ApplyTax   bool           `gorm:"not null" json:"apply_tax"`     // default of new checkout sessions
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating settings
func (s *BusinessSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BusinessSettings model
func (BusinessSettings) TableName() string {
	return "business_settings"
}

// Merge overlays the stored values on base.
func (s *BusinessSettings) Merge(base checkout.Business) checkout.Business {
	if s.Name != "" {
		base.Name = s.Name
	}
	if s.Address != "" {
		base.Address = s.Address
	}
	if s.Phone != "" {
		base.Phone = s.Phone
	}
	if s.RNC != "" {
		base.TaxID = s.RNC
	}
	if s.Email != "" {
		base.Email = s.Email
	}
	if s.Footer != "" {
		base.Footer = s.Footer
	}
	if s.PaperWidth > 0 {
		base.PaperWidth = s.PaperWidth
	}
	return base
}
