package service

import (
	"context"
	"strings"

	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/apperror"
)

// SettingsService owns the store identity printed on invoices. Stored
// values override the configured defaults field by field.
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	base         checkout.Business
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, base checkout.Business) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, base: base}
}

// StoreSettings is the effective configuration of the store
type StoreSettings struct {
	Business checkout.Business `json:"business"`
	ApplyTax bool              `json:"apply_tax"`
}

// GetSettings returns the effective settings
func (s *SettingsService) GetSettings(ctx context.Context) (*StoreSettings, error) {
	row, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &StoreSettings{Business: s.base, ApplyTax: true}, nil
	}
	return &StoreSettings{Business: row.Merge(s.base), ApplyTax: row.ApplyTax}, nil
}

// Assembler builds an assembler for the current store identity
func (s *SettingsService) Assembler(ctx context.Context) (*checkout.Assembler, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return checkout.NewAssembler(settings.Business)
}

// UpdateSettingsInput represents the input for updating settings
type UpdateSettingsInput struct {
	Name       string
	Address    string
	Phone      string
	RNC        string
	Email      string
	Footer     string
	PaperWidth int
	ApplyTax   bool
}

// UpdateSettings stores the store identity and returns the effective settings
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*StoreSettings, error) {
	if input.PaperWidth != 0 && (input.PaperWidth < 24 || input.PaperWidth > 64) {
		return nil, apperror.NewFieldError("paper_width", "El ancho de papel debe estar entre 24 y 64 caracteres")
	}

	row, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &entity.BusinessSettings{}
	}
	row.Name = strings.TrimSpace(input.Name)
	row.Address = strings.TrimSpace(input.Address)
	row.Phone = strings.TrimSpace(input.Phone)
	row.RNC = strings.TrimSpace(input.RNC)
	row.Email = strings.TrimSpace(input.Email)
	row.Footer = strings.TrimSpace(input.Footer)
	row.PaperWidth = input.PaperWidth
	row.ApplyTax = input.ApplyTax

	if err := s.settingsRepo.Save(ctx, row); err != nil {
		return nil, err
	}
	return &StoreSettings{Business: row.Merge(s.base), ApplyTax: row.ApplyTax}, nil
}
