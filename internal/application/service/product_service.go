package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/apperror"
	"github.com/sangkips/colmado-pos/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Units a weighed product can be sold in
var weightUnits = map[string]bool{"kg": true, "g": true, "lb": true, "oz": true}

// ProductService handles product-related operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{productRepo: productRepo, categoryRepo: categoryRepo}
}

// ProductInput carries the editable product fields
type ProductInput struct {
	CategoryID    *uuid.UUID
	Name          string
	Code          *string
	Price         decimal.Decimal
	Cost          decimal.Decimal
	Stock         decimal.Decimal
	StockAlert    decimal.Decimal
	SoldByWeight  bool
	WeightUnit    string
	PricePerUnit  decimal.Decimal
	MinSaleWeight decimal.Decimal
	PackagePrice  decimal.Decimal
	Archived      bool
}

// validate checks the input and returns field errors, normalizing in place
func (in *ProductInput) validate() []apperror.FieldError {
	var errs []apperror.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Code = trimmed(in.Code)
	in.WeightUnit = strings.ToLower(strings.TrimSpace(in.WeightUnit))

	if in.Name == "" {
		add("name", "El nombre es obligatorio")
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"price", in.Price}, {"cost", in.Cost}, {"stock", in.Stock}, {"stock_alert", in.StockAlert},
		{"price_per_unit", in.PricePerUnit}, {"min_sale_weight", in.MinSaleWeight}, {"package_price", in.PackagePrice},
	}
	for _, a := range amounts {
		if !checkout.InRange(a.value) {
			add(a.field, msgOutOfRange)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		add("price", "Los precios no pueden ser negativos")
	}
	if in.Stock.IsNegative() {
		add("stock", "El inventario no puede ser negativo")
	}
	if in.SoldByWeight {
		if !weightUnits[in.WeightUnit] {
			add("weight_unit", "Unidad de peso inválida")
		}
		if !in.PricePerUnit.IsPositive() {
			add("price_per_unit", "El precio por unidad de peso debe ser mayor que cero")
		}
		if in.MinSaleWeight.IsNegative() || in.PackagePrice.IsNegative() {
			add("min_sale_weight", "Los valores de peso no pueden ser negativos")
		}
	} else {
		in.WeightUnit = ""
		in.PricePerUnit = decimal.Zero
		in.MinSaleWeight = decimal.Zero
		in.PackagePrice = decimal.Zero
	}
	return errs
}

func (in *ProductInput) apply(p *entity.Product) {
	p.CategoryID = in.CategoryID
	p.Name = in.Name
	p.Code = in.Code
	p.Price = in.Price.Round(2)
	p.Cost = in.Cost.Round(2)
	p.StockAlert = in.StockAlert
	p.SoldByWeight = in.SoldByWeight
	p.WeightUnit = in.WeightUnit
	p.PricePerUnit = in.PricePerUnit.Round(2)
	p.MinSaleWeight = in.MinSaleWeight
	p.PackagePrice = in.PackagePrice.Round(2)
	p.Archived = in.Archived
}

func (s *ProductService) checkReferences(ctx context.Context, in *ProductInput, selfID uuid.UUID) error {
	if in.Code != nil {
		existing, err := s.productRepo.GetByCode(ctx, *in.Code)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return apperror.NewConflictError("Ya existe un producto con ese código")
		}
	}
	if in.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return apperror.NewFieldError("category_id", "Categoría no encontrada")
		}
	}
	return nil
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	if errs := input.validate(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	if err := s.checkReferences(ctx, input, uuid.Nil); err != nil {
		return nil, err
	}

	product := &entity.Product{Stock: input.Stock}
	input.apply(product)
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Producto")
	}
	return product, nil
}

// GetProductByCode retrieves a product by barcode
func (s *ProductService) GetProductByCode(ctx context.Context, code string) (*entity.Product, error) {
	product, err := s.productRepo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Producto")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(products, params.Pagination, total), nil
}

// UpdateProduct replaces the editable fields of a product. Stock is moved
// only by sales and AdjustStock.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if errs := input.validate(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	if err := s.checkReferences(ctx, input, product.ID); err != nil {
		return nil, err
	}

	input.apply(product)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, product.ID)
}

// AdjustStock adds delta to the stock; the result may not go negative
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*entity.Product, error) {
	if !checkout.InRange(delta) {
		return nil, apperror.NewFieldError("delta", msgOutOfRange)
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	if err := s.productRepo.AdjustStock(ctx, id, delta); err != nil {
		return nil, mapStockError(err)
	}
	return s.productRepo.GetByID(ctx, id)
}

// DeleteProduct deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// GetLowStockProducts returns products at or below their stock alert
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportProducts validates parsed rows and bulk-creates the valid ones.
// Invalid rows are reported and skipped.
func (s *ProductService) ImportProducts(ctx context.Context, rows []ImportProductRow) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows)}
	seenCodes := make(map[string]int)
	var valid []entity.Product

	for _, row := range rows {
		if row.Err != nil {
			result.Errors = append(result.Errors, *row.Err)
			continue
		}
		input := row.Input
		if errs := input.validate(); len(errs) > 0 {
			result.Errors = append(result.Errors, ImportRowError{Row: row.Row, Field: errs[0].Field, Message: errs[0].Message})
			continue
		}

		if input.Code != nil {
			code := *input.Code
			if prev, ok := seenCodes[code]; ok {
				result.Errors = append(result.Errors, ImportRowError{
					Row:     row.Row,
					Field:   "barcode",
					Message: fmt.Sprintf("Código '%s' duplicado (igual que la fila %d)", code, prev),
				})
				continue
			}
			existing, err := s.productRepo.GetByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				result.Errors = append(result.Errors, ImportRowError{
					Row:     row.Row,
					Field:   "barcode",
					Message: fmt.Sprintf("Ya existe un producto con el código '%s'", code),
				})
				continue
			}
			seenCodes[code] = row.Row
		}

		product := entity.Product{Stock: input.Stock}
		input.apply(&product)
		valid = append(valid, product)
	}

	if err := s.productRepo.CreateBatch(ctx, valid); err != nil {
		return nil, fmt.Errorf("import products: %w", err)
	}

	result.Successful = len(valid)
	result.Failed = len(result.Errors)
	return result, nil
}
