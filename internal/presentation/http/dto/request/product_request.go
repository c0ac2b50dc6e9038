package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRequest carries the editable product fields for create and update
type ProductRequest struct {
	CategoryID    *uuid.UUID      `json:"category_id"`
	Name          string          `json:"name" binding:"required,min=2,max=255"`
	Code          *string         `json:"code" binding:"omitempty,max=100"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	Stock         decimal.Decimal `json:"stock"`
	StockAlert    decimal.Decimal `json:"stock_alert"`
	SoldByWeight  bool            `json:"sold_by_weight"`
	WeightUnit    string          `json:"weight_unit" binding:"omitempty,oneof=kg g lb oz"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	MinSaleWeight decimal.Decimal `json:"min_sale_weight"`
	PackagePrice  decimal.Decimal `json:"package_price"`
	Archived      bool            `json:"archived"`
}

// AdjustStockRequest moves stock by delta; negative values remove stock
type AdjustStockRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search          string `form:"search"`
	CategoryID      string `form:"category_id"`
	SoldByWeight    *bool  `form:"sold_by_weight"`
	LowStock        bool   `form:"low_stock"`
	IncludeArchived bool   `form:"include_archived"`
	SortBy          string `form:"sort_by"`
	SortOrder       string `form:"sort_order"`
	Page            int    `form:"page"`
	PerPage         int    `form:"per_page"`
}

// CategoryRequest creates a category
type CategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}
