package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	productPageSize = 100
	// maxProductPages bounds the fallback listing of a very large catalog
	maxProductPages = 50
)

// Product is a catalog item as the register sees it
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Code          *string         `json:"code,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         decimal.Decimal `json:"stock"`
	SoldByWeight  bool            `json:"sold_by_weight"`
	WeightUnit    string          `json:"weight_unit,omitempty"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	MinSaleWeight decimal.Decimal `json:"min_sale_weight"`
	PackagePrice  decimal.Decimal `json:"package_price"`
}

func (p *Product) matches(q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	return p.Code != nil && strings.Contains(strings.ToLower(*p.Code), q)
}

type productPage struct {
	Items      []Product `json:"items"`
	Pagination struct {
		HasNext bool `json:"has_next"`
	} `json:"pagination"`
}

// SearchProducts asks the catalog search and, if it fails, filters the full
// catalog locally. It errors only when both fail or ctx ended.
func (c *Client) SearchProducts(ctx context.Context, q string) ([]Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Product{}, nil
	}

	var page productPage
	path := "/api/v1/products?per_page=" + strconv.Itoa(productPageSize) + "&search=" + url.QueryEscape(q)
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	if err == nil {
		return page.Items, nil
	}
	if ctx.Err() != nil || errors.Is(err, ErrSessionEnded) {
		return nil, err
	}
	log.Printf("[client] product search failed, filtering full catalog: %v", err)

	all, ferr := c.ListProducts(ctx)
	if ferr != nil {
		return nil, fmt.Errorf("search products: %w (fallback: %v)", err, ferr)
	}
	found := make([]Product, 0)
	for i := range all {
		if all[i].matches(q) {
			found = append(found, all[i])
		}
	}
	return found, nil
}

// ListProducts walks every page of the catalog
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	all := make([]Product, 0)
	for n := 1; n <= maxProductPages; n++ {
		var page productPage
		path := "/api/v1/products?per_page=" + strconv.Itoa(productPageSize) + "&page=" + strconv.Itoa(n)
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.Pagination.HasNext {
			break
		}
	}
	return all, nil
}

// ProductByCode looks up a scanned barcode
func (c *Client) ProductByCode(ctx context.Context, code string) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/code/"+url.PathEscape(strings.TrimSpace(code)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
