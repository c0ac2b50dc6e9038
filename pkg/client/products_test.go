package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSearchFallsBackToCatalogPages(t *testing.T) {
	var pages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products", r.URL.Path)
		if r.URL.Query().Get("search") != "" {
			fail(w, http.StatusInternalServerError, "", "Error interno del servidor")
			return
		}
		pages.Add(1)
		switch r.URL.Query().Get("page") {
		case "1":
			ok(w, map[string]any{
				"items":      []map[string]any{{"id": "p1", "name": "Pan de agua", "code": "7460001", "price": "5"}},
				"pagination": map[string]any{"has_next": true},
			})
		default:
			ok(w, map[string]any{
				"items":      []map[string]any{{"id": "p2", "name": "Salami Induveca", "code": "7460002", "sold_by_weight": true, "price_per_unit": "180"}},
				"pagination": map[string]any{"has_next": false},
			})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))

	found, err := c.SearchProducts(context.Background(), "SALAMI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p2", found[0].ID)
	assert.True(t, found[0].SoldByWeight)
	assert.Equal(t, int32(2), pages.Load())

	found, err = c.SearchProducts(context.Background(), "746000")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestProductSearchUsesEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pan", r.URL.Query().Get("search"))
		ok(w, map[string]any{
			"items":      []map[string]any{{"id": "p1", "name": "Pan de agua"}},
			"pagination": map[string]any{"has_next": false},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))
	found, err := c.SearchProducts(context.Background(), "pan")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Pan de agua", found[0].Name)
}
