package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok", "data": data})
}

func fail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message, "code": code})
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

var sampleCustomers = []map[string]any{
	{"id": "1", "name": "Juan Pérez", "phone": "809-555-0101", "tax_id": "001-1234567-8", "credito": "500", "cuentas_pendientes": "0"},
	{"id": "2", "name": "María Gómez", "phone": "829-555-0202", "credito": "0", "cuentas_pendientes": "120"},
	{"id": "3", "name": "Pedro Almonte", "phone": "849-555-0303", "credito": "0", "cuentas_pendientes": "0"},
}

func TestConcurrentRefreshIsSingleFlight(t *testing.T) {
	const callers = 10
	var (
		refreshes  atomic.Int32
		staleHits  atomic.Int32
		freshHits  atomic.Int32
		allArrived sync.WaitGroup
	)
	allArrived.Add(callers)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == refreshPath:
			refreshes.Add(1)
			time.Sleep(30 * time.Millisecond)
			ok(w, map[string]any{"access_token": "fresh", "refresh_token": "r2"})
		case bearer(r) == "stale":
			staleHits.Add(1)
			allArrived.Done()
			allArrived.Wait()
			fail(w, http.StatusUnauthorized, CodeTokenExpired, "La sesión ha expirado")
		case bearer(r) == "fresh":
			freshHits.Add(1)
			ok(w, sampleCustomers)
		default:
			fail(w, http.StatusUnauthorized, "invalid_token", "Token inválido")
		}
	}))
	defer srv.Close()

	store := NewMemoryTokenStore(Tokens{AccessToken: "stale", RefreshToken: "r1"})
	c := New(srv.URL, store)

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListCustomers(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, int32(callers), staleHits.Load())
	assert.Equal(t, int32(callers), freshHits.Load(), "each request retries exactly once")

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{AccessToken: "fresh", RefreshToken: "r2"}, tok)
}

func TestRefreshFailureEndsSessionForAllWaiters(t *testing.T) {
	const callers = 5
	var (
		refreshes  atomic.Int32
		allArrived sync.WaitGroup
	)
	allArrived.Add(callers)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			refreshes.Add(1)
			fail(w, http.StatusUnauthorized, "invalid_token", "Token inválido")
			return
		}
		allArrived.Done()
		allArrived.Wait()
		fail(w, http.StatusUnauthorized, CodeTokenExpired, "La sesión ha expirado")
	}))
	defer srv.Close()

	store := NewMemoryTokenStore(Tokens{AccessToken: "stale", RefreshToken: "r1"})
	c := New(srv.URL, store)

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Debtors(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrSessionEnded)
	}
	assert.Equal(t, int32(1), refreshes.Load())
	tok, _ := store.Load()
	assert.Equal(t, Tokens{}, tok)
}

func TestRetriesOnlyOnce(t *testing.T) {
	var calls, refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			refreshes.Add(1)
			ok(w, map[string]any{"access_token": "fresh", "refresh_token": "r2"})
			return
		}
		calls.Add(1)
		fail(w, http.StatusUnauthorized, CodeTokenExpired, "La sesión ha expirado")
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "stale", RefreshToken: "r1"}))
	_, err := c.CustomerStats(context.Background())

	assert.True(t, IsCode(err, CodeTokenExpired))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), refreshes.Load())
}

func TestServerMessagePassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "venta-42", r.Header.Get("Idempotency-Key"))
		fail(w, http.StatusConflict, CodeStock, "Stock insuficiente para Pan de agua")
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))
	ctx := WithIdempotencyKey(context.Background(), "venta-42")
	_, err := c.CreateInvoice(ctx, checkout.InvoicePayload{PaymentMethod: checkout.WireCash})

	require.Error(t, err)
	assert.Equal(t, "Stock insuficiente para Pan de agua", err.Error())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.True(t, IsCode(err, CodeStock))
}

func TestCreateInvoiceDecodesReceiptNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p checkout.InvoicePayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.True(t, p.IsCredit)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{
			"id": "abc", "receiptNumber": "FAC-202610-0007", "status": "pending", "isCredit": true, "total": "118",
		}})
	}))
	defer srv.Close()

	id := "cust-1"
	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))
	inv, err := c.CreateInvoice(context.Background(), checkout.InvoicePayload{IsCredit: true, ClienteID: &id, PaymentMethod: checkout.WireCredit})

	require.NoError(t, err)
	assert.Equal(t, "FAC-202610-0007", inv.ReceiptNumber)
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(118)))
}

func TestSearchFallsBackToFullList(t *testing.T) {
	var listed atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/customers/search":
			fail(w, http.StatusInternalServerError, "", "Error interno del servidor")
		case "/api/v1/customers":
			listed.Add(1)
			ok(w, sampleCustomers)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))

	found, err := c.SearchCustomers(context.Background(), "gómez")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].ID)

	found, err = c.SearchCustomers(context.Background(), "1234567")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Juan Pérez", found[0].Name)

	found, err = c.SearchCustomers(context.Background(), "555")
	require.NoError(t, err)
	assert.Len(t, found, 3)
	assert.Equal(t, int32(3), listed.Load())
}

func TestSearchUsesEndpointWhenAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/customers/search", r.URL.Path)
		assert.Equal(t, "juan", r.URL.Query().Get("q"))
		ok(w, sampleCustomers[:1])
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))
	found, err := c.SearchCustomers(context.Background(), " juan ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].CreditLimit.Equal(decimal.NewFromInt(500)))
}

func TestSearchFailsWhenBothPathsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusBadGateway, "", "upstream")
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))
	_, err := c.SearchCustomers(context.Background(), "juan")
	assert.Error(t, err)
}

func TestSearchSkipsFallbackWhenCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		ok(w, sampleCustomers)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))
	_, err := c.SearchCustomers(ctx, "juan")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), hits.Load())
}

func TestEmptySearchMakesNoRequest(t *testing.T) {
	c := New("http://127.0.0.1:0", NewMemoryTokenStore(Tokens{}))
	found, err := c.SearchCustomers(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestBreakerOpensAfterRepeatedServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fail(w, http.StatusServiceUnavailable, "", "Servicio no disponible")
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(Tokens{AccessToken: "t"}))
	for i := 0; i < 5; i++ {
		_, err := c.CustomerStats(context.Background())
		assert.Equal(t, "Servicio no disponible", err.Error())
	}
	_, err := c.CustomerStats(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), hits.Load())
}

func TestPartialPaymentRejectsNonPositiveAmount(t *testing.T) {
	c := New("http://127.0.0.1:0", NewMemoryTokenStore(Tokens{AccessToken: "t"}))
	_, err := c.ApplyPartialPayment(context.Background(), "1", decimal.Zero, nil)
	assert.True(t, IsCode(err, CodeValidation))
}

func TestLoginStoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		ok(w, map[string]any{"access_token": "a1", "refresh_token": "r1", "token_type": "Bearer"})
	}))
	defer srv.Close()

	store := NewFileTokenStore(filepath.Join(t.TempDir(), "auth", "tokens.json"))
	c := New(srv.URL, store)
	require.NoError(t, c.Login(context.Background(), "caja@colmado.do", "secreto123"))

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{AccessToken: "a1", RefreshToken: "r1"}, tok)

	require.NoError(t, c.Logout())
	tok, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{}, tok)
}
