package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	domainRepo "github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession(t *testing.T) *checkout.Session {
	t.Helper()
	s := checkout.NewSession("sess-1", "user-1", time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	_, err := s.Cart.AddUnits(checkout.Product{ID: "p1", Name: "Pan", UnitPrice: decimal.RequireFromString("25")}, 3)
	require.NoError(t, err)
	_, err = s.Cart.AddWeight(checkout.Product{
		ID: "p2", Name: "Queso", SoldByWeight: true, WeightUnit: "lb",
		PricePerUnit: decimal.RequireFromString("180"),
	}, decimal.RequireFromString("0.75"), false)
	require.NoError(t, err)
	require.NoError(t, s.Payment.Select(checkout.MethodCash))
	require.NoError(t, s.SetCashReceived("500"))
	return s
}

func exerciseStore(t *testing.T, store domainRepo.SessionRepository) {
	ctx := context.Background()
	orig := sampleSession(t)

	got, err := store.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, orig))
	got, err = store.Get(ctx, orig.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, orig.UserID, got.UserID)
	require.Len(t, got.Cart.Lines, 2)
	assert.True(t, orig.Cart.Subtotal().Equal(got.Cart.Subtotal()))
	assert.Equal(t, checkout.MethodCash, got.Payment.Method())
	assert.True(t, orig.Totals().Change.Equal(got.Totals().Change))

	require.NoError(t, store.Delete(ctx, orig.ID))
	got, err = store.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(context.Background(), sampleSession(t)))

	now = now.Add(2 * time.Minute)
	got, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, store.Len())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedisStore(client, 30*time.Minute))
}

func TestRedisStoreTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, 30*time.Minute)

	require.NoError(t, store.Save(context.Background(), sampleSession(t)))
	assert.Equal(t, 30*time.Minute, mr.TTL("checkout:session:sess-1"))

	mr.FastForward(31 * time.Minute)
	got, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
