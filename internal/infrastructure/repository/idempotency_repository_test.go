package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/infrastructure/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyKeys(t *testing.T) {
	db, err := database.NewSQLiteDB("file:idempotency?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	repo := NewIdempotencyRepository(db)
	ctx := context.Background()
	user := uuid.New()

	key := func(body string, expires time.Time) *entity.IdempotencyKey {
		return &entity.IdempotencyKey{
			Key: "venta-1", UserID: user, Endpoint: "POST /api/v1/invoices",
			ResponseCode: 201, ResponseBody: body, ExpiresAt: expires,
		}
	}

	found, err := repo.Find(ctx, user, "venta-1")
	require.NoError(t, err)
	assert.Nil(t, found)

	written, err := repo.Save(ctx, key(`{"n":1}`, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, written)

	written, err = repo.Save(ctx, key(`{"n":2}`, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, written, "first response wins")

	found, err = repo.Find(ctx, user, "venta-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, `{"n":1}`, found.ResponseBody)

	other, err := repo.Find(ctx, uuid.New(), "venta-1")
	require.NoError(t, err)
	assert.Nil(t, other, "keys are per user")

	n, err := repo.PurgeExpired(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	written, err = repo.Save(ctx, key(`{"n":3}`, time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	assert.True(t, written)
	found, err = repo.Find(ctx, user, "venta-1")
	require.NoError(t, err)
	assert.Nil(t, found, "expired keys are not replayed")

	written, err = repo.Save(ctx, key(`{"n":4}`, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, written, "an expired key is replaced")
}
