package repository

import (
	"testing"

	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/infrastructure/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNextReceiptNumber(t *testing.T) {
	db, err := database.NewSQLiteDB("file:receipts?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	next := func(period string) int {
		t.Helper()
		var n int
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			n, err = nextReceiptNumber(tx, period)
			return err
		}))
		return n
	}

	assert.Equal(t, 1, next("202610"))
	assert.Equal(t, 2, next("202610"))
	assert.Equal(t, 1, next("202611"))

	// a row seeded by another register before this one starts
	require.NoError(t, db.Create(&entity.ReceiptSequence{Period: "202612", LastNumber: 4}).Error)
	assert.Equal(t, 5, next("202612"))
	assert.Equal(t, 3, next("202610"))

	var seq entity.ReceiptSequence
	require.NoError(t, db.First(&seq, "period = ?", "202610").Error)
	assert.Equal(t, 3, seq.LastNumber)
}
