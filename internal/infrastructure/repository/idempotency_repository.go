package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/colmado-pos/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) Find(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where(&entity.IdempotencyKey{UserID: userID, Key: key}).
		Where("expires_at > ?", time.Now().UTC()).
		Take(&ikey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ikey, nil
}

// Save loses quietly to a concurrent request that stored the same key first.
// An expired row with the same key is replaced.
func (r *idempotencyRepository) Save(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	var written bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&entity.IdempotencyKey{UserID: ikey.UserID, Key: ikey.Key}).
			Where("expires_at <= ?", time.Now().UTC()).
			Delete(&entity.IdempotencyKey{}).Error; err != nil {
			return err
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(ikey)
		written = result.RowsAffected == 1
		return result.Error
	})
	return written, err
}

func (r *idempotencyRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before.UTC()).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
