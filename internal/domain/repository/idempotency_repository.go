package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses keyed by client-supplied keys
type IdempotencyRepository interface {
	// Find returns the unexpired key of the user, or nil
	Find(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error)
	// Save stores the key unless the user already has it. It reports
	// whether the row was written.
	Save(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// PurgeExpired removes keys that expired before the given time
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
