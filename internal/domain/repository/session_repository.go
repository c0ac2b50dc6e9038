package repository

import (
	"context"

	"github.com/sangkips/colmado-pos/internal/domain/checkout"
)

// SessionRepository stores open checkout sessions between requests
type SessionRepository interface {
	Save(ctx context.Context, session *checkout.Session) error
	// Get returns nil, nil when the session does not exist or expired
	Get(ctx context.Context, id string) (*checkout.Session, error)
	Delete(ctx context.Context, id string) error
}
