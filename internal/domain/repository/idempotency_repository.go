package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
)

// IdempotencyRepository stores responses to requests that carried an
// Idempotency-Key header.
type IdempotencyRepository interface {
	// Find returns the live record for key and user, or nil.
	Find(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error)
	// Store saves a record. It returns ErrDuplicate when another request
	// with the same key got there first.
	Store(ctx context.Context, record *entity.IdempotencyKey) error
	// Purge removes records that expired before t and reports how many.
	Purge(ctx context.Context, t time.Time) (int64, error)
}
