package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/venue-pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) Find(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	var record entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND user_id = ? AND expires_at > ?", key, userID, time.Now()).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

// Store replaces an expired record for the same key before inserting.
func (r *idempotencyRepository) Store(ctx context.Context, record *entity.IdempotencyKey) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("key = ? AND user_id = ? AND expires_at <= ?", record.Key, record.UserID, time.Now()).
			Delete(&entity.IdempotencyKey{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	return translateError(err)
}

func (r *idempotencyRepository) Purge(ctx context.Context, t time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", t).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
