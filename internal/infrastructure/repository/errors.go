package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	domainRepo "github.com/sangkips/venue-pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

// translateError maps driver errors onto the domain repository errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return domainRepo.ErrDuplicate
	}
	return err
}
