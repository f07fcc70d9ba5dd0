package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/sangkips/venue-pos-api/pkg/pagination"
)

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	// GetWithOrders loads the bill with every order and order item attached.
	GetWithOrders(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	// Save writes the bill if its version still matches the stored one and
	// bumps the version. It returns ErrVersionConflict otherwise.
	Save(ctx context.Context, bill *entity.Bill) error
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
	// ListOverdue returns ids of open bills whose due time is before now.
	ListOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// BillFilterParams contains filtering parameters for bill queries
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.BillStatus
	TableLabel string
	StartDate  *time.Time
	EndDate    *time.Time
	SortOrder  string
}
