package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/venue-pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return translateError(r.db.WithContext(ctx).Omit("Orders").Create(bill).Error)
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) GetWithOrders(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).
		Preload("Orders", ordersByAge).
		Preload("Orders.Items", itemsByPosition).
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) Save(ctx context.Context, bill *entity.Bill) error {
	next := bill.Version + 1
	now := time.Now()

	result := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Where("id = ? AND version = ?", bill.ID, bill.Version).
		Updates(map[string]interface{}{
			"table_label":     bill.TableLabel,
			"status":          bill.Status,
			"total":           bill.Total,
			"paid":            bill.Paid,
			"remaining":       bill.Remaining,
			"discount":        bill.Discount,
			"due_at":          bill.DueAt,
			"cancelled_at":    bill.CancelledAt,
			"item_payments":   bill.ItemPayments,
			"session_charges": bill.SessionCharges,
			"version":         next,
			"updated_at":      now,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrVersionConflict
	}

	bill.Version = next
	bill.UpdatedAt = now
	return nil
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Scopes(createdBetween(params.StartDate, params.EndDate))

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.TableLabel != "" {
		query = query.Where("table_label = ?", params.TableLabel)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortOrder := "DESC"
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	err := query.Scopes(paginate(params.Pagination)).
		Order("created_at " + sortOrder).
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) ListOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Scopes(openBills).
		Where("status <> ?", enum.BillStatusOverdue).
		Where("due_at IS NOT NULL AND due_at < ?", now).
		Pluck("id", &ids).Error
	return ids, err
}
