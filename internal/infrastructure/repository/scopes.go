package repository

import (
	"time"

	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/sangkips/venue-pos-api/pkg/pagination"
	"gorm.io/gorm"
)

// openBills limits a bill query to bills that can still be paid.
func openBills(db *gorm.DB) *gorm.DB {
	return db.Where("status NOT IN ?", []enum.BillStatus{enum.BillStatusPaid, enum.BillStatusCancelled})
}

// createdBetween filters on created_at; nil bounds are ignored.
func createdBetween(start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where("created_at >= ?", *start)
		}
		if end != nil {
			db = db.Where("created_at <= ?", *end)
		}
		return db
	}
}

// paginate applies offset and limit from params.
func paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// itemsByPosition preloads order items in ticket order.
func itemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ordersByAge preloads orders oldest first.
func ordersByAge(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
