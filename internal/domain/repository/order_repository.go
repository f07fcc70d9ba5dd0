package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Create stores the order together with its items.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	ListByBill(ctx context.Context, billID uuid.UUID) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) error
	// ReplaceItems rewrites the item list of an order in one transaction.
	// Items keep their ids; items missing from the list are deleted.
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []entity.OrderItem) error
}
