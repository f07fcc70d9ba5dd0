package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/sangkips/venue-pos-api/internal/domain/ledger"
	"github.com/sangkips/venue-pos-api/internal/domain/repository"
	"github.com/sangkips/venue-pos-api/pkg/apperror"
	"github.com/sangkips/venue-pos-api/pkg/money"
	"github.com/sirupsen/logrus"
)

// OrderService handles order tickets on bills. Every change is followed by
// a bill refresh so totals, ledger and status follow the live orders.
type OrderService struct {
	orderRepo repository.OrderRepository
	billRepo  repository.BillRepository
	bills     *BillService
	log       logrus.FieldLogger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	billRepo repository.BillRepository,
	bills *BillService,
	log logrus.FieldLogger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		billRepo:  billRepo,
		bills:     bills,
		log:       log,
	}
}

// AddonInput represents an addon on an order item
type AddonInput struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Price float64 `json:"price" validate:"gte=0"`
}

// OrderItemInput represents an item in an order
type OrderItemInput struct {
	Name     string       `json:"name" validate:"required,max=255"`
	Price    float64      `json:"price" validate:"gte=0"`
	Quantity int          `json:"quantity" validate:"gte=1"`
	Addons   []AddonInput `json:"addons" validate:"dive"`
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	UserID uuid.UUID        `json:"user_id" validate:"required"`
	Note   string           `json:"note" validate:"max=255"`
	Items  []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// AddItemsInput appends items to an existing order
type AddItemsInput struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateItemInput changes one order item. Nil fields are left alone.
type UpdateItemInput struct {
	Name     *string       `json:"name" validate:"omitempty,min=1,max=255"`
	Price    *float64      `json:"price" validate:"omitempty,gte=0"`
	Quantity *int          `json:"quantity" validate:"omitempty,gte=1"`
	Addons   *[]AddonInput `json:"addons" validate:"omitempty,dive"`
}

// CreateOrder attaches a new order ticket to a bill.
func (s *OrderService) CreateOrder(ctx context.Context, billID uuid.UUID, input *CreateOrderInput) (*entity.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.openBill(ctx, billID); err != nil {
		return nil, err
	}

	order := &entity.Order{
		BillID:    billID,
		Status:    enum.OrderStatusOpen,
		Note:      input.Note,
		CreatedBy: input.UserID,
		Items:     buildItems(input.Items, 0),
	}

	unlock := s.bills.locks.lock(billID)
	err := s.orderRepo.Create(ctx, order)
	unlock()
	if err != nil {
		return nil, err
	}

	if _, err := s.bills.Refresh(ctx, billID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"bill_id":  billID,
		"order_id": order.ID,
		"items":    len(order.Items),
	}).Info("Order created")
	return s.GetOrder(ctx, order.ID)
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// AddItems appends items to an order.
func (s *OrderService) AddItems(ctx context.Context, orderID uuid.UUID, input *AddItemsInput) (*entity.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.editItems(ctx, orderID, func(items []entity.OrderItem) ([]entity.OrderItem, error) {
		return append(items, buildItems(input.Items, len(items))...), nil
	})
}

// UpdateItem changes one item. An edit that changes the grouping key makes it
// a different product, so it gets a new id and earlier payments stay with the
// old one. A quantity change or a cosmetic rename keeps the id.
func (s *OrderService) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input *UpdateItemInput) (*entity.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.editItems(ctx, orderID, func(items []entity.OrderItem) ([]entity.OrderItem, error) {
		i := indexOfItem(items, itemID)
		if i < 0 {
			return nil, apperror.NewNotFoundError("Order item")
		}
		it := items[i]
		before := it

		if input.Name != nil {
			it.Name = *input.Name
		}
		if input.Price != nil {
			it.Price = money.ToCents(*input.Price)
		}
		if input.Addons != nil {
			it.Addons = buildAddons(*input.Addons)
		}
		if input.Quantity != nil {
			it.Quantity = *input.Quantity
		}

		if productChanged(&before, &it) {
			it.ID = uuid.New()
			it.CreatedAt = time.Time{}
		}
		items[i] = it
		return items, nil
	})
}

// RemoveItem deletes one item and closes the gap in positions.
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*entity.Order, error) {
	return s.editItems(ctx, orderID, func(items []entity.OrderItem) ([]entity.OrderItem, error) {
		i := indexOfItem(items, itemID)
		if i < 0 {
			return nil, apperror.NewNotFoundError("Order item")
		}
		items = append(items[:i], items[i+1:]...)
		for j := range items {
			items[j].Position = j
		}
		return items, nil
	})
}

// CancelOrder voids an order ticket. Its lines drop off the bill.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Cancelled() {
		return nil, apperror.NewBadRequestError("Order is already cancelled")
	}
	if _, err := s.openBill(ctx, order.BillID); err != nil {
		return nil, err
	}

	unlock := s.bills.locks.lock(order.BillID)
	err = s.orderRepo.UpdateStatus(ctx, orderID, enum.OrderStatusCancelled)
	unlock()
	if err != nil {
		return nil, err
	}

	if _, err := s.bills.Refresh(ctx, order.BillID); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"bill_id": order.BillID, "order_id": orderID}).Info("Order cancelled")
	return s.GetOrder(ctx, orderID)
}

// editItems loads an order, lets edit rewrite its items, stores them and
// refreshes the bill.
func (s *OrderService) editItems(ctx context.Context, orderID uuid.UUID, edit func([]entity.OrderItem) ([]entity.OrderItem, error)) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Cancelled() {
		return nil, apperror.NewBadRequestError("Order is cancelled")
	}
	if _, err := s.openBill(ctx, order.BillID); err != nil {
		return nil, err
	}

	unlock := s.bills.locks.lock(order.BillID)
	// reload under the lock so concurrent edits of the same order stack up
	current, err := s.GetOrder(ctx, orderID)
	if err != nil {
		unlock()
		return nil, err
	}
	items, err := edit(current.Items)
	if err == nil {
		err = s.orderRepo.ReplaceItems(ctx, orderID, items)
	}
	unlock()
	if err != nil {
		return nil, err
	}

	if _, err := s.bills.Refresh(ctx, order.BillID); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *OrderService) openBill(ctx context.Context, billID uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if bill.Status == enum.BillStatusCancelled {
		return nil, apperror.ErrBillClosed
	}
	return bill, nil
}

func buildItems(inputs []OrderItemInput, firstPosition int) []entity.OrderItem {
	items := make([]entity.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, entity.OrderItem{
			Position: firstPosition + i,
			Name:     in.Name,
			Price:    money.ToCents(in.Price),
			Quantity: in.Quantity,
			Addons:   buildAddons(in.Addons),
		})
	}
	return items
}

func buildAddons(inputs []AddonInput) []entity.Addon {
	if len(inputs) == 0 {
		return nil
	}
	addons := make([]entity.Addon, len(inputs))
	for i, a := range inputs {
		addons[i] = entity.Addon{Name: a.Name, Price: money.ToCents(a.Price)}
	}
	return addons
}

func indexOfItem(items []entity.OrderItem, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// productChanged reports whether the edit turned the line into a different
// product. Spelling, spacing and addon order are not a new product.
func productChanged(a, b *entity.OrderItem) bool {
	return ledger.KeyOf(a) != ledger.KeyOf(b)
}
