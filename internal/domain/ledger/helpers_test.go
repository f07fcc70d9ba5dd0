package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

var cashier = uuid.MustParse("6f1c2a7e-1111-4c6b-9a51-3b2f0c9d8e01")

func item(name string, price int64, qty int, addons ...entity.Addon) entity.OrderItem {
	return entity.OrderItem{ID: uuid.New(), Name: name, Price: price, Quantity: qty, Addons: addons}
}

func order(created time.Time, items ...entity.OrderItem) entity.Order {
	id := uuid.New()
	for i := range items {
		items[i].OrderID = id
		items[i].Position = i
	}
	return entity.Order{ID: id, Status: enum.OrderStatusOpen, CreatedAt: created, Items: items}
}

func payRequest(items ...RequestItem) PaymentRequest {
	return PaymentRequest{Items: items, Method: enum.PaymentMethodCash, PayerID: cashier, At: t0}
}

func rowByName(rows []Row, name string) *Row {
	for i := range rows {
		if rows[i].Name == name {
			return &rows[i]
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }
