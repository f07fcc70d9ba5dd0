package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/sangkips/venue-pos-api/pkg/money"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order is one ticket sent to the bar or kitchen. A bill usually collects
// several of them over a visit.
type Order struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	BillID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"bill_id"`
	Status    enum.OrderStatus `gorm:"size:20;not null" json:"status"`
	Note      string           `gorm:"size:255" json:"note,omitempty"`
	CreatedBy uuid.UUID        `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Cancelled reports whether the ticket was voided.
func (o *Order) Cancelled() bool {
	return o.Status == enum.OrderStatusCancelled
}

// Addon is an extra attached to a line item ("oat milk", "extra shot").
type Addon struct {
	Name  string `json:"name"`
	Price int64  `json:"price"` // cents
}

// OrderItem is a line on an order ticket. ID is assigned when the line is
// created and replaced whenever its name, price or addons change, so a paid
// line can never be silently turned into a different product.
type OrderItem struct {
	ID        uuid.UUID                  `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID                  `gorm:"type:uuid;not null;index" json:"order_id"`
	Position  int                        `gorm:"not null" json:"position"`
	Name      string                     `gorm:"size:255;not null" json:"name"`
	Price     int64                      `gorm:"not null" json:"-"` // cents, excluding addons
	Quantity  int                        `gorm:"not null" json:"quantity"`
	Addons    datatypes.JSONSlice[Addon] `json:"-"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// UnitPrice is the price of one unit including its addons, in cents.
func (i *OrderItem) UnitPrice() int64 {
	total := i.Price
	for _, a := range i.Addons {
		total += a.Price
	}
	return total
}

// LineTotal is UnitPrice times Quantity.
func (i *OrderItem) LineTotal() int64 {
	return i.UnitPrice() * int64(i.Quantity)
}

type addonJSON struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func addonsToJSON(addons []Addon) []addonJSON {
	out := make([]addonJSON, len(addons))
	for i, a := range addons {
		out[i] = addonJSON{Name: a.Name, Price: money.FromCents(a.Price)}
	}
	return out
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type Alias OrderItem
	return json.Marshal(&struct {
		Alias
		Price     float64     `json:"price"`
		UnitPrice float64     `json:"unit_price"`
		Addons    []addonJSON `json:"addons"`
	}{
		Alias:     Alias(i),
		Price:     money.FromCents(i.Price),
		UnitPrice: money.FromCents(i.UnitPrice()),
		Addons:    addonsToJSON(i.Addons),
	})
}
