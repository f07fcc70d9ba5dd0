package enum

import (
	"database/sql/driver"
	"fmt"
)

// OrderStatus represents the status of an order ticket
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) Valid() bool {
	return s == OrderStatusOpen || s == OrderStatusServed || s == OrderStatusCancelled
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = OrderStatusOpen
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("enum: cannot scan %T into OrderStatus", value)
	}
	return nil
}
