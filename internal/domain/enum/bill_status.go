package enum

import (
	"database/sql/driver"
	"fmt"
)

// BillStatus is the lifecycle state of a bill. It is derived from the
// payment ledger; only cancellation is ever set directly.
type BillStatus string

const (
	BillStatusDraft     BillStatus = "draft"
	BillStatusPartial   BillStatus = "partial"
	BillStatusPaid      BillStatus = "paid"
	BillStatusCancelled BillStatus = "cancelled"
	BillStatusOverdue   BillStatus = "overdue"
)

func (s BillStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known status.
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusDraft, BillStatusPartial, BillStatusPaid, BillStatusCancelled, BillStatusOverdue:
		return true
	}
	return false
}

func (s BillStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = BillStatusDraft
	case string:
		*s = BillStatus(v)
	case []byte:
		*s = BillStatus(v)
	default:
		return fmt.Errorf("enum: cannot scan %T into BillStatus", value)
	}
	return nil
}
