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

// Bill collects the orders of one table or session and tracks what has been
// paid against them. The item payment ledger and session charges live on
// the bill row itself as JSON documents and are saved together with it.
type Bill struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Reference   string          `gorm:"size:32;uniqueIndex;not null" json:"reference"`
	TableLabel  string          `gorm:"size:64;index" json:"table_label"`
	Status      enum.BillStatus `gorm:"size:20;not null;index" json:"status"`
	Total       int64           `gorm:"not null" json:"-"` // cents
	Paid        int64           `gorm:"not null" json:"-"` // cents
	Remaining   int64           `gorm:"not null" json:"-"` // cents
	Discount    int64           `gorm:"not null" json:"-"` // cents
	DueAt       *time.Time      `gorm:"index" json:"due_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	Version     int             `gorm:"not null" json:"version"`
	CreatedBy   uuid.UUID       `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	ItemPayments   datatypes.JSONSlice[ItemPayment]   `json:"item_payments"`
	SessionCharges datatypes.JSONSlice[SessionCharge] `json:"session_charges"`

	Orders []Order `gorm:"foreignKey:BillID" json:"orders,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (b Bill) MarshalJSON() ([]byte, error) {
	type Alias Bill
	return json.Marshal(&struct {
		Alias
		Total     float64 `json:"total"`
		Paid      float64 `json:"paid"`
		Remaining float64 `json:"remaining"`
		Discount  float64 `json:"discount"`
	}{
		Alias:     Alias(b),
		Total:     money.FromCents(b.Total),
		Paid:      money.FromCents(b.Paid),
		Remaining: money.FromCents(b.Remaining),
		Discount:  money.FromCents(b.Discount),
	})
}

// ItemPayment is the ledger entry for one concrete order line. Entries are
// created lazily and then only ever updated; history is append-only.
//
// Older documents may lack PaidQuantity (nil) and only carry PaidAmount or
// IsPaid, and may lack ItemID (uuid.Nil) and only carry Position. Those
// shapes are normalised when the ledger is read.
type ItemPayment struct {
	OrderID      uuid.UUID       `json:"order_id"`
	ItemID       uuid.UUID       `json:"item_id"`
	Position     int             `json:"position"`
	Name         string          `json:"name"`
	Price        int64           `json:"price"`      // base price, cents
	UnitPrice    int64           `json:"unit_price"` // price plus addons, cents
	Addons       []Addon         `json:"addons,omitempty"`
	Quantity     int             `json:"quantity"`
	PaidQuantity *int            `json:"paid_quantity,omitempty"`
	TotalPrice   int64           `json:"total_price"`
	PaidAmount   int64           `json:"paid_amount"`
	Credit       int64           `json:"credit,omitempty"` // paid cents short of a whole unit
	IsPaid       bool            `json:"is_paid"`
	History      []PaymentRecord `json:"history,omitempty"`
}

// PaymentRecord is one installment applied to a ledger entry.
type PaymentRecord struct {
	Quantity int                `json:"quantity"`
	Amount   int64              `json:"amount"` // cents
	PaidAt   time.Time          `json:"paid_at"`
	PayerID  uuid.UUID          `json:"payer_id"`
	Method   enum.PaymentMethod `json:"method"`
}

// SessionCharge is a time-based charge on a bill (console or table hire).
// It is paid by amount rather than through the item ledger and counts
// towards the bill totals.
type SessionCharge struct {
	ID      uuid.UUID       `json:"id"`
	Label   string          `json:"label"`
	Amount  int64           `json:"amount"` // cents
	Paid    int64           `json:"paid"`   // cents
	History []PaymentRecord `json:"history,omitempty"`
}

// Due is what is still owed on the session, in cents.
func (s SessionCharge) Due() int64 {
	if s.Paid >= s.Amount {
		return 0
	}
	return s.Amount - s.Paid
}

// Settled reports whether the session has been paid in full.
func (s SessionCharge) Settled() bool {
	return s.Paid >= s.Amount
}
