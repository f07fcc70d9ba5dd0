package response

import (
	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/application/service"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/sangkips/venue-pos-api/internal/domain/ledger"
	"github.com/sangkips/venue-pos-api/pkg/money"
)

// AddonResponse is an addon with its price in decimals.
type AddonResponse struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// BillItemRow is one aggregated line of a bill as shown to the cashier.
// ID is what payment requests refer to.
type BillItemRow struct {
	ID                string          `json:"id"`
	OrderID           uuid.UUID       `json:"order_id"`
	Name              string          `json:"name"`
	Price             float64         `json:"price"`
	UnitPrice         float64         `json:"unit_price"`
	Addons            []AddonResponse `json:"addons"`
	TotalQuantity     int             `json:"total_quantity"`
	PaidQuantity      int             `json:"paid_quantity"`
	RemainingQuantity int             `json:"remaining_quantity"`
	IsFullyPaid       bool            `json:"is_fully_paid"`
}

// BillItemsResponse is a bill with its aggregated rows.
type BillItemsResponse struct {
	Bill  *entity.Bill  `json:"bill"`
	Items []BillItemRow `json:"items"`
}

// NewBillItemsResponse converts aggregated rows into their API shape.
func NewBillItemsResponse(items *service.BillItems) *BillItemsResponse {
	out := &BillItemsResponse{
		Bill:  items.Bill,
		Items: make([]BillItemRow, 0, len(items.Rows)),
	}
	for _, r := range items.Rows {
		out.Items = append(out.Items, newBillItemRow(r))
	}
	return out
}

func newBillItemRow(r ledger.Row) BillItemRow {
	addons := make([]AddonResponse, len(r.Addons))
	for i, a := range r.Addons {
		addons[i] = AddonResponse{Name: a.Name, Price: money.FromCents(a.Price)}
	}
	return BillItemRow{
		ID:                r.ID,
		OrderID:           r.OrderID,
		Name:              r.Name,
		Price:             money.FromCents(r.Price),
		UnitPrice:         money.FromCents(r.UnitPrice),
		Addons:            addons,
		TotalQuantity:     r.TotalQuantity,
		PaidQuantity:      r.PaidQuantity,
		RemainingQuantity: r.RemainingQuantity,
		IsFullyPaid:       r.RemainingQuantity == 0,
	}
}

// AllocationResponse tells which concrete line a paid unit landed on.
type AllocationResponse struct {
	OrderID  uuid.UUID `json:"order_id"`
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Amount   float64   `json:"amount"`
}

// PaymentResponse is the result of paying items on a bill.
type PaymentResponse struct {
	BillID          uuid.UUID            `json:"bill_id"`
	PaidAmount      float64              `json:"paid_amount"`
	AppliedAmount   float64              `json:"applied_amount"`
	RemainingAmount float64              `json:"remaining_amount"`
	Status          enum.BillStatus      `json:"status"`
	Allocations     []AllocationResponse `json:"allocations"`
}

// NewPaymentResponse converts a payment result into its API shape.
func NewPaymentResponse(r *service.PaymentResult) *PaymentResponse {
	out := &PaymentResponse{
		BillID:          r.BillID,
		PaidAmount:      money.FromCents(r.Paid),
		AppliedAmount:   money.FromCents(r.Applied),
		RemainingAmount: money.FromCents(r.Remaining),
		Status:          r.Status,
		Allocations:     make([]AllocationResponse, 0, len(r.Allocations)),
	}
	for _, a := range r.Allocations {
		out.Allocations = append(out.Allocations, AllocationResponse{
			OrderID:  a.Ref.OrderID,
			ItemID:   a.Ref.ItemID,
			Name:     a.Name,
			Quantity: a.Quantity,
			Amount:   money.FromCents(a.Amount),
		})
	}
	return out
}
