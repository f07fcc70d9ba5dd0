package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/application/service"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
)

// SessionChargeRequest is a console or table-hire charge on a new bill.
type SessionChargeRequest struct {
	Label  string  `json:"label" binding:"required"`
	Amount float64 `json:"amount"`
	Paid   float64 `json:"paid"`
}

// CreateBillRequest is the request body for opening a bill.
type CreateBillRequest struct {
	TableLabel string                 `json:"table_label"`
	DueAt      *time.Time             `json:"due_at"`
	Discount   float64                `json:"discount"`
	Sessions   []SessionChargeRequest `json:"sessions"`
}

// ToInput builds the service input for the signed-in user.
func (r *CreateBillRequest) ToInput(userID uuid.UUID) *service.CreateBillInput {
	in := &service.CreateBillInput{
		UserID:     userID,
		TableLabel: r.TableLabel,
		DueAt:      r.DueAt,
		Discount:   r.Discount,
	}
	for _, s := range r.Sessions {
		in.Sessions = append(in.Sessions, service.SessionChargeInput{Label: s.Label, Amount: s.Amount, Paid: s.Paid})
	}
	return in
}

// PayItemRequest asks for quantity units of one bill row. Quantity is
// decoded as a number so a fraction is rejected per item, not as a bad body.
type PayItemRequest struct {
	RowID    string  `json:"row_id"`
	Quantity float64 `json:"quantity"`
}

// PayItemsRequest is the request body for paying items on a bill.
type PayItemsRequest struct {
	Method string           `json:"method" binding:"required"`
	Items  []PayItemRequest `json:"items" binding:"required"`
}

// ToInput builds the service input; the payer is the signed-in user.
func (r *PayItemsRequest) ToInput(payerID uuid.UUID) *service.PayItemsInput {
	in := &service.PayItemsInput{
		PayerID: payerID,
		Method:  enum.PaymentMethod(r.Method),
		Items:   make([]service.PayItemInput, len(r.Items)),
	}
	for i, it := range r.Items {
		in.Items[i] = service.PayItemInput{RowID: it.RowID, Quantity: it.Quantity}
	}
	return in
}

// PaySessionRequest is the request body for paying towards a session charge.
type PaySessionRequest struct {
	Method string  `json:"method" binding:"required"`
	Amount float64 `json:"amount"`
}

// ToInput builds the service input; the payer is the signed-in user.
func (r *PaySessionRequest) ToInput(payerID uuid.UUID) *service.PaySessionInput {
	return &service.PaySessionInput{
		PayerID: payerID,
		Method:  enum.PaymentMethod(r.Method),
		Amount:  r.Amount,
	}
}
