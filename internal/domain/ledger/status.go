package ledger

import (
	"time"

	"github.com/sangkips/venue-pos-api/internal/domain/enum"
)

// StatusInput is everything the bill status depends on.
type StatusInput struct {
	Current         enum.BillStatus
	Paid            int64
	Total           int64
	ItemsSettled    bool
	SessionsSettled bool
	DueAt           *time.Time
	Now             time.Time
}

// DeriveStatus computes a bill's status. Cancelled is sticky and is the only
// status set from outside; everything else follows from the inputs, so
// calling it again on the same inputs gives the same answer.
func DeriveStatus(in StatusInput) enum.BillStatus {
	if in.Current == enum.BillStatusCancelled {
		return enum.BillStatusCancelled
	}

	var status enum.BillStatus
	switch {
	case in.Paid <= 0:
		status = enum.BillStatusDraft
	case in.Paid >= in.Total && in.ItemsSettled && in.SessionsSettled:
		status = enum.BillStatusPaid
	default:
		status = enum.BillStatusPartial
	}

	if status != enum.BillStatusPaid && in.DueAt != nil && in.Now.After(*in.DueAt) {
		return enum.BillStatusOverdue
	}
	return status
}
