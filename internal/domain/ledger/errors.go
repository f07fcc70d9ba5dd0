package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError is a malformed payment request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ledger: invalid %s: %s", e.Field, e.Message)
}

// OverpaymentError means a row has less unpaid quantity than was requested.
type OverpaymentError struct {
	RowID     string
	Name      string
	Requested int
	Available int
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("ledger: cannot pay %d of %q, only %d unpaid", e.Requested, e.Name, e.Available)
}

// StaleReferenceError means a requested row no longer has any live lines.
type StaleReferenceError struct {
	RowID string
	Name  string
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("ledger: %q (%s) is no longer on the bill", e.Name, e.RowID)
}

// IntegrityWarning reports that the stored paid amount of a bill did not
// match its ledger. The ledger wins.
type IntegrityWarning struct {
	BillID   uuid.UUID
	Stored   int64
	Computed int64
}

func (w *IntegrityWarning) Error() string {
	return fmt.Sprintf("ledger: bill %s stored paid %d but ledger says %d", w.BillID, w.Stored, w.Computed)
}
