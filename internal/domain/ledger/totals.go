package ledger

import (
	"time"

	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
)

// Outcome is the recomputed money and status of a bill.
type Outcome struct {
	Total     int64
	Paid      int64
	Remaining int64
	Status    enum.BillStatus
	Rows      []Row
	// Warning is set when the stored paid amount disagreed with the ledger.
	Warning *IntegrityWarning
}

// Changed reports whether applying o would alter bill.
func (o Outcome) Changed(bill *entity.Bill) bool {
	return o.Total != bill.Total || o.Paid != bill.Paid || o.Remaining != bill.Remaining || o.Status != bill.Status
}

// Recompute derives total, paid, remaining and status of bill from its
// loaded orders, ledger and session charges. bill is not modified.
//
// Paid always comes from the ledger and the sessions, never from the stored
// field. Total counts only lines that exist now, so a removed line that had
// been paid for leaves paid above total; remaining is then zero.
func Recompute(bill *entity.Bill, now time.Time) Outcome {
	live := NewLive(bill.Orders)
	ledger := NewLedger(bill.ItemPayments, live)

	var total int64
	for _, it := range live.Items() {
		total += it.Item.LineTotal()
	}
	sessionsSettled := true
	var sessionPaid int64
	for _, s := range bill.SessionCharges {
		total += s.Amount
		sessionPaid += s.Paid
		if !s.Settled() {
			sessionsSettled = false
		}
	}
	total -= bill.Discount
	if total < 0 {
		total = 0
	}

	paid := ledger.PaidAmount() + sessionPaid
	remaining := total - paid
	if remaining < 0 {
		remaining = 0
	}

	// settlement is judged on the ledger alone, not on the stored status
	rows := aggregate(live, ledger, BillState{})

	o := Outcome{
		Total:     total,
		Paid:      paid,
		Remaining: remaining,
		Rows:      rows,
		Status: DeriveStatus(StatusInput{
			Current:         bill.Status,
			Paid:            paid,
			Total:           total,
			ItemsSettled:    Settled(rows),
			SessionsSettled: sessionsSettled,
			DueAt:           bill.DueAt,
			Now:             now,
		}),
	}
	if bill.Paid != paid {
		o.Warning = &IntegrityWarning{BillID: bill.ID, Stored: bill.Paid, Computed: paid}
	}
	return o
}

// Apply writes o onto bill.
func (o Outcome) Apply(bill *entity.Bill) {
	bill.Total = o.Total
	bill.Paid = o.Paid
	bill.Remaining = o.Remaining
	bill.Status = o.Status
}
