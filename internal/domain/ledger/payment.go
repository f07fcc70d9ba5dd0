package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
)

// RequestItem asks to pay Quantity units of the row identified by RowID.
type RequestItem struct {
	RowID    string
	Quantity int
}

// PaymentRequest is one payment against a bill.
type PaymentRequest struct {
	Items   []RequestItem
	Method  enum.PaymentMethod
	PayerID uuid.UUID
	At      time.Time
}

// Allocation is the part of a request that landed on one concrete line.
type Allocation struct {
	Ref      Ref
	Name     string
	Quantity int
	Amount   int64
}

// LedgerDelta is the result of applying a payment: the full new ledger and
// what changed. The input ledger is never modified.
type LedgerDelta struct {
	Entries     []entity.ItemPayment
	Allocations []Allocation
	Applied     int64
}

// ApplyPayment validates req against the live lines of orders and the
// stored ledger entries and returns the ledger with the payment applied.
// Either every requested unit is allocated or an error is returned.
func ApplyPayment(orders []entity.Order, entries []entity.ItemPayment, req PaymentRequest) (*LedgerDelta, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	live := NewLive(orders)
	ledger := NewLedger(entries, live)

	// units already taken by earlier items of this request, per line
	taken := make(map[Ref]int)
	var allocations []Allocation

	for i, ri := range req.Items {
		field := fmt.Sprintf("items[%d].row_id", i)
		ref, err := ParseRef(ri.RowID)
		if err != nil {
			return nil, &ValidationError{Field: field, Message: "malformed row id"}
		}
		key, name, err := resolveRow(live, ledger, ref, ri.RowID)
		if errors.Is(err, errUnknownRow) {
			return nil, &ValidationError{Field: field, Message: "unknown row"}
		}
		if err != nil {
			return nil, err
		}

		constituents := live.WithKey(key)
		available := 0
		capacity := make([]int, len(constituents))
		for j, it := range constituents {
			c := it.Item.Quantity - ledger.Paid(it.Ref, it.Item.Quantity) - taken[it.Ref]
			if c < 0 {
				c = 0
			}
			capacity[j] = c
			available += c
		}
		if ri.Quantity > available {
			return nil, &OverpaymentError{RowID: ri.RowID, Name: name, Requested: ri.Quantity, Available: available}
		}

		left := ri.Quantity
		for j, it := range constituents {
			if left == 0 {
				break
			}
			if capacity[j] == 0 {
				continue
			}
			n := min(capacity[j], left)
			taken[it.Ref] += n
			left -= n
			allocations = append(allocations, Allocation{
				Ref:      it.Ref,
				Name:     it.Item.Name,
				Quantity: n,
				Amount:   int64(n) * it.UnitPrice(),
			})
		}
	}

	at := req.At
	if at.IsZero() {
		at = time.Now()
	}
	out := cloneEntries(entries)
	delta := &LedgerDelta{Allocations: allocations}
	for _, a := range allocations {
		it, _ := live.Get(a.Ref)
		out = applyAllocation(out, ledger, it, a, historyRecord(a, req, at))
		delta.Applied += a.Amount
	}
	delta.Entries = out
	return delta, nil
}

// historyRecord builds the history record for one allocation.
func historyRecord(a Allocation, req PaymentRequest, at time.Time) entity.PaymentRecord {
	return entity.PaymentRecord{
		Quantity: a.Quantity,
		Amount:   a.Amount,
		PaidAt:   at,
		PayerID:  req.PayerID,
		Method:   req.Method,
	}
}

func validateRequest(req PaymentRequest) error {
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	for i, ri := range req.Items {
		if ri.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be a positive whole number"}
		}
	}
	if !req.Method.Valid() {
		return &ValidationError{Field: "method", Message: fmt.Sprintf("unsupported payment method %q", req.Method)}
	}
	if req.PayerID == uuid.Nil {
		return &ValidationError{Field: "payer_id", Message: "payer is required"}
	}
	return nil
}

var errUnknownRow = errors.New("ledger: unknown row")

// resolveRow turns a row id back into a grouping key. The representative
// line may have been removed since the row was shown; its ledger entry still
// remembers the key, and the key is then matched against what is live now.
func resolveRow(live *Live, ledger *Ledger, ref Ref, rowID string) (Key, string, error) {
	if it, ok := live.Get(ref); ok {
		return it.Key, it.Item.Name, nil
	}
	e, ok := ledger.findByItemID(ref)
	if !ok {
		return "", "", errUnknownRow
	}
	if len(live.WithKey(e.Key)) == 0 {
		return "", "", &StaleReferenceError{RowID: rowID, Name: e.Name}
	}
	return e.Key, e.Name, nil
}

// applyAllocation records a on the entry for it, creating the entry when
// the line has none. Older entry shapes are upgraded in place.
func applyAllocation(entries []entity.ItemPayment, ledger *Ledger, it *LiveItem, a Allocation, rec entity.PaymentRecord) []entity.ItemPayment {
	var idx int
	if matched := ledger.entriesFor(it.Ref); len(matched) > 0 {
		idx = matched[0]
	} else if created, ok := findCreated(entries, len(ledger.All), it.Ref); ok {
		idx = created
	} else {
		entries = append(entries, newEntry(it))
		idx = len(entries) - 1
	}

	e := &entries[idx]
	paid := 0
	switch {
	case e.PaidQuantity != nil:
		paid = max(*e.PaidQuantity, 0)
	case idx < len(ledger.All):
		paid = ledger.All[idx].PaidQuantity
	}
	paid += a.Quantity

	if idx < len(ledger.All) {
		e.Credit = ledger.All[idx].Credit
	}
	writeLine(e, it, paid)
	e.History = append(e.History, rec)
	return entries
}

// writeLine stores paid units against the current shape of line it. The
// entry ends up in the explicit quantity shape.
func writeLine(e *entity.ItemPayment, it *LiveItem, paid int) {
	unit := it.UnitPrice()
	e.ItemID = it.Ref.ItemID
	e.Position = it.Position
	e.UnitPrice = unit
	e.Quantity = it.Item.Quantity
	e.PaidQuantity = &paid
	e.TotalPrice = unit * int64(e.Quantity)
	e.PaidAmount = unit*int64(paid) + e.Credit
	e.IsPaid = paid >= e.Quantity
}

// findCreated looks for an entry appended earlier in the same request.
func findCreated(entries []entity.ItemPayment, from int, ref Ref) (int, bool) {
	for i := from; i < len(entries); i++ {
		if entries[i].OrderID == ref.OrderID && entries[i].ItemID == ref.ItemID {
			return i, true
		}
	}
	return 0, false
}

// newEntry starts an unpaid entry copied from a live line.
func newEntry(it *LiveItem) entity.ItemPayment {
	zero := 0
	unit := it.UnitPrice()
	var addons []entity.Addon
	if len(it.Item.Addons) > 0 {
		addons = append(addons, it.Item.Addons...)
	}
	return entity.ItemPayment{
		OrderID:      it.Ref.OrderID,
		ItemID:       it.Ref.ItemID,
		Position:     it.Position,
		Name:         it.Item.Name,
		Price:        it.Item.Price,
		UnitPrice:    unit,
		Addons:       addons,
		Quantity:     it.Item.Quantity,
		PaidQuantity: &zero,
		TotalPrice:   unit * int64(it.Item.Quantity),
	}
}

// Materialize returns entries extended with an unpaid entry for every live
// line that has none. changed is false when nothing had to be added.
func Materialize(orders []entity.Order, entries []entity.ItemPayment) (out []entity.ItemPayment, changed bool) {
	live := NewLive(orders)
	ledger := NewLedger(entries, live)
	out = cloneEntries(entries)
	for _, it := range live.Items() {
		if ledger.Has(it.Ref) {
			continue
		}
		out = append(out, newEntry(&it))
		changed = true
	}
	return out, changed
}

// Resync rewrites the stored quantity, prices and paid flag of every entry
// that still matches a live line, so entries follow quantity edits and
// reindexed positions. Paid units and credit are kept. changed is false when
// every entry was already current.
func Resync(orders []entity.Order, entries []entity.ItemPayment) (out []entity.ItemPayment, changed bool) {
	live := NewLive(orders)
	ledger := NewLedger(entries, live)
	out = cloneEntries(entries)
	for _, it := range live.Items() {
		for _, i := range ledger.entriesFor(it.Ref) {
			before := out[i]
			e := &out[i]
			e.Credit = ledger.All[i].Credit
			writeLine(e, &it, ledger.All[i].PaidQuantity)
			if !sameLine(&before, e) {
				changed = true
			}
		}
	}
	return out, changed
}

func sameLine(a, b *entity.ItemPayment) bool {
	if (a.PaidQuantity == nil) != (b.PaidQuantity == nil) {
		return false
	}
	if a.PaidQuantity != nil && *a.PaidQuantity != *b.PaidQuantity {
		return false
	}
	return a.ItemID == b.ItemID &&
		a.Position == b.Position &&
		a.UnitPrice == b.UnitPrice &&
		a.Quantity == b.Quantity &&
		a.TotalPrice == b.TotalPrice &&
		a.PaidAmount == b.PaidAmount &&
		a.Credit == b.Credit &&
		a.IsPaid == b.IsPaid
}

func cloneEntries(entries []entity.ItemPayment) []entity.ItemPayment {
	out := make([]entity.ItemPayment, len(entries))
	for i, e := range entries {
		if e.PaidQuantity != nil {
			q := *e.PaidQuantity
			e.PaidQuantity = &q
		}
		if e.Addons != nil {
			e.Addons = append(make([]entity.Addon, 0, len(e.Addons)), e.Addons...)
		}
		if e.History != nil {
			e.History = append(make([]entity.PaymentRecord, 0, len(e.History)), e.History...)
		}
		out[i] = e
	}
	return out
}
