package ledger

import (
	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
)

// Shape is how a stored ledger entry records what was paid.
type Shape int

const (
	// ShapeUnpaid entries carry nothing paid.
	ShapeUnpaid Shape = iota
	// ShapeQuantity entries carry an explicit paid quantity.
	ShapeQuantity
	// ShapeAmount entries only carry a paid amount; quantity is derived.
	ShapeAmount
	// ShapeFlag entries only carry the is_paid flag, meaning fully paid.
	ShapeFlag
)

func (s Shape) String() string {
	switch s {
	case ShapeQuantity:
		return "quantity"
	case ShapeAmount:
		return "amount"
	case ShapeFlag:
		return "flag"
	}
	return "unpaid"
}

// Entry is a ledger entry after normalisation. The rest of the package only
// looks at Entry, never at which fields happened to be present in storage.
type Entry struct {
	Index        int // position in the stored slice
	OrderID      uuid.UUID
	ItemID       uuid.UUID // uuid.Nil for entries written before lines had ids
	Name         string
	Key          Key
	Shape        Shape
	UnitPrice    int64
	PaidQuantity int
	// Credit is money taken that does not add up to a whole unit. Only
	// amount-only entries produce it; it is carried when they are upgraded.
	Credit int64
}

// PaidAmount is what this entry contributes to the bill's paid sum.
func (e Entry) PaidAmount() int64 {
	return int64(e.PaidQuantity)*e.UnitPrice + e.Credit
}

// Normalize reads stored entries once and resolves their shape.
func Normalize(entries []entity.ItemPayment) []Entry {
	out := make([]Entry, len(entries))
	for i := range entries {
		out[i] = normalizeEntry(i, &entries[i])
	}
	return out
}

func normalizeEntry(index int, e *entity.ItemPayment) Entry {
	n := Entry{
		Index:     index,
		OrderID:   e.OrderID,
		ItemID:    e.ItemID,
		Name:      e.Name,
		Key:       keyOfEntry(e),
		UnitPrice: e.UnitPrice,
	}
	if n.UnitPrice <= 0 {
		n.UnitPrice = unitPrice(e.Price, e.Addons)
	}

	switch {
	case e.PaidQuantity != nil:
		n.Shape = ShapeQuantity
		n.PaidQuantity = *e.PaidQuantity
		n.Credit = max(e.Credit, 0)
	case e.PaidAmount > 0:
		n.Shape = ShapeAmount
		n.Credit = e.PaidAmount
		if n.UnitPrice > 0 {
			n.PaidQuantity = int(e.PaidAmount / n.UnitPrice)
			n.Credit = e.PaidAmount % n.UnitPrice
		}
	case e.IsPaid:
		n.Shape = ShapeFlag
		n.PaidQuantity = e.Quantity
	default:
		n.Shape = ShapeUnpaid
	}
	if n.PaidQuantity < 0 {
		n.PaidQuantity = 0
	}
	return n
}

// Ledger is the normalised ledger matched against the live lines. Entries
// that no longer match a live line are kept in All but are not reachable
// through Paid or entriesFor.
type Ledger struct {
	All   []Entry
	byRef map[Ref][]int
}

// NewLedger normalises entries and matches them against live.
func NewLedger(entries []entity.ItemPayment, live *Live) *Ledger {
	l := &Ledger{
		All:   Normalize(entries),
		byRef: make(map[Ref][]int),
	}
	for i := range entries {
		item, ok := live.Resolve(&entries[i])
		if !ok {
			continue
		}
		l.byRef[item.Ref] = append(l.byRef[item.Ref], i)
	}
	return l
}

// Paid returns the quantity recorded as paid for the live line ref, capped
// at the line's current quantity.
func (l *Ledger) Paid(ref Ref, currentQuantity int) int {
	paid := 0
	for _, i := range l.byRef[ref] {
		paid += l.All[i].PaidQuantity
	}
	if paid > currentQuantity {
		return currentQuantity
	}
	return paid
}

// Has reports whether some entry is matched to ref.
func (l *Ledger) Has(ref Ref) bool {
	return len(l.byRef[ref]) > 0
}

func (l *Ledger) entriesFor(ref Ref) []int {
	return l.byRef[ref]
}

// PaidAmount is the sum over all entries, orphaned ones included. Money that
// was taken stays counted when the line it paid for goes away.
func (l *Ledger) PaidAmount() int64 {
	var total int64
	for _, e := range l.All {
		total += e.PaidAmount()
	}
	return total
}

// findByItemID returns the first entry, matched or not, written for the
// given line id.
func (l *Ledger) findByItemID(ref Ref) (Entry, bool) {
	for _, e := range l.All {
		if e.ItemID != uuid.Nil && e.OrderID == ref.OrderID && e.ItemID == ref.ItemID {
			return e, true
		}
	}
	return Entry{}, false
}
