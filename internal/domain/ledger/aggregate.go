package ledger

import (
	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
)

// Row is one display line: every live order line sharing a grouping key.
type Row struct {
	ID                string
	Name              string
	Price             int64 // base price, cents
	UnitPrice         int64 // price plus addons, cents
	Addons            []entity.Addon
	OrderID           uuid.UUID // order of the representative line
	TotalQuantity     int
	PaidQuantity      int
	RemainingQuantity int

	key  Key
	refs []Ref
}

// BillState is what aggregation needs to know about the bill itself.
type BillState struct {
	Status enum.BillStatus
	Paid   int64
	Total  int64
}

func (s BillState) settled() bool {
	return s.Status == enum.BillStatusPaid && s.Paid >= s.Total && s.Total-s.Paid == 0
}

// Aggregate groups the live lines of orders into display rows and works out
// how much of each row has been paid.
func Aggregate(orders []entity.Order, entries []entity.ItemPayment, bill BillState) []Row {
	live := NewLive(orders)
	return aggregate(live, NewLedger(entries, live), bill)
}

func aggregate(live *Live, ledger *Ledger, bill BillState) []Row {
	var rows []Row
	index := make(map[Key]int)

	for _, it := range live.Items() {
		if i, ok := index[it.Key]; ok {
			rows[i].TotalQuantity += it.Item.Quantity
			rows[i].refs = append(rows[i].refs, it.Ref)
			continue
		}
		index[it.Key] = len(rows)
		addons := make([]entity.Addon, len(it.Item.Addons))
		copy(addons, it.Item.Addons)
		rows = append(rows, Row{
			ID:            it.Ref.String(),
			Name:          it.Item.Name,
			Price:         it.Item.Price,
			UnitPrice:     it.UnitPrice(),
			Addons:        addons,
			OrderID:       it.Ref.OrderID,
			TotalQuantity: it.Item.Quantity,
			key:           it.Key,
			refs:          []Ref{it.Ref},
		})
	}

	fast := bill.settled()
	for i := range rows {
		r := &rows[i]
		if fast {
			r.PaidQuantity = r.TotalQuantity
		} else {
			r.PaidQuantity = paidQuantity(live, ledger, r.refs)
		}
		r.RemainingQuantity = r.TotalQuantity - r.PaidQuantity
		if r.RemainingQuantity < 0 {
			r.RemainingQuantity = 0
		}
	}
	return rows
}

func paidQuantity(live *Live, ledger *Ledger, refs []Ref) int {
	total := 0
	for _, ref := range refs {
		it, ok := live.Get(ref)
		if !ok {
			continue
		}
		total += ledger.Paid(ref, it.Item.Quantity)
	}
	return total
}

// Settled reports whether every row is fully paid. An empty list is settled.
func Settled(rows []Row) bool {
	for _, r := range rows {
		if r.RemainingQuantity > 0 {
			return false
		}
	}
	return true
}
