package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
)

// LiveItem is an order line that exists right now.
type LiveItem struct {
	Ref      Ref
	Position int
	Key      Key
	Item     entity.OrderItem
}

// UnitPrice is the price of one unit including addons.
func (l *LiveItem) UnitPrice() int64 {
	return l.Item.UnitPrice()
}

type slot struct {
	orderID  uuid.UUID
	position int
}

// Live is the set of order lines currently on a bill. It is rebuilt from the
// orders every time it is needed and never stored.
type Live struct {
	items  []LiveItem
	byRef  map[Ref]int
	bySlot map[slot]int
}

// NewLive collects the lines of all non-cancelled orders. Orders are walked
// oldest first and lines by position, which is the order payments are
// spread in.
func NewLive(orders []entity.Order) *Live {
	sorted := make([]*entity.Order, 0, len(orders))
	for i := range orders {
		if orders[i].Cancelled() {
			continue
		}
		sorted = append(sorted, &orders[i])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	l := &Live{
		byRef:  make(map[Ref]int),
		bySlot: make(map[slot]int),
	}
	for _, o := range sorted {
		items := make([]entity.OrderItem, len(o.Items))
		copy(items, o.Items)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

		for _, it := range items {
			if it.Quantity <= 0 {
				continue
			}
			ref := Ref{OrderID: o.ID, ItemID: it.ID}
			if _, dup := l.byRef[ref]; dup {
				continue
			}
			l.byRef[ref] = len(l.items)
			l.bySlot[slot{o.ID, it.Position}] = len(l.items)
			l.items = append(l.items, LiveItem{
				Ref:      ref,
				Position: it.Position,
				Key:      KeyOf(&it),
				Item:     it,
			})
		}
	}
	return l
}

// Items returns the live lines in walk order.
func (l *Live) Items() []LiveItem {
	return l.items
}

// Get returns the live line for ref.
func (l *Live) Get(ref Ref) (*LiveItem, bool) {
	i, ok := l.byRef[ref]
	if !ok {
		return nil, false
	}
	return &l.items[i], true
}

// WithKey returns the live lines sharing key, in walk order.
func (l *Live) WithKey(key Key) []*LiveItem {
	var out []*LiveItem
	for i := range l.items {
		if l.items[i].Key == key {
			out = append(out, &l.items[i])
		}
	}
	return out
}

// Resolve finds the live line a ledger entry belongs to. Entries with an
// item id match on it; older entries only know their slot in the order and
// match whatever line sits there now. Either way the line must still have
// the grouping key the entry was written for, so a payment never carries
// over to a different product.
func (l *Live) Resolve(e *entity.ItemPayment) (*LiveItem, bool) {
	var (
		i  int
		ok bool
	)
	if e.ItemID != uuid.Nil {
		i, ok = l.byRef[Ref{OrderID: e.OrderID, ItemID: e.ItemID}]
	} else {
		i, ok = l.bySlot[slot{e.OrderID, e.Position}]
	}
	if !ok {
		return nil, false
	}
	if l.items[i].Key != keyOfEntry(e) {
		return nil, false
	}
	return &l.items[i], true
}
