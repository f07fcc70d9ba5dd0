package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
)

// Ref identifies one concrete order line: the owning order and the line's
// durable id. It is the unit payments are tracked against.
type Ref struct {
	OrderID uuid.UUID
	ItemID  uuid.UUID
}

func (r Ref) String() string {
	return r.OrderID.String() + ":" + r.ItemID.String()
}

// ParseRef parses the "<order id>:<item id>" form produced by Ref.String.
func ParseRef(s string) (Ref, error) {
	orderPart, itemPart, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, fmt.Errorf("ledger: malformed row id %q", s)
	}
	orderID, err := uuid.Parse(orderPart)
	if err != nil {
		return Ref{}, fmt.Errorf("ledger: malformed row id %q: %w", s, err)
	}
	itemID, err := uuid.Parse(itemPart)
	if err != nil {
		return Ref{}, fmt.Errorf("ledger: malformed row id %q: %w", s, err)
	}
	return Ref{OrderID: orderID, ItemID: itemID}, nil
}

// Key is the grouping key of a line item. Lines with equal keys are shown as
// one row.
type Key string

// GroupingKey builds the key from a name, a base price in cents and the
// addons. Names are case and whitespace insensitive and addon order does not
// matter.
func GroupingKey(name string, price int64, addons []entity.Addon) Key {
	parts := make([]string, 0, len(addons))
	for _, a := range addons {
		parts = append(parts, normalizeName(a.Name)+":"+strconv.FormatInt(a.Price, 10))
	}
	sort.Strings(parts)

	var b strings.Builder
	b.WriteString(normalizeName(name))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(price, 10))
	b.WriteByte('|')
	b.WriteString(strings.Join(parts, ","))
	return Key(b.String())
}

// KeyOf returns the grouping key of a live order line.
func KeyOf(item *entity.OrderItem) Key {
	return GroupingKey(item.Name, item.Price, item.Addons)
}

func keyOfEntry(e *entity.ItemPayment) Key {
	return GroupingKey(e.Name, e.Price, e.Addons)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func unitPrice(price int64, addons []entity.Addon) int64 {
	for _, a := range addons {
		price += a.Price
	}
	return price
}
