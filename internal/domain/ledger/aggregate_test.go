package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateMergesIdenticalItemsAcrossOrders(t *testing.T) {
	orders := []entity.Order{
		order(t0, item("Tea", 1000, 1), item("Nachos", 4500, 1)),
		order(t0.Add(time.Minute), item("tea", 1000, 1)),
		order(t0.Add(2*time.Minute), item("Tea", 1000, 1), item("Tea", 1000, 1, entity.Addon{Name: "Lemon", Price: 200})),
	}

	rows := Aggregate(orders, nil, BillState{})
	require.Len(t, rows, 3)

	tea := rows[0]
	assert.Equal(t, "Tea", tea.Name)
	assert.Equal(t, 3, tea.TotalQuantity)
	assert.Equal(t, 0, tea.PaidQuantity)
	assert.Equal(t, 3, tea.RemainingQuantity)
	assert.Equal(t, Ref{OrderID: orders[0].ID, ItemID: orders[0].Items[0].ID}.String(), tea.ID)
	assert.Equal(t, orders[0].ID, tea.OrderID)

	lemon := rows[2]
	assert.Equal(t, 1, lemon.TotalQuantity)
	assert.Equal(t, int64(1200), lemon.UnitPrice)
	assert.Equal(t, int64(1000), lemon.Price)
}

func TestAggregateConservesQuantity(t *testing.T) {
	orders := []entity.Order{
		order(t0, item("Tea", 1000, 3), item("Coffee", 1500, 2)),
		order(t0.Add(time.Minute), item("Coffee", 1500, 4), item("Cake", 3000, 1)),
		order(t0.Add(2*time.Minute), item("Tea", 1000, 5)),
	}
	live := 0
	for _, o := range orders {
		for _, it := range o.Items {
			live += it.Quantity
		}
	}

	sum := 0
	for _, r := range Aggregate(orders, nil, BillState{}) {
		sum += r.TotalQuantity
		assert.GreaterOrEqual(t, r.PaidQuantity, 0)
		assert.LessOrEqual(t, r.PaidQuantity, r.TotalQuantity)
	}
	assert.Equal(t, live, sum)
}

func TestAggregateSkipsCancelledOrders(t *testing.T) {
	cancelled := order(t0, item("Tea", 1000, 2))
	cancelled.Status = enum.OrderStatusCancelled
	orders := []entity.Order{cancelled, order(t0.Add(time.Minute), item("Tea", 1000, 1))}

	rows := Aggregate(orders, nil, BillState{})
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalQuantity)
}

func TestAggregateFullySettledBillSkipsLedger(t *testing.T) {
	orders := []entity.Order{
		order(t0, item("Tea", 1000, 3)),
		order(t0.Add(time.Minute), item("Cake", 3000, 1)),
	}

	rows := Aggregate(orders, nil, BillState{Status: enum.BillStatusPaid, Paid: 6000, Total: 6000})
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, r.TotalQuantity, r.PaidQuantity, r.Name)
		assert.Zero(t, r.RemainingQuantity, r.Name)
	}

	// a paid status alone is not enough
	rows = Aggregate(orders, nil, BillState{Status: enum.BillStatusPaid, Paid: 5000, Total: 6000})
	for _, r := range rows {
		assert.Zero(t, r.PaidQuantity, r.Name)
	}
}

func TestAggregateReadsEveryLedgerShape(t *testing.T) {
	o := order(t0,
		item("Tea", 1000, 3),
		item("Coffee", 1500, 2),
		item("Cake", 3000, 4),
		item("Soda", 800, 2),
	)
	entries := []entity.ItemPayment{
		{OrderID: o.ID, ItemID: o.Items[0].ID, Name: "Tea", Price: 1000, UnitPrice: 1000, Quantity: 3, PaidQuantity: intPtr(2)},
		// legacy: amount only
		{OrderID: o.ID, ItemID: o.Items[1].ID, Name: "Coffee", Price: 1500, Quantity: 2, PaidAmount: 1500},
		// legacy: no item id, matched by position, flag only
		{OrderID: o.ID, Position: 2, Name: "Cake", Price: 3000, Quantity: 4, IsPaid: true},
		// quantity field wins over the others
		{OrderID: o.ID, ItemID: o.Items[3].ID, Name: "Soda", Price: 800, Quantity: 2, PaidQuantity: intPtr(0), IsPaid: true, PaidAmount: 1600},
	}

	rows := Aggregate([]entity.Order{o}, entries, BillState{Status: enum.BillStatusPartial})
	assert.Equal(t, 2, rowByName(rows, "Tea").PaidQuantity)
	assert.Equal(t, 1, rowByName(rows, "Coffee").PaidQuantity)
	assert.Equal(t, 4, rowByName(rows, "Cake").PaidQuantity)
	assert.Equal(t, 0, rowByName(rows, "Soda").PaidQuantity)

	shapes := Normalize(entries)
	assert.Equal(t, []Shape{ShapeQuantity, ShapeAmount, ShapeFlag, ShapeQuantity},
		[]Shape{shapes[0].Shape, shapes[1].Shape, shapes[2].Shape, shapes[3].Shape})
}

func TestAggregateCapsPaidAtCurrentQuantity(t *testing.T) {
	o := order(t0, item("Tea", 1000, 2))
	entries := []entity.ItemPayment{
		// recorded when the line still had 5
		{OrderID: o.ID, ItemID: o.Items[0].ID, Name: "Tea", Price: 1000, UnitPrice: 1000, Quantity: 5, PaidQuantity: intPtr(4)},
	}

	rows := Aggregate([]entity.Order{o}, entries, BillState{})
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].PaidQuantity)
	assert.Equal(t, 0, rows[0].RemainingQuantity)
}

func TestAggregateIgnoresEntryWhenPositionNowHoldsAnotherProduct(t *testing.T) {
	o := order(t0, item("Coffee", 1500, 2))
	entries := []entity.ItemPayment{
		{OrderID: o.ID, Position: 0, Name: "Tea", Price: 1000, Quantity: 2, IsPaid: true},
	}

	rows := Aggregate([]entity.Order{o}, entries, BillState{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Coffee", rows[0].Name)
	assert.Zero(t, rows[0].PaidQuantity)
}

func TestAggregatePaymentDoesNotSpillOntoSiblingLine(t *testing.T) {
	first := order(t0, item("Tea", 1000, 3))
	second := order(t0.Add(time.Minute), item("Tea", 1000, 3))
	entries := []entity.ItemPayment{
		{OrderID: first.ID, ItemID: first.Items[0].ID, Name: "Tea", Price: 1000, UnitPrice: 1000, Quantity: 3, PaidQuantity: intPtr(1)},
	}

	// the paid line is removed from the first order
	first.Items = nil
	rows := Aggregate([]entity.Order{first, second}, entries, BillState{})
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].TotalQuantity)
	assert.Equal(t, 0, rows[0].PaidQuantity)

	// the only order with tea goes away entirely
	rows = Aggregate([]entity.Order{first}, entries, BillState{})
	assert.Empty(t, rows)
}

func TestMaterializeAddsMissingEntriesOnce(t *testing.T) {
	o := order(t0, item("Tea", 1000, 3), item("Cake", 3000, 1))
	existing := []entity.ItemPayment{
		{OrderID: o.ID, ItemID: o.Items[0].ID, Name: "Tea", Price: 1000, UnitPrice: 1000, Quantity: 3, PaidQuantity: intPtr(1)},
	}

	out, changed := Materialize([]entity.Order{o}, existing)
	require.True(t, changed)
	require.Len(t, out, 2)
	assert.Equal(t, o.Items[1].ID, out[1].ItemID)
	require.NotNil(t, out[1].PaidQuantity)
	assert.Zero(t, *out[1].PaidQuantity)
	assert.Equal(t, int64(3000), out[1].TotalPrice)
	assert.Len(t, existing, 1)

	again, changed := Materialize([]entity.Order{o}, out)
	assert.False(t, changed)
	assert.Equal(t, out, again)
}

func TestLiveResolveRejectsUnknownOrder(t *testing.T) {
	live := NewLive([]entity.Order{order(t0, item("Tea", 1000, 1))})
	_, ok := live.Resolve(&entity.ItemPayment{OrderID: uuid.New(), ItemID: uuid.New(), Name: "Tea", Price: 1000})
	assert.False(t, ok)
}
