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

func TestPayPartOfSingleLine(t *testing.T) {
	orders := []entity.Order{order(t0, item("Tea", 1000, 3))}
	rows := Aggregate(orders, nil, BillState{})

	delta, err := ApplyPayment(orders, nil, payRequest(RequestItem{RowID: rows[0].ID, Quantity: 2}))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), delta.Applied)
	require.Len(t, delta.Entries, 1)

	e := delta.Entries[0]
	require.NotNil(t, e.PaidQuantity)
	assert.Equal(t, 2, *e.PaidQuantity)
	assert.Equal(t, int64(2000), e.PaidAmount)
	assert.Equal(t, int64(3000), e.TotalPrice)
	assert.False(t, e.IsPaid)
	require.Len(t, e.History, 1)
	assert.Equal(t, entity.PaymentRecord{Quantity: 2, Amount: 2000, PaidAt: t0, PayerID: cashier, Method: enum.PaymentMethodCash}, e.History[0])

	rows = Aggregate(orders, delta.Entries, BillState{})
	assert.Equal(t, 3, rows[0].TotalQuantity)
	assert.Equal(t, 2, rows[0].PaidQuantity)
	assert.Equal(t, 1, rows[0].RemainingQuantity)

	out := Recompute(&entity.Bill{Status: enum.BillStatusDraft, Paid: 2000, Orders: orders, ItemPayments: delta.Entries}, t0)
	assert.Equal(t, int64(2000), out.Paid)
	assert.Equal(t, int64(1000), out.Remaining)
	assert.Equal(t, enum.BillStatusPartial, out.Status)
	assert.Nil(t, out.Warning)
}

func TestPaySpreadsAcrossOrdersSharingKey(t *testing.T) {
	orders := []entity.Order{
		order(t0, item("Tea", 1000, 2)),
		order(t0.Add(time.Minute), item("Tea", 1000, 2)),
	}
	rows := Aggregate(orders, nil, BillState{})
	require.Len(t, rows, 1)

	delta, err := ApplyPayment(orders, nil, payRequest(RequestItem{RowID: rows[0].ID, Quantity: 3}))
	require.NoError(t, err)
	require.Len(t, delta.Entries, 2)
	require.Len(t, delta.Allocations, 2)

	assert.Equal(t, orders[0].Items[0].ID, delta.Entries[0].ItemID)
	assert.Equal(t, 2, *delta.Entries[0].PaidQuantity)
	assert.True(t, delta.Entries[0].IsPaid)
	assert.Equal(t, orders[1].Items[0].ID, delta.Entries[1].ItemID)
	assert.Equal(t, 1, *delta.Entries[1].PaidQuantity)
	for _, e := range delta.Entries {
		assert.LessOrEqual(t, *e.PaidQuantity, e.Quantity)
		assert.Equal(t, int64(*e.PaidQuantity)*e.UnitPrice, e.PaidAmount)
	}

	rows = Aggregate(orders, delta.Entries, BillState{})
	assert.Equal(t, 4, rows[0].TotalQuantity)
	assert.Equal(t, 3, rows[0].PaidQuantity)
}

func TestOverpaymentLeavesLedgerUntouched(t *testing.T) {
	orders := []entity.Order{order(t0, item("Tea", 1000, 3))}
	rows := Aggregate(orders, nil, BillState{})
	first, err := ApplyPayment(orders, nil, payRequest(RequestItem{RowID: rows[0].ID, Quantity: 2}))
	require.NoError(t, err)

	entries := first.Entries
	before := cloneEntries(entries)

	delta, err := ApplyPayment(orders, entries, payRequest(RequestItem{RowID: rows[0].ID, Quantity: 2}))
	require.Error(t, err)
	assert.Nil(t, delta)

	var over *OverpaymentError
	require.ErrorAs(t, err, &over)
	assert.Equal(t, 2, over.Requested)
	assert.Equal(t, 1, over.Available)
	assert.Equal(t, before, entries)

	out := Recompute(&entity.Bill{Paid: 2000, Orders: orders, ItemPayments: entries}, t0)
	assert.Equal(t, int64(2000), out.Paid)
}

func TestOverpaymentInLaterItemRejectsWholeRequest(t *testing.T) {
	orders := []entity.Order{order(t0, item("Tea", 1000, 3), item("Cake", 3000, 1))}
	rows := Aggregate(orders, nil, BillState{})

	_, err := ApplyPayment(orders, nil, payRequest(
		RequestItem{RowID: rowByName(rows, "Tea").ID, Quantity: 1},
		RequestItem{RowID: rowByName(rows, "Cake").ID, Quantity: 2},
	))
	var over *OverpaymentError
	require.ErrorAs(t, err, &over)
	assert.Equal(t, "Cake", over.Name)
}

func TestRepeatedRowInOneRequestCountsTogether(t *testing.T) {
	orders := []entity.Order{order(t0, item("Tea", 1000, 3))}
	rows := Aggregate(orders, nil, BillState{})

	_, err := ApplyPayment(orders, nil, payRequest(
		RequestItem{RowID: rows[0].ID, Quantity: 2},
		RequestItem{RowID: rows[0].ID, Quantity: 2},
	))
	var over *OverpaymentError
	require.ErrorAs(t, err, &over)
	assert.Equal(t, 1, over.Available)

	delta, err := ApplyPayment(orders, nil, payRequest(
		RequestItem{RowID: rows[0].ID, Quantity: 2},
		RequestItem{RowID: rows[0].ID, Quantity: 1},
	))
	require.NoError(t, err)
	require.Len(t, delta.Entries, 1)
	assert.Equal(t, 3, *delta.Entries[0].PaidQuantity)
	assert.True(t, delta.Entries[0].IsPaid)
	assert.Len(t, delta.Entries[0].History, 2)
	assert.Equal(t, int64(3000), delta.Applied)
}

func TestPaymentValidation(t *testing.T) {
	orders := []entity.Order{order(t0, item("Tea", 1000, 3))}
	rowID := Aggregate(orders, nil, BillState{})[0].ID

	cases := []struct {
		name  string
		req   PaymentRequest
		field string
	}{
		{"no items", payRequest(), "items"},
		{"zero quantity", payRequest(RequestItem{RowID: rowID, Quantity: 0}), "items[0].quantity"},
		{"negative quantity", payRequest(RequestItem{RowID: rowID, Quantity: -1}), "items[0].quantity"},
		{"malformed row", payRequest(RequestItem{RowID: "tea", Quantity: 1}), "items[0].row_id"},
		{"unknown row", payRequest(RequestItem{RowID: Ref{OrderID: uuid.New(), ItemID: uuid.New()}.String(), Quantity: 1}), "items[0].row_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ApplyPayment(orders, nil, tc.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	req := payRequest(RequestItem{RowID: rowID, Quantity: 1})
	req.Method = "cheque"
	_, err := ApplyPayment(orders, nil, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "method", verr.Field)

	req = payRequest(RequestItem{RowID: rowID, Quantity: 1})
	req.PayerID = uuid.Nil
	_, err = ApplyPayment(orders, nil, req)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payer_id", verr.Field)
}

func TestStaleRowIsRejected(t *testing.T) {
	o := order(t0, item("Tea", 1000, 1))
	orders := []entity.Order{o}
	rowID := Aggregate(orders, nil, BillState{})[0].ID
	delta, err := ApplyPayment(orders, nil, payRequest(RequestItem{RowID: rowID, Quantity: 1}))
	require.NoError(t, err)

	o.Items = nil
	_, err = ApplyPayment([]entity.Order{o}, delta.Entries, payRequest(RequestItem{RowID: rowID, Quantity: 1}))
	var stale *StaleReferenceError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "Tea", stale.Name)
}

func TestRowIDOfRemovedLineStillReachesItsGroup(t *testing.T) {
	first := order(t0, item("Tea", 1000, 1))
	second := order(t0.Add(time.Minute), item("Tea", 1000, 2))
	orders := []entity.Order{first, second}
	rowID := Aggregate(orders, nil, BillState{})[0].ID

	entries, _ := Materialize(orders, nil)
	first.Items = nil
	orders = []entity.Order{first, second}

	delta, err := ApplyPayment(orders, entries, payRequest(RequestItem{RowID: rowID, Quantity: 2}))
	require.NoError(t, err)
	require.Len(t, delta.Allocations, 1)
	assert.Equal(t, second.Items[0].ID, delta.Allocations[0].Ref.ItemID)
}

func TestPaymentUpgradesLegacyEntry(t *testing.T) {
	o := order(t0, item("Tea", 1000, 3))
	orders := []entity.Order{o}
	entries := []entity.ItemPayment{
		{OrderID: o.ID, Position: 0, Name: "Tea", Price: 1000, Quantity: 3, PaidAmount: 1000},
	}
	rowID := Aggregate(orders, entries, BillState{})[0].ID

	delta, err := ApplyPayment(orders, entries, payRequest(RequestItem{RowID: rowID, Quantity: 2}))
	require.NoError(t, err)
	require.Len(t, delta.Entries, 1)

	e := delta.Entries[0]
	assert.Equal(t, o.Items[0].ID, e.ItemID)
	require.NotNil(t, e.PaidQuantity)
	assert.Equal(t, 3, *e.PaidQuantity)
	assert.Equal(t, int64(3000), e.PaidAmount)
	assert.Equal(t, int64(1000), e.UnitPrice)
	assert.True(t, e.IsPaid)

	assert.Equal(t, uuid.Nil, entries[0].ItemID)
	assert.Nil(t, entries[0].PaidQuantity)
}

func TestRemovedPaidLineIsNotRefundedNorDoubleCounted(t *testing.T) {
	first := order(t0, item("Tea", 1000, 3))
	second := order(t0.Add(time.Minute), item("Tea", 1000, 3))
	orders := []entity.Order{first, second}
	rowID := Aggregate(orders, nil, BillState{})[0].ID

	delta, err := ApplyPayment(orders, nil, payRequest(RequestItem{RowID: rowID, Quantity: 1}))
	require.NoError(t, err)
	bill := &entity.Bill{Status: enum.BillStatusPartial, Paid: 1000, Orders: orders, ItemPayments: delta.Entries}

	// the partly paid line is removed
	first.Items = nil
	bill.Orders = []entity.Order{first, second}

	out := Recompute(bill, t0)
	assert.Equal(t, int64(3000), out.Total)
	assert.Equal(t, int64(1000), out.Paid, "money already taken stays on the bill")
	assert.Equal(t, int64(2000), out.Remaining)
	assert.Nil(t, out.Warning)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, 3, out.Rows[0].TotalQuantity)
	assert.Equal(t, 0, out.Rows[0].PaidQuantity)

	// the sibling line can still be paid in full
	rows := Aggregate(bill.Orders, bill.ItemPayments, BillState{Status: bill.Status, Paid: bill.Paid, Total: out.Total})
	delta, err = ApplyPayment(bill.Orders, bill.ItemPayments, payRequest(RequestItem{RowID: rows[0].ID, Quantity: 3}))
	require.NoError(t, err)
	bill.ItemPayments = delta.Entries
	bill.Paid += delta.Applied

	out = Recompute(bill, t0)
	assert.Equal(t, int64(4000), out.Paid)
	assert.Zero(t, out.Remaining)
	assert.Equal(t, enum.BillStatusPaid, out.Status)
	assert.Nil(t, out.Warning)

	_, err = ApplyPayment(bill.Orders, bill.ItemPayments, payRequest(RequestItem{RowID: rows[0].ID, Quantity: 1}))
	var over *OverpaymentError
	assert.ErrorAs(t, err, &over)
}

func TestPaidEqualsLedgerSumAfterEveryPayment(t *testing.T) {
	orders := []entity.Order{
		order(t0, item("Tea", 1000, 2), item("Cake", 3000, 1, entity.Addon{Name: "Cream", Price: 500})),
		order(t0.Add(time.Minute), item("Tea", 1000, 3)),
	}
	var entries []entity.ItemPayment
	var paid int64

	steps := [][2]any{{"Tea", 1}, {"Cake", 1}, {"Tea", 3}, {"Tea", 1}}
	for _, step := range steps {
		rows := Aggregate(orders, entries, BillState{})
		delta, err := ApplyPayment(orders, entries, payRequest(RequestItem{RowID: rowByName(rows, step[0].(string)).ID, Quantity: step[1].(int)}))
		require.NoError(t, err)
		entries = delta.Entries
		paid += delta.Applied

		var sum int64
		for _, e := range entries {
			sum += e.PaidAmount
		}
		assert.Equal(t, paid, sum)
	}
	assert.Equal(t, int64(5*1000+3500), paid)

	out := Recompute(&entity.Bill{Paid: paid, Orders: orders, ItemPayments: entries}, t0)
	assert.Equal(t, enum.BillStatusPaid, out.Status)
}

func TestPaymentCarriesCreditOfAmountOnlyEntry(t *testing.T) {
	o := order(t0, item("Tea", 1000, 3))
	orders := []entity.Order{o}
	entries := []entity.ItemPayment{
		{OrderID: o.ID, Position: 0, Name: "Tea", Price: 1000, Quantity: 3, PaidAmount: 1500},
	}
	rowID := Aggregate(orders, entries, BillState{})[0].ID

	delta, err := ApplyPayment(orders, entries, payRequest(RequestItem{RowID: rowID, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), delta.Applied)

	e := delta.Entries[0]
	require.NotNil(t, e.PaidQuantity)
	assert.Equal(t, 2, *e.PaidQuantity)
	assert.Equal(t, int64(500), e.Credit)
	assert.Equal(t, int64(2500), e.PaidAmount)

	bill := &entity.Bill{Orders: orders, ItemPayments: delta.Entries, Paid: 2500}
	out := Recompute(bill, t0)
	assert.Equal(t, int64(2500), out.Paid)
	assert.Nil(t, out.Warning)
}

func TestResyncFollowsQuantityEdit(t *testing.T) {
	orders := []entity.Order{order(t0, item("Tea", 1000, 3))}
	rowID := Aggregate(orders, nil, BillState{})[0].ID
	delta, err := ApplyPayment(orders, nil, payRequest(RequestItem{RowID: rowID, Quantity: 3}))
	require.NoError(t, err)
	require.True(t, delta.Entries[0].IsPaid)

	orders[0].Items[0].Quantity = 5
	entries, changed := Resync(orders, delta.Entries)
	require.True(t, changed)
	e := entries[0]
	assert.Equal(t, 5, e.Quantity)
	assert.Equal(t, int64(5000), e.TotalPrice)
	assert.Equal(t, 3, *e.PaidQuantity)
	assert.Equal(t, int64(3000), e.PaidAmount)
	assert.False(t, e.IsPaid)
	assert.Len(t, e.History, 1)
	assert.Equal(t, 3, delta.Entries[0].Quantity)

	_, changed = Resync(orders, entries)
	assert.False(t, changed)
}

func TestResyncUpgradesFlagEntry(t *testing.T) {
	o := order(t0, item("Tea", 1000, 5))
	entries := []entity.ItemPayment{
		{OrderID: o.ID, Position: 0, Name: "Tea", Price: 1000, Quantity: 3, IsPaid: true},
	}

	out, changed := Resync([]entity.Order{o}, entries)
	require.True(t, changed)
	e := out[0]
	assert.Equal(t, o.Items[0].ID, e.ItemID)
	require.NotNil(t, e.PaidQuantity)
	assert.Equal(t, 3, *e.PaidQuantity)
	assert.Equal(t, 5, e.Quantity)
	assert.False(t, e.IsPaid)
	assert.Equal(t, int64(3000), e.PaidAmount)
}
