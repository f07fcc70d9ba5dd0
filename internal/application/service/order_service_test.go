package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderRefreshesBill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bill := env.openBill(t, "Bar 1")

	order := env.addOrder(t, bill.ID,
		OrderItemInput{Name: "Latte", Price: 35, Quantity: 2, Addons: []AddonInput{{Name: "Oat milk", Price: 5}}},
		tea(1),
	)
	require.Len(t, order.Items, 2)
	assert.NotEqual(t, uuid.Nil, order.Items[0].ID)
	assert.Equal(t, 0, order.Items[0].Position)
	assert.Equal(t, 1, order.Items[1].Position)
	assert.Equal(t, int64(4000), order.Items[0].UnitPrice())

	stored, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), stored.Total)
	assert.Equal(t, int64(9000), stored.Remaining)
	assert.Len(t, stored.ItemPayments, 2)
	assert.Equal(t, enum.BillStatusDraft, stored.Status)
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	bill := env.openBill(t, "T1")

	_, err := env.orders.CreateOrder(context.Background(), bill.ID, &CreateOrderInput{
		UserID: cashier,
		Items:  []OrderItemInput{{Name: "", Price: -1, Quantity: 0}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, appErrorCode(err))

	_, err = env.orders.CreateOrder(context.Background(), uuid.New(), &CreateOrderInput{UserID: cashier, Items: []OrderItemInput{tea(1)}})
	assert.Equal(t, http.StatusNotFound, appErrorCode(err))
}

func TestQuantityEditKeepsPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bill := env.openBill(t, "T1")
	order := env.addOrder(t, bill.ID, tea(3))
	_, err := env.pay(bill.ID, env.rows(t, bill.ID)[0].ID, 2)
	require.NoError(t, err)

	qty := 5
	updated, err := env.orders.UpdateItem(ctx, order.ID, order.Items[0].ID, &UpdateItemInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, order.Items[0].ID, updated.Items[0].ID)

	rows := env.rows(t, bill.ID)
	assert.Equal(t, 5, rows[0].TotalQuantity)
	assert.Equal(t, 2, rows[0].PaidQuantity)

	stored, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), stored.Total)
	assert.Equal(t, int64(2000), stored.Paid)
	assert.Equal(t, enum.BillStatusPartial, stored.Status)
}

func TestProductEditStartsFreshLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bill := env.openBill(t, "T1")
	order := env.addOrder(t, bill.ID, tea(3))
	_, err := env.pay(bill.ID, env.rows(t, bill.ID)[0].ID, 1)
	require.NoError(t, err)

	name := "Green tea"
	updated, err := env.orders.UpdateItem(ctx, order.ID, order.Items[0].ID, &UpdateItemInput{Name: &name})
	require.NoError(t, err)
	assert.NotEqual(t, order.Items[0].ID, updated.Items[0].ID)
	assert.Equal(t, 0, updated.Items[0].Position)

	rows := env.rows(t, bill.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "Green tea", rows[0].Name)
	assert.Zero(t, rows[0].PaidQuantity)

	stored, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stored.Paid, "earlier payment stays on the bill")
	assert.Equal(t, int64(2000), stored.Remaining)
	assert.Len(t, stored.ItemPayments, 2)
}

func TestRemoveItemReindexesAndKeepsPaidMoney(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bill := env.openBill(t, "T1")
	first := env.addOrder(t, bill.ID, tea(3), OrderItemInput{Name: "Cake", Price: 30, Quantity: 1}, OrderItemInput{Name: "Soda", Price: 8, Quantity: 2})
	env.addOrder(t, bill.ID, tea(3))

	teaRow := rowNamed(env.rows(t, bill.ID), "Tea")
	_, err := env.pay(bill.ID, teaRow.ID, 1)
	require.NoError(t, err)

	updated, err := env.orders.RemoveItem(ctx, first.ID, first.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, "Cake", updated.Items[0].Name)
	assert.Equal(t, 0, updated.Items[0].Position)
	assert.Equal(t, 1, updated.Items[1].Position)

	rows := env.rows(t, bill.ID)
	tea := rowNamed(rows, "Tea")
	assert.Equal(t, 3, tea.TotalQuantity)
	assert.Zero(t, tea.PaidQuantity)

	stored, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000+3000+1600), stored.Total)
	assert.Equal(t, int64(1000), stored.Paid)

	_, err = env.orders.RemoveItem(ctx, first.ID, uuid.New())
	assert.Equal(t, http.StatusNotFound, appErrorCode(err))
}

func TestAddItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bill := env.openBill(t, "T1")
	order := env.addOrder(t, bill.ID, tea(1))

	updated, err := env.orders.AddItems(ctx, order.ID, &AddItemsInput{Items: []OrderItemInput{{Name: "Cake", Price: 30, Quantity: 2}}})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, order.Items[0].ID, updated.Items[0].ID)
	assert.Equal(t, 1, updated.Items[1].Position)

	stored, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), stored.Total)
	assert.Len(t, stored.ItemPayments, 2)
}

func TestCancelOrderDropsLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bill := env.openBill(t, "T1")
	keep := env.addOrder(t, bill.ID, tea(1))
	drop := env.addOrder(t, bill.ID, OrderItemInput{Name: "Cake", Price: 30, Quantity: 1})

	cancelled, err := env.orders.CancelOrder(ctx, drop.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCancelled, cancelled.Status)

	rows := env.rows(t, bill.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, keep.ID, rows[0].OrderID)

	stored, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stored.Total)

	_, err = env.orders.CancelOrder(ctx, drop.ID)
	assert.Equal(t, http.StatusBadRequest, appErrorCode(err))

	_, err = env.orders.AddItems(ctx, drop.ID, &AddItemsInput{Items: []OrderItemInput{tea(1)}})
	assert.Equal(t, http.StatusBadRequest, appErrorCode(err))
}

func TestAddonReorderKeepsPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bill := env.openBill(t, "T1")
	order := env.addOrder(t, bill.ID, OrderItemInput{
		Name:     "Latte",
		Price:    10,
		Quantity: 2,
		Addons:   []AddonInput{{Name: "Oat milk", Price: 2}, {Name: "Extra shot", Price: 1}},
	})
	rowID := env.rows(t, bill.ID)[0].ID
	_, err := env.pay(bill.ID, rowID, 2)
	require.NoError(t, err)

	name := "  latte "
	addons := []AddonInput{{Name: "Extra shot", Price: 1}, {Name: "oat milk", Price: 2}}
	updated, err := env.orders.UpdateItem(ctx, order.ID, order.Items[0].ID, &UpdateItemInput{Name: &name, Addons: &addons})
	require.NoError(t, err)
	assert.Equal(t, order.Items[0].ID, updated.Items[0].ID)

	rows := env.rows(t, bill.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].PaidQuantity)
	assert.Zero(t, rows[0].RemainingQuantity)

	_, err = env.pay(bill.ID, rows[0].ID, 1)
	assert.Equal(t, http.StatusConflict, appErrorCode(err))

	stored, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2600), stored.Total)
	assert.Equal(t, int64(2600), stored.Paid)
	assert.Equal(t, enum.BillStatusPaid, stored.Status)
}
