package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/venue-pos-api/internal/config"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/ledger"
	"github.com/sangkips/venue-pos-api/internal/domain/repository"
	"github.com/sangkips/venue-pos-api/internal/infrastructure/database"
	"github.com/sangkips/venue-pos-api/internal/infrastructure/metrics"
	infraRepo "github.com/sangkips/venue-pos-api/internal/infrastructure/repository"
	"github.com/sangkips/venue-pos-api/pkg/apperror"
	"github.com/sangkips/venue-pos-api/pkg/logger"
	"github.com/sangkips/venue-pos-api/pkg/printer"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	cashier = uuid.MustParse("0b7d3c55-5d0e-4f0c-8c43-7f3a6f1f2a10")
	t0      = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
)

type testEnv struct {
	db       *gorm.DB
	billRepo repository.BillRepository
	metrics  *metrics.Metrics
	bills    *BillService
	orders   *OrderService
	printer  *PrinterService
	recorder *printer.Recorder
	idem     repository.IdempotencyRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewSQLiteDB("file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		db:       db,
		billRepo: infraRepo.NewBillRepository(db),
		metrics:  metrics.New(prometheus.NewRegistry()),
		recorder: &printer.Recorder{},
		idem:     infraRepo.NewIdempotencyRepository(db),
	}
	return env.wire(env.billRepo)
}

// wire (re)builds the services on top of billRepo.
func (e *testEnv) wire(billRepo repository.BillRepository) *testEnv {
	log := logger.Discard()
	e.bills = NewBillService(billRepo, e.metrics, log, config.BillingConfig{MaxSaveRetries: 3})
	e.orders = NewOrderService(infraRepo.NewOrderRepository(e.db), billRepo, e.bills, log)
	e.printer = NewPrinterService(e.recorder, e.bills, config.PrinterConfig{Width: 32, StoreName: "Pixel Cafe"}, log)
	return e
}

func (e *testEnv) openBill(t *testing.T, table string) *entity.Bill {
	t.Helper()
	bill, err := e.bills.CreateBill(context.Background(), &CreateBillInput{UserID: cashier, TableLabel: table})
	require.NoError(t, err)
	return bill
}

func (e *testEnv) addOrder(t *testing.T, billID uuid.UUID, items ...OrderItemInput) *entity.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(context.Background(), billID, &CreateOrderInput{UserID: cashier, Items: items})
	require.NoError(t, err)
	return order
}

func (e *testEnv) rows(t *testing.T, billID uuid.UUID) []ledger.Row {
	t.Helper()
	items, err := e.bills.GetBillItems(context.Background(), billID)
	require.NoError(t, err)
	return items.Rows
}

func (e *testEnv) pay(billID uuid.UUID, rowID string, qty int) (*PaymentResult, error) {
	return e.bills.PayItems(context.Background(), billID, &PayItemsInput{
		PayerID: cashier,
		Method:  "cash",
		Items:   []PayItemInput{{RowID: rowID, Quantity: float64(qty)}},
	})
}

func tea(qty int) OrderItemInput {
	return OrderItemInput{Name: "Tea", Price: 10, Quantity: qty}
}

func rowNamed(rows []ledger.Row, name string) ledger.Row {
	for _, r := range rows {
		if r.Name == name {
			return r
		}
	}
	return ledger.Row{}
}

func appErrorCode(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// conflictingBillRepo fails the first n saves with a version conflict.
type conflictingBillRepo struct {
	repository.BillRepository
	failures int
	saves    int
}

func (r *conflictingBillRepo) Save(ctx context.Context, bill *entity.Bill) error {
	r.saves++
	if r.failures > 0 {
		r.failures--
		return repository.ErrVersionConflict
	}
	return r.BillRepository.Save(ctx, bill)
}
