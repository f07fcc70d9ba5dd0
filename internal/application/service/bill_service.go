package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/config"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/sangkips/venue-pos-api/internal/domain/ledger"
	"github.com/sangkips/venue-pos-api/internal/domain/repository"
	"github.com/sangkips/venue-pos-api/internal/infrastructure/metrics"
	"github.com/sangkips/venue-pos-api/pkg/apperror"
	"github.com/sangkips/venue-pos-api/pkg/money"
	"github.com/sangkips/venue-pos-api/pkg/pagination"
	"github.com/sangkips/venue-pos-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// BillService handles bills and the payments made against them.
type BillService struct {
	billRepo repository.BillRepository
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	cfg      config.BillingConfig
	locks    *billLocks
	now      func() time.Time
}

// NewBillService creates a new bill service
func NewBillService(
	billRepo repository.BillRepository,
	m *metrics.Metrics,
	log logrus.FieldLogger,
	cfg config.BillingConfig,
) *BillService {
	return &BillService{
		billRepo: billRepo,
		metrics:  m,
		log:      log,
		cfg:      cfg,
		locks:    newBillLocks(),
		now:      time.Now,
	}
}

// SessionChargeInput is a time-based charge added when a bill is opened.
type SessionChargeInput struct {
	Label  string  `json:"label" validate:"required,max=100"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Paid   float64 `json:"paid" validate:"gte=0,ltefield=Amount"`
}

// CreateBillInput represents the create bill input
type CreateBillInput struct {
	UserID     uuid.UUID            `json:"user_id" validate:"required"`
	TableLabel string               `json:"table_label" validate:"max=64"`
	DueAt      *time.Time           `json:"due_at"`
	Discount   float64              `json:"discount" validate:"gte=0"`
	Sessions   []SessionChargeInput `json:"sessions" validate:"dive"`
}

// PayItemInput asks for Quantity units of one displayed row. Quantity must
// be a whole number; it is a float so fractions can be reported per item.
type PayItemInput struct {
	RowID    string  `json:"row_id" validate:"required"`
	Quantity float64 `json:"quantity"`
}

// PayItemsInput represents a payment against a bill
type PayItemsInput struct {
	PayerID uuid.UUID          `json:"payer_id" validate:"required"`
	Method  enum.PaymentMethod `json:"method" validate:"required"`
	Items   []PayItemInput     `json:"items" validate:"required,min=1,dive"`
}

// PaySessionInput is a payment towards one session charge.
type PaySessionInput struct {
	PayerID uuid.UUID          `json:"payer_id" validate:"required"`
	Method  enum.PaymentMethod `json:"method" validate:"required"`
	Amount  float64            `json:"amount" validate:"gt=0"`
}

// PaymentResult is the outcome of a successful payment. Amounts are cents.
type PaymentResult struct {
	BillID      uuid.UUID
	Paid        int64
	Applied     int64
	Remaining   int64
	Status      enum.BillStatus
	Allocations []ledger.Allocation
}

// BillItems is a bill together with its aggregated rows.
type BillItems struct {
	Bill *entity.Bill
	Rows []ledger.Row
}

// CreateBill opens a new bill.
func (s *BillService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	bill := &entity.Bill{
		Reference:  utils.GenerateReference("BILL"),
		TableLabel: input.TableLabel,
		Status:     enum.BillStatusDraft,
		Discount:   money.ToCents(input.Discount),
		DueAt:      input.DueAt,
		CreatedBy:  input.UserID,
	}
	if bill.DueAt == nil && s.cfg.DefaultDueHours > 0 {
		due := now.Add(time.Duration(s.cfg.DefaultDueHours) * time.Hour)
		bill.DueAt = &due
	}
	for _, sc := range input.Sessions {
		bill.SessionCharges = append(bill.SessionCharges, entity.SessionCharge{
			ID:     uuid.New(),
			Label:  sc.Label,
			Amount: money.ToCents(sc.Amount),
			Paid:   money.ToCents(sc.Paid),
		})
	}
	for _, sc := range bill.SessionCharges {
		bill.Paid += sc.Paid
	}
	s.settle(bill, now)

	if err := s.billRepo.Create(ctx, bill); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError("Bill reference already in use, please retry")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"bill_id":   bill.ID,
		"reference": bill.Reference,
		"table":     bill.TableLabel,
	}).Info("Bill opened")
	return bill, nil
}

// GetBill retrieves a bill with its orders.
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithOrders(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills lists bills with filtering
func (s *BillService) ListBills(ctx context.Context, params *repository.BillFilterParams) (*pagination.PaginatedResult[entity.Bill], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	bills, total, err := s.billRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bills, pag), nil
}

// GetBillItems returns the bill's aggregated rows. A bill whose ledger is
// missing entries for some of its lines is backfilled first.
func (s *BillService) GetBillItems(ctx context.Context, id uuid.UUID) (*BillItems, error) {
	bill, err := s.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, missing := ledger.Materialize(bill.Orders, bill.ItemPayments); missing {
		if bill, err = s.Refresh(ctx, id); err != nil {
			return nil, err
		}
	}

	rows := ledger.Aggregate(bill.Orders, bill.ItemPayments, ledger.BillState{
		Status: bill.Status,
		Paid:   bill.Paid,
		Total:  bill.Total,
	})
	return &BillItems{Bill: bill, Rows: rows}, nil
}

// PayItems applies a payment to a bill. The payment is applied in full or
// not at all.
func (s *BillService) PayItems(ctx context.Context, billID uuid.UUID, input *PayItemsInput) (*PaymentResult, error) {
	if err := validateInput(input); err != nil {
		s.metrics.PaymentsRejected.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, err
	}

	req := ledger.PaymentRequest{
		Method:  input.Method,
		PayerID: input.PayerID,
	}
	for i, it := range input.Items {
		q := int(it.Quantity)
		if float64(q) != it.Quantity {
			return nil, s.paymentError(billID, &ledger.ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be a positive whole number",
			})
		}
		req.Items = append(req.Items, ledger.RequestItem{RowID: it.RowID, Quantity: q})
	}

	var delta *ledger.LedgerDelta
	bill, err := s.mutate(ctx, billID, func(bill *entity.Bill, now time.Time) (bool, error) {
		if bill.Status == enum.BillStatusCancelled {
			return false, apperror.ErrBillClosed
		}
		req.At = now
		d, err := ledger.ApplyPayment(bill.Orders, bill.ItemPayments, req)
		if err != nil {
			return false, err
		}
		delta = d
		bill.ItemPayments = d.Entries
		bill.Paid += d.Applied
		s.settle(bill, now)
		return true, nil
	})
	if err != nil {
		return nil, s.paymentError(billID, err)
	}

	method := string(input.Method)
	s.metrics.PaymentsApplied.WithLabelValues(method).Inc()
	s.metrics.PaymentAmount.WithLabelValues(method).Add(float64(delta.Applied))
	s.log.WithFields(logrus.Fields{
		"bill_id": bill.ID,
		"amount":  delta.Applied,
		"method":  method,
		"payer":   input.PayerID,
		"status":  bill.Status,
	}).Info("Payment applied")

	return &PaymentResult{
		BillID:      bill.ID,
		Paid:        bill.Paid,
		Applied:     delta.Applied,
		Remaining:   bill.Remaining,
		Status:      bill.Status,
		Allocations: delta.Allocations,
	}, nil
}

// PaySession takes a payment towards a session charge on the bill. Sessions
// are paid by amount and cannot be paid beyond what is still due.
func (s *BillService) PaySession(ctx context.Context, billID, sessionID uuid.UUID, input *PaySessionInput) (*PaymentResult, error) {
	if err := validateInput(input); err != nil {
		s.metrics.PaymentsRejected.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, err
	}
	if !input.Method.Valid() {
		return nil, s.paymentError(billID, &ledger.ValidationError{
			Field:   "method",
			Message: fmt.Sprintf("unsupported payment method %q", input.Method),
		})
	}
	amount := money.ToCents(input.Amount)

	bill, err := s.mutate(ctx, billID, func(bill *entity.Bill, now time.Time) (bool, error) {
		if bill.Status == enum.BillStatusCancelled {
			return false, apperror.ErrBillClosed
		}
		i := indexOfSession(bill.SessionCharges, sessionID)
		if i < 0 {
			return false, apperror.NewNotFoundError("Session charge")
		}
		sc := &bill.SessionCharges[i]
		if due := sc.Due(); amount > due {
			s.metrics.PaymentsRejected.WithLabelValues(metrics.ReasonOverpayment).Inc()
			return false, apperror.NewConflictError(fmt.Sprintf("Cannot pay %s on %s, only %s left unpaid",
				money.Format(amount), sc.Label, money.Format(due)))
		}
		sc.Paid += amount
		sc.History = append(sc.History, entity.PaymentRecord{
			Amount:  amount,
			PaidAt:  now,
			PayerID: input.PayerID,
			Method:  input.Method,
		})
		bill.Paid += amount
		s.settle(bill, now)
		return true, nil
	})
	if err != nil {
		return nil, s.paymentError(billID, err)
	}

	method := string(input.Method)
	s.metrics.PaymentsApplied.WithLabelValues(method).Inc()
	s.metrics.PaymentAmount.WithLabelValues(method).Add(float64(amount))
	s.log.WithFields(logrus.Fields{
		"bill_id":    bill.ID,
		"session_id": sessionID,
		"amount":     amount,
		"method":     method,
		"status":     bill.Status,
	}).Info("Session payment applied")

	return &PaymentResult{
		BillID:    bill.ID,
		Paid:      bill.Paid,
		Applied:   amount,
		Remaining: bill.Remaining,
		Status:    bill.Status,
	}, nil
}

func indexOfSession(sessions []entity.SessionCharge, id uuid.UUID) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// paymentError turns ledger errors into application errors and counts the
// rejection.
func (s *BillService) paymentError(billID uuid.UUID, err error) error {
	var (
		verr  *ledger.ValidationError
		over  *ledger.OverpaymentError
		stale *ledger.StaleReferenceError
	)
	reason := ""
	switch {
	case errors.As(err, &verr):
		reason = metrics.ReasonValidation
		err = apperror.NewValidationError([]apperror.FieldError{{Field: verr.Field, Message: verr.Message}})
	case errors.As(err, &over):
		reason = metrics.ReasonOverpayment
		err = apperror.NewConflictError(fmt.Sprintf("Cannot pay %d x %s, only %d left unpaid", over.Requested, over.Name, over.Available))
	case errors.As(err, &stale):
		reason = metrics.ReasonStale
		err = apperror.NewGoneError(fmt.Sprintf("%s is no longer on this bill", stale.Name))
	case errors.Is(err, apperror.ErrBillClosed):
		reason = metrics.ReasonClosed
	}
	if reason != "" {
		s.metrics.PaymentsRejected.WithLabelValues(reason).Inc()
		s.log.WithFields(logrus.Fields{"bill_id": billID, "reason": reason}).Info("Payment rejected")
	}
	return err
}

// CancelBill cancels a bill. Cancelling twice is a no-op.
func (s *BillService) CancelBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.mutate(ctx, id, func(bill *entity.Bill, now time.Time) (bool, error) {
		if bill.Status == enum.BillStatusCancelled {
			return false, nil
		}
		bill.Status = enum.BillStatusCancelled
		bill.CancelledAt = &now
		s.settle(bill, now)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("bill_id", id).Info("Bill cancelled")
	return bill, nil
}

// Refresh recomputes a bill after its orders changed: ledger entries follow
// the current lines, entries are added for new lines, then totals and status
// are derived again.
func (s *BillService) Refresh(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	return s.refreshAt(ctx, id, nil)
}

func (s *BillService) refreshAt(ctx context.Context, id uuid.UUID, at *time.Time) (*entity.Bill, error) {
	return s.mutate(ctx, id, func(bill *entity.Bill, now time.Time) (bool, error) {
		if at != nil {
			now = *at
		}
		entries, synced := ledger.Resync(bill.Orders, bill.ItemPayments)
		entries, added := ledger.Materialize(bill.Orders, entries)
		if synced || added {
			bill.ItemPayments = entries
		}
		changed := s.settle(bill, now)
		return synced || added || changed, nil
	})
}

// SweepOverdue refreshes open bills whose due time has passed and returns
// how many of them are now overdue.
func (s *BillService) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.billRepo.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, id := range ids {
		bill, err := s.refreshAt(ctx, id, &now)
		if err != nil {
			s.log.WithFields(logrus.Fields{"bill_id": id, "error": err}).Warn("Overdue sweep failed for bill")
			continue
		}
		if bill.Status == enum.BillStatusOverdue {
			marked++
		}
	}
	if marked > 0 {
		s.log.WithField("count", marked).Info("Bills marked overdue")
	}
	return marked, nil
}

// settle derives totals and status from the ledger. It is the only place a
// bill's status is computed. It reports whether anything changed.
func (s *BillService) settle(bill *entity.Bill, now time.Time) bool {
	outcome := ledger.Recompute(bill, now)
	if w := outcome.Warning; w != nil {
		s.metrics.IntegrityCorrections.Inc()
		s.log.WithFields(logrus.Fields{
			"bill_id":     bill.ID,
			"stored_paid": w.Stored,
			"ledger_paid": w.Computed,
		}).Warn("Bill paid amount disagreed with its ledger, using ledger")
	}
	changed := outcome.Changed(bill)
	outcome.Apply(bill)
	return changed
}

// mutate runs fn on a freshly loaded bill while holding the bill's lock and
// saves the bill when fn reports a change. A save that loses an optimistic
// version race reruns the whole cycle on the newer bill.
func (s *BillService) mutate(ctx context.Context, id uuid.UUID, fn func(bill *entity.Bill, now time.Time) (bool, error)) (*entity.Bill, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	attempts := s.cfg.MaxSaveRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		bill, err := s.billRepo.GetWithOrders(ctx, id)
		if err != nil {
			return nil, err
		}
		if bill == nil {
			return nil, apperror.NewNotFoundError("Bill")
		}

		changed, err := fn(bill, s.now())
		if err != nil {
			return nil, err
		}
		if !changed {
			return bill, nil
		}

		err = s.billRepo.Save(ctx, bill)
		if err == nil {
			return bill, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}

		s.metrics.SaveConflicts.Inc()
		if attempt >= attempts {
			s.log.WithFields(logrus.Fields{"bill_id": id, "attempts": attempt}).Warn("Giving up on bill save after repeated conflicts")
			return nil, apperror.ErrConflict
		}
		s.log.WithFields(logrus.Fields{"bill_id": id, "attempt": attempt}).Debug("Bill changed underneath us, retrying")
	}
}
