package service

import (
	"context"
	"time"

	"github.com/sangkips/venue-pos-api/internal/domain/repository"
	"github.com/sirupsen/logrus"
)

// Janitor runs periodic housekeeping: marking bills overdue and dropping
// expired idempotency records.
type Janitor struct {
	bills           *BillService
	idempotencyRepo repository.IdempotencyRepository
	log             logrus.FieldLogger
}

// NewJanitor creates a new janitor
func NewJanitor(bills *BillService, idempotencyRepo repository.IdempotencyRepository, log logrus.FieldLogger) *Janitor {
	return &Janitor{bills: bills, idempotencyRepo: idempotencyRepo, log: log}
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			j.Sweep(ctx, now)
		}
	}
}

// Sweep runs one round of housekeeping.
func (j *Janitor) Sweep(ctx context.Context, now time.Time) {
	if _, err := j.bills.SweepOverdue(ctx, now); err != nil {
		j.log.WithError(err).Error("Overdue sweep failed")
	}

	purged, err := j.idempotencyRepo.Purge(ctx, now)
	if err != nil {
		j.log.WithError(err).Error("Idempotency purge failed")
		return
	}
	if purged > 0 {
		j.log.WithField("count", purged).Debug("Purged expired idempotency keys")
	}
}
