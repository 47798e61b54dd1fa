package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/promopay/promopay/internal/domain/errors"
	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/metrics"
)

// EscrowFacade exposes the subset of application functionality required by the
// reconciler. Timeout transitions go through the same transition function as
// user actions; the sweep never writes order fields itself.
type EscrowFacade interface {
	DueAcceptance(ctx context.Context, limit int) ([]model.Order, error)
	DueConfirmation(ctx context.Context, limit int) ([]model.Order, error)
	ForceTimeout(ctx context.Context, orderID uuid.UUID, action model.Action) error
}

// Report summarizes one sweep for observability.
type Report struct {
	Cancelled int64
	Completed int64
	Errored   int64
}

// Reconciler periodically forces timeout transitions on overdue orders. It is
// re-entrant: a concurrent sweep finding an already-transitioned order no-ops
// on the stale-write guard.
type Reconciler struct {
	facade    EscrowFacade
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger
	metrics   *metrics.Metrics

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReconciler constructs the timeout reconciler.
func NewReconciler(facade EscrowFacade, interval time.Duration, batchSize, workers int, logger *slog.Logger, m *metrics.Metrics) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Reconciler{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		metrics:   m,
	}
}

// Start launches background sweeping.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(runCtx)
}

// Stop waits for the current sweep to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report := r.Sweep(ctx)
			r.logger.Info("reconciler sweep finished",
				slog.Int64("cancelled", report.Cancelled),
				slog.Int64("completed", report.Completed),
				slog.Int64("errored", report.Errored),
			)
		}
	}
}

// Sweep runs one full paginated pass over overdue orders and reports counts.
// Each order is transitioned independently; no lock is held across the scan.
func (r *Reconciler) Sweep(ctx context.Context) Report {
	var report Report
	r.sweepPhase(ctx, &report, r.facade.DueAcceptance, model.ActionTimeoutCancel, &report.Cancelled)
	r.sweepPhase(ctx, &report, r.facade.DueConfirmation, model.ActionTimeoutComplete, &report.Completed)
	return report
}

func (r *Reconciler) sweepPhase(ctx context.Context, report *Report, fetch func(context.Context, int) ([]model.Order, error), action model.Action, done *int64) {
	for {
		if ctx.Err() != nil {
			return
		}

		orders, err := fetch(ctx, r.batchSize)
		if err != nil {
			r.logger.Error("fetch overdue orders failed", slog.String("error", err.Error()))
			atomic.AddInt64(&report.Errored, 1)
			r.metrics.SweepErrors.Inc()
			return
		}
		if len(orders) == 0 {
			return
		}

		var handled int64
		jobs := make(chan model.Order)
		var wg sync.WaitGroup
		for i := 0; i < r.workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for order := range jobs {
					if r.handle(ctx, order, action, report, done) {
						atomic.AddInt64(&handled, 1)
					}
				}
			}()
		}

		for _, order := range orders {
			select {
			case <-ctx.Done():
			case jobs <- order:
			}
		}
		close(jobs)
		wg.Wait()

		if len(orders) < r.batchSize {
			return
		}
		// A full batch with no progress means the same orders would be
		// fetched again; stop and let the next tick retry.
		if atomic.LoadInt64(&handled) == 0 {
			return
		}
	}
}

// handle forces one timeout transition. It returns true when the order no
// longer matches the overdue predicate, whether this sweep transitioned it or
// a concurrent caller did.
func (r *Reconciler) handle(ctx context.Context, order model.Order, action model.Action, report *Report, done *int64) bool {
	err := r.facade.ForceTimeout(ctx, order.ID, action)
	switch {
	case err == nil:
		atomic.AddInt64(done, 1)
		r.metrics.SweepOrders.WithLabelValues(string(action)).Inc()
		return true
	case errors.Is(err, domainErrors.ErrStaleOrder),
		errors.Is(err, domainErrors.ErrAlreadyResolved),
		errors.Is(err, domainErrors.ErrInvalidState):
		// Another sweep instance or a user action got there first.
		return true
	case errors.Is(err, domainErrors.ErrDeadlineNotReached):
		return true
	default:
		atomic.AddInt64(&report.Errored, 1)
		r.metrics.SweepErrors.Inc()
		r.logger.Error("timeout transition failed",
			slog.String("order", order.ID.String()),
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
		return false
	}
}
