package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/config"
	"github.com/tunedhq/tuned-core/internal/notify"
	"github.com/tunedhq/tuned-core/internal/repository"
)

// Emitter is the slice of the notification fan-out the engine needs.
type Emitter interface {
	Emit(ctx context.Context, event notify.Event)
}

// Engine runs the deferred and recurring order jobs: the one-shot payment
// reminder plus the overdue and due-soon sweeps. Every job re-checks its
// precondition at fire time, which is what makes at-least-once delivery
// safe: a job scheduled against stale state becomes a no-op instead of
// touching current state.
type Engine struct {
	db      *gorm.DB
	orders  repository.OrderRepository
	emitter Emitter

	reminderDelay time.Duration
	overdueEvery  time.Duration
	dueSoonEvery  time.Duration
	dueSoonWindow time.Duration

	// now is swappable in tests.
	now func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewEngine(db *gorm.DB, orders repository.OrderRepository, emitter Emitter, cfg config.Scheduler) *Engine {
	return &Engine{
		db:            db,
		orders:        orders,
		emitter:       emitter,
		reminderDelay: cfg.PaymentReminderDelay,
		overdueEvery:  cfg.OverdueSweepInterval,
		dueSoonEvery:  cfg.DueSoonSweepInterval,
		dueSoonWindow: cfg.DueSoonWindow,
		now:           func() time.Time { return time.Now().UTC() },
		stopCh:        make(chan struct{}),
	}
}

// Start launches the sweep loops.
func (e *Engine) Start() {
	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		e.sweepLoop(e.overdueEvery, "overdue_sweep", e.RunOverdueSweep)
	}()
	go func() {
		defer e.wg.Done()
		e.sweepLoop(e.dueSoonEvery, "due_soon_sweep", e.RunDueSoonSweep)
	}()
}

// Stop halts the loops and waits for in-flight work, including scheduled
// reminders that have not yet fired.
func (e *Engine) Stop() {
	close(e.stopCh)
	e.wg.Wait()
}

func (e *Engine) sweepLoop(every time.Duration, name string, run func(context.Context) (int, error)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.runGuarded(name, run)
		case <-e.stopCh:
			return
		}
	}
}

// runGuarded keeps a misbehaving job from taking the runner down with it.
func (e *Engine) runGuarded(name string, run func(context.Context) (int, error)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "job", name, "panic", r)
		}
	}()

	count, err := run(context.Background())
	if err != nil {
		slog.Error("job failed", "job", name, "err", err)
		return
	}
	slog.Info("job finished", "job", name, "affected", count)
}

// SchedulePaymentReminder arms the one-shot reminder for a new order. The
// caller returns immediately; there is no cancel operation, resolution is
// derived from the order's state at fire time.
func (e *Engine) SchedulePaymentReminder(orderID uint) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		select {
		case <-time.After(e.reminderDelay):
			e.RunPaymentReminder(context.Background(), orderID)
		case <-e.stopCh:
		}
	}()
}
