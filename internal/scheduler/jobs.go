package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/notify"
)

// RunPaymentReminder fires once per scheduled order. If the order has been
// paid, canceled or deleted since scheduling, the precondition fails and
// the job exits silently: no notification, no error.
func (e *Engine) RunPaymentReminder(ctx context.Context, orderID uint) {
	order, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("payment reminder lookup failed", "order_id", orderID, "err", err)
		}
		return
	}
	if order.Status != model.StatusPending || order.Paid {
		return
	}

	e.emitter.Emit(ctx, notify.Event{Kind: notify.EventPaymentReminder, Order: order})
}

// RunOverdueSweep moves every qualifying order to OVERDUE and notifies the
// owner and all operators. The status guard lives inside the same UPDATE
// that sets OVERDUE, so a doubled or concurrent run cannot transition or
// notify the same order twice. Returns the number of orders affected.
func (e *Engine) RunOverdueSweep(ctx context.Context) (int, error) {
	candidates, err := e.orders.DueForOverdue(ctx, e.now())
	if err != nil {
		return 0, err
	}

	affected := 0
	for _, order := range candidates {
		err := e.orders.Transition(ctx, e.db, order.ID,
			[]model.OrderStatus{model.StatusPending, model.StatusActive},
			model.StatusOverdue, nil,
		)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Another run, or a payment, got there first.
				continue
			}
			slog.Error("overdue transition failed", "order_id", order.ID, "err", err)
			continue
		}

		order.Status = model.StatusOverdue
		e.emitter.Emit(ctx, notify.Event{Kind: notify.EventOrderOverdue, Order: order})
		affected++
	}
	return affected, nil
}

// RunDueSoonSweep sends one due-soon alert per qualifying order per run.
// No dedup state is kept across runs; consecutive daily runs re-notify an
// order that stays inside the window, which is intended.
func (e *Engine) RunDueSoonSweep(ctx context.Context) (int, error) {
	candidates, err := e.orders.DueSoon(ctx, e.now(), e.dueSoonWindow)
	if err != nil {
		return 0, err
	}

	for _, order := range candidates {
		e.emitter.Emit(ctx, notify.Event{Kind: notify.EventOrderDueSoon, Order: order})
	}
	return len(candidates), nil
}
