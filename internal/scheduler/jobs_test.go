package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tunedhq/tuned-core/internal/client"
	"github.com/tunedhq/tuned-core/internal/config"
	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/notify"
	"github.com/tunedhq/tuned-core/internal/repository"
)

type captureEmitter struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureEmitter) Emit(ctx context.Context, event notify.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureEmitter) count(kind notify.EventKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB, *captureEmitter) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, client.Migrate(db))

	emitter := &captureEmitter{}
	engine := NewEngine(db, repository.NewOrderRepository(db), emitter, config.Scheduler{
		PaymentReminderDelay: time.Minute,
		OverdueSweepInterval: time.Hour,
		DueSoonSweepInterval: 24 * time.Hour,
		DueSoonWindow:        24 * time.Hour,
	})
	return engine, db, emitter
}

func seedOrder(t *testing.T, db *gorm.DB, status model.OrderStatus, paid bool, due time.Time) *model.Order {
	t.Helper()
	order := &model.Order{
		OrderNumber:     model.NewOrderNumber(),
		ClientID:        1,
		ServiceID:       1,
		AcademicLevelID: 1,
		DeadlineID:      1,
		Title:           "Test order",
		Description:     "A sufficiently long order description.",
		WordCount:       500,
		PageCount:       2,
		TotalPrice:      decimal.RequireFromString("25.00"),
		Status:          status,
		Paid:            paid,
		DueDate:         due,
		IsActive:        true,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestOverdueSweep_TransitionsAndNotifiesOnce(t *testing.T) {
	engine, db, emitter := newTestEngine(t)
	ctx := context.Background()
	now := time.Now().UTC()
	engine.now = func() time.Time { return now }

	late := seedOrder(t, db, model.StatusActive, true, now.Add(-time.Hour))
	latePending := seedOrder(t, db, model.StatusPending, false, now.Add(-time.Hour))
	onTime := seedOrder(t, db, model.StatusActive, true, now.Add(time.Hour))

	affected, err := engine.RunOverdueSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, affected)
	assert.Equal(t, 2, emitter.count(notify.EventOrderOverdue))

	for _, id := range []uint{late.ID, latePending.ID} {
		var o model.Order
		require.NoError(t, db.First(&o, id).Error)
		assert.Equal(t, model.StatusOverdue, o.Status)
	}
	var untouched model.Order
	require.NoError(t, db.First(&untouched, onTime.ID).Error)
	assert.Equal(t, model.StatusActive, untouched.Status)

	// A second run finds nothing to move and sends nothing new.
	affected, err = engine.RunOverdueSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Equal(t, 2, emitter.count(notify.EventOrderOverdue))
}

func TestOverdueSweep_SkipsTerminalAndDeletedOrders(t *testing.T) {
	engine, db, emitter := newTestEngine(t)
	ctx := context.Background()
	now := time.Now().UTC()
	engine.now = func() time.Time { return now }

	seedOrder(t, db, model.StatusCanceled, false, now.Add(-time.Hour))
	seedOrder(t, db, model.StatusClosed, true, now.Add(-time.Hour))
	deleted := seedOrder(t, db, model.StatusPending, false, now.Add(-time.Hour))
	require.NoError(t, db.Model(deleted).Update("is_active", false).Error)

	affected, err := engine.RunOverdueSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Empty(t, emitter.events)
}

func TestDueSoonSweep_RenotifiesEveryRun(t *testing.T) {
	engine, db, emitter := newTestEngine(t)
	ctx := context.Background()
	now := time.Now().UTC()
	engine.now = func() time.Time { return now }

	seedOrder(t, db, model.StatusActive, true, now.Add(6*time.Hour))
	seedOrder(t, db, model.StatusActive, true, now.Add(48*time.Hour))
	seedOrder(t, db, model.StatusPending, false, now.Add(6*time.Hour))

	affected, err := engine.RunDueSoonSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	// No dedup across runs; the order is still inside the window.
	affected, err = engine.RunDueSoonSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	assert.Equal(t, 2, emitter.count(notify.EventOrderDueSoon))
}

func TestPaymentReminder_FiresOnlyWhileUnpaidPending(t *testing.T) {
	engine, db, emitter := newTestEngine(t)
	ctx := context.Background()
	due := time.Now().UTC().Add(24 * time.Hour)

	pending := seedOrder(t, db, model.StatusPending, false, due)
	engine.RunPaymentReminder(ctx, pending.ID)
	assert.Equal(t, 1, emitter.count(notify.EventPaymentReminder))

	paid := seedOrder(t, db, model.StatusActive, true, due)
	engine.RunPaymentReminder(ctx, paid.ID)

	canceled := seedOrder(t, db, model.StatusCanceled, false, due)
	engine.RunPaymentReminder(ctx, canceled.ID)

	engine.RunPaymentReminder(ctx, 9999)

	assert.Equal(t, 1, emitter.count(notify.EventPaymentReminder))
}

func TestSchedulePaymentReminder_FiresAfterDelay(t *testing.T) {
	engine, db, emitter := newTestEngine(t)
	engine.reminderDelay = 10 * time.Millisecond

	order := seedOrder(t, db, model.StatusPending, false, time.Now().UTC().Add(24*time.Hour))
	engine.SchedulePaymentReminder(order.ID)

	require.Eventually(t, func() bool {
		return emitter.count(notify.EventPaymentReminder) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStop_CancelsArmedReminders(t *testing.T) {
	engine, db, emitter := newTestEngine(t)
	engine.reminderDelay = time.Hour

	order := seedOrder(t, db, model.StatusPending, false, time.Now().UTC().Add(24*time.Hour))
	engine.SchedulePaymentReminder(order.ID)

	done := make(chan struct{})
	go func() {
		engine.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return while a reminder was armed")
	}
	assert.Zero(t, emitter.count(notify.EventPaymentReminder))
}
