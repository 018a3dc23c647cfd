package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tunedhq/tuned-core/internal/client"
	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/notify"
	"github.com/tunedhq/tuned-core/internal/repository"
	"github.com/tunedhq/tuned-core/internal/service"
)

type fakeEmitter struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeEmitter) Emit(ctx context.Context, event notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEmitter) kinds() []notify.EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]notify.EventKind, 0, len(f.events))
	for _, e := range f.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type fakeScheduler struct {
	scheduled []uint
}

func (f *fakeScheduler) SchedulePaymentReminder(orderID uint) {
	f.scheduled = append(f.scheduled, orderID)
}

type fakeStore struct {
	files map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string][]byte{}}
}

func (f *fakeStore) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.files[key] = data
	return int64(len(data)), nil
}

func (f *fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.files[key])), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.files, key)
	return nil
}

// testEnv wires a full order service over an in-memory database with
// fakes at the notification and scheduling boundaries.
type testEnv struct {
	db    *gorm.DB
	svc   service.OrderService
	price service.PricingService

	orders    repository.OrderRepository
	invoices  repository.InvoiceRepository
	users     repository.UserRepository
	discounts repository.DiscountRepository

	emitter *fakeEmitter
	sched   *fakeScheduler
	store   *fakeStore

	client   model.User
	operator model.User
	deadline model.Deadline
	svcRow   model.Service
	level    model.AcademicLevel
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, client.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)

	env := &testEnv{
		db:        db,
		orders:    repository.NewOrderRepository(db),
		invoices:  repository.NewInvoiceRepository(db),
		users:     repository.NewUserRepository(db),
		discounts: repository.NewDiscountRepository(db),
		emitter:   &fakeEmitter{},
		sched:     &fakeScheduler{},
		store:     newFakeStore(),
	}

	env.client = model.User{Email: "client@example.com", Name: "Client", Points: 1000, IsActive: true}
	env.operator = model.User{Email: "ops@example.com", Name: "Operator", IsOperator: true, IsActive: true}
	require.NoError(t, db.Create(&env.client).Error)
	require.NoError(t, db.Create(&env.operator).Error)

	env.svcRow = model.Service{Name: "Essay", IsActive: true}
	env.level = model.AcademicLevel{Name: "Undergraduate", IsActive: true}
	env.deadline = model.Deadline{Name: "24 hours", Hours: 24, IsActive: true}
	require.NoError(t, db.Create(&env.svcRow).Error)
	require.NoError(t, db.Create(&env.level).Error)
	require.NoError(t, db.Create(&env.deadline).Error)

	rate := model.PriceRate{
		ServiceID:       env.svcRow.ID,
		AcademicLevelID: env.level.ID,
		DeadlineID:      env.deadline.ID,
		PricePerPage:    decimal.RequireFromString("12.50"),
		IsActive:        true,
	}
	require.NoError(t, db.Create(&rate).Error)

	catalogRepo := repository.NewCatalogRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	env.price = service.NewPricingService(catalogRepo, env.discounts)
	env.svc = service.NewOrderService(
		db,
		env.orders, env.invoices, env.users, env.discounts, activityRepo,
		env.price, env.emitter, env.sched, env.store,
		100, 0,
	)
	return env
}

func (e *testEnv) createInput() service.CreateOrderInput {
	return service.CreateOrderInput{
		ServiceID:       e.svcRow.ID,
		AcademicLevelID: e.level.ID,
		DeadlineID:      e.deadline.ID,
		Title:           "Macroeconomics essay",
		Description:     "A five-page essay on monetary policy transmission.",
		WordCount:       1250,
		PageCount:       4,
	}
}

func (e *testEnv) createOrder(t *testing.T) *model.Order {
	t.Helper()
	order, err := e.svc.Create(context.Background(), e.client.ID, e.createInput())
	require.NoError(t, err)
	return order
}

func (e *testEnv) seedDiscount(t *testing.T, d model.Discount) model.Discount {
	t.Helper()
	if d.ValidFrom.IsZero() {
		d.ValidFrom = time.Now().UTC().Add(-time.Hour)
	}
	// GORM replaces a zero-value IsActive (false) with the column default
	// (true) on insert, so write the intended value explicitly afterwards.
	isActive := d.IsActive
	require.NoError(t, e.db.Create(&d).Error)
	require.NoError(t, e.db.Model(&d).UpdateColumn("is_active", isActive).Error)
	d.IsActive = isActive
	return d
}

func (e *testEnv) orderStatus(t *testing.T, orderID uint) model.OrderStatus {
	t.Helper()
	var order model.Order
	require.NoError(t, e.db.First(&order, orderID).Error)
	return order.Status
}
