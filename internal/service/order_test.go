package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/notify"
	"github.com/tunedhq/tuned-core/internal/repository"
	"github.com/tunedhq/tuned-core/internal/service"
)

func TestCreateOrder_PendingWithInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.svc.Create(ctx, env.client.ID, env.createInput())
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, order.Status)
	assert.False(t, order.Paid)
	assert.Equal(t, "50.00", order.TotalPrice.StringFixed(2))
	assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, order.OrderNumber)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), order.DueDate, time.Minute)

	invoice, err := env.invoices.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-"+order.OrderNumber, invoice.InvoiceNumber)
	assert.Equal(t, "50.00", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", invoice.Discount.StringFixed(2))
	assert.Equal(t, "50.00", invoice.Total.StringFixed(2))
	assert.False(t, invoice.Paid)
	assert.WithinDuration(t, order.DueDate, invoice.DueDate, 0)

	assert.Equal(t, []notify.EventKind{notify.EventOrderCreated}, env.emitter.kinds())
	assert.Equal(t, []uint{order.ID}, env.sched.scheduled)
}

func TestCreateOrder_WithPercentageDiscount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d := env.seedDiscount(t, model.Discount{
		Code:     "SAVE10",
		Type:     model.DiscountPercentage,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	})

	in := env.createInput()
	in.DiscountCode = "SAVE10"
	order, err := env.svc.Create(ctx, env.client.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "45.00", order.TotalPrice.StringFixed(2))

	invoice, err := env.invoices.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", invoice.Discount.StringFixed(2))
	assert.Equal(t, "45.00", invoice.Total.StringFixed(2))

	var reloaded model.Discount
	require.NoError(t, env.db.First(&reloaded, d.ID).Error)
	assert.Equal(t, 1, reloaded.TimesUsed)
}

func TestCreateOrder_ExhaustedCodeLeavesNothingBehind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	limit := 1
	env.seedDiscount(t, model.Discount{
		Code:       "ONEUSE",
		Type:       model.DiscountPercentage,
		Value:      decimal.NewFromInt(10),
		UsageLimit: &limit,
		TimesUsed:  1,
		IsActive:   true,
	})

	in := env.createInput()
	in.DiscountCode = "ONEUSE"
	_, err := env.svc.Create(ctx, env.client.ID, in)
	assert.ErrorIs(t, err, service.ErrDiscountInvalid)

	var orders, invoices int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, env.db.Model(&model.Invoice{}).Count(&invoices).Error)
	assert.Zero(t, orders)
	assert.Zero(t, invoices)
	assert.Empty(t, env.emitter.kinds())
	assert.Empty(t, env.sched.scheduled)
}

func TestCreateOrder_InputValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := map[string]func(*service.CreateOrderInput){
		"short title":       func(in *service.CreateOrderInput) { in.Title = "Hi" },
		"short description": func(in *service.CreateOrderInput) { in.Description = "too short" },
		"too few words":     func(in *service.CreateOrderInput) { in.WordCount = 100 },
		"zero pages":        func(in *service.CreateOrderInput) { in.PageCount = 0 },
		"too many pages":    func(in *service.CreateOrderInput) { in.PageCount = 500 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := env.createInput()
			mutate(&in)
			_, err := env.svc.Create(ctx, env.client.ID, in)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestGetOrder_ScopedToClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.createOrder(t)

	got, err := env.svc.Get(ctx, env.client.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)

	stranger := model.User{Email: "other@example.com", Name: "Other", IsActive: true}
	require.NoError(t, env.db.Create(&stranger).Error)
	_, err = env.svc.Get(ctx, stranger.ID, order.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSoftDelete_OnlyUnpaidPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t)
	require.NoError(t, env.svc.SoftDelete(ctx, env.client.ID, order.ID))

	// Gone from the client's view but still a row.
	_, err := env.svc.Get(ctx, env.client.ID, order.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	var raw model.Order
	require.NoError(t, env.db.First(&raw, order.ID).Error)
	assert.False(t, raw.IsActive)
	assert.NotNil(t, raw.DeletedAt)

	paid := env.createOrder(t)
	_, err = env.svc.CompletePayment(ctx, paid.ID)
	require.NoError(t, err)
	err = env.svc.SoftDelete(ctx, env.client.ID, paid.ID)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
}

func TestListOrders_FilterAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createOrder(t)
	env.createOrder(t)
	_, err := env.svc.CompletePayment(ctx, first.ID)
	require.NoError(t, err)

	activeStatus := model.StatusActive
	active, total, err := env.svc.List(ctx, env.client.ID,
		repository.OrderFilter{Status: &activeStatus}, repository.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	all, total, err := env.svc.List(ctx, env.client.ID,
		repository.OrderFilter{}, repository.Page{Number: 1, Size: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 1)
}
