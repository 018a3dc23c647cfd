package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/service"
)

func TestBuildInvoice_DerivesTotal(t *testing.T) {
	order := &model.Order{ID: 7, OrderNumber: "ORD-DEADBEEF", ClientID: 3}
	due := time.Now().UTC().Add(24 * time.Hour)

	inv, err := service.BuildInvoice(order,
		decimal.RequireFromString("50.00"),
		decimal.RequireFromString("5.00"),
		decimal.RequireFromString("2.50"),
		due,
	)
	require.NoError(t, err)

	assert.Equal(t, "INV-ORD-DEADBEEF", inv.InvoiceNumber)
	assert.Equal(t, order.ID, inv.OrderID)
	assert.Equal(t, order.ClientID, inv.UserID)
	assert.Equal(t, "47.50", inv.Total.StringFixed(2))
	assert.False(t, inv.Paid)
}

func TestBuildInvoice_RejectsNonPositiveTotal(t *testing.T) {
	order := &model.Order{OrderNumber: "ORD-00000000"}

	_, err := service.BuildInvoice(order,
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("10.00"),
		decimal.Zero,
		time.Now(),
	)
	assert.ErrorIs(t, err, service.ErrInvalidTotal)

	_, err = service.BuildInvoice(order,
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("15.00"),
		decimal.Zero,
		time.Now(),
	)
	assert.ErrorIs(t, err, service.ErrInvalidTotal)
}

func TestAdjustDiscount(t *testing.T) {
	inv := &model.Invoice{
		Subtotal: decimal.RequireFromString("50.00"),
		Discount: decimal.RequireFromString("5.00"),
		Tax:      decimal.RequireFromString("2.00"),
		Total:    decimal.RequireFromString("47.00"),
	}

	discount, total := service.AdjustDiscount(inv, decimal.RequireFromString("10.00"))
	assert.Equal(t, "15.00", discount.StringFixed(2))
	assert.Equal(t, "37.00", total.StringFixed(2))

	// Overshooting clamps at zero instead of going negative.
	discount, total = service.AdjustDiscount(inv, decimal.RequireFromString("60.00"))
	assert.Equal(t, "65.00", discount.StringFixed(2))
	assert.Equal(t, "0.00", total.StringFixed(2))

	// A negative delta cannot drive the discount below zero.
	discount, _ = service.AdjustDiscount(inv, decimal.RequireFromString("-20.00"))
	assert.Equal(t, "0.00", discount.StringFixed(2))
}
