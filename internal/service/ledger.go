package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tunedhq/tuned-core/internal/model"
)

// BuildInvoice assembles the ledger record created atomically with an
// order. The total is derived, never passed in.
func BuildInvoice(order *model.Order, subtotal, discount, tax decimal.Decimal, dueDate time.Time) (*model.Invoice, error) {
	total := model.ComputeTotal(subtotal, discount, tax)
	if !total.IsPositive() {
		return nil, ErrInvalidTotal
	}
	return &model.Invoice{
		InvoiceNumber: "INV-" + order.OrderNumber,
		OrderID:       order.ID,
		UserID:        order.ClientID,
		Subtotal:      subtotal,
		Discount:      discount,
		Tax:           tax,
		Total:         total,
		DueDate:       dueDate,
	}, nil
}

// AdjustDiscount recomputes an invoice after a discount delta. The total
// is clamped at zero rather than rejected when the cumulative discount
// overshoots; the clamp only ever engages for over-redemption, which
// callers guard against upstream.
func AdjustDiscount(inv *model.Invoice, delta decimal.Decimal) (newDiscount, newTotal decimal.Decimal) {
	newDiscount = inv.Discount.Add(delta)
	if newDiscount.IsNegative() {
		newDiscount = decimal.Zero
	}
	newTotal = model.ComputeTotal(inv.Subtotal, newDiscount, inv.Tax)
	if newTotal.IsNegative() {
		newTotal = decimal.Zero
	}
	return newDiscount, newTotal
}
