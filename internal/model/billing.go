package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the monetary ledger record, strictly 1:1 with an order and
// created in the same transaction. Total is never assigned directly; it is
// always recomputed from (subtotal, discount, tax).
type Invoice struct {
	ID            uint   `gorm:"primaryKey"`
	InvoiceNumber string `gorm:"size:32;uniqueIndex;not null"`
	OrderID       uint   `gorm:"uniqueIndex;not null"`
	UserID        uint   `gorm:"index;not null"`

	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Discount decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Tax      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	DueDate   time.Time `gorm:"not null"`
	Paid      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// ComputeTotal is the single source of truth for an invoice total.
func ComputeTotal(subtotal, discount, tax decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(tax)
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Discount struct {
	ID          uint         `gorm:"primaryKey"`
	Code        string       `gorm:"size:20;uniqueIndex;not null"`
	Description string       `gorm:"size:200"`
	Type        DiscountType `gorm:"size:16;not null;default:percentage"`

	// Percentage (0-100) for percentage type, otherwise a fixed amount.
	Value decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	MinOrderValue    decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	MaxDiscountValue *decimal.Decimal `gorm:"type:decimal(10,2)"`

	ValidFrom  time.Time
	ValidTo    *time.Time
	UsageLimit *int
	TimesUsed  int  `gorm:"not null;default:0"`
	IsActive   bool `gorm:"not null;default:true"`
}
