package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
)

type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, invoice *model.Invoice) error
	FindByOrderID(ctx context.Context, orderID uint) (*model.Invoice, error)
	// ApplyDiscountDelta is the only post-creation mutation path for the
	// ledger. Discount and total move together in one guarded UPDATE so the
	// total stays a pure function of (subtotal, discount, tax); a miss means
	// the invoice is already paid or the adjustment would break the ledger.
	ApplyDiscountDelta(ctx context.Context, tx *gorm.DB, orderID uint, delta decimal.Decimal) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint) error
	SetDueDate(ctx context.Context, tx *gorm.DB, orderID uint, dueDate time.Time) error
}

type invoiceRepoImpl struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepoImpl{db: db}
}

func (r *invoiceRepoImpl) Create(ctx context.Context, tx *gorm.DB, invoice *model.Invoice) error {
	return tx.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepoImpl) FindByOrderID(ctx context.Context, orderID uint) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepoImpl) ApplyDiscountDelta(ctx context.Context, tx *gorm.DB, orderID uint, delta decimal.Decimal) error {
	result := tx.WithContext(ctx).Model(&model.Invoice{}).
		Where("order_id = ? AND paid = ? AND total - ? >= 0", orderID, false, delta).
		Updates(map[string]interface{}{
			"discount": gorm.Expr("discount + ?", delta),
			"total":    gorm.Expr("total - ?", delta),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint) error {
	result := tx.WithContext(ctx).Model(&model.Invoice{}).
		Where("order_id = ? AND paid = ?", orderID, false).
		Update("paid", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepoImpl) SetDueDate(ctx context.Context, tx *gorm.DB, orderID uint, dueDate time.Time) error {
	return tx.WithContext(ctx).Model(&model.Invoice{}).
		Where("order_id = ?", orderID).
		Update("due_date", dueDate).Error
}
