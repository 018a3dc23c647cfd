package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
)

type DiscountRepository interface {
	FindActiveByCode(ctx context.Context, code string) (*model.Discount, error)
	// IncrementUsage bumps times_used only while the cap still holds, so
	// two concurrent applications cannot both take the last slot.
	IncrementUsage(ctx context.Context, tx *gorm.DB, discountID uint) error
}

type discountRepoImpl struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepoImpl{db: db}
}

func (r *discountRepoImpl) FindActiveByCode(ctx context.Context, code string) (*model.Discount, error) {
	var discount model.Discount
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepoImpl) IncrementUsage(ctx context.Context, tx *gorm.DB, discountID uint) error {
	result := tx.WithContext(ctx).Model(&model.Discount{}).
		Where("id = ? AND (usage_limit IS NULL OR times_used < usage_limit)", discountID).
		Update("times_used", gorm.Expr("times_used + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
