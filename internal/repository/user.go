package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	ActiveOperators(ctx context.Context) ([]*model.User, error)
	// DeductPoints spends points only when the balance covers them; the
	// guard is part of the update itself.
	DeductPoints(ctx context.Context, tx *gorm.DB, userID uint, points int) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{db: db}
}

func (r *userRepoImpl) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoImpl) ActiveOperators(ctx context.Context) ([]*model.User, error) {
	var operators []*model.User
	err := r.db.WithContext(ctx).
		Where("is_operator = ? AND is_active = ?", true, true).
		Find(&operators).Error
	if err != nil {
		return nil, err
	}
	return operators, nil
}

func (r *userRepoImpl) DeductPoints(ctx context.Context, tx *gorm.DB, userID uint, points int) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND points >= ?", userID, points).
		Update("points", gorm.Expr("points - ?", points))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
