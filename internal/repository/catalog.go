package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
)

// CatalogRepository resolves the reference data an order is priced
// against: services, academic levels, deadline tiers and the rate table.
type CatalogRepository interface {
	ActiveService(ctx context.Context, id uint) (*model.Service, error)
	ActiveLevel(ctx context.Context, id uint) (*model.AcademicLevel, error)
	ActiveDeadline(ctx context.Context, id uint) (*model.Deadline, error)
	// ActiveRate finds the rate row for the exact triple. There is no
	// fallback; gorm.ErrRecordNotFound means the combination is not sold.
	ActiveRate(ctx context.Context, serviceID, levelID, deadlineID uint) (*model.PriceRate, error)
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{db: db}
}

func (r *catalogRepoImpl) ActiveService(ctx context.Context, id uint) (*model.Service, error) {
	var svc model.Service
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *catalogRepoImpl) ActiveLevel(ctx context.Context, id uint) (*model.AcademicLevel, error) {
	var level model.AcademicLevel
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *catalogRepoImpl) ActiveDeadline(ctx context.Context, id uint) (*model.Deadline, error) {
	var deadline model.Deadline
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&deadline).Error
	if err != nil {
		return nil, err
	}
	return &deadline, nil
}

func (r *catalogRepoImpl) ActiveRate(ctx context.Context, serviceID, levelID, deadlineID uint) (*model.PriceRate, error) {
	var rate model.PriceRate
	err := r.db.WithContext(ctx).
		Where(
			"service_id = ? AND academic_level_id = ? AND deadline_id = ? AND is_active = ?",
			serviceID, levelID, deadlineID, true,
		).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
