package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
)

// ActivityRepository covers the order-owned side records: comments, files,
// deliveries, support tickets and extension requests.
type ActivityRepository interface {
	CreateComment(ctx context.Context, comment *model.OrderComment) error
	CreateFile(ctx context.Context, file *model.OrderFile) error
	FindFile(ctx context.Context, orderID, fileID uint) (*model.OrderFile, error)
	DeleteFile(ctx context.Context, orderID, fileID uint) error
	CreateTicket(ctx context.Context, ticket *model.SupportTicket) error
	CreateDelivery(ctx context.Context, tx *gorm.DB, delivery *model.OrderDelivery) error
	FindDelivery(ctx context.Context, orderID, deliveryID uint) (*model.OrderDelivery, error)

	CreateExtension(ctx context.Context, tx *gorm.DB, req *model.ExtensionRequest) error
	// PendingExtensionCount is read inside the requesting transaction so two
	// concurrent requests cannot both pass the "none pending" guard.
	PendingExtensionCount(ctx context.Context, tx *gorm.DB, orderID uint) (int64, error)
	ResolveExtension(ctx context.Context, tx *gorm.DB, requestID uint, status model.ExtensionStatus) (*model.ExtensionRequest, error)
	ListPendingExtensions(ctx context.Context) ([]*model.ExtensionRequest, error)
}

type activityRepoImpl struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepoImpl{db: db}
}

func (r *activityRepoImpl) CreateComment(ctx context.Context, comment *model.OrderComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *activityRepoImpl) CreateFile(ctx context.Context, file *model.OrderFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *activityRepoImpl) FindFile(ctx context.Context, orderID, fileID uint) (*model.OrderFile, error) {
	var file model.OrderFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", fileID, orderID).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *activityRepoImpl) DeleteFile(ctx context.Context, orderID, fileID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", fileID, orderID).
		Delete(&model.OrderFile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *activityRepoImpl) CreateTicket(ctx context.Context, ticket *model.SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *activityRepoImpl) CreateDelivery(ctx context.Context, tx *gorm.DB, delivery *model.OrderDelivery) error {
	return tx.WithContext(ctx).Create(delivery).Error
}

func (r *activityRepoImpl) FindDelivery(ctx context.Context, orderID, deliveryID uint) (*model.OrderDelivery, error) {
	var delivery model.OrderDelivery
	err := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", deliveryID, orderID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *activityRepoImpl) CreateExtension(ctx context.Context, tx *gorm.DB, req *model.ExtensionRequest) error {
	return tx.WithContext(ctx).Create(req).Error
}

func (r *activityRepoImpl) PendingExtensionCount(ctx context.Context, tx *gorm.DB, orderID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.ExtensionRequest{}).
		Where("order_id = ? AND status = ?", orderID, model.ExtensionPending).
		Count(&count).Error
	return count, err
}

func (r *activityRepoImpl) ResolveExtension(ctx context.Context, tx *gorm.DB, requestID uint, status model.ExtensionStatus) (*model.ExtensionRequest, error) {
	result := tx.WithContext(ctx).Model(&model.ExtensionRequest{}).
		Where("id = ? AND status = ?", requestID, model.ExtensionPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var req model.ExtensionRequest
	if err := tx.WithContext(ctx).First(&req, requestID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *activityRepoImpl) ListPendingExtensions(ctx context.Context) ([]*model.ExtensionRequest, error) {
	var reqs []*model.ExtensionRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ExtensionPending).
		Order("created_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}
