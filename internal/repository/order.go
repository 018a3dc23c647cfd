package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
)

// OrderFilter narrows a client's order listing.
type OrderFilter struct {
	Status *model.OrderStatus
	Paid   *bool
}

type Page struct {
	Number int
	Size   int
}

func (p Page) offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.limit()
}

func (p Page) limit() int {
	if p.Size < 1 || p.Size > 100 {
		return 20
	}
	return p.Size
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	// FindForClient scopes the lookup to the owning client and excludes
	// soft-deleted orders; callers translate ErrRecordNotFound to NotFound.
	FindForClient(ctx context.Context, clientID, orderID uint) (*model.Order, error)
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	List(ctx context.Context, clientID uint, filter OrderFilter, page Page) ([]*model.Order, int64, error)

	// Transition performs the guarded single-row update that is the state
	// machine's atomic unit: status moves from one of `from` to `to`, with
	// optional extra column writes, all in one conditional UPDATE. A miss
	// (zero rows) means the guard failed.
	Transition(ctx context.Context, tx *gorm.DB, orderID uint, from []model.OrderStatus, to model.OrderStatus, extra map[string]interface{}) error

	// DeductTotal lowers the pricing snapshot by amount. Guarded so the
	// order stays unpaid and the total stays strictly positive; a miss is a
	// lost optimistic race.
	DeductTotal(ctx context.Context, tx *gorm.DB, orderID uint, amount decimal.Decimal) error
	SetDueDate(ctx context.Context, tx *gorm.DB, orderID uint, dueDate time.Time) error
	// SoftDelete hides a pending, unpaid order from all listings and sweeps.
	SoftDelete(ctx context.Context, clientID, orderID uint) error

	// DueForOverdue selects sweep candidates: live orders past their due
	// date still awaiting payment or work.
	DueForOverdue(ctx context.Context, now time.Time) ([]*model.Order, error)
	// DueSoon selects live active orders due inside the window.
	DueSoon(ctx context.Context, now time.Time, window time.Duration) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{db: db}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindForClient(ctx context.Context, clientID, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Preload("Comments").
		Preload("Files").
		Preload("Deliveries").
		Preload("Extensions").
		Where("id = ? AND client_id = ? AND is_active = ?", orderID, clientID, true).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Where("id = ? AND is_active = ?", orderID, true).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) List(ctx context.Context, clientID uint, filter OrderFilter, page Page) ([]*model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("client_id = ? AND is_active = ?", clientID, true)

	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Paid != nil {
		q = q.Where("paid = ?", *filter.Paid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*model.Order
	err := q.Order("created_at DESC").
		Offset(page.offset()).
		Limit(page.limit()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepoImpl) Transition(ctx context.Context, tx *gorm.DB, orderID uint, from []model.OrderStatus, to model.OrderStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ? AND is_active = ?", orderID, from, true).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) DeductTotal(ctx context.Context, tx *gorm.DB, orderID uint, amount decimal.Decimal) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND paid = ? AND total_price - ? > 0", orderID, false, amount).
		Updates(map[string]interface{}{
			"total_price": gorm.Expr("total_price - ?", amount),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) SetDueDate(ctx context.Context, tx *gorm.DB, orderID uint, dueDate time.Time) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"due_date":   dueDate,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) SoftDelete(ctx context.Context, clientID, orderID uint) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where(
			"id = ? AND client_id = ? AND is_active = ? AND status = ? AND paid = ?",
			orderID, clientID, true, model.StatusPending, false,
		).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) DueForOverdue(ctx context.Context, now time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where(
			"due_date < ? AND status IN ? AND is_active = ?",
			now, []model.OrderStatus{model.StatusPending, model.StatusActive}, true,
		).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepoImpl) DueSoon(ctx context.Context, now time.Time, window time.Duration) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where(
			"due_date >= ? AND due_date < ? AND status = ? AND is_active = ?",
			now, now.Add(window), model.StatusActive, true,
		).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
