package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/notify"
	"github.com/tunedhq/tuned-core/internal/repository"
	"github.com/tunedhq/tuned-core/internal/storage"
)

// Emitter is the notification fan-out as seen from the order core.
type Emitter interface {
	Emit(ctx context.Context, event notify.Event)
}

// ReminderScheduler enqueues the one-shot payment reminder. The request
// path only enqueues; it never waits on job execution.
type ReminderScheduler interface {
	SchedulePaymentReminder(orderID uint)
}

type CreateOrderInput struct {
	ServiceID       uint
	AcademicLevelID uint
	DeadlineID      uint
	Title           string
	Description     string
	WordCount       int
	PageCount       float64
	DiscountCode    string
}

// Redemption summarises a completed reward-point redemption.
type Redemption struct {
	Points   int
	Amount   decimal.Decimal
	NewTotal decimal.Decimal
}

type OrderService interface {
	Create(ctx context.Context, clientID uint, in CreateOrderInput) (*model.Order, error)
	Get(ctx context.Context, clientID, orderID uint) (*model.Order, error)
	List(ctx context.Context, clientID uint, filter repository.OrderFilter, page repository.Page) ([]*model.Order, int64, error)
	GetInvoice(ctx context.Context, clientID, orderID uint) (*model.Invoice, error)
	SoftDelete(ctx context.Context, clientID, orderID uint) error

	// CompletePayment is the processor's completion callback, the only
	// path that sets paid=true.
	CompletePayment(ctx context.Context, orderID uint) (*model.Order, error)
	RedeemPoints(ctx context.Context, clientID, orderID uint, points int) (*Redemption, error)

	Deliver(ctx context.Context, orderID uint, filename, storageKey, note string) (*model.Order, error)
	RequestRevision(ctx context.Context, clientID, orderID, deliveryID uint, notes string) error
	Accept(ctx context.Context, clientID, orderID uint) error
	Cancel(ctx context.Context, orderID uint) error
	RequestExtension(ctx context.Context, clientID, orderID uint, hours int, reason string) (*model.ExtensionRequest, error)
	ResolveExtension(ctx context.Context, requestID uint, approve bool) (*model.ExtensionRequest, error)
	ListPendingExtensions(ctx context.Context) ([]*model.ExtensionRequest, error)

	AddComment(ctx context.Context, clientID, orderID uint, message string, fromOperator bool) (*model.OrderComment, error)
	UploadFile(ctx context.Context, clientID, orderID uint, filename string, content io.Reader) (*model.OrderFile, error)
	DeleteFile(ctx context.Context, clientID, orderID, fileID uint) error
	CreateTicket(ctx context.Context, clientID, orderID uint, subject, message string) (*model.SupportTicket, error)
}

type orderServiceImpl struct {
	db *gorm.DB

	orders     repository.OrderRepository
	invoices   repository.InvoiceRepository
	users      repository.UserRepository
	discounts  repository.DiscountRepository
	activities repository.ActivityRepository

	pricing   PricingService
	emitter   Emitter
	scheduler ReminderScheduler
	files     storage.FileStore

	pointsPerUnit int
	taxRatePct    float64
}

func NewOrderService(
	db *gorm.DB,
	orders repository.OrderRepository,
	invoices repository.InvoiceRepository,
	users repository.UserRepository,
	discounts repository.DiscountRepository,
	activities repository.ActivityRepository,
	pricing PricingService,
	emitter Emitter,
	scheduler ReminderScheduler,
	files storage.FileStore,
	pointsPerUnit int,
	taxRatePct float64,
) OrderService {
	return &orderServiceImpl{
		db:            db,
		orders:        orders,
		invoices:      invoices,
		users:         users,
		discounts:     discounts,
		activities:    activities,
		pricing:       pricing,
		emitter:       emitter,
		scheduler:     scheduler,
		files:         files,
		pointsPerUnit: pointsPerUnit,
		taxRatePct:    taxRatePct,
	}
}

func (s *orderServiceImpl) Create(ctx context.Context, clientID uint, in CreateOrderInput) (*model.Order, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	quote, err := s.pricing.ResolvePrice(ctx, in.ServiceID, in.AcademicLevelID, in.DeadlineID, in.PageCount)
	if err != nil {
		return nil, err
	}

	discountAmount := decimal.Zero
	var discount *model.Discount
	if in.DiscountCode != "" {
		discount, discountAmount, err = s.pricing.ValidateDiscount(ctx, in.DiscountCode, quote.Subtotal)
		if err != nil {
			return nil, err
		}
	}

	tax := quote.Subtotal.
		Mul(decimal.NewFromFloat(s.taxRatePct)).
		Div(decimal.NewFromInt(100)).
		Round(2)

	now := time.Now().UTC()
	dueDate := now.Add(time.Duration(quote.Deadline.Hours) * time.Hour)

	order := &model.Order{
		OrderNumber:     model.NewOrderNumber(),
		ClientID:        clientID,
		ServiceID:       in.ServiceID,
		AcademicLevelID: in.AcademicLevelID,
		DeadlineID:      in.DeadlineID,
		Title:           in.Title,
		Description:     in.Description,
		WordCount:       in.WordCount,
		PageCount:       in.PageCount,
		TotalPrice:      model.ComputeTotal(quote.Subtotal, discountAmount, tax),
		Status:          model.StatusPending,
		DueDate:         dueDate,
		IsActive:        true,
	}

	// Order, invoice and discount-usage move as one transaction: if any
	// piece fails, none of them happened.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.orders.Create(ctx, tx, order); err != nil {
			return err
		}

		invoice, err := BuildInvoice(order, quote.Subtotal, discountAmount, tax, dueDate)
		if err != nil {
			return err
		}
		if err := s.invoices.Create(ctx, tx, invoice); err != nil {
			return err
		}
		order.Invoice = invoice

		if discount != nil {
			if err := s.discounts.IncrementUsage(ctx, tx, discount.ID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: usage limit reached", ErrDiscountInvalid)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.Event{Kind: notify.EventOrderCreated, Order: order})
	s.scheduler.SchedulePaymentReminder(order.ID)

	return order, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, clientID, orderID uint) (*model.Order, error) {
	order, err := s.orders.FindForClient(ctx, clientID, orderID)
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (s *orderServiceImpl) List(ctx context.Context, clientID uint, filter repository.OrderFilter, page repository.Page) ([]*model.Order, int64, error) {
	return s.orders.List(ctx, clientID, filter, page)
}

func (s *orderServiceImpl) GetInvoice(ctx context.Context, clientID, orderID uint) (*model.Invoice, error) {
	if _, err := s.orders.FindForClient(ctx, clientID, orderID); err != nil {
		return nil, notFound(err)
	}
	invoice, err := s.invoices.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, notFound(err)
	}
	return invoice, nil
}

func (s *orderServiceImpl) SoftDelete(ctx context.Context, clientID, orderID uint) error {
	if _, err := s.orders.FindForClient(ctx, clientID, orderID); err != nil {
		return notFound(err)
	}
	if err := s.orders.SoftDelete(ctx, clientID, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Exists but is paid or already underway.
			return model.ErrIllegalTransition
		}
		return err
	}
	return nil
}

func (s *orderServiceImpl) CompletePayment(ctx context.Context, orderID uint) (*model.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := s.orders.Transition(ctx, tx, orderID,
			[]model.OrderStatus{model.StatusPending}, model.StatusActive,
			map[string]interface{}{"paid": true},
		)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrIllegalTransition
			}
			return err
		}
		return s.invoices.MarkPaid(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}

	// The pending payment reminder needs no explicit cancel: its fire-time
	// precondition (still pending, unpaid) no longer holds.
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err)
	}
	s.emitter.Emit(ctx, notify.Event{Kind: notify.EventOrderPaid, Order: order})
	return order, nil
}

func (s *orderServiceImpl) RedeemPoints(ctx context.Context, clientID, orderID uint, points int) (*Redemption, error) {
	if points <= 0 || points%s.pointsPerUnit != 0 {
		return nil, fmt.Errorf("%w: points must be a positive multiple of %d", ErrValidation, s.pointsPerUnit)
	}

	order, err := s.orders.FindForClient(ctx, clientID, orderID)
	if err != nil {
		return nil, notFound(err)
	}
	if order.Paid {
		return nil, ErrOrderAlreadyPaid
	}

	amount := decimal.NewFromInt(int64(points / s.pointsPerUnit))
	if amount.GreaterThanOrEqual(order.TotalPrice) {
		return nil, fmt.Errorf("%w: redemption exceeds order total", ErrValidation)
	}

	// Balance, order total and invoice discount move together or not at
	// all. Each write carries its own guard; any miss rolls the lot back.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.users.DeductPoints(ctx, tx, clientID, points); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInsufficientPoints
			}
			return err
		}
		if err := s.orders.DeductTotal(ctx, tx, orderID, amount); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConflict
			}
			return err
		}
		if err := s.invoices.ApplyDiscountDelta(ctx, tx, orderID, amount); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, notify.Event{
		Kind:   notify.EventPointsRedeemed,
		Order:  updated,
		Detail: fmt.Sprintf("%d points taken off as %s.", points, amount.StringFixed(2)),
	})

	return &Redemption{
		Points:   points,
		Amount:   amount,
		NewTotal: updated.TotalPrice,
	}, nil
}

func validateCreateInput(in CreateOrderInput) error {
	switch {
	case len(in.Title) < 5 || len(in.Title) > 255:
		return fmt.Errorf("%w: title must be 5-255 characters", ErrValidation)
	case len(in.Description) < 20 || len(in.Description) > 10000:
		return fmt.Errorf("%w: description must be 20-10000 characters", ErrValidation)
	case in.WordCount < 250 || in.WordCount > 50000:
		return fmt.Errorf("%w: word count must be 250-50000", ErrValidation)
	case in.PageCount < 1 || in.PageCount > 200:
		return fmt.Errorf("%w: page count must be 1-200", ErrValidation)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
