package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/notify"
)

// Deliver records a new deliverable and moves the order into review.
// Legal from ACTIVE (first delivery) and REVISION (redelivery).
func (s *orderServiceImpl) Deliver(ctx context.Context, orderID uint, filename, storageKey, note string) (*model.Order, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, notFound(err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := s.orders.Transition(ctx, tx, orderID,
			[]model.OrderStatus{model.StatusActive, model.StatusRevision},
			model.StatusPendingReview, nil,
		)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrIllegalTransition
			}
			return err
		}
		return s.activities.CreateDelivery(ctx, tx, &model.OrderDelivery{
			OrderID:     orderID,
			Filename:    filename,
			StorageKey:  storageKey,
			Note:        note,
			DeliveredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, notify.Event{Kind: notify.EventOrderDelivered, Order: order})
	return order, nil
}

func (s *orderServiceImpl) RequestRevision(ctx context.Context, clientID, orderID, deliveryID uint, notes string) error {
	if len(notes) < 20 || len(notes) > 2000 {
		return fmt.Errorf("%w: revision notes must be 20-2000 characters", ErrValidation)
	}

	order, err := s.orders.FindForClient(ctx, clientID, orderID)
	if err != nil {
		return notFound(err)
	}

	// The cited delivery must belong to this order.
	if _, err := s.activities.FindDelivery(ctx, orderID, deliveryID); err != nil {
		return notFound(err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := s.orders.Transition(ctx, tx, orderID,
			[]model.OrderStatus{model.StatusPendingReview},
			model.StatusRevision, nil,
		)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrIllegalTransition
		}
		return err
	})
	if err != nil {
		return err
	}

	order.Status = model.StatusRevision
	s.emitter.Emit(ctx, notify.Event{
		Kind:   notify.EventRevisionRequested,
		Order:  order,
		Detail: notes,
	})
	return nil
}

// Accept closes a reviewed order.
func (s *orderServiceImpl) Accept(ctx context.Context, clientID, orderID uint) error {
	if _, err := s.orders.FindForClient(ctx, clientID, orderID); err != nil {
		return notFound(err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := s.orders.Transition(ctx, tx, orderID,
			[]model.OrderStatus{model.StatusPendingReview},
			model.StatusClosed, nil,
		)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrIllegalTransition
		}
		return err
	})
}

// Cancel is an operator action on orders not yet delivered.
func (s *orderServiceImpl) Cancel(ctx context.Context, orderID uint) error {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return notFound(err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := s.orders.Transition(ctx, tx, orderID,
			[]model.OrderStatus{model.StatusPending, model.StatusActive},
			model.StatusCanceled, nil,
		)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrIllegalTransition
		}
		return err
	})
}

// RequestExtension records the ask without touching the order's status.
// The due date only moves when an operator resolves the request.
func (s *orderServiceImpl) RequestExtension(ctx context.Context, clientID, orderID uint, hours int, reason string) (*model.ExtensionRequest, error) {
	if hours < 1 || hours > 720 {
		return nil, fmt.Errorf("%w: requested hours must be 1-720", ErrValidation)
	}
	if len(reason) < 10 || len(reason) > 2000 {
		return nil, fmt.Errorf("%w: reason must be 10-2000 characters", ErrValidation)
	}

	order, err := s.orders.FindForClient(ctx, clientID, orderID)
	if err != nil {
		return nil, notFound(err)
	}
	if order.Status != model.StatusPending && order.Status != model.StatusActive {
		return nil, model.ErrIllegalTransition
	}

	req := &model.ExtensionRequest{
		OrderID:        orderID,
		Status:         model.ExtensionPending,
		RequestedHours: hours,
		Reason:         reason,
	}

	// The "none pending" check and the insert share a transaction so two
	// concurrent requests cannot both get in.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		pending, err := s.activities.PendingExtensionCount(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrExtensionPending
		}
		return s.activities.CreateExtension(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.Event{
		Kind:   notify.EventExtensionRequested,
		Order:  order,
		Detail: fmt.Sprintf("%d extra hours requested: %s", hours, reason),
	})
	return req, nil
}

// ResolveExtension is the operator decision. Approval pushes the due date
// on both the order and its invoice.
func (s *orderServiceImpl) ResolveExtension(ctx context.Context, requestID uint, approve bool) (*model.ExtensionRequest, error) {
	status := model.ExtensionDenied
	if approve {
		status = model.ExtensionApproved
	}

	var resolved *model.ExtensionRequest
	var order *model.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		req, err := s.activities.ResolveExtension(ctx, tx, requestID, status)
		if err != nil {
			return notFound(err)
		}
		resolved = req

		order, err = s.orders.FindByID(ctx, req.OrderID)
		if err != nil {
			return notFound(err)
		}

		if !approve {
			return nil
		}

		newDue := order.DueDate.Add(time.Duration(req.RequestedHours) * time.Hour)
		if err := s.orders.SetDueDate(ctx, tx, req.OrderID, newDue); err != nil {
			return err
		}
		order.DueDate = newDue
		return s.invoices.SetDueDate(ctx, tx, req.OrderID, newDue)
	})
	if err != nil {
		return nil, err
	}

	detail := "The request was denied."
	if approve {
		detail = fmt.Sprintf("Approved: new due date %s.", order.DueDate.Format(time.RFC3339))
	}
	s.emitter.Emit(ctx, notify.Event{Kind: notify.EventExtensionResolved, Order: order, Detail: detail})
	return resolved, nil
}

func (s *orderServiceImpl) ListPendingExtensions(ctx context.Context) ([]*model.ExtensionRequest, error) {
	return s.activities.ListPendingExtensions(ctx)
}
