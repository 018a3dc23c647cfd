package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/tunedhq/tuned-core/internal/model"
)

// Side records hang off an order while it is still open; once the order
// reaches a terminal state nothing more may be attached.

func (s *orderServiceImpl) AddComment(ctx context.Context, clientID, orderID uint, message string, fromOperator bool) (*model.OrderComment, error) {
	if len(message) < 1 || len(message) > 5000 {
		return nil, fmt.Errorf("%w: message must be 1-5000 characters", ErrValidation)
	}

	order, err := s.orders.FindForClient(ctx, clientID, orderID)
	if err != nil {
		return nil, notFound(err)
	}
	if model.IsTerminal(order.Status) {
		return nil, model.ErrIllegalTransition
	}

	comment := &model.OrderComment{
		OrderID:      orderID,
		UserID:       clientID,
		Message:      message,
		FromOperator: fromOperator,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.activities.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *orderServiceImpl) UploadFile(ctx context.Context, clientID, orderID uint, filename string, content io.Reader) (*model.OrderFile, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename required", ErrValidation)
	}

	order, err := s.orders.FindForClient(ctx, clientID, orderID)
	if err != nil {
		return nil, notFound(err)
	}
	if model.IsTerminal(order.Status) {
		return nil, model.ErrIllegalTransition
	}

	key := fmt.Sprintf("%d-%s-%s", orderID, uuid.NewString()[:8], filename)
	size, err := s.files.Save(ctx, key, content)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	file := &model.OrderFile{
		OrderID:    orderID,
		Filename:   filename,
		StorageKey: key,
		Size:       size,
		FromClient: true,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.activities.CreateFile(ctx, file); err != nil {
		// Keep storage and records consistent if the insert fails.
		_ = s.files.Delete(ctx, key)
		return nil, err
	}
	return file, nil
}

func (s *orderServiceImpl) DeleteFile(ctx context.Context, clientID, orderID, fileID uint) error {
	if _, err := s.orders.FindForClient(ctx, clientID, orderID); err != nil {
		return notFound(err)
	}

	file, err := s.activities.FindFile(ctx, orderID, fileID)
	if err != nil {
		return notFound(err)
	}
	if err := s.activities.DeleteFile(ctx, orderID, fileID); err != nil {
		return notFound(err)
	}
	return s.files.Delete(ctx, file.StorageKey)
}

func (s *orderServiceImpl) CreateTicket(ctx context.Context, clientID, orderID uint, subject, message string) (*model.SupportTicket, error) {
	if len(subject) < 3 || len(subject) > 255 {
		return nil, fmt.Errorf("%w: subject must be 3-255 characters", ErrValidation)
	}
	if len(message) < 10 || len(message) > 5000 {
		return nil, fmt.Errorf("%w: message must be 10-5000 characters", ErrValidation)
	}

	if _, err := s.orders.FindForClient(ctx, clientID, orderID); err != nil {
		return nil, notFound(err)
	}

	ticket := &model.SupportTicket{
		OrderID: orderID,
		UserID:  clientID,
		Subject: subject,
		Message: message,
		Status:  model.TicketOpen,
	}
	if err := s.activities.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}
