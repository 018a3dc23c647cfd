package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tunedhq/tuned-core/internal/client"
	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/repository"
)

type EventKind string

const (
	EventOrderCreated       EventKind = "order_created"
	EventPaymentReminder    EventKind = "payment_reminder"
	EventOrderPaid          EventKind = "order_paid"
	EventOrderDelivered     EventKind = "order_delivered"
	EventRevisionRequested  EventKind = "revision_requested"
	EventOrderOverdue       EventKind = "order_overdue"
	EventOrderDueSoon       EventKind = "order_due_soon"
	EventExtensionRequested EventKind = "extension_requested"
	EventExtensionResolved  EventKind = "extension_resolved"
	EventPointsRedeemed     EventKind = "points_redeemed"
)

// Event is the intent a lifecycle transition hands to the fan-out. The
// transition has already committed by the time an event is emitted; nothing
// the fan-out does can roll it back.
type Event struct {
	Kind   EventKind
	Order  *model.Order
	Detail string
}

// Notifier translates lifecycle events into addressed in-app alerts plus
// best-effort email and push dispatch. Emails and pushes are handed to a
// background dispatcher so callers never block on transport.
type Notifier struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	email         EmailSender
	push          client.PushClient

	queue  chan delivery
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// delivery is one outbound email/push pair for a single recipient.
type delivery struct {
	user    model.User
	title   string
	message string
	link    string
	mail    bool
}

func NewNotifier(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	email EmailSender,
	push client.PushClient,
) *Notifier {
	return &Notifier{
		notifications: notifications,
		users:         users,
		email:         email,
		push:          push,
		queue:         make(chan delivery, 256),
		stopCh:        make(chan struct{}),
	}
}

// Start launches the dispatcher goroutine.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.dispatchLoop()
	}()
}

// Stop drains in-flight deliveries and stops the dispatcher.
func (n *Notifier) Stop() {
	close(n.stopCh)
	n.wg.Wait()
}

func (n *Notifier) dispatchLoop() {
	for {
		select {
		case d := <-n.queue:
			n.deliver(d)
		case <-n.stopCh:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case d := <-n.queue:
					n.deliver(d)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) deliver(d delivery) {
	ctx := context.Background()

	if d.mail && d.user.Email != "" {
		if err := n.email.Send(d.user.Email, d.title, d.message); err != nil {
			slog.Error("email dispatch failed", "user_id", d.user.ID, "err", err)
		}
	}
	if err := n.push.Send(ctx, d.user.ID, d.title, d.message, d.link); err != nil {
		slog.Error("push dispatch failed", "user_id", d.user.ID, "err", err)
	}
}

// Emit fans one event out to its recipients. Fire and forget: failures are
// logged and never surface to the triggering transition.
func (n *Notifier) Emit(ctx context.Context, event Event) {
	order := event.Order
	if order == nil {
		return
	}

	title, message := render(event)
	link := fmt.Sprintf("/orders/%d", order.ID)

	// Owner copy.
	owner, err := n.users.FindByID(ctx, order.ClientID)
	if err != nil {
		slog.Error("notification owner lookup failed", "order_id", order.ID, "err", err)
	} else {
		n.send(ctx, *owner, event, title, message, link)
	}

	if !operatorEvent(event.Kind) {
		return
	}

	operators, err := n.users.ActiveOperators(ctx)
	if err != nil {
		slog.Error("operator lookup failed", "order_id", order.ID, "err", err)
		return
	}
	opTitle := fmt.Sprintf("%s - %s", title, order.OrderNumber)
	for _, op := range operators {
		n.send(ctx, *op, event, opTitle, message, link)
	}
}

func (n *Notifier) send(ctx context.Context, user model.User, event Event, title, message, link string) {
	record := &model.Notification{
		UserID:  user.ID,
		Title:   title,
		Message: message,
		Kind:    alertKind(event.Kind),
		Link:    link,
	}
	if err := n.notifications.Create(ctx, record); err != nil {
		slog.Error("notification persist failed", "user_id", user.ID, "order_id", event.Order.ID, "err", err)
	}

	d := delivery{
		user:    user,
		title:   title,
		message: message,
		link:    link,
		mail:    mailEvent(event.Kind),
	}
	select {
	case n.queue <- d:
	default:
		slog.Warn("notification queue full, dropping outbound dispatch", "user_id", user.ID)
	}
}

// operatorEvent reports whether every active operator gets a copy.
func operatorEvent(kind EventKind) bool {
	switch kind {
	case EventOrderCreated, EventRevisionRequested, EventOrderOverdue, EventExtensionRequested:
		return true
	}
	return false
}

// mailEvent reports whether the event also goes out by email.
func mailEvent(kind EventKind) bool {
	switch kind {
	case EventOrderCreated, EventPaymentReminder, EventOrderDelivered, EventOrderOverdue, EventOrderDueSoon:
		return true
	}
	return false
}

func alertKind(kind EventKind) model.NotificationKind {
	switch kind {
	case EventOrderOverdue:
		return model.NotifyError
	case EventRevisionRequested, EventExtensionRequested, EventOrderDueSoon, EventPaymentReminder:
		return model.NotifyWarning
	case EventOrderPaid, EventPointsRedeemed, EventExtensionResolved:
		return model.NotifySuccess
	}
	return model.NotifyInfo
}

func render(event Event) (title, message string) {
	o := event.Order
	switch event.Kind {
	case EventOrderCreated:
		return "Order Created",
			fmt.Sprintf("Order %q has been created. Please complete payment to proceed.", o.Title)
	case EventPaymentReminder:
		return "Payment Reminder",
			fmt.Sprintf("Order %s is still awaiting payment.", o.OrderNumber)
	case EventOrderPaid:
		return "Payment Received",
			fmt.Sprintf("Payment for order %s was received. Work is now in progress.", o.OrderNumber)
	case EventOrderDelivered:
		return "Order Delivered",
			fmt.Sprintf("A delivery for order %s is ready for your review.", o.OrderNumber)
	case EventRevisionRequested:
		return "Revision Requested",
			fmt.Sprintf("A revision was requested for order %s. %s", o.OrderNumber, event.Detail)
	case EventOrderOverdue:
		return "Order Overdue",
			fmt.Sprintf("Order %s has passed its due date.", o.OrderNumber)
	case EventOrderDueSoon:
		return "Order Due Soon",
			fmt.Sprintf("Order %s is due within 24 hours.", o.OrderNumber)
	case EventExtensionRequested:
		return "Deadline Extension Requested",
			fmt.Sprintf("An extension was requested for order %s. %s", o.OrderNumber, event.Detail)
	case EventExtensionResolved:
		return "Deadline Extension Reviewed",
			fmt.Sprintf("Your extension request for order %s was reviewed. %s", o.OrderNumber, event.Detail)
	case EventPointsRedeemed:
		return "Reward Points Redeemed",
			fmt.Sprintf("Points were redeemed against order %s. %s", o.OrderNumber, event.Detail)
	}
	return string(event.Kind), event.Detail
}
