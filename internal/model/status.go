package model

import "errors"

type OrderStatus string

const (
	StatusPending       OrderStatus = "pending"
	StatusActive        OrderStatus = "active"
	StatusPendingReview OrderStatus = "completed_pending_review"
	StatusRevision      OrderStatus = "revision"
	StatusOverdue       OrderStatus = "overdue"
	StatusClosed        OrderStatus = "closed"
	StatusCanceled      OrderStatus = "canceled"
)

// ErrIllegalTransition is returned whenever a (status, target) pair is not
// in the transition table, or the conditional update guarding a transition
// matched no row.
var ErrIllegalTransition = errors.New("illegal order status transition")

// validTransitions is the authoritative transition table. Anything not
// listed here is illegal.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:       {StatusActive, StatusOverdue, StatusCanceled},
	StatusActive:        {StatusPendingReview, StatusOverdue, StatusCanceled},
	StatusPendingReview: {StatusRevision, StatusClosed},
	StatusRevision:      {StatusPendingReview},
	StatusOverdue:       {},
	StatusClosed:        {},
	StatusCanceled:      {},
}

// CanTransition reports whether from → to is in the transition table.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order has reached the end of its life.
// Overdue orders are stuck, not finished: they keep accepting comments,
// files and operator attention.
func IsTerminal(s OrderStatus) bool {
	return s == StatusClosed || s == StatusCanceled
}
