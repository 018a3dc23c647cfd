package service

import "errors"

// Domain errors surfaced across the order-and-billing core. Handlers map
// these onto HTTP statuses; anything unwrapped is treated as internal.
var (
	// ErrNotFound covers both "does not exist" and "not owned by the
	// caller" so a client can never probe other clients' orders.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed or out-of-range input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrRateNotFound: no active rate row matches the exact
	// (service, level, deadline) triple. There is no fallback rate.
	ErrRateNotFound = errors.New("no rate configured for this combination")

	// ErrDiscountInvalid: the code failed a validity check. The failing
	// check leaves no state behind.
	ErrDiscountInvalid = errors.New("discount code is not valid")

	// ErrInsufficientPoints: the client's balance does not cover the
	// requested redemption. Nothing is partially applied.
	ErrInsufficientPoints = errors.New("insufficient reward points")

	// ErrOrderAlreadyPaid: price-affecting mutations are rejected once
	// payment has completed.
	ErrOrderAlreadyPaid = errors.New("order is already paid")

	// ErrInvalidTotal: an invoice whose total would be zero or negative.
	ErrInvalidTotal = errors.New("invoice total must be positive")

	// ErrExtensionPending: one unresolved extension request per order.
	ErrExtensionPending = errors.New("an extension request is already pending")

	// ErrConflict: a guarded update lost an optimistic race. Safe for the
	// caller to retry once.
	ErrConflict = errors.New("conflicting concurrent update")
)
