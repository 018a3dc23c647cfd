package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []OrderStatus{
	StatusPending, StatusActive, StatusPendingReview,
	StatusRevision, StatusOverdue, StatusClosed, StatusCanceled,
}

func TestCanTransition_AllowedPairs(t *testing.T) {
	allowed := [][2]OrderStatus{
		{StatusPending, StatusActive},
		{StatusPending, StatusOverdue},
		{StatusPending, StatusCanceled},
		{StatusActive, StatusPendingReview},
		{StatusActive, StatusOverdue},
		{StatusActive, StatusCanceled},
		{StatusPendingReview, StatusRevision},
		{StatusPendingReview, StatusClosed},
		{StatusRevision, StatusPendingReview},
	}
	for _, pair := range allowed {
		assert.True(t, CanTransition(pair[0], pair[1]), "%s -> %s should be legal", pair[0], pair[1])
	}
}

func TestCanTransition_EverythingElseIsIllegal(t *testing.T) {
	allowed := map[[2]OrderStatus]bool{
		{StatusPending, StatusActive}:         true,
		{StatusPending, StatusOverdue}:        true,
		{StatusPending, StatusCanceled}:       true,
		{StatusActive, StatusPendingReview}:   true,
		{StatusActive, StatusOverdue}:         true,
		{StatusActive, StatusCanceled}:        true,
		{StatusPendingReview, StatusRevision}: true,
		{StatusPendingReview, StatusClosed}:   true,
		{StatusRevision, StatusPendingReview}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if allowed[[2]OrderStatus{from, to}] {
				continue
			}
			assert.False(t, CanTransition(from, to), "%s -> %s must be illegal", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusClosed))
	assert.True(t, IsTerminal(StatusCanceled))
	assert.False(t, IsTerminal(StatusOverdue))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusActive))
	assert.False(t, IsTerminal(StatusPendingReview))
	assert.False(t, IsTerminal(StatusRevision))
}

func TestNewOrderNumber_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := NewOrderNumber()
		assert.Len(t, n, 12)
		assert.Equal(t, "ORD-", n[:4])
		assert.False(t, seen[n], "order numbers must not repeat")
		seen[n] = true
	}
}
