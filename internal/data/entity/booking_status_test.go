package entity

import (
	"errors"
	"testing"
	"time"

	"service-dispatch/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"pending to searching", BookingStatusPending, BookingStatusSearching, true},
		{"pending straight to vendor_assigned", BookingStatusPending, BookingStatusVendorAssigned, true},
		{"searching to vendor_assigned", BookingStatusSearching, BookingStatusVendorAssigned, true},
		{"vendor_assigned to accepted", BookingStatusVendorAssigned, BookingStatusAccepted, true},
		{"in_progress to completed", BookingStatusInProgress, BookingStatusCompleted, true},
		{"searching to expired", BookingStatusSearching, BookingStatusExpired, true},
		{"on_route to cancelled_by_user", BookingStatusOnRoute, BookingStatusCancelledByUser, true},
		{"accepted to failed", BookingStatusAccepted, BookingStatusFailed, true},

		{"skip forward chain", BookingStatusPending, BookingStatusAccepted, false},
		{"backwards move", BookingStatusCompleted, BookingStatusAccepted, false},
		{"completed via side exit", BookingStatusSearching, BookingStatusCompleted, false},
		{"out of expired", BookingStatusExpired, BookingStatusSearching, false},
		{"terminal re-entry is an error", BookingStatusExpired, BookingStatusExpired, false},
		{"cancel a completed booking", BookingStatusCompleted, BookingStatusCancelledByAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionStampsTimes(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	b := &Booking{Status: BookingStatusOnRoute}

	require.NoError(t, b.Transition(BookingStatusArrived, start))
	require.NotNil(t, b.ArrivedAt)
	assert.Equal(t, start, *b.ArrivedAt)

	require.NoError(t, b.Transition(BookingStatusInProgress, start.Add(5*time.Minute)))
	require.NotNil(t, b.ActualStart)

	end := start.Add(95 * time.Minute)
	require.NoError(t, b.Transition(BookingStatusCompleted, end))
	require.NotNil(t, b.ActualEnd)
	require.NotNil(t, b.DurationMinutes)
	assert.Equal(t, 90, *b.DurationMinutes)
}

func TestTransitionIllegal(t *testing.T) {
	b := &Booking{Status: BookingStatusCompleted}

	err := b.Transition(BookingStatusAccepted, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrInvalidTransition))
	// status untouched on failure
	assert.Equal(t, BookingStatusCompleted, b.Status)
}

func TestTerminal(t *testing.T) {
	assert.True(t, BookingStatusExpired.Terminal())
	assert.True(t, BookingStatusCompleted.Terminal())
	assert.False(t, BookingStatusSearching.Terminal())
	assert.False(t, BookingStatusInProgress.Terminal())
}
