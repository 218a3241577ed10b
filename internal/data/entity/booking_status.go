package entity

import (
	"fmt"
	"time"

	"service-dispatch/pkg/utils"
)

type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "pending"
	BookingStatusSearching      BookingStatus = "searching"
	BookingStatusVendorAssigned BookingStatus = "vendor_assigned"
	BookingStatusAccepted       BookingStatus = "accepted"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusOnRoute        BookingStatus = "on_route"
	BookingStatusArrived        BookingStatus = "arrived"
	BookingStatusInProgress     BookingStatus = "in_progress"
	BookingStatusCompleted      BookingStatus = "completed"

	BookingStatusCancelledByUser   BookingStatus = "cancelled_by_user"
	BookingStatusCancelledByVendor BookingStatus = "cancelled_by_vendor"
	BookingStatusCancelledBySystem BookingStatus = "cancelled_by_system"
	BookingStatusCancelledByAdmin  BookingStatus = "cancelled_by_admin"
	BookingStatusRejected          BookingStatus = "rejected"
	BookingStatusFailed            BookingStatus = "failed"
	BookingStatusExpired           BookingStatus = "expired"
)

// forwardNext is the happy-path chain. Acceptance may close the race while
// the booking is still pending (fan-out not yet marked it searching), so
// vendor_assigned is reachable from both.
var forwardNext = map[BookingStatus][]BookingStatus{
	BookingStatusPending:        {BookingStatusSearching, BookingStatusVendorAssigned},
	BookingStatusSearching:      {BookingStatusVendorAssigned},
	BookingStatusVendorAssigned: {BookingStatusAccepted},
	BookingStatusAccepted:       {BookingStatusConfirmed},
	BookingStatusConfirmed:      {BookingStatusOnRoute},
	BookingStatusOnRoute:        {BookingStatusArrived},
	BookingStatusArrived:        {BookingStatusInProgress},
	BookingStatusInProgress:     {BookingStatusCompleted},
}

var terminalStatuses = map[BookingStatus]bool{
	BookingStatusCompleted:         true,
	BookingStatusCancelledByUser:   true,
	BookingStatusCancelledByVendor: true,
	BookingStatusCancelledBySystem: true,
	BookingStatusCancelledByAdmin:  true,
	BookingStatusRejected:          true,
	BookingStatusFailed:            true,
	BookingStatusExpired:           true,
}

// sideExits are terminal statuses reachable from any non-terminal state.
// Completed is terminal but only reachable through the forward chain.
var sideExits = map[BookingStatus]bool{
	BookingStatusCancelledByUser:   true,
	BookingStatusCancelledByVendor: true,
	BookingStatusCancelledBySystem: true,
	BookingStatusCancelledByAdmin:  true,
	BookingStatusRejected:          true,
	BookingStatusFailed:            true,
	BookingStatusExpired:           true,
}

func (s BookingStatus) Terminal() bool {
	return terminalStatuses[s]
}

// CanTransition reports whether from -> to is a legal move. Re-entering a
// terminal state is illegal, not a no-op: callers retrying a terminal
// transition have a bug and must hear about it.
func CanTransition(from, to BookingStatus) bool {
	if terminalStatuses[from] {
		return false
	}
	if sideExits[to] {
		return true
	}
	for _, next := range forwardNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition advances the booking to the new status, stamping the arrival,
// start and end times where the lifecycle demands them. The caller appends
// the matching history record in the same persistence scope.
func (b *Booking) Transition(to BookingStatus, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, b.Status, to)
	}

	b.Status = to
	b.UpdatedAt = now

	switch to {
	case BookingStatusArrived:
		t := now
		b.ArrivedAt = &t
	case BookingStatusInProgress:
		if b.ActualStart == nil {
			t := now
			b.ActualStart = &t
		}
	case BookingStatusCompleted:
		t := now
		b.ActualEnd = &t
		if b.ActualStart != nil {
			d := int(now.Sub(*b.ActualStart).Minutes())
			b.DurationMinutes = &d
		}
	}

	return nil
}
