package usecase

import (
	"context"
	"testing"

	"service-dispatch/internal/data/entity"
	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBookingServiceFixture(booking *entity.Booking, bookings *stubBookings) BookingService {
	repo := &repository.Repository{
		Booking:       bookings,
		BookingVendor: &stubEntries{entries: map[uuid.UUID]*entity.BookingVendor{}},
	}
	return NewBookingService(stubDB{}, repo, nil, nil, utils.DispatchConfig{}, zap.NewNop())
}

func TestGetBookingByIDScopedToOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	booking := &entity.Booking{
		Base:   entity.Base{ID: uuid.New()},
		UserID: owner,
		Status: entity.BookingStatusSearching,
	}
	svc := newBookingServiceFixture(booking, &stubBookings{
		bookings: map[uuid.UUID]*entity.Booking{booking.ID: booking},
	})

	resp, err := svc.GetBookingByID(context.Background(), booking.ID.String(), owner, entity.ActorKindUser)
	require.NoError(t, err)
	assert.Equal(t, booking.ID.String(), resp.ID)

	_, err = svc.GetBookingByID(context.Background(), booking.ID.String(), stranger, entity.ActorKindUser)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	// admins see any booking
	resp, err = svc.GetBookingByID(context.Background(), booking.ID.String(), stranger, entity.ActorKindAdmin)
	require.NoError(t, err)
	assert.Equal(t, booking.ID.String(), resp.ID)
}

func TestCancelBookingByVendor(t *testing.T) {
	vendorID := uuid.New()
	booking := &entity.Booking{
		Base:             entity.Base{ID: uuid.New()},
		UserID:           uuid.New(),
		Status:           entity.BookingStatusAccepted,
		AssignedVendorID: &vendorID,
	}
	bookings := &stubBookings{bookings: map[uuid.UUID]*entity.Booking{booking.ID: booking}}
	svc := newBookingServiceFixture(booking, bookings)

	err := svc.CancelBooking(context.Background(), booking.ID.String(), vendorID, entity.ActorKindVendor, "vehicle breakdown")
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusCancelledByVendor, booking.Status)
	require.Len(t, bookings.history, 1)
	assert.Equal(t, entity.BookingStatusCancelledByVendor, bookings.history[0].Status)
	assert.Equal(t, entity.ActorKindVendor, bookings.history[0].ActorKind)
}

func TestCancelBookingByUnassignedVendor(t *testing.T) {
	assigned := uuid.New()
	other := uuid.New()
	booking := &entity.Booking{
		Base:             entity.Base{ID: uuid.New()},
		UserID:           uuid.New(),
		Status:           entity.BookingStatusAccepted,
		AssignedVendorID: &assigned,
	}
	svc := newBookingServiceFixture(booking, &stubBookings{
		bookings: map[uuid.UUID]*entity.Booking{booking.ID: booking},
	})

	err := svc.CancelBooking(context.Background(), booking.ID.String(), other, entity.ActorKindVendor, "not mine")
	assert.ErrorIs(t, err, utils.ErrForbidden)
	assert.Equal(t, entity.BookingStatusAccepted, booking.Status)
}
