package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"service-dispatch/internal/data/entity"
	"service-dispatch/internal/data/repository"
	"service-dispatch/internal/dto/request"
	"service-dispatch/internal/dto/response"
	"service-dispatch/pkg/database"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingService interface {
	// CreateBooking is the dispatch orchestrator entry point: price the
	// request, match vendors, persist the booking with its frozen
	// eligible-vendor snapshot, then fan out notifications.
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	// GetBookingByID returns one booking with its vendor entries and
	// history. Scoped to the owning user; admins see any booking.
	GetBookingByID(ctx context.Context, bookingID string, actorID uuid.UUID, actorKind entity.ActorKind) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// RejectBooking records a vendor's refusal without touching the
	// booking status, unless no pending vendor remains.
	RejectBooking(ctx context.Context, bookingID string, vendorID uuid.UUID, reason string) error

	// UpdateProgress advances the assigned vendor's booking along the
	// service lifecycle (confirmed, on_route, arrived, in_progress,
	// completed).
	UpdateProgress(ctx context.Context, bookingID string, vendorID uuid.UUID, req *request.VendorStatusRequest) (*response.BookingResponse, error)

	CancelBooking(ctx context.Context, bookingID string, actorID uuid.UUID, actorKind entity.ActorKind, reason string) error
}

type bookingService struct {
	db       database.PgxIface
	repo     *repository.Repository
	matching MatchingService
	notifier Notifier
	dispatch utils.DispatchConfig
	log      *zap.Logger
}

func NewBookingService(db database.PgxIface, repo *repository.Repository, matching MatchingService, notifier Notifier, dispatch utils.DispatchConfig, log *zap.Logger) BookingService {
	return &bookingService{
		db:       db,
		repo:     repo,
		matching: matching,
		notifier: notifier,
		dispatch: dispatch,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid service ID format %s: %w", req.ServiceID, err)
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled date %s: %w", req.ScheduledDate, err)
	}

	now := time.Now()
	if scheduledDate.Before(now.Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("%w: cannot book for a past date", utils.ErrValidation)
	}

	service, err := s.repo.Service.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if service == nil || !service.Active {
		return nil, utils.NotFound("service", req.ServiceID)
	}

	user, err := s.repo.Party.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFound("user", userID.String())
	}

	settings, err := s.repo.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	var coupon *entity.Coupon
	var couponCode *string
	if req.CouponCode != "" {
		coupon, err = s.repo.Coupon.FindByCode(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
		if coupon == nil || !coupon.Usable(now) {
			return nil, fmt.Errorf("%w: coupon %s is not usable", utils.ErrValidation, req.CouponCode)
		}
		couponCode = &req.CouponCode
	}

	pricing := CalculatePricing(service.Price, coupon, user.Membership, settings, now)

	eligible, err := s.matching.FindEligibleVendors(ctx, serviceID, scheduledDate, req.TimeSlot, req.Lat, req.Lng, settings, now)
	if err != nil {
		return nil, err
	}

	searchTimeout := now.Add(time.Duration(s.dispatch.RequestTimeoutSeconds) * time.Second)
	searchRadius := eligible[len(eligible)-1].DistanceKm

	booking := &entity.Booking{
		Base:               entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		BookingNo:          utils.GenerateBookingNumber(),
		UserID:             userID,
		ServiceID:          serviceID,
		ScheduledDate:      scheduledDate,
		TimeSlot:           req.TimeSlot,
		Lat:                req.Lat,
		Lng:                req.Lng,
		Address:            req.Address,
		Status:             entity.BookingStatusPending,
		BaseAmount:         pricing.BaseAmount,
		DiscountAmount:     pricing.DiscountAmount,
		TaxAmount:          pricing.TaxAmount,
		PlatformFee:        pricing.PlatformFee,
		TotalAmount:        pricing.TotalAmount,
		CouponCode:         couponCode,
		SettlementStatus:   entity.SettlementStatusUnsettled,
		SearchRadiusKm:     searchRadius,
		SearchAttempts:     1,
		RequestTimeoutSecs: s.dispatch.RequestTimeoutSeconds,
		SearchTimeout:      &searchTimeout,
	}

	entries := make([]*entity.BookingVendor, len(eligible))
	for i, c := range eligible {
		entries[i] = &entity.BookingVendor{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			BookingID:  booking.ID,
			VendorID:   c.VendorID,
			DistanceKm: c.DistanceKm,
			Response:   entity.VendorResponsePending,
		}
	}

	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.repo.Booking.Create(ctx, tx, booking); err != nil {
			return err
		}

		if err := s.appendHistory(ctx, tx, booking.ID, entity.BookingStatusPending, &userID, entity.ActorKindUser, "booking created", now); err != nil {
			return err
		}

		if err := booking.Transition(entity.BookingStatusSearching, now); err != nil {
			return err
		}
		if err := s.repo.Booking.UpdateStatus(ctx, tx, booking); err != nil {
			return err
		}
		if err := s.appendHistory(ctx, tx, booking.ID, entity.BookingStatusSearching, nil, entity.ActorKindSystem, "vendor search started", now); err != nil {
			return err
		}

		return s.repo.BookingVendor.CreateBatch(ctx, tx, entries)
	})
	if err != nil {
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("service_id", req.ServiceID),
		)
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_no", booking.BookingNo),
		zap.Int("eligible_vendors", len(eligible)),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	s.fanOut(ctx, booking, service.Name, eligible)

	return s.buildBookingResponse(ctx, booking), nil
}

// fanOut pushes one notification per eligible vendor concurrently.
// Individual failures are recorded on the vendor's entry and do not
// affect the booking or the other sends.
func (s *bookingService) fanOut(ctx context.Context, booking *entity.Booking, serviceName string, eligible []*entity.Candidate) {
	var wg sync.WaitGroup

	for _, c := range eligible {
		wg.Add(1)
		go func(c *entity.Candidate) {
			defer wg.Done()

			payload := NotificationPayload{
				BookingID:     booking.ID.String(),
				BookingNo:     booking.BookingNo,
				ServiceName:   serviceName,
				ScheduledDate: booking.ScheduledDate.Format("2006-01-02"),
				TimeSlot:      booking.TimeSlot,
				VendorID:      c.VendorID.String(),
				DeviceToken:   c.DeviceToken,
				DistanceKm:    c.DistanceKm,
			}

			sentAt := time.Now()
			var notifyErr *string
			if err := s.notifier.Notify(ctx, payload); err != nil {
				msg := err.Error()
				notifyErr = &msg
				s.log.Warn("Vendor notification failed",
					zap.Error(err),
					zap.String("booking_id", booking.ID.String()),
					zap.String("vendor_id", c.VendorID.String()),
				)
			}

			if err := s.repo.BookingVendor.MarkNotified(ctx, booking.ID, c.VendorID, sentAt, notifyErr); err != nil {
				s.log.Error("Failed to record notification outcome", zap.Error(err))
			}
		}(c)
	}

	wg.Wait()
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string, actorID uuid.UUID, actorKind entity.ActorKind) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, utils.NotFound("booking", bookingID)
	}

	if actorKind != entity.ActorKindAdmin && booking.UserID != actorID {
		return nil, utils.ErrForbidden
	}

	return s.buildBookingResponse(ctx, booking), nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		bookingResponses[i] = response.BookingToResponse(booking, nil, nil)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) RejectBooking(ctx context.Context, bookingID string, vendorID uuid.UUID, reason string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	now := time.Now()

	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		booking, err := s.repo.Booking.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return utils.NotFound("booking", bookingID)
		}

		entry, err := s.repo.BookingVendor.FindEntryForUpdate(ctx, tx, id, vendorID)
		if err != nil {
			return err
		}
		if entry == nil {
			return utils.ErrVendorNotEligible
		}
		if entry.Response != entity.VendorResponsePending {
			return utils.ErrVendorAlreadyResponded
		}

		entry.Response = entity.VendorResponseRejected
		entry.RespondedAt = &now
		if err := s.repo.BookingVendor.UpdateResponse(ctx, tx, entry); err != nil {
			return err
		}

		// the whole eligible set said no: close the booking out
		pending, err := s.repo.BookingVendor.CountPending(ctx, tx, id)
		if err != nil {
			return err
		}
		if pending == 0 && !booking.Status.Terminal() && booking.AssignedVendorID == nil {
			if err := booking.Transition(entity.BookingStatusRejected, now); err != nil {
				return err
			}
			if err := s.repo.Booking.UpdateStatus(ctx, tx, booking); err != nil {
				return err
			}
			if err := s.appendHistory(ctx, tx, id, entity.BookingStatusRejected, nil, entity.ActorKindSystem, "all eligible vendors rejected", now); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Vendor rejected booking",
		zap.String("booking_id", bookingID),
		zap.String("vendor_id", vendorID.String()),
		zap.String("reason", reason),
	)

	return nil
}

func (s *bookingService) UpdateProgress(ctx context.Context, bookingID string, vendorID uuid.UUID, req *request.VendorStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	target := entity.BookingStatus(req.Status)
	now := time.Now()
	var booking *entity.Booking

	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		b, err := s.repo.Booking.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return utils.NotFound("booking", bookingID)
		}

		if b.AssignedVendorID == nil || *b.AssignedVendorID != vendorID {
			return utils.ErrForbidden
		}

		if err := b.Transition(target, now); err != nil {
			return err
		}

		if err := s.repo.Booking.UpdateStatus(ctx, tx, b); err != nil {
			return err
		}

		if err := s.appendHistory(ctx, tx, id, target, &vendorID, entity.ActorKindVendor, req.Reason, now); err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking progressed",
		zap.String("booking_id", bookingID),
		zap.String("vendor_id", vendorID.String()),
		zap.String("status", string(target)),
	)

	return s.buildBookingResponse(ctx, booking), nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string, actorID uuid.UUID, actorKind entity.ActorKind, reason string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	var target entity.BookingStatus
	switch actorKind {
	case entity.ActorKindUser:
		target = entity.BookingStatusCancelledByUser
	case entity.ActorKindVendor:
		target = entity.BookingStatusCancelledByVendor
	case entity.ActorKindAdmin:
		target = entity.BookingStatusCancelledByAdmin
	default:
		target = entity.BookingStatusCancelledBySystem
	}

	now := time.Now()

	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		b, err := s.repo.Booking.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return utils.NotFound("booking", bookingID)
		}

		switch actorKind {
		case entity.ActorKindUser:
			if b.UserID != actorID {
				return utils.ErrForbidden
			}
		case entity.ActorKindVendor:
			if b.AssignedVendorID == nil || *b.AssignedVendorID != actorID {
				return utils.ErrForbidden
			}
		}

		if err := b.Transition(target, now); err != nil {
			return err
		}

		if err := s.repo.Booking.UpdateStatus(ctx, tx, b); err != nil {
			return err
		}

		return s.appendHistory(ctx, tx, id, target, &actorID, actorKind, reason, now)
	})
	if err != nil {
		return err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("actor_kind", string(actorKind)),
		zap.String("reason", reason),
	)

	return nil
}

// ==================== HELPER METHODS ====================

func (s *bookingService) appendHistory(ctx context.Context, q database.Querier, bookingID uuid.UUID, status entity.BookingStatus, actorID *uuid.UUID, kind entity.ActorKind, reason string, now time.Time) error {
	return s.repo.Booking.AppendHistory(ctx, q, &entity.BookingStatusHistory{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		BookingID:  bookingID,
		Status:     status,
		ActorID:    actorID,
		ActorKind:  kind,
		Reason:     reason,
	})
}

func (s *bookingService) buildBookingResponse(ctx context.Context, booking *entity.Booking) *response.BookingResponse {
	entries, err := s.repo.BookingVendor.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Warn("Failed to load vendor entries for response", zap.Error(err))
	}

	history, err := s.repo.Booking.FindHistory(ctx, booking.ID)
	if err != nil {
		s.log.Warn("Failed to load status history for response", zap.Error(err))
	}

	resp := response.BookingToResponse(booking, entries, history)
	return &resp
}
