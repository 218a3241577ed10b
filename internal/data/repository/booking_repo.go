package repository

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/internal/data/entity"
	"service-dispatch/pkg/database"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, q database.Querier, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindByIDForUpdate row-locks the booking inside the caller's
	// transaction. Every settlement and every progress transition starts
	// here so concurrent attempts against one booking serialize.
	FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// UpdateStatus persists the status and timing block of a booking the
	// state machine already advanced in memory.
	UpdateStatus(ctx context.Context, q database.Querier, booking *entity.Booking) error

	// UpdateAssignment persists the acceptance outcome with a write-time
	// guard on assigned_vendor_id being still unset; losing the race
	// surfaces as BOOKING_ALREADY_ASSIGNED even if the row lock was
	// somehow bypassed.
	UpdateAssignment(ctx context.Context, q database.Querier, booking *entity.Booking) error

	// UpdateSettlement persists the payment-time commission block.
	UpdateSettlement(ctx context.Context, q database.Querier, booking *entity.Booking) error

	AppendHistory(ctx context.Context, q database.Querier, h *entity.BookingStatusHistory) error
	FindHistory(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingStatusHistory, error)

	// FindEngagedVendorIDs lists vendors already holding a booking in an
	// engaged status for the given date and time slot.
	FindEngagedVendorIDs(ctx context.Context, date time.Time, timeSlot string) ([]uuid.UUID, error)

	// ExpireDue force-expires every booking still open past its search
	// deadline. The status predicate is re-checked by the UPDATE itself,
	// so a booking accepted between read and write is never touched and
	// overlapping sweeps are harmless.
	ExpireDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, booking_no, user_id, service_id, scheduled_date, time_slot,
	lat, lng, address, status,
	base_amount, discount_amount, tax_amount, platform_fee, total_amount, coupon_code,
	commission_rate, commission_amount, billing_amount, billing_commission, settlement_status,
	search_radius_km, search_attempts, assigned_vendor_id,
	request_timeout_secs, search_timeout, arrived_at, actual_start, actual_end, duration_minutes,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID, &b.BookingNo, &b.UserID, &b.ServiceID, &b.ScheduledDate, &b.TimeSlot,
		&b.Lat, &b.Lng, &b.Address, &b.Status,
		&b.BaseAmount, &b.DiscountAmount, &b.TaxAmount, &b.PlatformFee, &b.TotalAmount, &b.CouponCode,
		&b.CommissionRate, &b.CommissionAmount, &b.BillingAmount, &b.BillingCommission, &b.SettlementStatus,
		&b.SearchRadiusKm, &b.SearchAttempts, &b.AssignedVendorID,
		&b.RequestTimeoutSecs, &b.SearchTimeout, &b.ArrivedAt, &b.ActualStart, &b.ActualEnd, &b.DurationMinutes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`

	_, err := q.Exec(ctx, query,
		booking.ID, booking.BookingNo, booking.UserID, booking.ServiceID, booking.ScheduledDate, booking.TimeSlot,
		booking.Lat, booking.Lng, booking.Address, booking.Status,
		booking.BaseAmount, booking.DiscountAmount, booking.TaxAmount, booking.PlatformFee, booking.TotalAmount, booking.CouponCode,
		booking.CommissionRate, booking.CommissionAmount, booking.BillingAmount, booking.BillingCommission, booking.SettlementStatus,
		booking.SearchRadiusKm, booking.SearchAttempts, booking.AssignedVendorID,
		booking.RequestTimeoutSecs, booking.SearchTimeout, booking.ArrivedAt, booking.ActualStart, booking.ActualEnd, booking.DurationMinutes,
		booking.CreatedAt, booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_no", booking.BookingNo),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingNo, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBooking(q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("lock booking %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET status = $2, search_timeout = $3, arrived_at = $4, actual_start = $5,
		    actual_end = $6, duration_minutes = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		booking.ID,
		booking.Status,
		booking.SearchTimeout,
		booking.ArrivedAt,
		booking.ActualStart,
		booking.ActualEnd,
		booking.DurationMinutes,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("status", string(booking.Status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", booking.ID.String(), string(booking.Status), err)
	}

	if result.RowsAffected() == 0 {
		return utils.NotFound("booking", booking.ID.String())
	}

	return nil
}

func (r *bookingRepository) UpdateAssignment(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET status = $2, assigned_vendor_id = $3, commission_rate = $4,
		    commission_amount = $5, settlement_status = $6, updated_at = $7
		WHERE id = $1
		  AND assigned_vendor_id IS NULL
		  AND status IN ('pending', 'searching')
	`

	result, err := q.Exec(ctx, query,
		booking.ID,
		booking.Status,
		booking.AssignedVendorID,
		booking.CommissionRate,
		booking.CommissionAmount,
		booking.SettlementStatus,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to assign booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("assign booking %s: %w", booking.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return utils.ErrBookingAlreadyAssigned
	}

	return nil
}

func (r *bookingRepository) UpdateSettlement(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET billing_amount = $2, billing_commission = $3, settlement_status = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		booking.ID,
		booking.BillingAmount,
		booking.BillingCommission,
		booking.SettlementStatus,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update booking settlement",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("update booking %s settlement: %w", booking.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return utils.NotFound("booking", booking.ID.String())
	}

	return nil
}

func (r *bookingRepository) AppendHistory(ctx context.Context, q database.Querier, h *entity.BookingStatusHistory) error {
	query := `
		INSERT INTO booking_status_history (id, booking_id, status, actor_id, actor_kind, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		h.ID,
		h.BookingID,
		h.Status,
		h.ActorID,
		h.ActorKind,
		h.Reason,
		h.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to append booking history",
			zap.Error(err),
			zap.String("booking_id", h.BookingID.String()),
			zap.String("status", string(h.Status)),
		)
		return fmt.Errorf("append history for booking %s: %w", h.BookingID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindHistory(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingStatusHistory, error) {
	query := `
		SELECT id, booking_id, status, actor_id, actor_kind, reason, created_at
		FROM booking_status_history
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking history",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find history for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var history []*entity.BookingStatusHistory
	for rows.Next() {
		var h entity.BookingStatusHistory
		err := rows.Scan(&h.ID, &h.BookingID, &h.Status, &h.ActorID, &h.ActorKind, &h.Reason, &h.CreatedAt)
		if err != nil {
			r.log.Error("Failed to scan history row", zap.Error(err))
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		history = append(history, &h)
	}

	return history, nil
}

func (r *bookingRepository) FindEngagedVendorIDs(ctx context.Context, date time.Time, timeSlot string) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT assigned_vendor_id
		FROM bookings
		WHERE scheduled_date = $1
		  AND time_slot = $2
		  AND assigned_vendor_id IS NOT NULL
		  AND status IN ('vendor_assigned', 'accepted', 'confirmed', 'on_route', 'arrived', 'in_progress')
	`

	rows, err := r.db.Query(ctx, query, date, timeSlot)
	if err != nil {
		r.log.Error("Failed to find engaged vendors",
			zap.Error(err),
			zap.String("time_slot", timeSlot),
		)
		return nil, fmt.Errorf("find engaged vendors for slot %s: %w", timeSlot, err)
	}
	defer rows.Close()

	var vendorIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.log.Error("Failed to scan engaged vendor row", zap.Error(err))
			return nil, fmt.Errorf("scan engaged vendor row: %w", err)
		}
		vendorIDs = append(vendorIDs, id)
	}

	return vendorIDs, nil
}

func (r *bookingRepository) ExpireDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var expired []uuid.UUID

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET status = 'expired', search_timeout = NULL, updated_at = $1
			WHERE status IN ('pending', 'searching')
			  AND search_timeout IS NOT NULL
			  AND search_timeout <= $1
			RETURNING id
		`

		rows, err := tx.Query(ctx, query, now)
		if err != nil {
			return fmt.Errorf("expire due bookings: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scan expired booking id: %w", err)
			}
			expired = append(expired, id)
		}
		rows.Close()

		if len(expired) == 0 {
			return nil
		}

		for _, id := range expired {
			h := &entity.BookingStatusHistory{
				BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
				BookingID:  id,
				Status:     entity.BookingStatusExpired,
				ActorKind:  entity.ActorKindSystem,
				Reason:     "search window elapsed without assignment",
			}
			if err := r.AppendHistory(ctx, tx, h); err != nil {
				return err
			}
		}

		// vendors who never answered stay on record as timed out
		_, err = tx.Exec(ctx, `
			UPDATE booking_vendors
			SET response = 'timeout', responded_at = $2
			WHERE booking_id = ANY($1) AND response = 'pending'
		`, expired, now)
		if err != nil {
			return fmt.Errorf("time out pending vendor responses: %w", err)
		}

		return nil
	})

	if err != nil {
		r.log.Error("Failed to expire due bookings", zap.Error(err))
		return nil, err
	}

	return expired, nil
}
