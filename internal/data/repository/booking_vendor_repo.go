package repository

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/internal/data/entity"
	"service-dispatch/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingVendorRepository interface {
	CreateBatch(ctx context.Context, q database.Querier, entries []*entity.BookingVendor) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingVendor, error)

	// FindEntryForUpdate row-locks one vendor's entry inside the caller's
	// transaction; nil means the vendor never was in the eligible set.
	FindEntryForUpdate(ctx context.Context, q database.Querier, bookingID, vendorID uuid.UUID) (*entity.BookingVendor, error)

	UpdateResponse(ctx context.Context, q database.Querier, entry *entity.BookingVendor) error

	// CountPending counts entries still awaiting a response, inside the
	// caller's transaction.
	CountPending(ctx context.Context, q database.Querier, bookingID uuid.UUID) (int64, error)

	// MarkNotified records the per-vendor fan-out outcome. Runs outside
	// any transaction: delivery bookkeeping must not roll back dispatch.
	MarkNotified(ctx context.Context, bookingID, vendorID uuid.UUID, at time.Time, notifyErr *string) error
}

type bookingVendorRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingVendorRepository(db database.PgxIface, log *zap.Logger) BookingVendorRepository {
	return &bookingVendorRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_vendor")),
	}
}

const bookingVendorColumns = `id, booking_id, vendor_id, distance_km, notified_at, notify_error, response, responded_at, created_at`

func scanBookingVendor(row pgx.Row) (*entity.BookingVendor, error) {
	var e entity.BookingVendor
	err := row.Scan(
		&e.ID,
		&e.BookingID,
		&e.VendorID,
		&e.DistanceKm,
		&e.NotifiedAt,
		&e.NotifyError,
		&e.Response,
		&e.RespondedAt,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *bookingVendorRepository) CreateBatch(ctx context.Context, q database.Querier, entries []*entity.BookingVendor) error {
	query := `
		INSERT INTO booking_vendors (` + bookingVendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, e := range entries {
		_, err := q.Exec(ctx, query,
			e.ID,
			e.BookingID,
			e.VendorID,
			e.DistanceKm,
			e.NotifiedAt,
			e.NotifyError,
			e.Response,
			e.RespondedAt,
			e.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create booking vendor entry",
				zap.Error(err),
				zap.String("booking_id", e.BookingID.String()),
				zap.String("vendor_id", e.VendorID.String()),
			)
			return fmt.Errorf("create booking vendor entry %s/%s: %w", e.BookingID.String(), e.VendorID.String(), err)
		}
	}

	return nil
}

func (r *bookingVendorRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingVendor, error) {
	query := `
		SELECT ` + bookingVendorColumns + `
		FROM booking_vendors
		WHERE booking_id = $1
		ORDER BY distance_km
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking vendor entries",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find vendor entries for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var entries []*entity.BookingVendor
	for rows.Next() {
		entry, err := scanBookingVendor(rows)
		if err != nil {
			r.log.Error("Failed to scan booking vendor row", zap.Error(err))
			return nil, fmt.Errorf("scan booking vendor row: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *bookingVendorRepository) FindEntryForUpdate(ctx context.Context, q database.Querier, bookingID, vendorID uuid.UUID) (*entity.BookingVendor, error) {
	query := `
		SELECT ` + bookingVendorColumns + `
		FROM booking_vendors
		WHERE booking_id = $1 AND vendor_id = $2
		FOR UPDATE
	`

	entry, err := scanBookingVendor(q.QueryRow(ctx, query, bookingID, vendorID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock booking vendor entry",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("vendor_id", vendorID.String()),
		)
		return nil, fmt.Errorf("lock vendor entry %s/%s: %w", bookingID.String(), vendorID.String(), err)
	}

	return entry, nil
}

func (r *bookingVendorRepository) UpdateResponse(ctx context.Context, q database.Querier, entry *entity.BookingVendor) error {
	query := `
		UPDATE booking_vendors
		SET response = $3, responded_at = $4
		WHERE booking_id = $1 AND vendor_id = $2
	`

	result, err := q.Exec(ctx, query,
		entry.BookingID,
		entry.VendorID,
		entry.Response,
		entry.RespondedAt,
	)

	if err != nil {
		r.log.Error("Failed to update vendor response",
			zap.Error(err),
			zap.String("booking_id", entry.BookingID.String()),
			zap.String("vendor_id", entry.VendorID.String()),
		)
		return fmt.Errorf("update vendor response %s/%s: %w", entry.BookingID.String(), entry.VendorID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vendor entry %s/%s not found", entry.BookingID.String(), entry.VendorID.String())
	}

	return nil
}

func (r *bookingVendorRepository) CountPending(ctx context.Context, q database.Querier, bookingID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM booking_vendors WHERE booking_id = $1 AND response = 'pending'`

	var count int64
	err := q.QueryRow(ctx, query, bookingID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count pending vendor entries",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, fmt.Errorf("count pending entries for booking %s: %w", bookingID.String(), err)
	}

	return count, nil
}

func (r *bookingVendorRepository) MarkNotified(ctx context.Context, bookingID, vendorID uuid.UUID, at time.Time, notifyErr *string) error {
	query := `
		UPDATE booking_vendors
		SET notified_at = $3, notify_error = $4
		WHERE booking_id = $1 AND vendor_id = $2
	`

	_, err := r.db.Exec(ctx, query, bookingID, vendorID, at, notifyErr)
	if err != nil {
		r.log.Error("Failed to record notification outcome",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("vendor_id", vendorID.String()),
		)
		return fmt.Errorf("record notification outcome %s/%s: %w", bookingID.String(), vendorID.String(), err)
	}

	return nil
}
