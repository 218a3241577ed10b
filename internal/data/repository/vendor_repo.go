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

type VendorRepository interface {
	FindByPartyID(ctx context.Context, partyID uuid.UUID) (*entity.Vendor, error)

	// FindCandidates pre-filters vendors for one dispatch: offering the
	// service, not blocked, active party, and wallet-healthy. The wallet
	// rule: available balance at or above the floor, or a pending
	// liability still inside the grace window; a liability older than
	// pendingBefore excludes the vendor outright.
	FindCandidates(ctx context.Context, serviceID uuid.UUID, minBalance float64, pendingBefore time.Time) ([]*entity.Candidate, error)
}

type vendorRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVendorRepository(db database.PgxIface, log *zap.Logger) VendorRepository {
	return &vendorRepository{
		db:  db,
		log: log.With(zap.String("repository", "vendor")),
	}
}

func (r *vendorRepository) FindByPartyID(ctx context.Context, partyID uuid.UUID) (*entity.Vendor, error) {
	query := `
		SELECT party_id, lat, lng, service_radius_km, device_token, blocked
		FROM vendors
		WHERE party_id = $1
	`

	var v entity.Vendor
	err := r.db.QueryRow(ctx, query, partyID).Scan(
		&v.PartyID,
		&v.Lat,
		&v.Lng,
		&v.ServiceRadiusKm,
		&v.DeviceToken,
		&v.Blocked,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vendor",
			zap.Error(err),
			zap.String("vendor_id", partyID.String()),
		)
		return nil, fmt.Errorf("find vendor %s: %w", partyID.String(), err)
	}

	return &v, nil
}

func (r *vendorRepository) FindCandidates(ctx context.Context, serviceID uuid.UUID, minBalance float64, pendingBefore time.Time) ([]*entity.Candidate, error) {
	query := `
		SELECT v.party_id, v.lat, v.lng, v.service_radius_km, v.device_token
		FROM vendors v
		JOIN vendor_services vs ON vs.vendor_id = v.party_id
		JOIN parties p ON p.id = v.party_id
		JOIN wallets w ON w.owner_id = v.party_id AND w.owner_kind = 'vendor'
		WHERE vs.service_id = $1
		  AND v.blocked = false
		  AND p.status = 'active'
		  AND w.status = 'active'
		  AND (w.pending_since IS NULL OR w.pending_since > $3)
		  AND ((w.balance - w.pending_balance) >= $2 OR (w.pending_balance > 0 AND w.pending_since > $3))
	`

	rows, err := r.db.Query(ctx, query, serviceID, minBalance, pendingBefore)
	if err != nil {
		r.log.Error("Failed to find candidate vendors",
			zap.Error(err),
			zap.String("service_id", serviceID.String()),
		)
		return nil, fmt.Errorf("find candidate vendors for service %s: %w", serviceID.String(), err)
	}
	defer rows.Close()

	var candidates []*entity.Candidate
	for rows.Next() {
		var c entity.Candidate
		err := rows.Scan(
			&c.VendorID,
			&c.Lat,
			&c.Lng,
			&c.ServiceRadiusKm,
			&c.DeviceToken,
		)
		if err != nil {
			r.log.Error("Failed to scan candidate row", zap.Error(err))
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		candidates = append(candidates, &c)
	}

	return candidates, nil
}
