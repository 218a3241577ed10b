package repository

import (
	"context"
	"fmt"

	"service-dispatch/internal/data/entity"
	"service-dispatch/pkg/database"

	"go.uber.org/zap"
)

type SettingsRepository interface {
	// Get reads the current platform settings. Called once per pricing,
	// matching or settlement operation; the snapshot is passed down
	// explicitly and never cached.
	Get(ctx context.Context) (*entity.Settings, error)
}

type settingsRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSettingsRepository(db database.PgxIface, log *zap.Logger) SettingsRepository {
	return &settingsRepository{
		db:  db,
		log: log.With(zap.String("repository", "settings")),
	}
}

func (r *settingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	query := `
		SELECT commission_per_service_booking, commission_per_billing, platform_fee,
		       service_tax_rate, membership_discount_rate, minimum_wallet_balance, updated_at
		FROM platform_settings
		LIMIT 1
	`

	var s entity.Settings
	err := r.db.QueryRow(ctx, query).Scan(
		&s.CommissionPerServiceBooking,
		&s.CommissionPerBilling,
		&s.PlatformFee,
		&s.ServiceTaxRate,
		&s.MembershipDiscountRate,
		&s.MinimumWalletBalance,
		&s.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to load platform settings", zap.Error(err))
		return nil, fmt.Errorf("load platform settings: %w", err)
	}

	return &s, nil
}
