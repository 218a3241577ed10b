package repository

import (
	"context"
	"fmt"

	"service-dispatch/internal/data/entity"
	"service-dispatch/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Coupon, error)
}

type couponRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCouponRepository(db database.PgxIface, log *zap.Logger) CouponRepository {
	return &couponRepository{
		db:  db,
		log: log.With(zap.String("repository", "coupon")),
	}
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	query := `
		SELECT id, code, kind, value, expires_at, active, created_at, updated_at
		FROM coupons
		WHERE code = $1
	`

	var c entity.Coupon
	err := r.db.QueryRow(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.Kind,
		&c.Value,
		&c.ExpiresAt,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find coupon by code",
			zap.Error(err),
			zap.String("code", code),
		)
		return nil, fmt.Errorf("find coupon %s: %w", code, err)
	}

	return &c, nil
}
