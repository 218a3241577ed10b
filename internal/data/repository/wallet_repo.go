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

type WalletRepository interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID, kind entity.WalletOwnerKind) (*entity.Wallet, error)

	// FindByOwnerForUpdate row-locks the wallet inside the caller's
	// transaction so concurrent settlements against one wallet serialize
	// and balance updates are never lost.
	FindByOwnerForUpdate(ctx context.Context, q database.Querier, ownerID uuid.UUID, kind entity.WalletOwnerKind) (*entity.Wallet, error)

	// ApplyDelta shifts the liquid balance. Callers pair every delta with
	// a Transaction insert in the same scope; a bare balance write is a
	// ledger violation.
	ApplyDelta(ctx context.Context, q database.Querier, walletID uuid.UUID, delta float64, now time.Time) error

	// AddPending records a liability the vendor could not cover, stamping
	// pending_since on the first open liability.
	AddPending(ctx context.Context, q database.Querier, walletID uuid.UUID, amount float64, now time.Time) error
}

type walletRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWalletRepository(db database.PgxIface, log *zap.Logger) WalletRepository {
	return &walletRepository{
		db:  db,
		log: log.With(zap.String("repository", "wallet")),
	}
}

const walletColumns = `id, owner_id, owner_kind, balance, pending_balance, pending_since, status, created_at, updated_at`

func scanWallet(row pgx.Row) (*entity.Wallet, error) {
	var w entity.Wallet
	err := row.Scan(
		&w.ID,
		&w.OwnerID,
		&w.OwnerKind,
		&w.Balance,
		&w.PendingBalance,
		&w.PendingSince,
		&w.Status,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, kind entity.WalletOwnerKind) (*entity.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1 AND owner_kind = $2`

	wallet, err := scanWallet(r.db.QueryRow(ctx, query, ownerID, kind))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find wallet",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
			zap.String("owner_kind", string(kind)),
		)
		return nil, fmt.Errorf("find wallet for %s %s: %w", string(kind), ownerID.String(), err)
	}

	return wallet, nil
}

func (r *walletRepository) FindByOwnerForUpdate(ctx context.Context, q database.Querier, ownerID uuid.UUID, kind entity.WalletOwnerKind) (*entity.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1 AND owner_kind = $2 FOR UPDATE`

	wallet, err := scanWallet(q.QueryRow(ctx, query, ownerID, kind))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock wallet",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
			zap.String("owner_kind", string(kind)),
		)
		return nil, fmt.Errorf("lock wallet for %s %s: %w", string(kind), ownerID.String(), err)
	}

	return wallet, nil
}

func (r *walletRepository) ApplyDelta(ctx context.Context, q database.Querier, walletID uuid.UUID, delta float64, now time.Time) error {
	query := `UPDATE wallets SET balance = balance + $2, updated_at = $3 WHERE id = $1`

	result, err := q.Exec(ctx, query, walletID, delta, now)
	if err != nil {
		r.log.Error("Failed to apply wallet delta",
			zap.Error(err),
			zap.String("wallet_id", walletID.String()),
			zap.Float64("delta", delta),
		)
		return fmt.Errorf("apply delta %.2f to wallet %s: %w", delta, walletID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet %s not found", walletID.String())
	}

	return nil
}

func (r *walletRepository) AddPending(ctx context.Context, q database.Querier, walletID uuid.UUID, amount float64, now time.Time) error {
	query := `
		UPDATE wallets
		SET pending_balance = pending_balance + $2,
		    pending_since = COALESCE(pending_since, $3),
		    updated_at = $3
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query, walletID, amount, now)
	if err != nil {
		r.log.Error("Failed to add pending liability",
			zap.Error(err),
			zap.String("wallet_id", walletID.String()),
			zap.Float64("amount", amount),
		)
		return fmt.Errorf("add pending %.2f to wallet %s: %w", amount, walletID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet %s not found", walletID.String())
	}

	return nil
}
