package repository

import (
	"context"
	"fmt"

	"service-dispatch/internal/data/entity"
	"service-dispatch/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TransactionRepository interface {
	// Create inserts the ledger entry plus its first status-history row.
	// Always called inside the settlement transaction together with the
	// paired entry and the wallet delta.
	Create(ctx context.Context, q database.Querier, tx *entity.Transaction) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID, kind entity.WalletOwnerKind, limit, offset int) ([]*entity.Transaction, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID, kind entity.WalletOwnerKind) (int64, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Transaction, error)
}

type transactionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactionRepository(db database.PgxIface, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "transaction")),
	}
}

const transactionColumns = `id, wallet_id, owner_id, owner_kind, booking_id, amount, currency,
	direction, status, reference_group, remark, created_at, updated_at`

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(
		&t.ID, &t.WalletID, &t.OwnerID, &t.OwnerKind, &t.BookingID, &t.Amount, &t.Currency,
		&t.Direction, &t.Status, &t.ReferenceGroup, &t.Remark, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) Create(ctx context.Context, q database.Querier, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := q.Exec(ctx, query,
		tx.ID, tx.WalletID, tx.OwnerID, tx.OwnerKind, tx.BookingID, tx.Amount, tx.Currency,
		tx.Direction, tx.Status, tx.ReferenceGroup, tx.Remark, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create transaction",
			zap.Error(err),
			zap.String("transaction_id", tx.ID.String()),
			zap.String("direction", string(tx.Direction)),
		)
		return fmt.Errorf("create transaction %s: %w", tx.ID.String(), err)
	}

	historyQuery := `
		INSERT INTO transaction_status_history (id, transaction_id, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = q.Exec(ctx, historyQuery, uuid.New(), tx.ID, tx.Status, tx.Remark, tx.CreatedAt)
	if err != nil {
		r.log.Error("Failed to append transaction history",
			zap.Error(err),
			zap.String("transaction_id", tx.ID.String()),
		)
		return fmt.Errorf("append history for transaction %s: %w", tx.ID.String(), err)
	}

	return nil
}

func (r *transactionRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, kind entity.WalletOwnerKind, limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE owner_id = $1 AND owner_kind = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, ownerID, kind, limit, offset)
	if err != nil {
		r.log.Error("Failed to find transactions by owner",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return nil, fmt.Errorf("find transactions for %s %s: %w", string(kind), ownerID.String(), err)
	}
	defer rows.Close()

	var transactions []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}

func (r *transactionRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID, kind entity.WalletOwnerKind) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE owner_id = $1 AND owner_kind = $2`

	var count int64
	err := r.db.QueryRow(ctx, query, ownerID, kind).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count transactions by owner",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return 0, fmt.Errorf("count transactions for %s %s: %w", string(kind), ownerID.String(), err)
	}

	return count, nil
}

func (r *transactionRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find transactions by booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find transactions for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var transactions []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}
