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

type PartyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Party, error)
	FindByToken(ctx context.Context, token string) (*entity.Party, error)
}

type partyRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPartyRepository(db database.PgxIface, log *zap.Logger) PartyRepository {
	return &partyRepository{
		db:  db,
		log: log.With(zap.String("repository", "party")),
	}
}

const partyColumns = `id, kind, name, email, api_token, membership, status, created_at, updated_at`

func scanParty(row pgx.Row) (*entity.Party, error) {
	var p entity.Party
	err := row.Scan(
		&p.ID,
		&p.Kind,
		&p.Name,
		&p.Email,
		&p.APIToken,
		&p.Membership,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE id = $1`

	party, err := scanParty(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find party by ID",
			zap.Error(err),
			zap.String("party_id", id.String()),
		)
		return nil, fmt.Errorf("find party by ID %s: %w", id.String(), err)
	}

	return party, nil
}

func (r *partyRepository) FindByToken(ctx context.Context, token string) (*entity.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE api_token = $1 AND status = 'active'`

	party, err := scanParty(r.db.QueryRow(ctx, query, token))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find party by token", zap.Error(err))
		return nil, fmt.Errorf("find party by token: %w", err)
	}

	return party, nil
}
