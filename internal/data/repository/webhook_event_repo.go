package repository

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WebhookEventRepository interface {
	// InsertIfAbsent claims a payment event id inside the settlement
	// transaction. Returns false when the id is already recorded, which
	// makes replaying the same captured-payment event a no-op: the
	// conflicting insert rolls the whole settlement back with it.
	InsertIfAbsent(ctx context.Context, q database.Querier, eventID string, bookingID *uuid.UUID, now time.Time) (bool, error)
}

type webhookEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWebhookEventRepository(db database.PgxIface, log *zap.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "webhook_event")),
	}
}

func (r *webhookEventRepository) InsertIfAbsent(ctx context.Context, q database.Querier, eventID string, bookingID *uuid.UUID, now time.Time) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, booking_id, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := q.Exec(ctx, query, eventID, bookingID, now)
	if err != nil {
		r.log.Error("Failed to record webhook event",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return false, fmt.Errorf("record webhook event %s: %w", eventID, err)
	}

	return result.RowsAffected() > 0, nil
}
