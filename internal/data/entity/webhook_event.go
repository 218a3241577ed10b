package entity

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent records a processed payment-gateway event id. The unique
// event id is the durable idempotency key: inserting it a second time
// fails, so a replay can never settle commission twice.
type WebhookEvent struct {
	EventID     string     `db:"event_id"`
	BookingID   *uuid.UUID `db:"booking_id"`
	ProcessedAt time.Time  `db:"processed_at"`
}
