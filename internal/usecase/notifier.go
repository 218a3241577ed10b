package usecase

import (
	"context"
)

// NotificationPayload is one vendor's dispatch offer, pushed through the
// external notification collaborator.
type NotificationPayload struct {
	BookingID     string  `json:"booking_id"`
	BookingNo     string  `json:"booking_no"`
	ServiceName   string  `json:"service_name"`
	ScheduledDate string  `json:"scheduled_date"`
	TimeSlot      string  `json:"time_slot"`
	VendorID      string  `json:"vendor_id"`
	DeviceToken   string  `json:"device_token"`
	DistanceKm    float64 `json:"distance_km"`
}

// Notifier delivers one payload to one vendor. Implementations are
// best-effort; a failed delivery is recorded, never propagated into the
// booking's fate.
type Notifier interface {
	Notify(ctx context.Context, payload NotificationPayload) error
}

// queuePublisher is the slice of pkg/mq the notifier needs.
type queuePublisher interface {
	Publish(ctx context.Context, message interface{}) error
}

type queueNotifier struct {
	pub queuePublisher
}

// NewQueueNotifier wraps the durable-queue publisher; the notification
// worker downstream owns actual device delivery.
func NewQueueNotifier(pub queuePublisher) Notifier {
	return &queueNotifier{pub: pub}
}

func (n *queueNotifier) Notify(ctx context.Context, payload NotificationPayload) error {
	return n.pub.Publish(ctx, payload)
}
