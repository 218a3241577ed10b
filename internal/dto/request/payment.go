package request

// SettlePaymentRequest is the cash path. EventID doubles as the
// idempotency key; clients generate it once per capture attempt.
type SettlePaymentRequest struct {
	BookingID string  `json:"booking_id" validate:"required,uuid4"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" validate:"required,oneof=cash gateway"`
	EventID   string  `json:"event_id" validate:"required"`
}

// GatewayWebhookEvent is the inbound payment-gateway callback payload,
// consumed after signature verification.
type GatewayWebhookEvent struct {
	EventID   string  `json:"event_id" validate:"required"`
	EventType string  `json:"event_type" validate:"required"`
	BookingID string  `json:"booking_id" validate:"required,uuid4"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	OrderRef  string  `json:"order_ref,omitempty"`
}
