package entity

import (
	"time"

	"github.com/google/uuid"
)

type ActorKind string

const (
	ActorKindUser   ActorKind = "user"
	ActorKindVendor ActorKind = "vendor"
	ActorKindAdmin  ActorKind = "admin"
	ActorKindSystem ActorKind = "system"
)

type SettlementStatus string

const (
	SettlementStatusUnsettled   SettlementStatus = "unsettled"
	SettlementStatusSettled     SettlementStatus = "settled"
	SettlementStatusOutstanding SettlementStatus = "outstanding"
)

// Booking is the central aggregate. The pricing, commission and
// vendor-search blocks are snapshots frozen at well-defined points: pricing
// at creation, the eligible vendor set at dispatch, commission at each
// settlement. None of them is ever recomputed in place.
type Booking struct {
	Base
	BookingNo string    `db:"booking_no"`
	UserID    uuid.UUID `db:"user_id"`
	ServiceID uuid.UUID `db:"service_id"`

	ScheduledDate time.Time `db:"scheduled_date"`
	TimeSlot      string    `db:"time_slot"`
	Lat           float64   `db:"lat"`
	Lng           float64   `db:"lng"`
	Address       string    `db:"address"`

	Status BookingStatus `db:"status"`

	// pricing snapshot, immutable once payment starts
	BaseAmount     float64 `db:"base_amount"`
	DiscountAmount float64 `db:"discount_amount"`
	TaxAmount      float64 `db:"tax_amount"`
	PlatformFee    float64 `db:"platform_fee"`
	TotalAmount    float64 `db:"total_amount"`
	CouponCode     *string `db:"coupon_code"`

	// commission snapshot
	CommissionRate       float64          `db:"commission_rate"`
	CommissionAmount     float64          `db:"commission_amount"`
	BillingAmount        *float64         `db:"billing_amount"`
	BillingCommission    *float64         `db:"billing_commission"`
	SettlementStatus     SettlementStatus `db:"settlement_status"`

	// vendor search
	SearchRadiusKm   float64    `db:"search_radius_km"`
	SearchAttempts   int        `db:"search_attempts"`
	AssignedVendorID *uuid.UUID `db:"assigned_vendor_id"`

	// timing
	RequestTimeoutSecs int        `db:"request_timeout_secs"`
	SearchTimeout      *time.Time `db:"search_timeout"`
	ArrivedAt          *time.Time `db:"arrived_at"`
	ActualStart        *time.Time `db:"actual_start"`
	ActualEnd          *time.Time `db:"actual_end"`
	DurationMinutes    *int       `db:"duration_minutes"`
}

// BookingStatusHistory is the append-only transition log of one booking.
// Rows are only ever inserted, never rewritten.
type BookingStatusHistory struct {
	BaseSimple
	BookingID uuid.UUID     `db:"booking_id"`
	Status    BookingStatus `db:"status"`
	ActorID   *uuid.UUID    `db:"actor_id"`
	ActorKind ActorKind     `db:"actor_kind"`
	Reason    string        `db:"reason"`
}

type VendorResponse string

const (
	VendorResponsePending  VendorResponse = "pending"
	VendorResponseAccepted VendorResponse = "accepted"
	VendorResponseRejected VendorResponse = "rejected"
	VendorResponseTimeout  VendorResponse = "timeout"
)

// BookingVendor is one entry of the frozen eligible-vendor set. The set is
// computed once at dispatch and never recomputed; the acceptance race is
// closed-world over these rows.
type BookingVendor struct {
	BaseSimple
	BookingID   uuid.UUID      `db:"booking_id"`
	VendorID    uuid.UUID      `db:"vendor_id"`
	DistanceKm  float64        `db:"distance_km"`
	NotifiedAt  *time.Time     `db:"notified_at"`
	NotifyError *string        `db:"notify_error"`
	Response    VendorResponse `db:"response"`
	RespondedAt *time.Time     `db:"responded_at"`
}
