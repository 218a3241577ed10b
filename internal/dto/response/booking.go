package response

import (
	"time"

	"service-dispatch/internal/data/entity"
)

// One projection per aggregate, produced by one converter each. Callers
// all see the same shape instead of ad hoc per-endpoint formatting.

type PricingView struct {
	BaseAmount     float64 `json:"base_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	PlatformFee    float64 `json:"platform_fee"`
	TotalAmount    float64 `json:"total_amount"`
	CouponCode     *string `json:"coupon_code,omitempty"`
}

type CommissionView struct {
	Rate              float64                 `json:"rate"`
	Amount            float64                 `json:"amount"`
	BillingAmount     *float64                `json:"billing_amount,omitempty"`
	BillingCommission *float64                `json:"billing_commission,omitempty"`
	SettlementStatus  entity.SettlementStatus `json:"settlement_status"`
}

type VendorSearchEntryView struct {
	VendorID    string     `json:"vendor_id"`
	DistanceKm  float64    `json:"distance_km"`
	Response    string     `json:"response"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type StatusHistoryView struct {
	Status    string    `json:"status"`
	ActorID   *string   `json:"actor_id,omitempty"`
	ActorKind string    `json:"actor_kind"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

type BookingResponse struct {
	ID               string                  `json:"id"`
	BookingNo        string                  `json:"booking_no"`
	UserID           string                  `json:"user_id"`
	ServiceID        string                  `json:"service_id"`
	ScheduledDate    string                  `json:"scheduled_date"`
	TimeSlot         string                  `json:"time_slot"`
	Address          string                  `json:"address"`
	Status           entity.BookingStatus    `json:"status"`
	Pricing          PricingView             `json:"pricing"`
	Commission       *CommissionView         `json:"commission,omitempty"`
	AssignedVendorID *string                 `json:"assigned_vendor_id,omitempty"`
	SearchTimeout    *time.Time              `json:"search_timeout,omitempty"`
	EligibleVendors  []VendorSearchEntryView `json:"eligible_vendors,omitempty"`
	StatusHistory    []StatusHistoryView     `json:"status_history,omitempty"`
	ActualStart      *time.Time              `json:"actual_start,omitempty"`
	ActualEnd        *time.Time              `json:"actual_end,omitempty"`
	DurationMinutes  *int                    `json:"duration_minutes,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

// BookingToResponse is the single formatting function for the booking
// aggregate. Entries and history are optional detail blocks.
func BookingToResponse(b *entity.Booking, entries []*entity.BookingVendor, history []*entity.BookingStatusHistory) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID.String(),
		BookingNo:     b.BookingNo,
		UserID:        b.UserID.String(),
		ServiceID:     b.ServiceID.String(),
		ScheduledDate: b.ScheduledDate.Format("2006-01-02"),
		TimeSlot:      b.TimeSlot,
		Address:       b.Address,
		Status:        b.Status,
		Pricing: PricingView{
			BaseAmount:     b.BaseAmount,
			DiscountAmount: b.DiscountAmount,
			TaxAmount:      b.TaxAmount,
			PlatformFee:    b.PlatformFee,
			TotalAmount:    b.TotalAmount,
			CouponCode:     b.CouponCode,
		},
		SearchTimeout:   b.SearchTimeout,
		ActualStart:     b.ActualStart,
		ActualEnd:       b.ActualEnd,
		DurationMinutes: b.DurationMinutes,
		CreatedAt:       b.CreatedAt,
	}

	if b.CommissionAmount > 0 || b.SettlementStatus != entity.SettlementStatusUnsettled {
		resp.Commission = &CommissionView{
			Rate:              b.CommissionRate,
			Amount:            b.CommissionAmount,
			BillingAmount:     b.BillingAmount,
			BillingCommission: b.BillingCommission,
			SettlementStatus:  b.SettlementStatus,
		}
	}

	if b.AssignedVendorID != nil {
		id := b.AssignedVendorID.String()
		resp.AssignedVendorID = &id
	}

	for _, e := range entries {
		resp.EligibleVendors = append(resp.EligibleVendors, VendorSearchEntryView{
			VendorID:    e.VendorID.String(),
			DistanceKm:  e.DistanceKm,
			Response:    string(e.Response),
			NotifiedAt:  e.NotifiedAt,
			RespondedAt: e.RespondedAt,
		})
	}

	for _, h := range history {
		view := StatusHistoryView{
			Status:    string(h.Status),
			ActorKind: string(h.ActorKind),
			Reason:    h.Reason,
			At:        h.CreatedAt,
		}
		if h.ActorID != nil {
			id := h.ActorID.String()
			view.ActorID = &id
		}
		resp.StatusHistory = append(resp.StatusHistory, view)
	}

	return resp
}
