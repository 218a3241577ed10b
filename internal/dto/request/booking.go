package request

type CreateBookingRequest struct {
	ServiceID     string  `json:"service_id" validate:"required,uuid4"`
	ScheduledDate string  `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	TimeSlot      string  `json:"time_slot" validate:"required"`
	Lat           float64 `json:"lat" validate:"latitude"`
	Lng           float64 `json:"lng" validate:"longitude"`
	Address       string  `json:"address" validate:"required"`
	CouponCode    string  `json:"coupon_code,omitempty"`
}

type VendorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed on_route arrived in_progress completed"`
	Reason string `json:"reason,omitempty"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}
