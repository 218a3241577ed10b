package usecase

import (
	"math"
	"time"

	"service-dispatch/internal/data/entity"
)

// Pricing is the snapshot frozen onto the booking at creation. Inputs are
// passed in explicitly; nothing here reads global state.
type Pricing struct {
	BaseAmount     float64
	DiscountAmount float64
	TaxAmount      float64
	PlatformFee    float64
	TotalAmount    float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculatePricing computes the user-facing price: service price, minus
// coupon and membership discounts, plus tax on the discounted base, plus
// the flat platform fee. An unusable coupon contributes nothing; callers
// validate usability separately when they want to reject it instead.
func CalculatePricing(servicePrice float64, coupon *entity.Coupon, membership string, settings *entity.Settings, now time.Time) Pricing {
	base := servicePrice

	var discount float64
	if coupon != nil && coupon.Usable(now) {
		switch coupon.Kind {
		case entity.CouponKindFlat:
			discount = coupon.Value
		case entity.CouponKindPercent:
			discount = base * coupon.Value / 100
		}
	}

	if membership != "" && membership != "none" {
		discount += base * settings.MembershipDiscountRate / 100
	}

	if discount > base {
		discount = base
	}

	taxable := base - discount
	tax := taxable * settings.ServiceTaxRate / 100

	total := taxable + tax + settings.PlatformFee

	return Pricing{
		BaseAmount:     round2(base),
		DiscountAmount: round2(discount),
		TaxAmount:      round2(tax),
		PlatformFee:    round2(settings.PlatformFee),
		TotalAmount:    round2(total),
	}
}

// BookingCommission is the acceptance-time platform cut.
func BookingCommission(totalAmount float64, settings *entity.Settings) float64 {
	return round2(totalAmount * settings.CommissionPerServiceBooking / 100)
}

// BillingCommission is the payment-time cut on the final billed amount.
// The booking-commission rate already charged at acceptance is subtracted
// from the billing rate so the same percentage points are never charged
// twice; the service's add-on rate applies on top.
func BillingCommission(finalAmount, addOnRate float64, settings *entity.Settings) float64 {
	rate := settings.CommissionPerBilling - settings.CommissionPerServiceBooking
	if rate < 0 {
		rate = 0
	}
	return round2(finalAmount*rate/100 + finalAmount*addOnRate/100)
}
