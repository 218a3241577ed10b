package entity

import "time"

// Settings is the platform-wide pricing/commission snapshot. It is read
// fresh at every pricing or settlement operation and passed down
// explicitly; nothing caches it.
type Settings struct {
	CommissionPerServiceBooking float64   `db:"commission_per_service_booking"` // percent, charged at acceptance
	CommissionPerBilling        float64   `db:"commission_per_billing"`         // percent, charged at payment
	PlatformFee                 float64   `db:"platform_fee"`                   // flat, added to the user's total
	ServiceTaxRate              float64   `db:"service_tax_rate"`               // percent
	MembershipDiscountRate      float64   `db:"membership_discount_rate"`       // percent, members only
	MinimumWalletBalance        float64   `db:"minimum_wallet_balance"`
	UpdatedAt                   time.Time `db:"updated_at"`
}
