package usecase

import (
	"testing"
	"time"

	"service-dispatch/internal/data/entity"

	"github.com/stretchr/testify/assert"
)

func testSettings() *entity.Settings {
	return &entity.Settings{
		CommissionPerServiceBooking: 10,
		CommissionPerBilling:        15,
		PlatformFee:                 20,
		ServiceTaxRate:              5,
		MembershipDiscountRate:      10,
		MinimumWalletBalance:        100,
	}
}

func TestCalculatePricing(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Hour)

	tests := []struct {
		name       string
		price      float64
		coupon     *entity.Coupon
		membership string
		expected   Pricing
	}{
		{
			name:  "plain price",
			price: 1000,
			expected: Pricing{
				BaseAmount:  1000,
				TaxAmount:   50,
				PlatformFee: 20,
				TotalAmount: 1070,
			},
		},
		{
			name:  "flat coupon",
			price: 1000,
			coupon: &entity.Coupon{
				Kind: entity.CouponKindFlat, Value: 100, Active: true,
			},
			expected: Pricing{
				BaseAmount:     1000,
				DiscountAmount: 100,
				TaxAmount:      45,
				PlatformFee:    20,
				TotalAmount:    965,
			},
		},
		{
			name:  "percent coupon plus membership",
			price: 1000,
			coupon: &entity.Coupon{
				Kind: entity.CouponKindPercent, Value: 20, Active: true,
			},
			membership: "premium",
			expected: Pricing{
				BaseAmount:     1000,
				DiscountAmount: 300,
				TaxAmount:      35,
				PlatformFee:    20,
				TotalAmount:    755,
			},
		},
		{
			name:  "expired coupon ignored",
			price: 1000,
			coupon: &entity.Coupon{
				Kind: entity.CouponKindFlat, Value: 100, Active: true, ExpiresAt: &expired,
			},
			expected: Pricing{
				BaseAmount:  1000,
				TaxAmount:   50,
				PlatformFee: 20,
				TotalAmount: 1070,
			},
		},
		{
			name:  "discount capped at base",
			price: 50,
			coupon: &entity.Coupon{
				Kind: entity.CouponKindFlat, Value: 500, Active: true,
			},
			expected: Pricing{
				BaseAmount:     50,
				DiscountAmount: 50,
				PlatformFee:    20,
				TotalAmount:    20,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePricing(tt.price, tt.coupon, tt.membership, testSettings(), now)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBookingCommission(t *testing.T) {
	// totalAmount=1000, rate=10 -> 100
	assert.Equal(t, 100.0, BookingCommission(1000, testSettings()))
	assert.Equal(t, 0.0, BookingCommission(0, testSettings()))
}

func TestBillingCommission(t *testing.T) {
	settings := testSettings()

	// billing 15% minus the 10% already charged at acceptance
	assert.Equal(t, 50.0, BillingCommission(1000, 0, settings))

	// add-on rate on top
	assert.Equal(t, 70.0, BillingCommission(1000, 2, settings))

	// billing rate below booking rate never goes negative
	settings.CommissionPerBilling = 5
	assert.Equal(t, 0.0, BillingCommission(1000, 0, settings))
}
