package entity

import "time"

type CouponKind string

const (
	CouponKindFlat    CouponKind = "flat"
	CouponKindPercent CouponKind = "percent"
)

type Coupon struct {
	Base
	Code      string     `db:"code"`
	Kind      CouponKind `db:"kind"`
	Value     float64    `db:"value"`
	ExpiresAt *time.Time `db:"expires_at"`
	Active    bool       `db:"active"`
}

// Usable reports whether the coupon may be applied at the given time.
func (c *Coupon) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return false
	}
	return true
}
