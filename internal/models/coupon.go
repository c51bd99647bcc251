package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

type Coupon struct {
	ID           int64           `json:"id"`
	Code         string          `json:"code"`
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	UsageLimit   int             `json:"usage_limit"`
	ValidFrom    time.Time       `json:"valid_from"`
	ValidTo      time.Time       `json:"valid_to"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Valid reports whether the coupon is redeemable at now: uses remain and now
// lies inside [ValidFrom, ValidTo], both bounds inclusive.
func (c *Coupon) Valid(now time.Time) bool {
	if c.UsageLimit <= 0 {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return false
	}
	return true
}

// DiscountAmount computes the reduction the coupon represents for a given
// order total. Checkout validates coupons but does not yet apply the
// discount; this mirrors the current business rules.
func (c *Coupon) DiscountAmount(total decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = total.Mul(c.Value).Div(decimal.NewFromInt(100))
	case DiscountTypeFixed:
		discount = c.Value
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(total) {
		return total
	}
	return discount
}
