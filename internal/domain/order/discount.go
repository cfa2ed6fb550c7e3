package order

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	// MaxDiscountPercent is the hard cap on the cash discount.
	MaxDiscountPercent = decimal.NewFromInt(8)
)

// AllowedDiscount enforces the discount policy: a discount exists only for
// cash payment, and the requested percent is clamped into [0, 8] rather than
// rejected. Every code path that derives an effective discount goes through
// this single rule.
func AllowedDiscount(payment PaymentType, requested decimal.Decimal) decimal.Decimal {
	if payment != PaymentCash {
		return decimal.Zero
	}
	if requested.IsNegative() {
		return decimal.Zero
	}
	if requested.GreaterThan(MaxDiscountPercent) {
		return MaxDiscountPercent
	}
	return requested
}
