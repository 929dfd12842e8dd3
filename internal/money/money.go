// Package money provides the exact decimal type shared by every
// conserved quantity in the simulation: wood, food, money, prices,
// and maintenance levels. No conserved value may ever pass through a
// float64.
package money

import (
	"github.com/shopspring/decimal"
)

// Scale is the minimum number of fractional digits the engine
// guarantees when rounding is unavoidable (order-book clamping).
const Scale = 6

// Amount is an exact decimal quantity. It is a type alias for
// decimal.Decimal, so every decimal method is usable directly; this
// package adds only the handful of helpers the simulation's money
// rules need on top (clamping, min/max, half-up rounding).
type Amount = decimal.Decimal

// Zero is the additive identity.
var Zero = decimal.Zero

// One is a convenience constant used throughout production/repair math.
var One = decimal.NewFromInt(1)

// FromInt builds an Amount from a plain integer count.
func FromInt(n int64) Amount {
	return decimal.NewFromInt(n)
}

// FromFloat builds an Amount from a float64 literal. Reserved for
// scenario-parameter constants such as second-slot productivity and
// growth probability, which may safely be floating-point since they
// are never conserved quantities — they are only ever compared
// against a uniform draw or multiplied into a freshly-computed (not
// accumulated) output.
func FromFloat(f float64) Amount {
	return decimal.NewFromFloat(f)
}

// IsNonNegative reports whether a is >= 0.
func IsNonNegative(a Amount) bool {
	return !a.IsNegative()
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// ClampNonNegative returns a if a >= 0, else Zero. Used after decay
// computations where a signed intermediate should never become a
// negative balance.
func ClampNonNegative(a Amount) Amount {
	if a.IsNegative() {
		return Zero
	}
	return a
}

// Round rounds a to Scale fractional digits, halves away from zero.
func Round(a Amount) Amount {
	return a.Round(Scale)
}
