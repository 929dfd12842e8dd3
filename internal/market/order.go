// Package market implements the multi-commodity double-auction
// clearing engine: per-commodity order books, iterative pairwise
// matching, and cross-market pro-rata budget pruning.
package market

import (
	"github.com/talgya/villagesim/internal/money"
)

// Commodity is a tradeable good. Exactly two are defined.
type Commodity string

const (
	Food Commodity = "food"
	Wood Commodity = "wood"
)

// Commodities lists every commodity in the fixed order the clearing
// loop iterates them.
var Commodities = []Commodity{Food, Wood}

// Side is buy or sell.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Order is one participant's signed intent to trade a quantity of a
// commodity at a limit price. Sequence establishes time priority and
// is assigned by the engine at submission, strictly increasing across
// every order submitted in one tick regardless of commodity.
type Order struct {
	Participant string
	Commodity   Commodity
	Side        Side
	Quantity    money.Amount // remaining quantity; mutated as the order fills/prunes
	LimitPrice  money.Amount
	Sequence    uint64

	// Original is the quantity the order was submitted with, kept for
	// OrderPruned event payloads (remaining vs. original).
	Original money.Amount
}

// Remaining reports whether the order still has quantity left to fill.
func (o *Order) Remaining() bool {
	return o.Quantity.IsPositive()
}

// Clone returns a deep-enough copy for use in intermediate book state.
func (o *Order) Clone() *Order {
	cp := *o
	return &cp
}
