// Package policy defines the seam between the engine and a village's
// decision-making logic. The engine treats every Policy as an opaque
// variant; this package supplies only the interface plus a
// deterministic Replay implementation and one illustrative Balanced
// implementation, not a catalogue.
package policy

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/market"
	"github.com/talgya/villagesim/internal/money"
)

// Task is one of the four things a worker can be assigned to on a
// given day.
type Task string

const (
	TaskFood         Task = "food"
	TaskWood         Task = "wood"
	TaskConstruction Task = "construction"
	TaskRepair       Task = "repair"
)

// Allocation is a non-negative integer assignment of workers to
// tasks. The engine discards any allocation whose sum exceeds the
// village's worker count, emitting a PolicyError event, and runs that
// village with a zero allocation and no orders for the day;
// unallocated workers idle.
type Allocation struct {
	Food         int
	Wood         int
	Construction int
	Repair       int
}

// Sum returns the total number of workers the allocation assigns.
func (a Allocation) Sum() int {
	return a.Food + a.Wood + a.Construction + a.Repair
}

// OrderIntent is a policy's requested market order before the engine
// assigns it a sequence number and validates it against the village's
// balances: orders a village provably cannot cover at posting time
// are rejected at submission, never carried into the clearing loop.
type OrderIntent struct {
	Commodity  market.Commodity
	Side       market.Side
	Quantity   money.Amount
	LimitPrice money.Amount
}

// Snapshot is the read-only view of a village's own state a policy
// receives. It is a value copy, never a pointer into live state.
type Snapshot struct {
	VillageID string

	Wood  money.Amount
	Food  money.Amount
	Money money.Amount

	Workers   int
	FoodSlots [2]int
	WoodSlots [2]int

	HouseCapacity       int
	ConstructionWoodDue money.Amount
	ConstructionDaysDue money.Amount
}

// CommodityView is the prior tick's public clearing outcome for one
// commodity.
type CommodityView struct {
	LastClearingPrice *money.Amount
	Volume            money.Amount
}

// MarketView is the read-only public market state handed to every
// policy alongside its own Snapshot. Policies never see another
// village's inner state.
type MarketView map[market.Commodity]CommodityView

// Policy is invoked once per village per day.
type Policy interface {
	Decide(snapshot Snapshot, view MarketView, rng *rand.Rand) (Allocation, []OrderIntent)
}
