package engine

import (
	"fmt"

	"github.com/talgya/villagesim/internal/market"
	"github.com/talgya/villagesim/internal/money"
	"github.com/talgya/villagesim/internal/policy"
	"github.com/talgya/villagesim/internal/village"
)

// snapshotFor builds the read-only Snapshot a policy receives for v.
func (e *Engine) snapshotFor(v *village.Village) policy.Snapshot {
	return policy.Snapshot{
		VillageID:           v.ID,
		Wood:                v.Wood,
		Food:                v.Food,
		Money:               v.Money,
		Workers:             v.Population(),
		FoodSlots:           [2]int{v.FoodSlots.Slot1, v.FoodSlots.Slot2},
		WoodSlots:           [2]int{v.WoodSlots.Slot1, v.WoodSlots.Slot2},
		HouseCapacity:       v.TotalCapacity(),
		ConstructionWoodDue: e.Scenario.Parameters.HouseConstructionWood.Sub(v.Construction.WoodCommitted),
		ConstructionDaysDue: e.Scenario.Parameters.HouseConstructionDays.Sub(v.Construction.WorkerDaysCommitted),
	}
}

// acceptOrder validates an OrderIntent at submission time — an order a
// village provably cannot cover is rejected before it ever enters the
// book — and, if valid, assigns it the next global sequence number.
// A rejection carries the reason, so the caller can log it rather than
// drop the intent with no trace.
func (e *Engine) acceptOrder(participant string, v *village.Village, intent policy.OrderIntent, sequence *uint64) (*market.Order, string) {
	if intent.Quantity.Sign() <= 0 {
		return nil, "non-positive quantity"
	}
	if intent.LimitPrice.IsNegative() {
		return nil, "negative limit price"
	}
	if intent.Side != market.Buy && intent.Side != market.Sell {
		return nil, "unknown side"
	}
	if intent.Commodity != market.Food && intent.Commodity != market.Wood {
		return nil, "unknown commodity"
	}
	if intent.Side == market.Sell {
		var onHand money.Amount
		switch intent.Commodity {
		case market.Food:
			onHand = v.Food
		case market.Wood:
			onHand = v.Wood
		}
		if onHand.LessThan(intent.Quantity) {
			return nil, "sell quantity exceeds on-hand balance"
		}
	}

	seq := *sequence
	*sequence++
	return &market.Order{
		Participant: participant,
		Commodity:   intent.Commodity,
		Side:        intent.Side,
		Quantity:    intent.Quantity,
		Original:    intent.Quantity,
		LimitPrice:  intent.LimitPrice,
		Sequence:    seq,
	}, ""
}

// checkConservation enforces the non-negativity invariant on wood,
// food, and money: a violation is a fatal failure signalling an
// implementation bug rather than a recoverable condition.
func (e *Engine) checkConservation(v *village.Village) error {
	if !v.CheckNonNegative() {
		return fmt.Errorf("%w: village %q went negative (wood=%s food=%s money=%s)",
			ErrConservationViolation, v.ID, v.Wood.String(), v.Food.String(), v.Money.String())
	}
	return nil
}
