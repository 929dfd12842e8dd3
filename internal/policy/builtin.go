package policy

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/money"
)

// Replay issues a scripted, pre-recorded stream of (allocation,
// orders) pairs, one per call to Decide, ignoring the rng it is
// handed. It exists so the engine can be exercised against a fixed,
// reproducible policy instead of a randomized one. Once the script is
// exhausted it repeats an all-idle, order-free allocation.
type Replay struct {
	Script []Step
	cursor int
}

// Step is one day's scripted decision.
type Step struct {
	Allocation Allocation
	Orders     []OrderIntent
}

func (r *Replay) Decide(_ Snapshot, _ MarketView, _ *rand.Rand) (Allocation, []OrderIntent) {
	if r.cursor >= len(r.Script) {
		return Allocation{}, nil
	}
	step := r.Script[r.cursor]
	r.cursor++
	return step.Allocation, step.Orders
}

// Balanced is a minimal illustrative policy, not a tuned strategy:
// while a house project still has wood or worker-days due it puts a
// quarter of its workers (at least one) on construction, then splits
// the rest evenly across food and wood production. It assigns no
// repair work and never places a market order. It exists only so a scenario runs
// without a caller having to supply a custom Policy.
type Balanced struct{}

func (Balanced) Decide(s Snapshot, _ MarketView, _ *rand.Rand) (Allocation, []OrderIntent) {
	if s.Workers == 0 {
		return Allocation{}, nil
	}

	alloc := Allocation{}
	remaining := s.Workers

	if s.ConstructionWoodDue.GreaterThan(money.Zero) || s.ConstructionDaysDue.GreaterThan(money.Zero) {
		toConstruction := remaining / 4
		if toConstruction == 0 && remaining > 0 {
			toConstruction = 1
		}
		alloc.Construction = toConstruction
		remaining -= toConstruction
	}

	half := remaining / 2
	alloc.Food = half
	alloc.Wood = remaining - half

	return alloc, nil
}
