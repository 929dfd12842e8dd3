// Package production implements the diminishing-returns production
// rule, house construction/maintenance, and shelter assignment, using
// a resolve-then-apply staged mutation style.
package production

import (
	"log/slog"
	"sort"

	"github.com/talgya/villagesim/internal/money"
	"github.com/talgya/villagesim/internal/policy"
	"github.com/talgya/villagesim/internal/scenario"
	"github.com/talgya/villagesim/internal/village"
)

// TaskAssignment maps each worker id to the task it was assigned on a
// given day, derived deterministically from an Allocation by walking
// worker ids in ascending order.
type TaskAssignment map[village.WorkerID]policy.Task

// AssignTasks deterministically distributes alloc's counts over v's
// workers in ascending id order: food, then wood, then construction,
// then repair, then idle.
func AssignTasks(v *village.Village, alloc policy.Allocation) TaskAssignment {
	ids := v.WorkerIDs()
	assignment := make(TaskAssignment, len(ids))
	i := 0
	take := func(n int, task policy.Task) {
		for k := 0; k < n && i < len(ids); k++ {
			assignment[ids[i]] = task
			i++
		}
	}
	take(alloc.Food, policy.TaskFood)
	take(alloc.Wood, policy.TaskWood)
	take(alloc.Construction, policy.TaskConstruction)
	take(alloc.Repair, policy.TaskRepair)
	return assignment
}

// workerPenalty returns the day's productivity multiplier for w,
// based on yesterday's hunger/shelter state: 0.8x if w went without
// food yesterday, a further 0.8x if it went without shelter
// yesterday. A worker with zero days of either counter — including
// one freshly added this tick — is penalized on neither.
func workerPenalty(w *village.Worker) money.Amount {
	step := money.FromFloat(0.8)
	factor := money.One
	if w.DaysWithoutFood > 0 {
		factor = factor.Mul(step)
	}
	if w.DaysWithoutShelter > 0 {
		factor = factor.Mul(step)
	}
	return factor
}

// produceCommodity implements the diminishing-returns formula for one
// commodity: workers are consumed in assignment order, the first
// slots.Slot1 are fully productive, the next slots.Slot2 at factor
// s2, the rest produce nothing. Each worker's own contribution is
// additionally scaled by their individual penalty, so the aggregate
// sum is equivalent to applying base*factor uniformly and then the
// per-worker hunger/shelter multiplier on top, even for a cohort with
// mixed penalties.
func produceCommodity(v *village.Village, workerIDs []village.WorkerID, slots village.SlotPair, base money.Amount, s2 float64) money.Amount {
	total := money.Zero
	s2Amount := money.FromFloat(s2)
	for idx, id := range workerIDs {
		w := v.Workers[id]
		if w == nil {
			continue
		}
		var factor money.Amount
		switch {
		case idx < slots.Slot1:
			factor = money.One
		case idx < slots.Slot1+slots.Slot2:
			factor = s2Amount
		default:
			factor = money.Zero
		}
		if factor.IsZero() {
			continue
		}
		penalty := workerPenalty(w)
		total = total.Add(base.Mul(factor).Mul(penalty))
	}
	return total
}

// workersFor returns the worker ids assigned to task, in ascending id
// order (the order AssignTasks produced them in).
func workersFor(assignment TaskAssignment, task policy.Task) []village.WorkerID {
	var ids []village.WorkerID
	for id, t := range assignment {
		if t == task {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Produce runs phase (2): production adds resources according to the
// assignment and the diminishing-returns rule, returning the amounts
// produced (for ProductionTick events) without yet touching
// construction/repair worker-days (see Construction/Maintenance).
func Produce(v *village.Village, assignment TaskAssignment, params scenario.Parameters) (foodProduced, woodProduced money.Amount) {
	foodWorkers := workersFor(assignment, policy.TaskFood)
	woodWorkers := workersFor(assignment, policy.TaskWood)

	foodProduced = produceCommodity(v, foodWorkers, v.FoodSlots, params.BaseFoodProduction, params.SecondSlotProductivity)
	woodProduced = produceCommodity(v, woodWorkers, v.WoodSlots, params.BaseWoodProduction, params.SecondSlotProductivity)

	v.Food = v.Food.Add(foodProduced)
	v.Wood = v.Wood.Add(woodProduced)

	slog.Debug("production resolved", "village", v.ID, "food_produced", foodProduced.String(), "wood_produced", woodProduced.String())
	return foodProduced, woodProduced
}

// constructionWorkerDays sums the worker-days contributed by workers
// assigned to construction today, with no productivity penalty: each
// construction worker-day contributes one unit, independent of the
// hunger/shelter multiplier that only governs food/wood output.
func constructionWorkerDays(assignment TaskAssignment, task policy.Task) money.Amount {
	return money.FromInt(int64(len(workersFor(assignment, task))))
}
