package production

import (
	"log/slog"

	"github.com/talgya/villagesim/internal/money"
	"github.com/talgya/villagesim/internal/policy"
	"github.com/talgya/villagesim/internal/scenario"
	"github.com/talgya/villagesim/internal/village"
)

// Construction advances the village's single in-progress house
// project. Wood is consumed from the village balance into
// wood_committed greedily up to the recipe cost; worker-days
// committed are capped at the recipe's worker-day target — surplus
// worker-days are discarded, never banked. When both targets are met,
// a new House is appended with maintenance_level = 0 and the project
// resets. Progress that cannot advance today (no construction
// workers, or wood currently unavailable) is preserved unchanged.
func Construction(v *village.Village, assignment TaskAssignment, params scenario.Parameters) {
	days := constructionWorkerDays(assignment, policy.TaskConstruction)
	if days.IsPositive() {
		target := params.HouseConstructionDays
		v.Construction.WorkerDaysCommitted = money.Min(v.Construction.WorkerDaysCommitted.Add(days), target)

		// Pull wood toward the recipe cost, never more than what's on
		// hand and never past the target (no banking past the recipe
		// cost). Only happens while the project is actively staffed, so
		// an unstaffed project leaves progress untouched.
		woodTarget := params.HouseConstructionWood
		woodNeeded := woodTarget.Sub(v.Construction.WoodCommitted)
		if woodNeeded.IsPositive() {
			take := money.Min(woodNeeded, v.Wood)
			if take.IsPositive() {
				v.Wood = v.Wood.Sub(take)
				v.Construction.WoodCommitted = v.Construction.WoodCommitted.Add(take)
			}
		}
	}

	if v.Construction.WoodCommitted.GreaterThanOrEqual(params.HouseConstructionWood) &&
		v.Construction.WorkerDaysCommitted.GreaterThanOrEqual(params.HouseConstructionDays) {
		house := v.AddHouse()
		v.Construction = village.Construction{}
		slog.Info("house completed", "village", v.ID, "house_id", house.ID)
	}
}

// HouseJustBuilt reports whether Construction appended a house this
// call, used by the caller to emit a HouseBuilt event — kept as a
// query rather than folding event emission into this package, so
// production stays engine-agnostic about the event log's shape.
func HouseJustBuilt(v *village.Village, before int) (built bool, houseID village.HouseID) {
	if len(v.Houses) > before {
		return true, v.Houses[len(v.Houses)-1].ID
	}
	return false, 0
}
