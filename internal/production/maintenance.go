package production

import (
	"sort"

	"github.com/talgya/villagesim/internal/money"
	"github.com/talgya/villagesim/internal/policy"
	"github.com/talgya/villagesim/internal/scenario"
	"github.com/talgya/villagesim/internal/village"
)

// Maintenance runs the housing phase's decay and repair: every
// house's maintenance_level decays by house_decay_rate, then repair
// worker-days (RepairWorkerDaysPerUnit worker-days per unit, one by
// default; each unit restored costs one wood) restore houses toward
// maintenance_level = 0 in ascending house-id order. Repair never
// banks past 0: wood is only ever debited for the amount actually
// applied, so unneeded repair labor/wood is implicitly "refunded" by
// never being spent.
func Maintenance(v *village.Village, assignment TaskAssignment, params scenario.Parameters) {
	for _, h := range v.Houses {
		h.MaintenanceLevel = h.MaintenanceLevel.Sub(params.HouseDecayRate)
	}

	repairDays := constructionWorkerDays(assignment, policy.TaskRepair)
	if !repairDays.IsPositive() {
		return
	}
	ratio := params.RepairWorkerDaysPerUnit
	if ratio.IsZero() {
		return
	}
	laborUnits := repairDays.Div(ratio)
	budget := money.Min(laborUnits, v.Wood)
	if !budget.IsPositive() {
		return
	}

	for _, h := range v.Houses {
		if budget.IsZero() {
			break
		}
		deficit := h.MaintenanceLevel.Neg()
		if !deficit.IsPositive() {
			continue // never bank repair above maintenance_level = 0
		}
		apply := money.Min(deficit, budget)
		h.MaintenanceLevel = h.MaintenanceLevel.Add(apply)
		budget = budget.Sub(apply)
		v.Wood = v.Wood.Sub(apply)
	}
}

// AssignShelter computes the day's sheltered set: exactly
// min(|workers|, total capacity) workers, chosen by lowest
// days_without_shelter, ties broken by ascending id.
func AssignShelter(v *village.Village) map[village.WorkerID]bool {
	capacity := v.TotalCapacity()
	ids := v.WorkerIDs()
	sort.Slice(ids, func(i, j int) bool {
		wi, wj := v.Workers[ids[i]], v.Workers[ids[j]]
		if wi.DaysWithoutShelter != wj.DaysWithoutShelter {
			return wi.DaysWithoutShelter < wj.DaysWithoutShelter
		}
		return ids[i] < ids[j]
	})

	n := capacity
	if n > len(ids) {
		n = len(ids)
	}
	sheltered := make(map[village.WorkerID]bool, n)
	for i := 0; i < n; i++ {
		sheltered[ids[i]] = true
	}
	return sheltered
}
