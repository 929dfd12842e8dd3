// Package lifecycle implements the worker consumption, hunger/
// exposure counter, death, and birth rules.
package lifecycle

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/villagesim/internal/eventlog"
	"github.com/talgya/villagesim/internal/money"
	"github.com/talgya/villagesim/internal/rng"
	"github.com/talgya/villagesim/internal/scenario"
	"github.com/talgya/villagesim/internal/village"
)

// Result summarizes one day's lifecycle step, for tests and summary
// logging.
type Result struct {
	Deaths int
	Births int
}

type deathRecord struct {
	id    village.WorkerID
	cause eventlog.DeathCause
}

// Consume runs phase (4): each worker, in ascending id order, consumes
// one unit of food if available. It returns which workers were fed
// today, for WorkerStep to combine with phase (5)'s sheltered set.
func Consume(v *village.Village) map[village.WorkerID]bool {
	fed := make(map[village.WorkerID]bool, len(v.Workers))
	for _, id := range v.WorkerIDs() {
		if v.Food.GreaterThanOrEqual(money.One) {
			v.Food = v.Food.Sub(money.One)
			fed[id] = true
		} else {
			fed[id] = false
		}
	}
	return fed
}

// WorkerStep runs the worker-step phase: hunger/exposure counters
// advance from the consumption phase's fed set and the housing
// phase's sheltered set, deaths are applied, then births are rolled
// for eligible survivors — strictly in that order: every death is
// applied before any birth is rolled.
func WorkerStep(v *village.Village, fed, sheltered map[village.WorkerID]bool, r *rand.Rand, params scenario.Parameters, tick uint64, emit func(eventlog.Event)) Result {
	ids := v.WorkerIDs()
	var toDie []deathRecord

	for _, id := range ids {
		w := v.Workers[id]

		if fed[id] {
			w.DaysWithoutFood = 0
			w.FedYesterday = true
		} else {
			w.DaysWithoutFood++
			w.FedYesterday = false
		}

		if sheltered[id] {
			w.DaysWithoutShelter = 0
			w.ShelteredYesterday = true
		} else {
			w.DaysWithoutShelter++
			w.ShelteredYesterday = false
		}

		if w.FedYesterday && w.ShelteredYesterday {
			w.DaysWithBoth++
		} else {
			w.DaysWithBoth = 0
		}

		switch {
		case w.DaysWithoutFood > params.DaysWithoutFoodBeforeStarvation:
			toDie = append(toDie, deathRecord{id, eventlog.CauseStarvation})
		case w.DaysWithoutShelter > params.DaysWithoutShelterBeforeDeath:
			toDie = append(toDie, deathRecord{id, eventlog.CauseExposure})
		}
	}

	for _, d := range toDie {
		v.RemoveWorker(d.id)
		emit(eventlog.Event{
			Tick: tick, Kind: eventlog.KindWorkerDied, VillageID: v.ID,
			Payload: map[string]any{"worker_id": uint64(d.id), "cause": string(d.cause)},
		})
	}

	births := 0
	for _, id := range v.WorkerIDs() {
		w, ok := v.Workers[id]
		if !ok {
			continue
		}
		if w.DaysWithBoth < params.DaysBeforeGrowthChance {
			continue
		}
		if !rng.Bernoulli(r, params.GrowthChancePerDay) {
			continue
		}
		nw := v.AddWorker()
		births++
		emit(eventlog.Event{
			Tick: tick, Kind: eventlog.KindWorkerBorn, VillageID: v.ID,
			Payload: map[string]any{"worker_id": uint64(nw.ID)},
		})
	}

	if len(toDie) > 0 || births > 0 {
		slog.Info("population changed", "village", v.ID, "deaths", len(toDie), "births", births, "population", v.Population())
	}

	return Result{Deaths: len(toDie), Births: births}
}
