package production

import (
	"testing"

	"github.com/talgya/villagesim/internal/money"
	"github.com/talgya/villagesim/internal/policy"
	"github.com/talgya/villagesim/internal/scenario"
	"github.com/talgya/villagesim/internal/village"
)

func newTestVillage(workers int) *village.Village {
	v := village.New("alpha", money.Zero, money.Zero, money.Zero,
		village.SlotPair{Slot1: 1, Slot2: 1}, village.SlotPair{Slot1: 1, Slot2: 1})
	for i := 0; i < workers; i++ {
		v.AddWorker()
	}
	return v
}

func TestAssignTasksDeterministicOrder(t *testing.T) {
	v := newTestVillage(4)
	assignment := AssignTasks(v, policy.Allocation{Food: 2, Wood: 1})
	ids := v.WorkerIDs()
	if assignment[ids[0]] != policy.TaskFood || assignment[ids[1]] != policy.TaskFood {
		t.Fatalf("expected first two workers assigned to food")
	}
	if assignment[ids[2]] != policy.TaskWood {
		t.Fatalf("expected third worker assigned to wood")
	}
	if _, idle := assignment[ids[3]]; idle {
		t.Fatalf("expected fourth worker to remain idle (unassigned)")
	}
}

func TestProduceDiminishingReturns(t *testing.T) {
	v := newTestVillage(3) // slot1=1, slot2=1, so worker 3 produces nothing
	assignment := AssignTasks(v, policy.Allocation{Food: 3})
	params := scenario.DefaultParameters()

	foodProduced, _ := Produce(v, assignment, params)
	// worker1: base*1*1 = 1; worker2: base*0.75*1 = 0.75; worker3: 0
	want := money.FromFloat(1.75)
	if !foodProduced.Equal(want) {
		t.Fatalf("expected diminishing-returns total %s, got %s", want.String(), foodProduced.String())
	}
}

func TestProducePenalizesUnfedUnsheltered(t *testing.T) {
	v := village.New("alpha", money.Zero, money.Zero, money.Zero,
		village.SlotPair{Slot1: 1}, village.SlotPair{Slot1: 1})
	w := v.AddWorker()
	w.DaysWithoutFood = 1
	w.DaysWithoutShelter = 1

	assignment := AssignTasks(v, policy.Allocation{Food: 1})
	params := scenario.DefaultParameters()
	foodProduced, _ := Produce(v, assignment, params)

	want := money.FromFloat(0.64) // 1 * 0.8 * 0.8
	if !foodProduced.Equal(want) {
		t.Fatalf("expected doubly-penalized output %s, got %s", want.String(), foodProduced.String())
	}
}

func TestProduceFreshWorkerUnpenalized(t *testing.T) {
	v := village.New("alpha", money.Zero, money.Zero, money.Zero,
		village.SlotPair{Slot1: 1}, village.SlotPair{Slot1: 1})
	v.AddWorker() // zeroed counters, as a newly added worker always starts

	assignment := AssignTasks(v, policy.Allocation{Food: 1})
	params := scenario.DefaultParameters()
	foodProduced, _ := Produce(v, assignment, params)

	if !foodProduced.Equal(params.BaseFoodProduction) {
		t.Fatalf("expected a fresh worker to produce unpenalized base output %s, got %s",
			params.BaseFoodProduction.String(), foodProduced.String())
	}
}

func TestConstructionCompletesAndResets(t *testing.T) {
	v := village.New("alpha", money.FromInt(20), money.Zero, money.Zero, village.SlotPair{Slot1: 1}, village.SlotPair{Slot1: 1})
	w := v.AddWorker()
	_ = w
	params := scenario.DefaultParameters()
	params.HouseConstructionDays = money.FromInt(2)
	params.HouseConstructionWood = money.FromInt(5)

	assignment := TaskAssignment{v.WorkerIDs()[0]: policy.TaskConstruction}

	Construction(v, assignment, params) // day 1: 1 worker-day, 5 wood pulled (capped at target)
	if len(v.Houses) != 0 {
		t.Fatalf("expected construction incomplete after day 1")
	}
	Construction(v, assignment, params) // day 2: 2nd worker-day completes the days target
	if len(v.Houses) != 1 {
		t.Fatalf("expected a house to complete once both targets are met")
	}
	if !v.Construction.WoodCommitted.IsZero() || !v.Construction.WorkerDaysCommitted.IsZero() {
		t.Fatalf("expected construction progress to reset after completion")
	}
}

func TestConstructionUnstaffedLeavesProgressAndWoodUntouched(t *testing.T) {
	v := village.New("alpha", money.FromInt(20), money.Zero, money.Zero, village.SlotPair{Slot1: 1}, village.SlotPair{Slot1: 1})
	params := scenario.DefaultParameters()
	params.HouseConstructionDays = money.FromInt(2)
	params.HouseConstructionWood = money.FromInt(5)

	woodBefore := v.Wood
	Construction(v, TaskAssignment{}, params) // no worker assigned to construction
	if !v.Wood.Equal(woodBefore) {
		t.Fatalf("expected no wood pulled into an unstaffed project, wood went from %s to %s", woodBefore.String(), v.Wood.String())
	}
	if !v.Construction.WoodCommitted.IsZero() || !v.Construction.WorkerDaysCommitted.IsZero() {
		t.Fatalf("expected construction progress unchanged with zero construction workers")
	}
}

func TestMaintenanceRepairNeverBanksAboveZero(t *testing.T) {
	v := village.New("alpha", money.FromInt(100), money.Zero, money.Zero, village.SlotPair{Slot1: 1}, village.SlotPair{Slot1: 1})
	v.AddHouse() // maintenance_level starts at 0, decays to -1 this tick
	w := v.AddWorker()
	w2 := v.AddWorker()
	params := scenario.DefaultParameters()
	params.RepairWorkerDaysPerUnit = money.FromInt(1)

	assignment := TaskAssignment{w.ID: policy.TaskRepair, w2.ID: policy.TaskRepair}
	woodBefore := v.Wood
	Maintenance(v, assignment, params)

	if !v.Houses[0].MaintenanceLevel.IsZero() {
		t.Fatalf("expected decay (-1) fully repaired back to 0, got %s", v.Houses[0].MaintenanceLevel.String())
	}
	// Only 1 unit of wood should have been spent repairing the 1-unit deficit,
	// even though the 2-worker-day budget could have covered more.
	if !v.Wood.Equal(woodBefore.Sub(money.FromInt(1))) {
		t.Fatalf("expected exactly 1 wood spent, wood went from %s to %s", woodBefore.String(), v.Wood.String())
	}
}

func TestAssignShelterCoversAllWhenCapacityExceedsPopulation(t *testing.T) {
	v := village.New("alpha", money.Zero, money.Zero, money.Zero, village.SlotPair{Slot1: 1}, village.SlotPair{Slot1: 1})
	v.AddHouse() // capacity 5, but only 2 workers to place
	a := v.AddWorker()
	b := v.AddWorker()
	a.DaysWithoutShelter = 10
	b.DaysWithoutShelter = 2

	sheltered := AssignShelter(v)
	if !sheltered[a.ID] || !sheltered[b.ID] {
		t.Fatalf("expected both workers sheltered when capacity exceeds population")
	}
}

func TestAssignShelterCapsAtCapacity(t *testing.T) {
	v := village.New("alpha", money.Zero, money.Zero, money.Zero, village.SlotPair{Slot1: 1}, village.SlotPair{Slot1: 1})
	h := v.AddHouse()
	h.MaintenanceLevel = money.FromInt(-5) // capacity 0
	w := v.AddWorker()

	sheltered := AssignShelter(v)
	if sheltered[w.ID] {
		t.Fatalf("expected no shelter available when total capacity is 0")
	}
}
