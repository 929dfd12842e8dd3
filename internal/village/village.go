// Package village holds the Village/Worker/House data model and the
// invariants the engine enforces on it every tick.
package village

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/talgya/villagesim/internal/money"
)

// WorkerID uniquely identifies a worker within its village. IDs are
// never reused and always increase.
type WorkerID uint64

// HouseID uniquely identifies a house within its village.
type HouseID uint64

// Worker is an individual consumer/producer carrying the hunger,
// exposure, and growth-eligibility counters the lifecycle step
// advances daily.
type Worker struct {
	ID WorkerID

	DaysWithoutFood    uint32
	DaysWithoutShelter uint32
	DaysWithBoth       uint32

	// FedYesterday and ShelteredYesterday record the prior day's
	// consumption/housing outcome; DaysWithBoth only advances while
	// both hold, gating growth eligibility. The production penalty
	// itself is derived from DaysWithoutFood/DaysWithoutShelter
	// directly, so a freshly added worker is never penalized before it
	// has gone a day without either.
	FedYesterday       bool
	ShelteredYesterday bool
}

// House owns a signed maintenance accumulator; capacity is always
// derived, never stored.
type House struct {
	ID               HouseID
	MaintenanceLevel money.Amount
}

// Capacity implements `capacity = max(0, 5 - floor(max(0, -level)))`.
func (h House) Capacity() int {
	if h.MaintenanceLevel.Sign() >= 0 {
		return 5
	}
	deficit := h.MaintenanceLevel.Neg().Floor()
	lost := deficit
	if lost.GreaterThan(money.FromInt(5)) {
		lost = money.FromInt(5)
	}
	capacity := 5 - int(lost.IntPart())
	if capacity < 0 {
		return 0
	}
	return capacity
}

// SlotPair is a village's (slot1, slot2) production-capacity pair for
// one commodity.
type SlotPair struct {
	Slot1 int
	Slot2 int
}

// Construction tracks the single in-progress house project a village
// may hold at a time.
type Construction struct {
	WoodCommitted       money.Amount
	WorkerDaysCommitted money.Amount
}

// Village is an autonomous economic agent owning workers, houses, and
// resource balances. Its ID never mutates after construction.
type Village struct {
	ID string

	Wood  money.Amount
	Food  money.Amount
	Money money.Amount

	FoodSlots SlotPair
	WoodSlots SlotPair

	Workers map[WorkerID]*Worker
	Houses  []*House

	Construction Construction

	nextWorkerID WorkerID
	nextHouseID  HouseID
}

// New constructs an empty village with the given starting balances
// and slot configuration. Workers are added with AddWorker so the ID
// counter stays monotonic.
func New(id string, wood, food, m money.Amount, foodSlots, woodSlots SlotPair) *Village {
	return &Village{
		ID:        id,
		Wood:      wood,
		Food:      food,
		Money:     m,
		FoodSlots: foodSlots,
		WoodSlots: woodSlots,
		Workers:   make(map[WorkerID]*Worker),
	}
}

// AddWorker appends a fresh worker with zeroed counters and returns it.
func (v *Village) AddWorker() *Worker {
	w := &Worker{ID: v.nextWorkerID}
	v.nextWorkerID++
	v.Workers[w.ID] = w
	return w
}

// AddHouse appends a brand-new house with maintenance_level = 0.
func (v *Village) AddHouse() *House {
	h := &House{ID: v.nextHouseID, MaintenanceLevel: money.Zero}
	v.nextHouseID++
	v.Houses = append(v.Houses, h)
	return h
}

// RemoveWorker deletes a worker by id. No-op if absent.
func (v *Village) RemoveWorker(id WorkerID) {
	delete(v.Workers, id)
}

// WorkerIDs returns every worker id in ascending order, the
// processing order used everywhere workers are iterated: shelter
// selection, the lifecycle step, and task assignment.
func (v *Village) WorkerIDs() []WorkerID {
	ids := maps.Keys(v.Workers)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TotalCapacity sums every house's derived capacity.
func (v *Village) TotalCapacity() int {
	total := 0
	for _, h := range v.Houses {
		total += h.Capacity()
	}
	return total
}

// Population returns the current worker count.
func (v *Village) Population() int {
	return len(v.Workers)
}

// CheckNonNegative reports whether wood, food, and money are all >= 0,
// the invariant the scheduler verifies after every phase.
func (v *Village) CheckNonNegative() bool {
	return money.IsNonNegative(v.Wood) && money.IsNonNegative(v.Food) && money.IsNonNegative(v.Money)
}
