// Package engine is the day-based tick scheduler: the sole entity
// allowed to mutate village state. It runs a single synchronous daily
// tick rather than a real-time loop — there is no continuous time in
// this model, so there is nothing to pace against a wall clock.
package engine

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/talgya/villagesim/internal/eventlog"
	"github.com/talgya/villagesim/internal/lifecycle"
	"github.com/talgya/villagesim/internal/market"
	"github.com/talgya/villagesim/internal/money"
	"github.com/talgya/villagesim/internal/policy"
	"github.com/talgya/villagesim/internal/production"
	"github.com/talgya/villagesim/internal/rng"
	"github.com/talgya/villagesim/internal/scenario"
	"github.com/talgya/villagesim/internal/village"
)

// Engine orchestrates the seven daily phases across every village, in
// fixed order, emitting events as it goes.
type Engine struct {
	Scenario *scenario.Scenario
	Villages map[string]*village.Village
	Policies map[string]policy.Policy
	Log      *eventlog.Log
	Seed     int64

	Day uint64

	marketView map[market.Commodity]policy.CommodityView

	// OnDayComplete, if set, is called after every day's phases and
	// event emission, for callers that want a progress indicator
	// without reading the event log.
	OnDayComplete func(day uint64)
}

// New validates scn, resolves an RNG seed (publishing one if absent),
// builds every village from its VillageConfig, and attaches the
// supplied policies by name. It returns a configuration error without
// mutating anything if validation fails.
func New(scn *scenario.Scenario, policies map[string]policy.Policy) (*Engine, error) {
	if err := scn.Validate(); err != nil {
		return nil, err
	}

	seed := resolveSeed(scn)

	villages := make(map[string]*village.Village, len(scn.Villages))
	for _, vc := range scn.Villages {
		v := village.New(vc.ID, vc.InitialWood, vc.InitialFood, vc.InitialMoney,
			village.SlotPair{Slot1: vc.FoodSlots[0], Slot2: vc.FoodSlots[1]},
			village.SlotPair{Slot1: vc.WoodSlots[0], Slot2: vc.WoodSlots[1]})
		for i := 0; i < vc.InitialWorkers; i++ {
			v.AddWorker()
		}
		for i := 0; i < vc.InitialHouses; i++ {
			v.AddHouse()
		}
		villages[vc.ID] = v
	}

	e := &Engine{
		Scenario: scn,
		Villages: villages,
		Policies: policies,
		Log:      eventlog.NewLog(),
		Seed:     seed,
		marketView: map[market.Commodity]policy.CommodityView{
			market.Food: {Volume: money.Zero},
			market.Wood: {Volume: money.Zero},
		},
	}

	for _, w := range scn.SoftWarnings() {
		e.Log.Emit(0, eventlog.KindConfigWarning, "", map[string]any{"message": w})
		slog.Warn("configuration warning", "message", w)
	}

	return e, nil
}

func resolveSeed(scn *scenario.Scenario) int64 {
	if scn.RandomSeed != nil {
		return int64(*scn.RandomSeed)
	}
	var buf [8]byte
	_, _ = cryptorand.Read(buf[:])
	seed := int64(binary.LittleEndian.Uint64(buf[:]))
	resolved := seed
	scn.RandomSeed = new(int64)
	*scn.RandomSeed = resolved
	return resolved
}

// villageIDs returns every village id in ascending lexicographic
// order, the fixed per-village processing order every phase uses.
func (e *Engine) villageIDs() []string {
	ids := maps.Keys(e.Villages)
	sort.Strings(ids)
	return ids
}

// Run iterates day = 0..D-1, executing the seven phases each day.
// Fatal failures (non-convergence, a conservation violation) halt the
// run and are returned; recoverable failures (configuration warnings,
// a rejected policy allocation) are handled internally and only
// surfaced as events.
func (e *Engine) Run() error {
	days := e.Scenario.Parameters.DaysToSimulate
	slog.Info("simulation starting", "days", days, "villages", len(e.Villages), "seed", e.Seed)
	for day := uint64(0); day < uint64(days); day++ {
		e.Day = day
		if err := e.step(day); err != nil {
			slog.Error("simulation halted", "day", day, "error", err)
			return err
		}
		if e.OnDayComplete != nil {
			e.OnDayComplete(day)
		}
	}
	slog.Info("simulation complete", "days", days)
	return nil
}

// rngFor returns the per-(village, day) sub-stream a policy consumes.
// rngFor and growthRNGFor are salted differently so a policy's draws
// never shadow the lifecycle's independent growth-chance draw on the
// same village and day.
func (e *Engine) rngFor(villageID string, day uint64) *mathrand.Rand {
	return rng.ForVillageDay(e.Seed, villageID+"#policy", day)
}

func (e *Engine) growthRNGFor(villageID string, day uint64) *mathrand.Rand {
	return rng.ForVillageDay(e.Seed, villageID+"#growth", day)
}

func (e *Engine) emit(ev eventlog.Event) {
	e.Log.Append(ev)
}

// step executes the seven fixed-order phases for every village on a
// single day.
func (e *Engine) step(day uint64) error {
	ids := e.villageIDs()

	// (1) Policy step.
	allocations := make(map[string]policy.Allocation, len(ids))
	var sequence uint64
	var allOrders []*market.Order
	for _, id := range ids {
		v := e.Villages[id]
		p := e.Policies[id]
		snapshot := e.snapshotFor(v)
		var alloc policy.Allocation
		var intents []policy.OrderIntent
		if p != nil {
			alloc, intents = p.Decide(snapshot, e.marketView, e.rngFor(id, day))
		}

		if alloc.Sum() > v.Population() {
			e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindPolicyError, VillageID: id,
				Payload: map[string]any{"reason": "allocation exceeds worker count"}})
			alloc = policy.Allocation{}
			intents = nil
		}
		allocations[id] = alloc

		for _, intent := range intents {
			order, rejectReason := e.acceptOrder(id, v, intent, &sequence)
			if rejectReason != "" {
				e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindOrderPruned, VillageID: id,
					Payload: map[string]any{
						"commodity": string(intent.Commodity), "side": string(intent.Side),
						"quantity": intent.Quantity.String(), "limit_price": intent.LimitPrice.String(),
						"reason": rejectReason,
					}})
				continue
			}
			allOrders = append(allOrders, order)
			e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindOrderSubmitted, VillageID: id,
				Payload: map[string]any{
					"commodity": string(order.Commodity), "side": string(order.Side),
					"quantity": order.Quantity.String(), "limit_price": order.LimitPrice.String(),
					"sequence": order.Sequence,
				}})
		}

		e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindWorkerAllocation, VillageID: id,
			Payload: map[string]any{
				"food": alloc.Food, "wood": alloc.Wood,
				"construction": alloc.Construction, "repair": alloc.Repair,
			}})
	}

	// (2) Production.
	assignments := make(map[string]production.TaskAssignment, len(ids))
	for _, id := range ids {
		v := e.Villages[id]
		assignment := production.AssignTasks(v, allocations[id])
		assignments[id] = assignment

		foodProduced, woodProduced := production.Produce(v, assignment, e.Scenario.Parameters)
		housesBefore := len(v.Houses)
		production.Construction(v, assignment, e.Scenario.Parameters)

		e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindProductionTick, VillageID: id,
			Payload: map[string]any{"food_produced": foodProduced.String(), "wood_produced": woodProduced.String()}})

		if built, houseID := production.HouseJustBuilt(v, housesBefore); built {
			e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindHouseBuilt, VillageID: id,
				Payload: map[string]any{"house_id": uint64(houseID)}})
		}

		if err := e.checkConservation(v); err != nil {
			return err
		}
	}

	// (3) Market.
	ledger := villageLedger{villages: e.Villages}
	results, err := market.Clear(day, allOrders, ledger, e.Scenario.Parameters.AuctionMaxIterations, e.emit)
	if err != nil {
		return fmt.Errorf("day %d: %w", day, err)
	}
	for _, r := range results {
		view := policy.CommodityView{Volume: r.Volume}
		if r.ClearingPrice != nil {
			price := *r.ClearingPrice
			view.LastClearingPrice = &price
		}
		e.marketView[r.Commodity] = view
	}
	for _, id := range ids {
		if err := e.checkConservation(e.Villages[id]); err != nil {
			return err
		}
	}

	// (4) Consumption, (5) Housing, (6) Worker step.
	for _, id := range ids {
		v := e.Villages[id]
		fedMap := lifecycle.Consume(v)
		production.Maintenance(v, assignments[id], e.Scenario.Parameters)
		sheltered := production.AssignShelter(v)

		if len(v.Houses) > 0 {
			e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindMaintenanceDecayed, VillageID: id,
				Payload: map[string]any{"house_count": len(v.Houses)}})
		}

		lifecycle.WorkerStep(v, fedMap, sheltered, e.growthRNGFor(id, day), e.Scenario.Parameters, day, e.emit)

		e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindPopulationUpdate, VillageID: id,
			Payload: map[string]any{"population": v.Population()}})
		e.emit(eventlog.Event{Tick: day, Kind: eventlog.KindVillageSnapshot, VillageID: id,
			Payload: map[string]any{
				"population": v.Population(), "houses": len(v.Houses),
				"food": v.Food.String(), "wood": v.Wood.String(), "money": v.Money.String(),
			}})

		if err := e.checkConservation(v); err != nil {
			return err
		}
	}

	return nil
}
