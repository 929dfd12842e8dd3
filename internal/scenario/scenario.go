// Package scenario holds the declarative run configuration and the
// validation an engine must perform before the first tick: exported
// structs with JSON tags, a DefaultParameters constructor, and a
// Validate() error method.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/talgya/villagesim/internal/money"
)

// Parameters are the run-wide constants every village shares.
type Parameters struct {
	DaysToSimulate int `json:"days_to_simulate"`

	DaysWithoutFoodBeforeStarvation    uint32 `json:"days_without_food_before_starvation"`
	DaysWithoutShelterBeforeDeath      uint32 `json:"days_without_shelter_before_death"`
	DaysBeforeGrowthChance             uint32 `json:"days_before_growth_chance"`
	GrowthChancePerDay                 float64 `json:"growth_chance_per_day"`

	HouseConstructionDays money.Amount `json:"house_construction_days"`
	HouseConstructionWood money.Amount `json:"house_construction_wood"`
	HouseDecayRate        money.Amount `json:"house_decay_rate"`

	BaseFoodProduction    money.Amount `json:"base_food_production"`
	BaseWoodProduction    money.Amount `json:"base_wood_production"`
	SecondSlotProductivity float64     `json:"second_slot_productivity"`

	// RepairWorkerDaysPerUnit is the ratio of worker-days consumed per
	// unit of maintenance_level restored (default: one worker-day per
	// unit unless the scenario overrides it).
	RepairWorkerDaysPerUnit money.Amount `json:"repair_worker_days_per_unit"`

	// RecommendedFoodPerWorker backs the soft-violation warning emitted
	// when initial food per worker is below this threshold.
	RecommendedFoodPerWorker money.Amount `json:"recommended_food_per_worker"`

	// AuctionMaxIterations bounds the clearing loop.
	AuctionMaxIterations int `json:"auction_max_iterations"`
}

// DefaultParameters returns the baseline parameter set new scenarios
// build on.
func DefaultParameters() Parameters {
	return Parameters{
		DaysToSimulate:                   100,
		DaysWithoutFoodBeforeStarvation:  10,
		DaysWithoutShelterBeforeDeath:    30,
		DaysBeforeGrowthChance:           100,
		GrowthChancePerDay:               0.05,
		HouseConstructionDays:            money.FromInt(60),
		HouseConstructionWood:            money.FromInt(10),
		HouseDecayRate:                   money.FromInt(1),
		BaseFoodProduction:               money.FromInt(1),
		BaseWoodProduction:               money.FromInt(1),
		SecondSlotProductivity:           0.75,
		RepairWorkerDaysPerUnit:          money.FromInt(1),
		RecommendedFoodPerWorker:         money.FromInt(10),
		AuctionMaxIterations:             1000,
	}
}

// VillageConfig describes one village's starting state and policy.
type VillageConfig struct {
	ID             string       `json:"id"`
	InitialWorkers int          `json:"initial_workers"`
	InitialHouses  int          `json:"initial_houses"`
	InitialFood    money.Amount `json:"initial_food"`
	InitialWood    money.Amount `json:"initial_wood"`
	InitialMoney   money.Amount `json:"initial_money"`
	FoodSlots      [2]int       `json:"food_slots"`
	WoodSlots      [2]int       `json:"wood_slots"`
	PolicyName     string       `json:"policy"`
}

// Scenario is the full declarative run configuration.
type Scenario struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  Parameters      `json:"parameters"`
	Villages    []VillageConfig `json:"villages"`
	RandomSeed  *int64          `json:"random_seed,omitempty"`
}

// Load reads and decodes a scenario from a JSON file. No schema
// migration or alternate encoding is provided.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: decode %s: %w", path, err)
	}
	return &s, nil
}

// Validate performs the configuration checks required before the
// first tick: invalid scenarios must be rejected, not discovered
// mid-run.
func (s *Scenario) Validate() error {
	if len(s.Villages) == 0 {
		return fmt.Errorf("scenario %q: must have at least one village", s.Name)
	}
	if s.Parameters.DaysToSimulate <= 0 {
		return fmt.Errorf("scenario %q: days_to_simulate must be positive", s.Name)
	}
	if s.Parameters.AuctionMaxIterations <= 0 {
		return fmt.Errorf("scenario %q: auction_max_iterations must be positive", s.Name)
	}
	seen := make(map[string]bool, len(s.Villages))
	for _, v := range s.Villages {
		if v.ID == "" {
			return fmt.Errorf("scenario %q: village id must not be empty", s.Name)
		}
		if seen[v.ID] {
			return fmt.Errorf("scenario %q: duplicate village id %q", s.Name, v.ID)
		}
		seen[v.ID] = true
		if v.InitialWorkers <= 0 {
			return fmt.Errorf("village %q: must have at least one worker", v.ID)
		}
		if v.FoodSlots[0] <= 0 || v.WoodSlots[0] <= 0 {
			return fmt.Errorf("village %q: must have at least one slot for food and wood", v.ID)
		}
		if v.FoodSlots[0] < 0 || v.FoodSlots[1] < 0 || v.WoodSlots[0] < 0 || v.WoodSlots[1] < 0 {
			return fmt.Errorf("village %q: slot counts must be non-negative", v.ID)
		}
		if v.InitialWood.IsNegative() || v.InitialFood.IsNegative() || v.InitialMoney.IsNegative() {
			return fmt.Errorf("village %q: initial balances must be non-negative", v.ID)
		}
	}
	return nil
}

// SoftWarnings returns soft-violation messages: configuration that is
// legal but suspicious. The caller logs these as warning events; the
// run continues.
func (s *Scenario) SoftWarnings() []string {
	var warnings []string
	for _, v := range s.Villages {
		if v.InitialWorkers == 0 {
			continue
		}
		perWorker := v.InitialFood.Div(money.FromInt(int64(v.InitialWorkers)))
		if perWorker.LessThan(s.Parameters.RecommendedFoodPerWorker) {
			warnings = append(warnings, fmt.Sprintf(
				"village %q: initial food per worker (%s) is below the recommended threshold (%s)",
				v.ID, perWorker.String(), s.Parameters.RecommendedFoodPerWorker.String()))
		}
		if v.FoodSlots == v.WoodSlots {
			warnings = append(warnings, fmt.Sprintf(
				"village %q: food and wood production slots are identical", v.ID))
		}
	}
	return warnings
}
