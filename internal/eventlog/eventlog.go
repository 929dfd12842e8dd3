// Package eventlog provides the ordered, append-only, typed event log
// the scheduler emits every tick. Discriminator strings are part of
// the stable external contract consumers depend on.
package eventlog

import (
	"github.com/google/uuid"
)

// Kind is the event discriminator, plus two supplemental
// discriminators (VillageSnapshot, WorkerAllocation) for
// per-village-per-day bookkeeping not otherwise covered by a single
// phase's own events, and two for recovered failures (ConfigWarning,
// PolicyError).
type Kind string

const (
	KindOrderSubmitted     Kind = "OrderSubmitted"
	KindOrderPruned        Kind = "OrderPruned"
	KindTradeExecuted      Kind = "TradeExecuted"
	KindAuctionCleared     Kind = "AuctionCleared"
	KindProductionTick     Kind = "ProductionTick"
	KindWorkerBorn         Kind = "WorkerBorn"
	KindWorkerDied         Kind = "WorkerDied"
	KindHouseBuilt         Kind = "HouseBuilt"
	KindMaintenanceDecayed Kind = "MaintenanceDecayed"
	KindPopulationUpdate   Kind = "PopulationUpdate"
	KindVillageSnapshot    Kind = "VillageSnapshot"
	KindWorkerAllocation   Kind = "WorkerAllocation"
	KindConfigWarning      Kind = "ConfigWarning"
	KindPolicyError        Kind = "PolicyError"
)

// DeathCause enumerates why a worker died.
type DeathCause string

const (
	CauseStarvation DeathCause = "starvation"
	CauseExposure   DeathCause = "exposure"
)

// Event is a single typed log record. Payload holds primitive
// key-value fields specific to Kind; it is a plain map rather than a
// Go union type so the schema can grow additively without forcing a
// new variant everywhere an Event is constructed.
type Event struct {
	Tick      uint64         `json:"tick" db:"tick"`
	Kind      Kind           `json:"kind" db:"kind"`
	VillageID string         `json:"village_id,omitempty" db:"village_id"`
	Payload   map[string]any `json:"payload,omitempty" db:"-"`
}

// Log is an ordered, append-only sequence of events for one run.
type Log struct {
	RunID  uuid.UUID
	Events []Event
}

// NewLog creates an empty log stamped with a fresh run id.
func NewLog() *Log {
	return &Log{RunID: uuid.New()}
}

// Append adds an event to the end of the log.
func (l *Log) Append(e Event) {
	l.Events = append(l.Events, e)
}

// Emit is a convenience constructor-and-append in one call.
func (l *Log) Emit(tick uint64, kind Kind, villageID string, payload map[string]any) {
	l.Append(Event{Tick: tick, Kind: kind, VillageID: villageID, Payload: payload})
}

// ByKind filters the log to events of a single discriminator, in
// original order.
func (l *Log) ByKind(kind Kind) []Event {
	var out []Event
	for _, e := range l.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
