// Package persistence provides an optional SQLite-backed store for a
// run's event log and final village-state snapshot.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/villagesim/internal/eventlog"
	"github.com/talgya/villagesim/internal/village"
)

// Store wraps a sqlx.DB holding one run's persisted events and final
// village states.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) a SQLite database at path in WAL
// mode, for durability without serializing every write behind a
// global lock.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("persistence: ping %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	scenario_name TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	tick INTEGER NOT NULL,
	kind TEXT NOT NULL,
	village_id TEXT,
	payload TEXT,
	FOREIGN KEY(run_id) REFERENCES runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);

CREATE TABLE IF NOT EXISTS village_states (
	run_id TEXT NOT NULL,
	village_id TEXT NOT NULL,
	population INTEGER NOT NULL,
	houses INTEGER NOT NULL,
	wood TEXT NOT NULL,
	food TEXT NOT NULL,
	money TEXT NOT NULL,
	PRIMARY KEY(run_id, village_id)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("persistence: migrate: %w", err)
	}
	return nil
}

// SaveRun records a run's resolved seed and scenario name.
func (s *Store) SaveRun(runID uuid.UUID, seed int64, scenarioName string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO runs (run_id, seed, scenario_name) VALUES (?, ?, ?)`,
		runID.String(), seed, scenarioName)
	if err != nil {
		return fmt.Errorf("persistence: save run: %w", err)
	}
	return nil
}

// SaveEvents appends every event in log to the events table within a
// single transaction (an append rather than a replace, since the
// event log is append-only rather than a replaceable blob).
func (s *Store) SaveEvents(runID uuid.UUID, events []eventlog.Event) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("persistence: save events: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events (run_id, tick, kind, village_id, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("persistence: save events: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("persistence: save events: marshal payload: %w", err)
		}
		if _, err := stmt.Exec(runID.String(), e.Tick, string(e.Kind), e.VillageID, string(payload)); err != nil {
			return fmt.Errorf("persistence: save events: exec: %w", err)
		}
	}
	return tx.Commit()
}

// SaveVillageStates replaces the final-state snapshot row for every
// village in villages under runID.
func (s *Store) SaveVillageStates(runID uuid.UUID, villages map[string]*village.Village) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("persistence: save village states: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`
INSERT OR REPLACE INTO village_states (run_id, village_id, population, houses, wood, food, money)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("persistence: save village states: prepare: %w", err)
	}
	defer stmt.Close()

	for id, v := range villages {
		if _, err := stmt.Exec(runID.String(), id, v.Population(), len(v.Houses),
			v.Wood.String(), v.Food.String(), v.Money.String()); err != nil {
			return fmt.Errorf("persistence: save village states: exec: %w", err)
		}
	}
	return tx.Commit()
}
