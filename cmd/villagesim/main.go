// Command villagesim runs a village-economy simulation from a JSON
// scenario file and optionally persists its event log and final state
// to SQLite. Adapted from cmd/worldsim/main.go: slog setup,
// os/signal-based graceful shutdown, and persistence wiring survive;
// world generation, the LLM client, and the HTTP API are dropped
// (see DESIGN.md).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talgya/villagesim/internal/engine"
	"github.com/talgya/villagesim/internal/metrics"
	"github.com/talgya/villagesim/internal/persistence"
	"github.com/talgya/villagesim/internal/policy"
	"github.com/talgya/villagesim/internal/scenario"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	scenarioPath := flag.String("scenario", "", "path to a scenario JSON file (required)")
	dbPath := flag.String("db", "", "optional SQLite path to persist the event log and final state")
	flag.Parse()

	if *scenarioPath == "" {
		slog.Error("missing required flag", "flag", "-scenario")
		os.Exit(1)
	}

	if err := run(*scenarioPath, *dbPath); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(scenarioPath, dbPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scn, err := scenario.Load(scenarioPath)
	if err != nil {
		return err
	}

	policies := make(map[string]policy.Policy, len(scn.Villages))
	for _, vc := range scn.Villages {
		if vc.PolicyName == "replay" {
			policies[vc.ID] = &policy.Replay{}
			continue
		}
		policies[vc.ID] = policy.Balanced{}
	}

	eng, err := engine.New(scn, policies)
	if err != nil {
		return err
	}

	eng.OnDayComplete = func(day uint64) {
		select {
		case <-ctx.Done():
			slog.Warn("shutdown requested, finishing current day then stopping", "day", day)
		default:
		}
	}

	if err := eng.Run(); err != nil {
		return err
	}

	summary := metrics.Summarize(eng.Log, eng.Villages)
	slog.Info("run summary", "stats", summary.String())

	if dbPath != "" {
		store, err := persistence.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveRun(eng.Log.RunID, eng.Seed, scn.Name); err != nil {
			return err
		}
		if err := store.SaveEvents(eng.Log.RunID, eng.Log.Events); err != nil {
			return err
		}
		if err := store.SaveVillageStates(eng.Log.RunID, eng.Villages); err != nil {
			return err
		}
		slog.Info("persisted run", "db", dbPath, "run_id", eng.Log.RunID.String())
	}

	return nil
}
