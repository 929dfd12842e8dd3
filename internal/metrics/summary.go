// Package metrics computes an end-of-run summary over the event log:
// pure arithmetic, not a new simulation feature.
package metrics

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/talgya/villagesim/internal/eventlog"
	"github.com/talgya/villagesim/internal/village"
)

// Summary is a single run's headline numbers.
type Summary struct {
	FinalPopulation int
	TotalTrades     int
	TotalBirths     int
	TotalDeaths     int
	TotalHousesBuilt int
}

// Summarize walks log once and returns the run's Summary. villages
// supplies the final population count directly rather than inferring
// it from PopulationUpdate events, since villages is the
// authoritative end-of-run state.
func Summarize(log *eventlog.Log, villages map[string]*village.Village) Summary {
	s := Summary{}
	for _, v := range villages {
		s.FinalPopulation += v.Population()
		s.TotalHousesBuilt += len(v.Houses)
	}
	for _, e := range log.Events {
		switch e.Kind {
		case eventlog.KindTradeExecuted:
			s.TotalTrades++
		case eventlog.KindWorkerBorn:
			s.TotalBirths++
		case eventlog.KindWorkerDied:
			s.TotalDeaths++
		}
	}
	return s
}

// String renders the summary as a single operator-facing log line:
// humanized counts, not raw integers.
func (s Summary) String() string {
	return fmt.Sprintf(
		"population=%s trades=%s births=%s deaths=%s houses_built=%s",
		humanize.Comma(int64(s.FinalPopulation)),
		humanize.Comma(int64(s.TotalTrades)),
		humanize.Comma(int64(s.TotalBirths)),
		humanize.Comma(int64(s.TotalDeaths)),
		humanize.Comma(int64(s.TotalHousesBuilt)),
	)
}
