package policy

import (
	"math/rand"
	"testing"

	"github.com/talgya/villagesim/internal/money"
)

func TestAllocationSum(t *testing.T) {
	a := Allocation{Food: 2, Wood: 1, Construction: 1, Repair: 3}
	if a.Sum() != 7 {
		t.Fatalf("expected sum 7, got %d", a.Sum())
	}
}

func TestReplayExhaustsToIdle(t *testing.T) {
	r := &Replay{Script: []Step{
		{Allocation: Allocation{Food: 3}},
	}}
	rnd := rand.New(rand.NewSource(1))

	alloc, _ := r.Decide(Snapshot{}, nil, rnd)
	if alloc.Food != 3 {
		t.Fatalf("expected scripted allocation on first call, got %+v", alloc)
	}

	alloc, orders := r.Decide(Snapshot{}, nil, rnd)
	if alloc.Sum() != 0 || orders != nil {
		t.Fatalf("expected an idle, order-free allocation once the script is exhausted, got %+v / %+v", alloc, orders)
	}
}

func TestBalancedIdlesWithNoWorkers(t *testing.T) {
	b := Balanced{}
	alloc, orders := b.Decide(Snapshot{Workers: 0}, nil, rand.New(rand.NewSource(1)))
	if alloc.Sum() != 0 || orders != nil {
		t.Fatalf("expected no allocation with zero workers, got %+v", alloc)
	}
}

func TestBalancedPrioritizesConstructionDebt(t *testing.T) {
	b := Balanced{}
	s := Snapshot{Workers: 8, ConstructionWoodDue: money.FromInt(5)}
	alloc, _ := b.Decide(s, nil, rand.New(rand.NewSource(1)))
	if alloc.Construction == 0 {
		t.Fatalf("expected some workers dedicated to construction when wood debt remains")
	}
	if alloc.Sum() != 8 {
		t.Fatalf("expected every worker allocated, got sum %d", alloc.Sum())
	}
}
