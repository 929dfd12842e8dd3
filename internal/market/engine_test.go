package market

import (
	"errors"
	"testing"

	"github.com/talgya/villagesim/internal/eventlog"
	"github.com/talgya/villagesim/internal/money"
)

// fakeLedger is a minimal in-memory Ledger for exercising Clear in
// isolation from the engine/village packages.
type fakeLedger struct {
	cash      map[string]money.Amount
	inventory map[string]map[Commodity]money.Amount
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		cash:      make(map[string]money.Amount),
		inventory: make(map[string]map[Commodity]money.Amount),
	}
}

func (f *fakeLedger) setCash(participant string, amt money.Amount) {
	f.cash[participant] = amt
}

func (f *fakeLedger) setInventory(participant string, c Commodity, amt money.Amount) {
	if f.inventory[participant] == nil {
		f.inventory[participant] = make(map[Commodity]money.Amount)
	}
	f.inventory[participant][c] = amt
}

func (f *fakeLedger) Money(participant string) money.Amount {
	return f.cash[participant]
}

func (f *fakeLedger) Inventory(participant string, c Commodity) money.Amount {
	return f.inventory[participant][c]
}

func (f *fakeLedger) ApplyTrade(buyer, seller string, c Commodity, qty, price money.Amount) {
	cost := qty.Mul(price)
	f.cash[buyer] = f.cash[buyer].Sub(cost)
	f.cash[seller] = f.cash[seller].Add(cost)
	f.setInventory(buyer, c, f.inventory[buyer][c].Add(qty))
	f.setInventory(seller, c, f.inventory[seller][c].Sub(qty))
}

func noopEmit(eventlog.Event) {}

func TestClearSimpleCross(t *testing.T) {
	ledger := newFakeLedger()
	ledger.setCash("buyer", money.FromInt(100))
	ledger.setInventory("seller", Food, money.FromInt(10))

	orders := []*Order{
		{Participant: "buyer", Commodity: Food, Side: Buy, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(10), Sequence: 0},
		{Participant: "seller", Commodity: Food, Side: Sell, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(8), Sequence: 1},
	}

	results, err := Clear(0, orders, ledger, 100, noopEmit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var food CommodityResult
	for _, r := range results {
		if r.Commodity == Food {
			food = r
		}
	}
	if food.ClearingPrice == nil {
		t.Fatalf("expected food to clear with a price")
	}
	// earlier-sequence order (buyer, seq 0) sets the clearing price.
	if !food.ClearingPrice.Equal(money.FromInt(10)) {
		t.Fatalf("expected clearing price 10, got %s", food.ClearingPrice.String())
	}
	if !food.Volume.Equal(money.FromInt(5)) {
		t.Fatalf("expected volume 5, got %s", food.Volume.String())
	}
	if !ledger.Inventory("buyer", Food).Equal(money.FromInt(5)) {
		t.Fatalf("expected buyer to hold 5 food, got %s", ledger.Inventory("buyer", Food).String())
	}
}

func TestClearNeverSelfTrades(t *testing.T) {
	ledger := newFakeLedger()
	ledger.setCash("solo", money.FromInt(100))
	ledger.setInventory("solo", Food, money.FromInt(10))

	orders := []*Order{
		{Participant: "solo", Commodity: Food, Side: Buy, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(10), Sequence: 0},
		{Participant: "solo", Commodity: Food, Side: Sell, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(8), Sequence: 1},
	}

	results, err := Clear(0, orders, ledger, 100, noopEmit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Commodity == Food && r.ClearingPrice != nil {
			t.Fatalf("expected no trade between a participant and itself, got price %s", r.ClearingPrice.String())
		}
	}
}

func TestClearPrunesOverBudgetBuyer(t *testing.T) {
	ledger := newFakeLedger()
	ledger.setCash("buyer", money.FromInt(10))
	ledger.setInventory("seller", Food, money.FromInt(100))
	ledger.setInventory("seller", Wood, money.FromInt(100))

	orders := []*Order{
		{Participant: "buyer", Commodity: Food, Side: Buy, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(10), Sequence: 0},
		{Participant: "buyer", Commodity: Wood, Side: Buy, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(10), Sequence: 1},
		{Participant: "seller", Commodity: Food, Side: Sell, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(1), Sequence: 2},
		{Participant: "seller", Commodity: Wood, Side: Sell, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(1), Sequence: 3},
	}

	var pruned []eventlog.Event
	emit := func(e eventlog.Event) {
		if e.Kind == eventlog.KindOrderPruned {
			pruned = append(pruned, e)
		}
	}

	_, err := Clear(0, orders, ledger, 100, emit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Money("buyer").IsNegative() {
		t.Fatalf("buyer must never go negative, got %s", ledger.Money("buyer").String())
	}
	if len(pruned) == 0 {
		t.Fatalf("expected the over-budget buyer's orders to be pruned")
	}
}

func TestClearNonConvergenceIsFatal(t *testing.T) {
	ledger := newFakeLedger()
	ledger.setCash("buyer", money.FromInt(100))
	ledger.setInventory("seller", Food, money.FromInt(10))

	orders := []*Order{
		{Participant: "buyer", Commodity: Food, Side: Buy, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(10), Sequence: 0},
		{Participant: "seller", Commodity: Food, Side: Sell, Quantity: money.FromInt(5), Original: money.FromInt(5), LimitPrice: money.FromInt(8), Sequence: 1},
	}

	_, err := Clear(0, orders, ledger, 0, noopEmit)
	if !errors.Is(err, ErrNonConvergence) {
		t.Fatalf("expected ErrNonConvergence with a zero iteration budget, got %v", err)
	}
}
