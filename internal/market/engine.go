package market

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/villagesim/internal/eventlog"
	"github.com/talgya/villagesim/internal/money"
)

// ErrNonConvergence is the distinguished fatal error the engine
// returns when clearing exceeds its iteration bound. Callers must
// halt the run on this error.
var ErrNonConvergence = errors.New("market: auction did not converge")

// Ledger is the minimal view the clearing engine needs into
// participants' money and commodity inventories, and the means to
// apply a trade's effect atomically. The engine package supplies an
// implementation backed by the live village map.
type Ledger interface {
	Money(participant string) money.Amount
	Inventory(participant string, c Commodity) money.Amount
	ApplyTrade(buyer, seller string, c Commodity, qty, price money.Amount)
}

// CommodityResult is the per-commodity outcome of one tick's
// clearing: the volume-weighted clearing price (nil if no trades) and
// total traded volume, used for AuctionCleared events and the next
// tick's market view.
type CommodityResult struct {
	Commodity     Commodity
	ClearingPrice *money.Amount
	Volume        money.Amount
}

// accumulator tracks per-commodity trade totals as Clear executes, so
// the volume-weighted clearing price can be reported without a second
// pass over the event log.
type accumulator struct {
	volume     money.Amount
	priceUnits money.Amount // sum(price * qty), for the volume-weighted average
}

// book holds one commodity's bid/ask sides, kept sorted: asks
// ascending price then ascending sequence; bids descending price then
// ascending sequence.
type book struct {
	bids []*Order
	asks []*Order
}

func (b *book) sort() {
	sort.SliceStable(b.bids, func(i, j int) bool {
		if !b.bids[i].LimitPrice.Equal(b.bids[j].LimitPrice) {
			return b.bids[i].LimitPrice.GreaterThan(b.bids[j].LimitPrice)
		}
		return b.bids[i].Sequence < b.bids[j].Sequence
	})
	sort.SliceStable(b.asks, func(i, j int) bool {
		if !b.asks[i].LimitPrice.Equal(b.asks[j].LimitPrice) {
			return b.asks[i].LimitPrice.LessThan(b.asks[j].LimitPrice)
		}
		return b.asks[i].Sequence < b.asks[j].Sequence
	})
}

func group(orders []*Order) map[Commodity]*book {
	books := make(map[Commodity]*book)
	for _, o := range orders {
		b, ok := books[o.Commodity]
		if !ok {
			b = &book{}
			books[o.Commodity] = b
		}
		if o.Side == Buy {
			b.bids = append(b.bids, o)
		} else {
			b.asks = append(b.asks, o)
		}
	}
	for _, b := range books {
		b.sort()
	}
	return books
}

// buyOrdersByParticipant indexes every still-active buy order across
// every commodity book, keyed by participant — the cross-market view
// the pro-rata pruning rule needs across a buyer's still-unfilled buy
// orders.
func buyOrdersByParticipant(books map[Commodity]*book) map[string][]*Order {
	idx := make(map[string][]*Order)
	for _, c := range Commodities {
		b, ok := books[c]
		if !ok {
			continue
		}
		for _, o := range b.bids {
			if o.Remaining() {
				idx[o.Participant] = append(idx[o.Participant], o)
			}
		}
	}
	return idx
}

// prune re-derives a feasible split of participant's money across all
// of their still-active buy orders, weighting each by
// (remaining quantity x limit price), and clamps each order's
// remaining quantity down to the largest multiple of the unit
// resolution that fits inside its share. It returns the set of orders
// it changed, for OrderPruned events.
func prune(orders []*Order, availableMoney money.Amount) []*Order {
	if len(orders) == 0 {
		return nil
	}
	totalWeight := money.Zero
	for _, o := range orders {
		totalWeight = totalWeight.Add(o.Quantity.Mul(o.LimitPrice))
	}
	if !totalWeight.IsPositive() {
		return nil
	}
	var changed []*Order
	for _, o := range orders {
		if o.LimitPrice.IsZero() {
			continue
		}
		weight := o.Quantity.Mul(o.LimitPrice)
		share := availableMoney.Mul(weight).Div(totalWeight)
		maxQty := share.DivRound(o.LimitPrice, money.Scale+2).Truncate(money.Scale)
		newQty := money.ClampNonNegative(money.Min(o.Quantity, maxQty))
		if !newQty.Equal(o.Quantity) {
			o.Quantity = newQty
			changed = append(changed, o)
		}
	}
	return changed
}

// clearingPriceFor returns the earlier order's (by sequence) limit
// price: whichever side arrived first sets the price the trade
// executes at.
func clearingPriceFor(bid, ask *Order) money.Amount {
	if bid.Sequence < ask.Sequence {
		return bid.LimitPrice
	}
	return ask.LimitPrice
}

func emitPruned(emit func(eventlog.Event), tick uint64, orders []*Order) {
	for _, o := range orders {
		emit(eventlog.Event{
			Tick: tick, Kind: eventlog.KindOrderPruned, VillageID: o.Participant,
			Payload: map[string]any{
				"commodity": string(o.Commodity), "sequence": o.Sequence,
				"remaining": o.Quantity.String(), "original": o.Original.String(),
			},
		})
	}
}

// Clear runs the iterative clearing algorithm over every commodity's
// order book until no further change happens in a full pass, or the
// iteration bound is exceeded (in which case ErrNonConvergence is
// returned and the caller must treat the tick as fatal). emit is
// called once per OrderPruned / TradeExecuted / AuctionCleared event
// in the order they occur.
func Clear(tick uint64, orders []*Order, ledger Ledger, maxIterations int, emit func(eventlog.Event)) ([]CommodityResult, error) {
	books := group(orders)
	acc := make(map[Commodity]*accumulator, len(Commodities))
	for _, c := range Commodities {
		acc[c] = &accumulator{volume: money.Zero, priceUnits: money.Zero}
	}

	iterations := 0
	for {
		if iterations >= maxIterations {
			return nil, fmt.Errorf("%w: tick %d after %d iterations", ErrNonConvergence, tick, iterations)
		}
		iterations++
		changed := false

		for _, c := range Commodities {
			b, ok := books[c]
			if !ok {
				continue
			}
			if clearOnePass(tick, c, b, books, ledger, acc[c], emit) {
				changed = true
				b.sort()
			}
		}

		if !changed {
			break
		}
	}

	results := make([]CommodityResult, 0, len(Commodities))
	for _, c := range Commodities {
		results = append(results, finalize(c, acc[c]))
	}
	for _, r := range results {
		payload := map[string]any{"commodity": string(r.Commodity), "volume": r.Volume.String()}
		if r.ClearingPrice != nil {
			payload["clearing_price"] = r.ClearingPrice.String()
		}
		emit(eventlog.Event{Tick: tick, Kind: eventlog.KindAuctionCleared, Payload: payload})
	}
	return results, nil
}

// clearOnePass scans bids in priority order; for each, it looks for
// the best-priority feasible ask (skipping self-trades, condition a),
// and either executes the trade, prunes the buyer's over-budget
// orders, or shrinks the seller's ask to available inventory. It
// returns true if it made any change, signalling the caller to re-sort
// and run another pass.
func clearOnePass(tick uint64, c Commodity, b *book, books map[Commodity]*book, ledger Ledger, acc *accumulator, emit func(eventlog.Event)) bool {
	for _, bid := range b.bids {
		if !bid.Remaining() {
			continue
		}
		for _, ask := range b.asks {
			if !ask.Remaining() {
				continue
			}
			if ask.Participant == bid.Participant {
				continue // condition (a)
			}
			if bid.LimitPrice.LessThan(ask.LimitPrice) {
				break // asks sorted ascending: no later ask can cross either
			}

			clearingPrice := clearingPriceFor(bid, ask)
			qty := money.Min(bid.Quantity, ask.Quantity)
			cost := qty.Mul(clearingPrice)

			if ledger.Money(bid.Participant).LessThan(cost) {
				changedOrders := prune(buyOrdersByParticipant(books)[bid.Participant], ledger.Money(bid.Participant))
				emitPruned(emit, tick, changedOrders)
				return true
			}

			if ledger.Inventory(ask.Participant, c).LessThan(qty) {
				available := ledger.Inventory(ask.Participant, c)
				ask.Quantity = money.ClampNonNegative(available)
				emitPruned(emit, tick, []*Order{ask})
				return true
			}

			ledger.ApplyTrade(bid.Participant, ask.Participant, c, qty, clearingPrice)
			bid.Quantity = bid.Quantity.Sub(qty)
			ask.Quantity = ask.Quantity.Sub(qty)
			acc.volume = acc.volume.Add(qty)
			acc.priceUnits = acc.priceUnits.Add(qty.Mul(clearingPrice))

			emit(eventlog.Event{
				Tick: tick, Kind: eventlog.KindTradeExecuted,
				Payload: map[string]any{
					"commodity": string(c), "price": clearingPrice.String(), "quantity": qty.String(),
					"buyer": bid.Participant, "seller": ask.Participant,
					"buy_sequence": bid.Sequence, "sell_sequence": ask.Sequence,
				},
			})

			if changedOrders := prune(buyOrdersByParticipant(books)[bid.Participant], ledger.Money(bid.Participant)); len(changedOrders) > 0 {
				emitPruned(emit, tick, changedOrders)
			}
			return true
		}
	}
	return false
}

func finalize(c Commodity, acc *accumulator) CommodityResult {
	if !acc.volume.IsPositive() {
		return CommodityResult{Commodity: c, Volume: money.Zero}
	}
	avg := acc.priceUnits.Div(acc.volume)
	return CommodityResult{Commodity: c, ClearingPrice: &avg, Volume: acc.volume}
}
