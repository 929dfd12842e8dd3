package engine

import (
	"github.com/talgya/villagesim/internal/market"
	"github.com/talgya/villagesim/internal/money"
	"github.com/talgya/villagesim/internal/village"
)

// villageLedger adapts the live village map to market.Ledger so the
// auction engine can read balances and apply trades without knowing
// about village.Village at all.
type villageLedger struct {
	villages map[string]*village.Village
}

func (l villageLedger) Money(participant string) money.Amount {
	v, ok := l.villages[participant]
	if !ok {
		return money.Zero
	}
	return v.Money
}

func (l villageLedger) Inventory(participant string, c market.Commodity) money.Amount {
	v, ok := l.villages[participant]
	if !ok {
		return money.Zero
	}
	switch c {
	case market.Food:
		return v.Food
	case market.Wood:
		return v.Wood
	default:
		return money.Zero
	}
}

func (l villageLedger) ApplyTrade(buyer, seller string, c market.Commodity, qty, price money.Amount) {
	buyerV, sellerV := l.villages[buyer], l.villages[seller]
	if buyerV == nil || sellerV == nil {
		return
	}
	cost := qty.Mul(price)
	buyerV.Money = buyerV.Money.Sub(cost)
	sellerV.Money = sellerV.Money.Add(cost)
	switch c {
	case market.Food:
		buyerV.Food = buyerV.Food.Add(qty)
		sellerV.Food = sellerV.Food.Sub(qty)
	case market.Wood:
		buyerV.Wood = buyerV.Wood.Add(qty)
		sellerV.Wood = sellerV.Wood.Sub(qty)
	}
}
