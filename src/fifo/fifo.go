// Package fifo implements first-in-first-out cost-basis matching for one
// traded instrument. Buy lots queue up in chronological order; each sell
// consumes the oldest remaining lots to derive its cost of acquisition and
// realized profit or loss.
package fifo

import (
	"time"

	"github.com/username/investinghurdle/backend/src/logger"
)

// BuyLot is one acquisition awaiting matching. Remaining is drawn down in
// place as sells consume the lot.
type BuyLot struct {
	BuyDate   time.Time
	Quantity  float64
	TotalCost float64
	UnitCost  float64
	Remaining float64
}

// consume takes up to qty from the lot and returns the quantity actually
// taken. Remaining never goes negative.
func (l *BuyLot) consume(qty float64) float64 {
	if qty > l.Remaining {
		qty = l.Remaining
	}
	l.Remaining -= qty
	return qty
}

// Match records the quantity taken from one buy lot to satisfy part of a
// sell, its cost contribution and the resulting holding period.
type Match struct {
	BuyDate           time.Time
	Quantity          float64
	UnitCost          float64
	CostOfAcquisition float64
	HoldingDays       int
}

// Allocation is the outcome of matching one sell against the pending queue.
type Allocation struct {
	SellDate     time.Time
	SellQuantity float64
	SellAmount   float64
	Matches      []Match

	TotalCostOfAcquisition float64
	ProfitOrLoss           float64
	MatchedQuantity        float64
}

// Fulfilled reports whether the whole sell quantity found matching lots.
// Callers needing strict cost-basis accuracy should treat an unfulfilled
// allocation as suspect.
func (a *Allocation) Fulfilled() bool {
	return a.MatchedQuantity >= a.SellQuantity
}

// Matcher holds the per-instrument matching state. It is not safe for
// concurrent use; construct one per instrument per calculation.
type Matcher struct {
	symbol      string
	pending     []*BuyLot
	allocations []*Allocation
}

// NewMatcher creates an empty matcher for one instrument symbol.
func NewMatcher(symbol string) *Matcher {
	return &Matcher{symbol: symbol}
}

// AddBuy appends an acquisition to the pending queue. Non-positive
// quantities are logged and ignored.
func (m *Matcher) AddBuy(buyDate time.Time, quantity, totalCost float64) {
	if quantity <= 0 {
		logger.L.Warn("Skipping buy lot with invalid quantity",
			"symbol", m.symbol, "quantity", quantity)
		return
	}
	lot := &BuyLot{
		BuyDate:   buyDate,
		Quantity:  quantity,
		TotalCost: totalCost,
		UnitCost:  totalCost / quantity,
		Remaining: quantity,
	}
	m.pending = append(m.pending, lot)
	logger.L.Debug("Added buy lot", "symbol", m.symbol,
		"date", buyDate.Format("2006-01-02"), "quantity", quantity, "totalCost", totalCost)
}

// MatchSell consumes pending lots oldest-first until the sell quantity is
// covered or the queue runs dry. An under-supplied sell is matched as far
// as the queue allows and logged; the allocation's cost basis then reflects
// only the matched portion.
func (m *Matcher) MatchSell(sellDate time.Time, quantity, sellAmount float64) *Allocation {
	alloc := &Allocation{
		SellDate:     sellDate,
		SellQuantity: quantity,
		SellAmount:   sellAmount,
	}
	if quantity <= 0 {
		logger.L.Warn("Skipping sell with invalid quantity",
			"symbol", m.symbol, "quantity", quantity)
		alloc.ProfitOrLoss = sellAmount
		return alloc
	}

	remaining := quantity
	for remaining > 0 && len(m.pending) > 0 {
		lot := m.pending[0]
		if lot.Remaining <= 0 {
			m.pending = m.pending[1:]
			continue
		}

		taken := lot.consume(remaining)
		alloc.Matches = append(alloc.Matches, Match{
			BuyDate:           lot.BuyDate,
			Quantity:          taken,
			UnitCost:          lot.UnitCost,
			CostOfAcquisition: taken * lot.UnitCost,
			HoldingDays:       holdingDays(lot.BuyDate, sellDate),
		})
		alloc.TotalCostOfAcquisition += taken * lot.UnitCost
		alloc.MatchedQuantity += taken
		remaining -= taken

		if lot.Remaining <= 0 {
			m.pending = m.pending[1:]
		}
	}

	if remaining > 0 {
		logger.L.Warn("Unable to match full sell quantity",
			"symbol", m.symbol, "unmatched", remaining, "requested", quantity)
	}

	alloc.ProfitOrLoss = alloc.SellAmount - alloc.TotalCostOfAcquisition
	m.allocations = append(m.allocations, alloc)
	return alloc
}

func holdingDays(buyDate, sellDate time.Time) int {
	return int(sellDate.Sub(buyDate).Hours() / 24)
}

// PendingLots returns a snapshot of the unconsumed buy lots.
func (m *Matcher) PendingLots() []BuyLot {
	lots := make([]BuyLot, 0, len(m.pending))
	for _, l := range m.pending {
		if l.Remaining > 0 {
			lots = append(lots, *l)
		}
	}
	return lots
}

// PendingQuantity returns the total unconsumed quantity across all lots.
func (m *Matcher) PendingQuantity() float64 {
	var total float64
	for _, l := range m.pending {
		total += l.Remaining
	}
	return total
}

// PendingCost returns the cost of the unconsumed quantity across all lots.
func (m *Matcher) PendingCost() float64 {
	var total float64
	for _, l := range m.pending {
		total += l.Remaining * l.UnitCost
	}
	return total
}

// Allocations returns the completed sell allocations in match order.
func (m *Matcher) Allocations() []*Allocation {
	return m.allocations
}

// Reset clears all pending lots and completed allocations.
func (m *Matcher) Reset() {
	m.pending = nil
	m.allocations = nil
	logger.L.Debug("FIFO matcher reset", "symbol", m.symbol)
}
