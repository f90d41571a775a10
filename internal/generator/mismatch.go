// Package generator produces batches of mirrored buy/sell trade pairs and
// injects a statistically controlled fraction of field mismatches between
// the legs of selected pairs.
package generator

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// axis identifies the field of the sell leg a mismatch alters.
type axis int

const (
	axisQuantity axis = iota
	axisPrice
	axisDate
	axisTimestamp
	axisMultiple

	// axisCount covers the single-field axes; axisMultiple is drawn on top.
	axisCount = 4
)

// minPriceDelta guarantees a price mismatch actually changes the rounded
// value even for very small reference prices.
var minPriceDelta = decimal.NewFromFloat(0.01)

// MismatchPolicy decides per pair whether to corrupt the sell leg and, when
// selected, which field(s) to alter. It is not safe for concurrent use; the
// generator drives it from a single goroutine.
type MismatchPolicy struct {
	rate float64
	rng  *rand.Rand
}

// NewMismatchPolicy returns a policy that selects each pair for mismatch
// with the given probability.
func NewMismatchPolicy(rate float64, rng *rand.Rand) *MismatchPolicy {
	return &MismatchPolicy{rate: rate, rng: rng}
}

// Decide performs the per-pair Bernoulli draw.
func (p *MismatchPolicy) Decide() bool {
	return p.rng.Float64() < p.rate
}

// Apply returns a copy of the sell leg altered along one axis chosen
// uniformly from {quantity, price, date, timestamp, multiple}. The
// "multiple" outcome applies two distinct single-field mutations in a
// bounded loop rather than recursing, so termination is guaranteed. The buy
// leg is never altered.
func (p *MismatchPolicy) Apply(buy, sell domain.TradeRecord) domain.TradeRecord {
	switch a := axis(p.rng.Intn(axisCount + 1)); a {
	case axisMultiple:
		for _, a := range p.distinctAxes(2) {
			sell = p.mutate(a, buy, sell)
		}
		return sell
	default:
		return p.mutate(a, buy, sell)
	}
}

// distinctAxes draws k distinct single-field axes.
func (p *MismatchPolicy) distinctAxes(k int) []axis {
	axes := []axis{axisQuantity, axisPrice, axisDate, axisTimestamp}
	p.rng.Shuffle(len(axes), func(i, j int) {
		axes[i], axes[j] = axes[j], axes[i]
	})
	return axes[:k]
}

// mutate applies a single-field mutation to the sell leg.
func (p *MismatchPolicy) mutate(a axis, buy, sell domain.TradeRecord) domain.TradeRecord {
	switch a {
	case axisQuantity:
		maxDelta := buy.Quantity / 20
		if maxDelta < 1 {
			maxDelta = 1
		}
		delta := 1 + p.rng.Intn(maxDelta)
		if p.rng.Intn(2) == 0 {
			delta = -delta
		}
		qty := buy.Quantity + delta
		if qty < 1 {
			qty = 1
		}
		sell.Quantity = qty

	case axisPrice:
		frac := 0.001 + p.rng.Float64()*0.009
		delta := buy.Price.Mul(decimal.NewFromFloat(frac)).Round(2)
		if delta.LessThan(minPriceDelta) {
			delta = minPriceDelta
		}
		price := buy.Price.Add(delta)
		if p.rng.Intn(2) == 0 {
			price = buy.Price.Sub(delta)
			if price.IsNegative() {
				price = decimal.Zero
			}
		}
		sell.Price = price

	case axisDate:
		sell.TradeDate = buy.TradeDate.AddDays(1)

	case axisTimestamp:
		minutes := 1 + p.rng.Intn(30)
		sell.TradeTimestamp = buy.TradeTimestamp.Add(time.Duration(minutes) * time.Minute)
	}
	return sell
}
