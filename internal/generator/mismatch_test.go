package generator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// matchedPair builds a clean pair for mutation tests: quantity 400 and price
// 100.00 keep every mismatch axis away from its clamping edge cases.
func matchedPair() (buy, sell domain.TradeRecord) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	buy = domain.TradeRecord{
		TradeID:        "tid00000001",
		Ticker:         "ABC",
		BrokerID:       "BKR001",
		ContraBrokerID: "BKR002",
		Quantity:       400,
		Price:          decimal.RequireFromString("100.00"),
		Side:           domain.Buy,
		TradeDate:      domain.DateOf(now),
		TradeTimestamp: now,
	}
	sell = buy
	sell.Side = domain.Sell
	sell.BrokerID, sell.ContraBrokerID = buy.ContraBrokerID, buy.BrokerID
	return buy, sell
}

// diffAxes reports which comparable fields differ between the legs.
func diffAxes(buy, sell domain.TradeRecord) []string {
	var diffs []string
	if buy.Quantity != sell.Quantity {
		diffs = append(diffs, "quantity")
	}
	if !buy.Price.Equal(sell.Price) {
		diffs = append(diffs, "price")
	}
	if !buy.TradeDate.Time.Equal(sell.TradeDate.Time) {
		diffs = append(diffs, "date")
	}
	if !buy.TradeTimestamp.Equal(sell.TradeTimestamp) {
		diffs = append(diffs, "timestamp")
	}
	return diffs
}

func TestDecideRate(t *testing.T) {
	p := NewMismatchPolicy(0.3, rand.New(rand.NewSource(7)))

	const draws = 10000
	selected := 0
	for i := 0; i < draws; i++ {
		if p.Decide() {
			selected++
		}
	}

	assert.InDelta(t, 0.3, float64(selected)/draws, 0.03)
}

func TestDecideNeverWhenRateZero(t *testing.T) {
	p := NewMismatchPolicy(0, rand.New(rand.NewSource(7)))
	for i := 0; i < 1000; i++ {
		assert.False(t, p.Decide())
	}
}

func TestApplyAltersOnlyExpectedFields(t *testing.T) {
	p := NewMismatchPolicy(1, rand.New(rand.NewSource(11)))

	multiCount := 0
	for i := 0; i < 2000; i++ {
		buy, sell := matchedPair()
		mutated := p.Apply(buy, sell)

		// Identity and role fields are never touched.
		assert.Equal(t, sell.TradeID, mutated.TradeID)
		assert.Equal(t, sell.Ticker, mutated.Ticker)
		assert.Equal(t, sell.BrokerID, mutated.BrokerID)
		assert.Equal(t, sell.ContraBrokerID, mutated.ContraBrokerID)
		assert.Equal(t, domain.Sell, mutated.Side)

		diffs := diffAxes(buy, mutated)
		require.NotEmpty(t, diffs)
		require.LessOrEqual(t, len(diffs), 2)
		if len(diffs) == 2 {
			multiCount++
		}

		for _, axis := range diffs {
			switch axis {
			case "quantity":
				assertQuantityBounds(t, buy, mutated)
			case "price":
				assertPriceBounds(t, buy, mutated)
			case "date":
				assert.True(t, mutated.TradeDate.Time.Equal(buy.TradeDate.AddDays(1).Time),
					"date mismatch must be exactly one day forward")
			case "timestamp":
				offset := mutated.TradeTimestamp.Sub(buy.TradeTimestamp)
				assert.GreaterOrEqual(t, offset, time.Minute)
				assert.LessOrEqual(t, offset, 30*time.Minute)
			}
		}
	}

	// The "multiple" outcome carries 1/5 of the axis draws; it must show up.
	assert.Greater(t, multiCount, 0)
}

func assertQuantityBounds(t *testing.T, buy, sell domain.TradeRecord) {
	t.Helper()
	assert.GreaterOrEqual(t, sell.Quantity, 1)

	delta := sell.Quantity - buy.Quantity
	if delta < 0 {
		delta = -delta
	}
	maxDelta := buy.Quantity / 20
	if maxDelta < 1 {
		maxDelta = 1
	}
	assert.GreaterOrEqual(t, delta, 1)
	assert.LessOrEqual(t, delta, maxDelta)
}

func assertPriceBounds(t *testing.T, buy, sell domain.TradeRecord) {
	t.Helper()
	assert.False(t, sell.Price.IsNegative())
	assert.True(t, sell.Price.Equal(sell.Price.Round(2)), "price must keep 2 fraction digits")

	rel, _ := sell.Price.Sub(buy.Price).Abs().Div(buy.Price).Float64()
	// The delta is rounded to 2 decimals, so allow for half a cent of slack
	// around the configured [0.001, 0.01] band.
	assert.GreaterOrEqual(t, rel, 0.0009)
	assert.LessOrEqual(t, rel, 0.0101)
}

func TestApplyClampsQuantityAtOne(t *testing.T) {
	p := NewMismatchPolicy(1, rand.New(rand.NewSource(3)))

	for i := 0; i < 500; i++ {
		buy, sell := matchedPair()
		buy.Quantity = 1
		sell.Quantity = 1
		mutated := p.mutate(axisQuantity, buy, sell)
		assert.GreaterOrEqual(t, mutated.Quantity, 1)
		assert.LessOrEqual(t, mutated.Quantity, 2)
	}
}
