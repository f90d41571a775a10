package generator

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayasurya0007/trades-backend/internal/clock"
	"github.com/jayasurya0007/trades-backend/internal/domain"
	"github.com/jayasurya0007/trades-backend/internal/refdata"
)

// memSequence is an in-memory domain.Sequence for generator tests.
type memSequence struct {
	mu   sync.Mutex
	n    int64
	fail error
}

func (s *memSequence) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return 0, s.fail
	}
	s.n++
	return s.n, nil
}

func (s *memSequence) Close() error { return nil }

// loadRefSet parses CSV content into a reference set via a temp file.
func loadRefSet(t *testing.T, content string) *refdata.ReferenceSet {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	set, err := refdata.Load(path)
	require.NoError(t, err)
	return set
}

func newTestGenerator(t *testing.T, refs *refdata.ReferenceSet, seq domain.Sequence, rate float64, seed int64) *PairGenerator {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	return New(Config{
		BrokerPool:   15,
		MaxQuantity:  500,
		MismatchRate: rate,
	}, refs, seq, clk, rand.New(rand.NewSource(seed)))
}

func TestGenerateSingleMatchedPair(t *testing.T) {
	refs := loadRefSet(t, "ticker,price\nABC,100.00\n")
	gen := newTestGenerator(t, refs, &memSequence{}, 0, 1)

	records, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 2)

	a, b := records[0], records[1]
	assert.Equal(t, a.TradeID, b.TradeID)
	assert.Equal(t, "tid00000001", a.TradeID)
	assert.Equal(t, a.Side.Opposite(), b.Side)
	assert.Equal(t, "ABC", a.Ticker)
	assert.Equal(t, a.Quantity, b.Quantity)
	assert.True(t, a.Price.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, a.Price.Equal(b.Price))
	assert.True(t, a.TradeDate.Time.Equal(b.TradeDate.Time))
	assert.True(t, a.TradeTimestamp.Equal(b.TradeTimestamp))
	assert.Equal(t, a.BrokerID, b.ContraBrokerID)
	assert.Equal(t, a.ContraBrokerID, b.BrokerID)
	assert.NotEqual(t, a.BrokerID, a.ContraBrokerID)
}

func TestGeneratePairInvariants(t *testing.T) {
	refs := loadRefSet(t, "ticker,price\nABC,100.00\nXYZ,55.25\nQRS,310.40\n")
	gen := newTestGenerator(t, refs, &memSequence{}, 0.3, 2)

	const pairs = 200
	records, err := gen.Generate(context.Background(), pairs)
	require.NoError(t, err)
	require.Len(t, records, 2*pairs)

	byID := map[string][]domain.TradeRecord{}
	for _, rec := range records {
		byID[rec.TradeID] = append(byID[rec.TradeID], rec)
	}
	require.Len(t, byID, pairs, "every pair must carry a unique trade id")

	for id, legs := range byID {
		require.Len(t, legs, 2, "trade %s must have exactly two legs", id)
		a, b := legs[0], legs[1]
		assert.Equal(t, a.Side.Opposite(), b.Side, "trade %s", id)
		assert.Equal(t, a.Ticker, b.Ticker, "trade %s", id)
		// Mismatches never touch broker roles; they stay mirrored.
		assert.Equal(t, a.BrokerID, b.ContraBrokerID, "trade %s", id)
		assert.Equal(t, a.ContraBrokerID, b.BrokerID, "trade %s", id)
		assert.NotEqual(t, a.BrokerID, a.ContraBrokerID, "trade %s", id)
		assert.GreaterOrEqual(t, a.Quantity, 1)
		assert.GreaterOrEqual(t, b.Quantity, 1)
	}
}

func TestGenerateMismatchFraction(t *testing.T) {
	refs := loadRefSet(t, "ticker,price\nABC,100.00\nXYZ,250.50\n")
	gen := newTestGenerator(t, refs, &memSequence{}, 0.3, 3)

	const pairs = 10000
	records, err := gen.Generate(context.Background(), pairs)
	require.NoError(t, err)

	byID := map[string][]domain.TradeRecord{}
	for _, rec := range records {
		byID[rec.TradeID] = append(byID[rec.TradeID], rec)
	}

	mismatched := 0
	for _, legs := range byID {
		require.Len(t, legs, 2)
		if len(diffAxes(legs[0], legs[1])) > 0 {
			mismatched++
		}
	}

	assert.InDelta(t, 0.3, float64(mismatched)/pairs, 0.03)
}

func TestGenerateShufflesLegs(t *testing.T) {
	refs := loadRefSet(t, "ticker,price\nABC,100.00\n")
	gen := newTestGenerator(t, refs, &memSequence{}, 0, 4)

	const pairs = 50
	records, err := gen.Generate(context.Background(), pairs)
	require.NoError(t, err)

	adjacent := 0
	for i := 0; i < len(records); i += 2 {
		if records[i].TradeID == records[i+1].TradeID {
			adjacent++
		}
	}
	// A uniform shuffle of 100 legs leaving every pair adjacent is
	// practically impossible.
	assert.Less(t, adjacent, pairs)
}

func TestGenerateEmptyReferenceSet(t *testing.T) {
	refs := loadRefSet(t, "ticker,price\n")
	gen := newTestGenerator(t, refs, &memSequence{}, 0, 5)

	records, err := gen.Generate(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Nil(t, records)
}

func TestGenerateSequenceFailure(t *testing.T) {
	refs := loadRefSet(t, "ticker,price\nABC,100.00\n")
	seq := &memSequence{fail: errors.New("disk full")}
	gen := newTestGenerator(t, refs, seq, 0, 6)

	records, err := gen.Generate(context.Background(), 3)
	require.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Nil(t, records, "no partial batch on failure")
}

func TestGenerateRejectsNonPositivePairs(t *testing.T) {
	refs := loadRefSet(t, "ticker,price\nABC,100.00\n")
	gen := newTestGenerator(t, refs, &memSequence{}, 0, 7)

	_, err := gen.Generate(context.Background(), 0)
	require.ErrorIs(t, err, domain.ErrGenerationFailed)
}
