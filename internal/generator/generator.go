package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jayasurya0007/trades-backend/internal/clock"
	"github.com/jayasurya0007/trades-backend/internal/domain"
	"github.com/jayasurya0007/trades-backend/internal/refdata"
	"github.com/jayasurya0007/trades-backend/internal/sequence"
)

// Config holds the tunables for a PairGenerator.
type Config struct {
	// BrokerPool is the number of distinct broker identifiers (BKR001..).
	BrokerPool int
	// MaxQuantity bounds the uniform quantity draw [1, MaxQuantity].
	MaxQuantity int
	// MismatchRate is the per-pair probability of injecting a mismatch.
	MismatchRate float64
}

// PairGenerator builds batches of mirrored buy/sell pairs from the reference
// set, minting one durable trade identifier per pair. It is not safe for
// concurrent use; the refreshing cache serializes generation.
type PairGenerator struct {
	refs   *refdata.ReferenceSet
	seq    domain.Sequence
	policy *MismatchPolicy
	clk    clock.Clock
	rng    *rand.Rand

	brokerPool  int
	maxQuantity int
}

// New creates a PairGenerator. The rng drives every random draw (sampling,
// quantities, brokers, mismatch policy, shuffle) so tests can seed it
// deterministically.
func New(cfg Config, refs *refdata.ReferenceSet, seq domain.Sequence, clk clock.Clock, rng *rand.Rand) *PairGenerator {
	return &PairGenerator{
		refs:        refs,
		seq:         seq,
		policy:      NewMismatchPolicy(cfg.MismatchRate, rng),
		clk:         clk,
		rng:         rng,
		brokerPool:  cfg.BrokerPool,
		maxQuantity: cfg.MaxQuantity,
	}
}

// Generate produces pairs matched buy/sell pairs (2*pairs records) and
// returns them uniformly shuffled, so paired legs are not positionally
// adjacent. Generation is all-or-nothing: any sampling or minting failure
// aborts the batch.
func (g *PairGenerator) Generate(ctx context.Context, pairs int) ([]domain.TradeRecord, error) {
	if pairs <= 0 {
		return nil, fmt.Errorf("generator: pairs must be positive, got %d: %w", pairs, domain.ErrGenerationFailed)
	}

	records := make([]domain.TradeRecord, 0, 2*pairs)
	for i := 0; i < pairs; i++ {
		entry, err := g.refs.SampleOne(g.rng)
		if err != nil {
			return nil, fmt.Errorf("generator: %w: %v", domain.ErrGenerationFailed, err)
		}

		n, err := g.seq.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("generator: mint trade id: %w: %v", domain.ErrGenerationFailed, err)
		}

		buy, sell := g.buildPair(sequence.FormatTradeID(n), entry)
		if g.policy.Decide() {
			sell = g.policy.Apply(buy, sell)
		}
		records = append(records, buy, sell)
	}

	g.rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
	return records, nil
}

// buildPair constructs a matched pair: identical fields, mirrored broker
// roles, opposite sides, both legs stamped with the same instant.
func (g *PairGenerator) buildPair(tradeID string, entry refdata.Entry) (buy, sell domain.TradeRecord) {
	broker := g.brokerID()
	contra := g.brokerID()
	for contra == broker {
		contra = g.brokerID()
	}

	now := g.clk.Now().UTC().Truncate(time.Second)

	buy = domain.TradeRecord{
		TradeID:        tradeID,
		Ticker:         entry.Ticker,
		BrokerID:       broker,
		ContraBrokerID: contra,
		Quantity:       1 + g.rng.Intn(g.maxQuantity),
		Price:          entry.Price,
		Side:           domain.Buy,
		TradeDate:      domain.DateOf(now),
		TradeTimestamp: now,
	}

	sell = buy
	sell.Side = domain.Sell
	sell.BrokerID = contra
	sell.ContraBrokerID = broker
	return buy, sell
}

// brokerID draws one identifier from the fixed-size pool, e.g. "BKR007".
func (g *PairGenerator) brokerID() string {
	return fmt.Sprintf("BKR%03d", 1+g.rng.Intn(g.brokerPool))
}

// Compile-time interface check.
var _ domain.Generator = (*PairGenerator)(nil)
