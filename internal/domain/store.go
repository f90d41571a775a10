package domain

import "context"

// Sequence is a durable monotonic counter used to mint trade identifiers.
// Next is atomic: no two calls, concurrent or across process restarts
// against the same store, observe the same value. A fresh store yields 1.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
	Close() error
}

// Generator produces a complete batch of trade records. Generation is
// all-or-nothing: on error no partial batch is returned.
type Generator interface {
	Generate(ctx context.Context, pairs int) ([]TradeRecord, error)
}

// SnapshotSource serves the currently published snapshot, refreshing it
// first when stale.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}
