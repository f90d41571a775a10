package domain

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is one published generation of the trade batch. A snapshot is
// immutable after publication: the cache hands the same pointer to every
// reader and replaces it wholesale on refresh.
type Snapshot struct {
	ID          uuid.UUID     `json:"id"`
	Records     []TradeRecord `json:"records"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NewSnapshot stamps a batch with a fresh identity and generation time.
func NewSnapshot(records []TradeRecord, generatedAt time.Time) *Snapshot {
	return &Snapshot{
		ID:          uuid.New(),
		Records:     records,
		GeneratedAt: generatedAt.UTC(),
	}
}
