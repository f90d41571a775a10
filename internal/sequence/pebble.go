package sequence

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// pebbleKey is the single key holding the counter value.
var pebbleKey = []byte("seq/trade_id")

// PebbleSequence persists the counter in an embedded pebble database. Writes
// use pebble.Sync so an acknowledged increment survives a crash.
type PebbleSequence struct {
	db *pebble.DB

	mu    sync.Mutex
	value int64
}

// NewPebbleSequence opens (or creates) the pebble database at dir and loads
// the last committed counter value.
func NewPebbleSequence(dir string) (*PebbleSequence, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("sequence: open pebble %s: %w: %v", dir, domain.ErrStoreUnavailable, err)
	}

	s := &PebbleSequence{db: db}

	val, closer, err := db.Get(pebbleKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sequence: read counter: %w: %v", domain.ErrStoreUnavailable, err)
	}
	defer closer.Close()

	if len(val) != 8 {
		_ = db.Close()
		return nil, fmt.Errorf("sequence: corrupt counter value (%d bytes): %w", len(val), domain.ErrStoreUnavailable)
	}
	s.value = int64(binary.BigEndian.Uint64(val))
	return s, nil
}

// Next increments the counter with a synchronous write and returns the new
// value. The in-memory value only advances after the write is acknowledged.
func (s *PebbleSequence) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.value + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(next))

	if err := s.db.Set(pebbleKey, buf, pebble.Sync); err != nil {
		return 0, fmt.Errorf("sequence: commit value %d: %w: %v", next, domain.ErrStoreUnavailable, err)
	}
	s.value = next
	return next, nil
}

// Close closes the underlying database.
func (s *PebbleSequence) Close() error {
	return s.db.Close()
}

// Compile-time interface check.
var _ domain.Sequence = (*PebbleSequence)(nil)
