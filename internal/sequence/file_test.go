package sequence

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

func TestFormatTradeID(t *testing.T) {
	assert.Equal(t, "tid00000001", FormatTradeID(1))
	assert.Equal(t, "tid00000042", FormatTradeID(42))
	assert.Equal(t, "tid99999999", FormatTradeID(99999999))
}

func TestFileSequenceFreshStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.json")
	seq, err := NewFileSequence(path)
	require.NoError(t, err)
	defer seq.Close()

	n, err := seq.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "tid00000001", FormatTradeID(n))
}

func TestFileSequenceResumesAfterRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.json")
	ctx := context.Background()

	seq, err := NewFileSequence(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := seq.Next(ctx)
		require.NoError(t, err)
	}
	require.NoError(t, seq.Close())

	// Simulated restart against the same store.
	seq, err = NewFileSequence(path)
	require.NoError(t, err)
	defer seq.Close()

	n, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, "tid00000006", FormatTradeID(n))
}

func TestFileSequenceConcurrentMints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.json")
	seq, err := NewFileSequence(path)
	require.NoError(t, err)
	defer seq.Close()

	const workers = 20
	const mintsPerWorker = 10

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < mintsPerWorker; j++ {
				n, err := seq.Next(context.Background())
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[n], "value %d minted twice", n)
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*mintsPerWorker)
}

func TestFileSequenceCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileSequence(path)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
