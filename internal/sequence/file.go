package sequence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// fileState is the on-disk representation of the counter.
type fileState struct {
	Value int64 `json:"value"`
}

// FileSequence persists the counter in a JSON file. Every increment is
// committed with a write-to-temp-then-rename so a crash mid-write leaves
// either the old or the new value on disk, never a torn file.
type FileSequence struct {
	path string

	mu    sync.Mutex
	value int64
}

// NewFileSequence opens (or creates) the state file at path. The parent
// directory is created if needed. A missing file starts the counter at 0,
// so the first mint yields 1.
func NewFileSequence(path string) (*FileSequence, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sequence: create state dir: %w: %v", domain.ErrStoreUnavailable, err)
	}

	s := &FileSequence{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sequence: read state file %s: %w: %v", path, domain.ErrStoreUnavailable, err)
	}

	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("sequence: corrupt state file %s: %w: %v", path, domain.ErrStoreUnavailable, err)
	}
	s.value = st.Value
	return s, nil
}

// Next increments the counter and commits the new value before returning it.
// If the commit fails, the in-memory value is rolled back so a retry cannot
// skip or reuse identifiers.
func (s *FileSequence) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.value + 1
	if err := s.commit(next); err != nil {
		return 0, fmt.Errorf("sequence: commit value %d: %w: %v", next, domain.ErrStoreUnavailable, err)
	}
	s.value = next
	return next, nil
}

// commit durably writes value to the state file.
func (s *FileSequence) commit(value int64) error {
	data, err := json.Marshal(fileState{Value: value})
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Close is a no-op; the state file is committed on every mint.
func (s *FileSequence) Close() error { return nil }

// Compile-time interface check.
var _ domain.Sequence = (*FileSequence)(nil)
