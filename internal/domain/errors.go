package domain

import "errors"

var (
	// ErrDataUnavailable indicates the reference data source is missing or
	// malformed.
	ErrDataUnavailable = errors.New("reference data unavailable")

	// ErrEmptyDataset indicates a sample was requested from a reference set
	// with no entries.
	ErrEmptyDataset = errors.New("reference dataset is empty")

	// ErrStoreUnavailable indicates the durable sequence store cannot be
	// opened or written.
	ErrStoreUnavailable = errors.New("sequence store unavailable")

	// ErrGenerationFailed wraps any failure during a batch generation
	// attempt.
	ErrGenerationFailed = errors.New("batch generation failed")

	// ErrNoSnapshot indicates no snapshot has ever been published.
	ErrNoSnapshot = errors.New("no snapshot available")
)
