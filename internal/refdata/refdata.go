// Package refdata loads the (ticker, price) reference table that seeds
// generated trades. The table is read once at startup from a CSV file and is
// immutable for the process lifetime.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// Entry is one reference row: a ticker and its indicative price.
type Entry struct {
	Ticker string
	Price  decimal.Decimal
}

// ReferenceSet is an immutable collection of reference entries.
type ReferenceSet struct {
	entries []Entry
}

// Load reads a CSV file with a "ticker,price" header row and returns the
// parsed reference set. A missing file, unreadable row, or malformed price
// is reported as domain.ErrDataUnavailable.
func Load(path string) (*ReferenceSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w: %v", path, domain.ErrDataUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("refdata: read header of %s: %w: %v", path, domain.ErrDataUnavailable, err)
	}
	if len(header) != 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "ticker") {
		return nil, fmt.Errorf("refdata: %s: unexpected header %v: %w", path, header, domain.ErrDataUnavailable)
	}

	var entries []Entry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("refdata: read row of %s: %w: %v", path, domain.ErrDataUnavailable, err)
		}

		ticker := strings.TrimSpace(row[0])
		if ticker == "" {
			return nil, fmt.Errorf("refdata: %s: empty ticker: %w", path, domain.ErrDataUnavailable)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("refdata: %s: bad price %q for %s: %w", path, row[1], ticker, domain.ErrDataUnavailable)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("refdata: %s: negative price %s for %s: %w", path, price, ticker, domain.ErrDataUnavailable)
		}

		entries = append(entries, Entry{Ticker: ticker, Price: price.Round(2)})
	}

	return &ReferenceSet{entries: entries}, nil
}

// Len reports the number of loaded entries.
func (s *ReferenceSet) Len() int {
	return len(s.entries)
}

// SampleOne draws one entry uniformly at random with replacement. It returns
// domain.ErrEmptyDataset when the set holds no entries.
func (s *ReferenceSet) SampleOne(rng *rand.Rand) (Entry, error) {
	if len(s.entries) == 0 {
		return Entry{}, fmt.Errorf("refdata: sample: %w", domain.ErrEmptyDataset)
	}
	return s.entries[rng.Intn(len(s.entries))], nil
}
