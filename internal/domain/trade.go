// Package domain defines the core types shared across the trade feed
// service: trade records, snapshots, and the interfaces implemented by the
// storage and generation layers.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade leg.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Opposite returns the other side of a pair.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Date is a calendar date serialized as "2006-01-02". It wraps time.Time so
// day arithmetic stays trivial while the wire format carries no time-of-day
// component.
type Date struct {
	time.Time
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// AddDays returns the date shifted by the given number of calendar days.
func (d Date) AddDays(days int) Date {
	return Date{d.Time.AddDate(0, 0, days)}
}

const dateLayout = "2006-01-02"

// MarshalJSON encodes the date as a quoted "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON decodes a quoted "2006-01-02" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// TradeRecord is a single leg of a buy/sell pair as served to consumers.
// Prices use decimal.Decimal so two-fraction-digit values survive arithmetic
// and serialization without float drift.
type TradeRecord struct {
	TradeID        string          `json:"trade_id"`
	Ticker         string          `json:"ticker"`
	BrokerID       string          `json:"broker_id"`
	ContraBrokerID string          `json:"contra_broker_id"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Side           Side            `json:"side"`
	TradeDate      Date            `json:"trade_date"`
	TradeTimestamp time.Time       `json:"trade_timestamp"`
}
