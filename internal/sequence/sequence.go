// Package sequence provides durable monotonic counters used to mint trade
// identifiers. Four interchangeable backends implement domain.Sequence: a
// JSON state file, an embedded pebble database, a PostgreSQL row, and a
// Redis key. All of them mint 1 on the first call against a fresh store and
// resume from the last committed value after a restart.
package sequence

import "fmt"

const (
	// tradeIDPrefix and tradeIDWidth define the public trade identifier
	// format, e.g. 42 -> "tid00000042".
	tradeIDPrefix = "tid"
	tradeIDWidth  = 8
)

// FormatTradeID renders a minted counter value as a fixed-width, zero-padded
// trade identifier.
func FormatTradeID(n int64) string {
	return fmt.Sprintf("%s%0*d", tradeIDPrefix, tradeIDWidth, n)
}
