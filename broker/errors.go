package broker

import (
	"fmt"

	"github.com/rustyeddy/bandtrader/market"
)

// FetchError reports that candle or account data could not be obtained.
// A run that hits one stops without producing a signal.
type FetchError struct {
	Op          string // candles, accounts, pendingOrders
	Instrument  string
	Granularity market.Granularity
	Err         error
}

func (e *FetchError) Error() string {
	switch {
	case e.Granularity != "":
		return fmt.Sprintf("fetch %s %s %s: %v", e.Op, e.Instrument, e.Granularity, e.Err)
	case e.Instrument != "":
		return fmt.Sprintf("fetch %s %s: %v", e.Op, e.Instrument, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// OrderError reports a failed order submission. The decision that led to it
// stands; nothing local needs rolling back.
type OrderError struct {
	Instrument string
	Side       Side
	Err        error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order %s %s: %v", e.Side, e.Instrument, e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }
