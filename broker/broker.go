package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/bandtrader/market"
)

// Broker is everything the signal engine needs from a brokerage.
type Broker interface {
	Candles(ctx context.Context, req CandlesRequest) (market.CandleSeries, error)
	PendingOrders(ctx context.Context) ([]Order, error)
	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)
}

// Side is the direction of a market order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// CandlesRequest asks for at most Count of the most recent candles ending at
// or before To.
type CandlesRequest struct {
	Instrument        string
	Granularity       market.Granularity
	Count             int
	To                time.Time // zero means now
	AlignmentTimezone string    // e.g. Asia/Tokyo, used for daily alignment
	IncludeIncomplete bool      // keep the still-forming last candle
}

// Key identifies the request for memoization within a run.
func (r CandlesRequest) Key() string {
	parts := []string{
		"instrument=" + r.Instrument,
		"granularity=" + string(r.Granularity),
		fmt.Sprintf("count=%d", r.Count),
	}
	if !r.To.IsZero() {
		parts = append(parts, "to="+r.To.UTC().Format(time.RFC3339Nano))
	}
	if r.AlignmentTimezone != "" {
		parts = append(parts, "tz="+r.AlignmentTimezone)
	}
	if r.IncludeIncomplete {
		parts = append(parts, "incomplete=true")
	}
	return strings.Join(parts, "&")
}

// Order is an open (pending) order on the account.
type Order struct {
	ID         string
	Type       string
	Instrument string
	Units      float64
	CreateTime time.Time
}

// MarketOrderRequest is a market order with a trailing stop attached on
// fill. Units are always positive; Side carries the direction.
type MarketOrderRequest struct {
	Instrument           string
	Side                 Side
	Units                float64
	TrailingStopDistance float64 // price distance, 0 for none
	ClientID             string
}

// SignedUnits returns Units negated for a sell.
func (r MarketOrderRequest) SignedUnits() float64 {
	if r.Side == Sell {
		return -r.Units
	}
	return r.Units
}

// OrderFill is what came back from the order submission.
type OrderFill struct {
	OrderID    string
	TradeID    string
	Instrument string
	Units      float64
	Price      float64
	Time       time.Time
}
