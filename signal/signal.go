// Package signal turns band sets into directional scores and aggregates the
// scores of several timeframes into a trading action.
package signal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/bandtrader/indicators"
	"github.com/rustyeddy/bandtrader/market"
)

// Score is a directional score in [-3, 3]. Negative scores mean the latest
// price sits below the average, by as many deviation bands as the magnitude.
type Score int

const (
	MinScore Score = -3
	MaxScore Score = 3
)

// Classify places the latest price of b on the band ladder. The checks run
// in a fixed order and the first match wins: the lower bands, most extreme
// first, then the upper bands, most extreme first. A price that is both
// below Minus1 and above Plus1 (only possible with malformed bands) is
// therefore scored negative.
func Classify(b indicators.BandSet) Score {
	x := b.Latest
	switch {
	case x < b.Minus3:
		return -3
	case x < b.Minus2:
		return -2
	case x < b.Minus1:
		return -1
	case x > b.Plus3:
		return 3
	case x > b.Plus2:
		return 2
	case x > b.Plus1:
		return 1
	default:
		return 0
	}
}

// Reading is the score for one timeframe along with the bands it came from.
type Reading struct {
	Granularity market.Granularity
	Score       Score
	Bands       indicators.BandSet
}

// Signal holds one reading per timeframe, in the order they were requested.
type Signal []Reading

// Scores returns the signal as a granularity to score mapping.
func (s Signal) Scores() map[market.Granularity]Score {
	out := make(map[market.Granularity]Score, len(s))
	for _, r := range s {
		out[r.Granularity] = r.Score
	}
	return out
}

// String renders "D: -3, H12: 0, ..." in timeframe order.
func (s Signal) String() string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("%s: %d", r.Granularity, r.Score))
	}
	return strings.Join(parts, ", ")
}

// Action is the outcome of aggregating a signal.
type Action string

const (
	Hold Action = "hold"
	Buy  Action = "buy"
	Sell Action = "sell"
)
