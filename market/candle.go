package market

import (
	"fmt"
	"time"
)

// Candle represents one OHLC (Open, High, Low, Close) mid price observation
// for an instrument at a granularity.
type Candle struct {
	Instrument  string
	Granularity Granularity
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Time        time.Time
	Volume      float64
	Complete    bool
}

// Field returns the price selected by f.
func (c Candle) Field(f PriceField) float64 {
	switch f {
	case OpenField:
		return c.Open
	case HighField:
		return c.High
	case LowField:
		return c.Low
	default:
		return c.Close
	}
}

// CandleSeries is an ordered (oldest first) run of candles for a single
// instrument and granularity. The last candle is the most recent one.
type CandleSeries struct {
	Instrument  string
	Granularity Granularity
	Candles     []Candle
}

// Len returns the number of candles in the series.
func (s CandleSeries) Len() int {
	return len(s.Candles)
}

// Last returns the most recent candle. ok is false for an empty series.
func (s CandleSeries) Last() (c Candle, ok bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Prices extracts the selected price field of every candle, oldest first.
func (s CandleSeries) Prices(f PriceField) []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Field(f)
	}
	return out
}

// About mirrors the short description the run log prints for a series.
func (s CandleSeries) About() string {
	return fmt.Sprintf("size: %d %s %s", s.Len(), s.Granularity, s.Instrument)
}

// NewSeries builds a series from closing prices. Open, high and low are set
// to the close. It is mostly useful for tests and examples.
func NewSeries(instrument string, g Granularity, closes ...float64) CandleSeries {
	s := CandleSeries{
		Instrument:  instrument,
		Granularity: g,
		Candles:     make([]Candle, 0, len(closes)),
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	step := g.Duration()
	for i, c := range closes {
		s.Candles = append(s.Candles, Candle{
			Instrument:  instrument,
			Granularity: g,
			Open:        c,
			High:        c,
			Low:         c,
			Close:       c,
			Time:        start.Add(time.Duration(i) * step),
			Complete:    true,
		})
	}
	return s
}
