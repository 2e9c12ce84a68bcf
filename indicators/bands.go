package indicators

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/bandtrader/market"
)

// ErrInsufficientData is returned when a band is requested over an empty
// series.
var ErrInsufficientData = errors.New("insufficient data: empty candle series")

// DeviationMethod selects which average the dispersion term is measured
// against.
type DeviationMethod string

const (
	// FinalMean measures every |x - avg| against the completed average.
	FinalMean DeviationMethod = "final"

	// RunningMean accumulates the average and the deviation in a single
	// pass, so each |x - avg| is taken against the partial sum of x/n seen
	// so far. A flat series still gets a non-zero deviation.
	RunningMean DeviationMethod = "running"
)

// ParseDeviationMethod accepts "final" or "running". Empty means FinalMean.
func ParseDeviationMethod(s string) (DeviationMethod, error) {
	switch m := DeviationMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return FinalMean, nil
	case FinalMean, RunningMean:
		return m, nil
	}
	return "", fmt.Errorf("unknown deviation method %q (want final|running)", s)
}

// BandSet holds the average, the mean absolute deviation and the six band
// thresholds at one, two and three deviations around the average.
type BandSet struct {
	About     string
	Latest    float64 // most recent price of the series
	Avg       float64
	Deviation float64

	Plus1  float64
	Plus2  float64
	Plus3  float64
	Minus1 float64
	Minus2 float64
	Minus3 float64
}

// NewBandSet derives the thresholds from avg and deviation.
func NewBandSet(latest, avg, deviation float64) BandSet {
	return BandSet{
		Latest:    latest,
		Avg:       avg,
		Deviation: deviation,
		Plus1:     avg + deviation*1,
		Plus2:     avg + deviation*2,
		Plus3:     avg + deviation*3,
		Minus1:    avg - deviation*1,
		Minus2:    avg - deviation*2,
		Minus3:    avg - deviation*3,
	}
}

// Bands computes the band set over the selected price field of series.
// The latest price is the field value of the last candle.
func Bands(series market.CandleSeries, field market.PriceField, method DeviationMethod) (BandSet, error) {
	bs, err := BandsFromPrices(series.Prices(field), method)
	if err != nil {
		return BandSet{}, fmt.Errorf("%s %s: %w", series.Instrument, series.Granularity, err)
	}
	bs.About = series.About()
	return bs, nil
}

// BandsFromPrices computes the band set over prices, oldest first.
// Both sums divide every term by the actual number of prices, not by any
// requested window size.
func BandsFromPrices(prices []float64, method DeviationMethod) (BandSet, error) {
	n := float64(len(prices))
	if len(prices) == 0 {
		return BandSet{}, ErrInsufficientData
	}

	var avg, dev float64
	switch method {
	case RunningMean:
		for _, p := range prices {
			avg += p / n
			dev += math.Abs(p-avg) / n
		}
	case FinalMean, "":
		for _, p := range prices {
			avg += p / n
		}
		for _, p := range prices {
			dev += math.Abs(p-avg) / n
		}
	default:
		return BandSet{}, fmt.Errorf("unknown deviation method %q", method)
	}

	return NewBandSet(prices[len(prices)-1], avg, dev), nil
}
