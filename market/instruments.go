// market/instruments.go
package market

import (
	"fmt"
	"math"
)

type InstrumentMeta struct {
	Name                string
	BaseCurrency        string
	QuoteCurrency       string
	PipLocation         int
	TradeUnitsPrecision int
	MinimumTradeSize    float64
	DisplayPrecision    int
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:                "EUR_USD",
		BaseCurrency:        "EUR",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		DisplayPrecision:    5,
	},
	"GBP_USD": {
		Name:                "GBP_USD",
		BaseCurrency:        "GBP",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		DisplayPrecision:    5,
	},
	"USD_JPY": {
		Name:                "USD_JPY",
		BaseCurrency:        "USD",
		QuoteCurrency:       "JPY",
		PipLocation:         -2,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		DisplayPrecision:    3,
	},
	"EUR_JPY": {
		Name:                "EUR_JPY",
		BaseCurrency:        "EUR",
		QuoteCurrency:       "JPY",
		PipLocation:         -2,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		DisplayPrecision:    3,
	},
}

// LookupInstrument returns the metadata for name.
func LookupInstrument(name string) (InstrumentMeta, error) {
	meta, ok := Instruments[name]
	if !ok {
		return InstrumentMeta{}, fmt.Errorf("unknown instrument: %s", name)
	}
	return meta, nil
}

// PipSize is the price size of a single pip (0.01 for USD_JPY).
func (m InstrumentMeta) PipSize() float64 {
	return math.Pow10(m.PipLocation)
}

// PipsToDistance converts a pip count into a price distance.
func (m InstrumentMeta) PipsToDistance(pips float64) float64 {
	return pips * m.PipSize()
}

// FormatPrice renders p with the instrument's display precision, the
// form OANDA expects for price and distance fields.
func (m InstrumentMeta) FormatPrice(p float64) string {
	return fmt.Sprintf("%.*f", m.DisplayPrecision, p)
}
