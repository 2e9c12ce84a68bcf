package market

import (
	"fmt"
	"strings"
	"time"
)

// Granularity represents the time frame for candles, using OANDA labels.
type Granularity string

const (
	S5  Granularity = "S5"  // 5 seconds
	S10 Granularity = "S10" // 10 seconds
	S15 Granularity = "S15" // 15 seconds
	S30 Granularity = "S30" // 30 seconds
	M1  Granularity = "M1"  // 1 minute
	M2  Granularity = "M2"  // 2 minutes
	M4  Granularity = "M4"  // 4 minutes
	M5  Granularity = "M5"  // 5 minutes
	M10 Granularity = "M10" // 10 minutes
	M15 Granularity = "M15" // 15 minutes
	M30 Granularity = "M30" // 30 minutes
	H1  Granularity = "H1"  // 1 hour
	H2  Granularity = "H2"  // 2 hours
	H3  Granularity = "H3"  // 3 hours
	H4  Granularity = "H4"  // 4 hours
	H6  Granularity = "H6"  // 6 hours
	H8  Granularity = "H8"  // 8 hours
	H12 Granularity = "H12" // 12 hours
	D   Granularity = "D"   // 1 day
	W   Granularity = "W"   // 1 week
	M   Granularity = "M"   // 1 month
)

var durations = map[Granularity]time.Duration{
	S5:  5 * time.Second,
	S10: 10 * time.Second,
	S15: 15 * time.Second,
	S30: 30 * time.Second,
	M1:  time.Minute,
	M2:  2 * time.Minute,
	M4:  4 * time.Minute,
	M5:  5 * time.Minute,
	M10: 10 * time.Minute,
	M15: 15 * time.Minute,
	M30: 30 * time.Minute,
	H1:  time.Hour,
	H2:  2 * time.Hour,
	H3:  3 * time.Hour,
	H4:  4 * time.Hour,
	H6:  6 * time.Hour,
	H8:  8 * time.Hour,
	H12: 12 * time.Hour,
	D:   24 * time.Hour,
	W:   7 * 24 * time.Hour,
	M:   30 * 24 * time.Hour, // nominal
}

// DefaultTimeframes is the ladder the bot checks, longest first.
var DefaultTimeframes = []Granularity{D, H12, H4, H1, M30, M15, M1}

// Valid reports whether g is a known OANDA granularity.
func (g Granularity) Valid() bool {
	_, ok := durations[g]
	return ok
}

// Duration returns the nominal bucket size, or 0 for an unknown label.
func (g Granularity) Duration() time.Duration {
	return durations[g]
}

func (g Granularity) String() string {
	return string(g)
}

// ParseGranularity accepts an OANDA label, case-insensitively.
func ParseGranularity(s string) (Granularity, error) {
	raw := strings.TrimSpace(s)
	g := Granularity(strings.ToUpper(raw))
	if !g.Valid() {
		return "", fmt.Errorf("unknown granularity %q", s)
	}
	return g, nil
}

// ParseTimeframes parses a comma separated granularity list such as
// "D,H12,H4". Empty items are ignored.
func ParseTimeframes(s string) ([]Granularity, error) {
	var out []Granularity
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		g, err := ParseGranularity(part)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// PriceField selects which OHLC component feeds the band computation.
type PriceField string

const (
	OpenField  PriceField = "open"
	HighField  PriceField = "high"
	LowField   PriceField = "low"
	CloseField PriceField = "close"
)

// ParsePriceField accepts open, high, low or close.
func ParsePriceField(s string) (PriceField, error) {
	f := PriceField(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case OpenField, HighField, LowField, CloseField:
		return f, nil
	}
	return "", fmt.Errorf("unknown price field %q", s)
}
