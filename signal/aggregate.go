package signal

import (
	"fmt"
	"strings"
)

// Gate decides whether a single timeframe score agrees with a long or short
// entry.
type Gate string

const (
	// GateExtreme requires every timeframe to sit at the outermost band:
	// -3 for long, +3 for short.
	GateExtreme Gate = "extreme"

	// GateStrict compares with score < -3 and score > 3. Classify never
	// produces such scores, so this gate never trades. It keeps the
	// comparison of the first version of the bot for side-by-side runs.
	GateStrict Gate = "strict"
)

// ParseGate accepts "extreme" or "strict". Empty means GateExtreme.
func ParseGate(s string) (Gate, error) {
	switch g := Gate(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GateExtreme, nil
	case GateExtreme, GateStrict:
		return g, nil
	}
	return "", fmt.Errorf("unknown gate %q (want extreme|strict)", s)
}

// Long reports whether sc agrees with a long entry.
func (g Gate) Long(sc Score) bool {
	if g == GateStrict {
		return sc < MinScore
	}
	return sc <= MinScore
}

// Short reports whether sc agrees with a short entry.
func (g Gate) Short(sc Score) bool {
	if g == GateStrict {
		return sc > MaxScore
	}
	return sc >= MaxScore
}

// Aggregate buys when every reading agrees with a long entry and sells when
// every reading agrees with a short entry. Long is checked first. Anything
// else, including an empty signal, holds.
func Aggregate(s Signal, g Gate) Action {
	if len(s) == 0 {
		return Hold
	}
	if all(s, g.Long) {
		return Buy
	}
	if all(s, g.Short) {
		return Sell
	}
	return Hold
}

func all(s Signal, pred func(Score) bool) bool {
	for _, r := range s {
		if !pred(r.Score) {
			return false
		}
	}
	return true
}
