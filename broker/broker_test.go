package broker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rustyeddy/bandtrader/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandlesRequestKey(t *testing.T) {
	t.Parallel()

	to := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  CandlesRequest
		want string
	}{
		{
			name: "minimal",
			req:  CandlesRequest{Instrument: "USD_JPY", Granularity: market.H1, Count: 30},
			want: "instrument=USD_JPY&granularity=H1&count=30",
		},
		{
			name: "full",
			req: CandlesRequest{
				Instrument:        "USD_JPY",
				Granularity:       market.D,
				Count:             30,
				To:                to,
				AlignmentTimezone: "Asia/Tokyo",
				IncludeIncomplete: true,
			},
			want: "instrument=USD_JPY&granularity=D&count=30&to=2024-05-01T12:00:00Z&tz=Asia/Tokyo&incomplete=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Key())
		})
	}

	a := CandlesRequest{Instrument: "USD_JPY", Granularity: market.H1, Count: 30}
	b := a
	b.Granularity = market.H4
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestSignedUnits(t *testing.T) {
	t.Parallel()

	req := MarketOrderRequest{Instrument: "USD_JPY", Side: Buy, Units: 10000}
	assert.Equal(t, 10000.0, req.SignedUnits())

	req.Side = Sell
	assert.Equal(t, -10000.0, req.SignedUnits())
}

func TestErrorsUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	var fe error = &FetchError{Op: "candles", Instrument: "USD_JPY", Granularity: market.M1, Err: cause}
	assert.ErrorIs(t, fe, cause)
	assert.Equal(t, "fetch candles USD_JPY M1: connection refused", fe.Error())
	assert.Equal(t, "fetch accounts: connection refused", (&FetchError{Op: "accounts", Err: cause}).Error())

	wrapped := fmt.Errorf("run: %w", fe)
	var target *FetchError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "candles", target.Op)

	var oe error = &OrderError{Instrument: "USD_JPY", Side: Sell, Err: cause}
	assert.ErrorIs(t, oe, cause)
	assert.Equal(t, "order sell USD_JPY: connection refused", oe.Error())
}
