package oanda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/bandtrader/broker"
	"github.com/rustyeddy/bandtrader/market"
)

// MaxCount is the largest candle count a single request may ask for.
const MaxCount = 5000

// PriceComponent represents the price component for candles
type PriceComponent string

const (
	MidPrice PriceComponent = "M" // Midpoint candles
	BidPrice PriceComponent = "B" // Bid candles
	AskPrice PriceComponent = "A" // Ask candles
)

// CandlesRequest represents parameters for fetching historical candles
type CandlesRequest struct {
	Instrument        string             // Required: e.g. "USD_JPY"
	Price             PriceComponent     // default: MidPrice
	Granularity       market.Granularity // default: S5
	Count             int                // Number of candles (max 5000)
	From              *time.Time         // ignored when Count is set
	To                *time.Time         // may be combined with Count
	AlignmentTimezone string             // e.g. "Asia/Tokyo"
	Smooth            bool               // Use previous candle's close as open
	IncludeIncomplete bool               // keep the still-forming candle
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool       `json:"complete"`
	Volume   int        `json:"volume"`
	Time     string     `json:"time"`
	Mid      candleData `json:"mid,omitempty"`
	Bid      candleData `json:"bid,omitempty"`
	Ask      candleData `json:"ask,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// GetCandles fetches historical candles, oldest first.
func (c *Client) GetCandles(ctx context.Context, req CandlesRequest) ([]market.Candle, error) {
	if req.Instrument == "" {
		return nil, fmt.Errorf("instrument is required")
	}

	params := url.Values{}

	if req.Price == "" {
		req.Price = MidPrice
	}
	params.Set("price", string(req.Price))

	if req.Granularity == "" {
		req.Granularity = market.S5
	}
	params.Set("granularity", string(req.Granularity))

	if req.Count > 0 {
		if req.Count > MaxCount {
			return nil, fmt.Errorf("count cannot exceed %d", MaxCount)
		}
		params.Set("count", strconv.Itoa(req.Count))
	} else if req.From != nil {
		params.Set("from", req.From.UTC().Format(time.RFC3339))
	}
	if req.To != nil {
		params.Set("to", req.To.UTC().Format(time.RFC3339))
	}

	if req.AlignmentTimezone != "" {
		params.Set("alignmentTimezone", req.AlignmentTimezone)
	}
	if req.Smooth {
		params.Set("smooth", "true")
	}

	var apiResp candlesResponse
	path := fmt.Sprintf("/v3/instruments/%s/candles", url.PathEscape(req.Instrument))
	if err := c.do(ctx, http.MethodGet, path, params, nil, &apiResp); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(apiResp.Candles))
	for _, ac := range apiResp.Candles {
		if !ac.Complete && !req.IncludeIncomplete {
			continue
		}

		t, err := time.Parse(time.RFC3339, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("parse time %s: %w", ac.Time, err)
		}

		var priceData candleData
		switch req.Price {
		case BidPrice:
			priceData = ac.Bid
		case AskPrice:
			priceData = ac.Ask
		default:
			priceData = ac.Mid
		}

		open, err := parseFloat(priceData.O)
		if err != nil {
			return nil, fmt.Errorf("parse open price: %w", err)
		}
		high, err := parseFloat(priceData.H)
		if err != nil {
			return nil, fmt.Errorf("parse high price: %w", err)
		}
		low, err := parseFloat(priceData.L)
		if err != nil {
			return nil, fmt.Errorf("parse low price: %w", err)
		}
		close, err := parseFloat(priceData.C)
		if err != nil {
			return nil, fmt.Errorf("parse close price: %w", err)
		}

		candles = append(candles, market.Candle{
			Instrument:  req.Instrument,
			Granularity: req.Granularity,
			Open:        open,
			High:        high,
			Low:         low,
			Close:       close,
			Time:        t,
			Volume:      float64(ac.Volume),
			Complete:    ac.Complete,
		})
	}

	return candles, nil
}

// Candles implements broker.Broker with midpoint candles.
func (c *Client) Candles(ctx context.Context, req broker.CandlesRequest) (market.CandleSeries, error) {
	cr := CandlesRequest{
		Instrument:        req.Instrument,
		Price:             MidPrice,
		Granularity:       req.Granularity,
		Count:             req.Count,
		AlignmentTimezone: req.AlignmentTimezone,
		IncludeIncomplete: req.IncludeIncomplete,
	}
	if !req.To.IsZero() {
		to := req.To
		cr.To = &to
	}

	candles, err := c.GetCandles(ctx, cr)
	if err != nil {
		return market.CandleSeries{}, &broker.FetchError{
			Op:          "candles",
			Instrument:  req.Instrument,
			Granularity: req.Granularity,
			Err:         err,
		}
	}
	return market.CandleSeries{
		Instrument:  req.Instrument,
		Granularity: req.Granularity,
		Candles:     candles,
	}, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
