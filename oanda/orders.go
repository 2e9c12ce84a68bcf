package oanda

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/bandtrader/broker"
	"github.com/rustyeddy/bandtrader/market"
)

type trailingStopDetails struct {
	Distance string `json:"distance"`
}

type clientExtensions struct {
	ID string `json:"id,omitempty"`
}

type marketOrder struct {
	Type                   string               `json:"type"`
	Instrument             string               `json:"instrument"`
	Units                  string               `json:"units"`
	TimeInForce            string               `json:"timeInForce"`
	PositionFill           string               `json:"positionFill"`
	TrailingStopLossOnFill *trailingStopDetails `json:"trailingStopLossOnFill,omitempty"`
	ClientExtensions       *clientExtensions    `json:"clientExtensions,omitempty"`
}

type orderRequest struct {
	Order marketOrder `json:"order"`
}

type orderResponse struct {
	OrderCreateTransaction struct {
		ID string `json:"id"`
	} `json:"orderCreateTransaction"`
	OrderFillTransaction *struct {
		ID          string `json:"id"`
		OrderID     string `json:"orderID"`
		Instrument  string `json:"instrument"`
		Units       string `json:"units"`
		Price       string `json:"price"`
		Time        string `json:"time"`
		TradeOpened *struct {
			TradeID string `json:"tradeID"`
		} `json:"tradeOpened"`
	} `json:"orderFillTransaction"`
	OrderCancelTransaction *struct {
		Reason string `json:"reason"`
	} `json:"orderCancelTransaction"`
}

// CreateMarketOrder submits a fill-or-kill market order with an optional
// trailing stop loss attached on fill.
func (c *Client) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	fill, err := c.createMarketOrder(ctx, req)
	if err != nil {
		return broker.OrderFill{}, &broker.OrderError{Instrument: req.Instrument, Side: req.Side, Err: err}
	}
	return fill, nil
}

func (c *Client) createMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	if req.Instrument == "" {
		return broker.OrderFill{}, fmt.Errorf("instrument is required")
	}
	if math.IsNaN(req.Units) || math.IsInf(req.Units, 0) || req.Units <= 0 {
		return broker.OrderFill{}, fmt.Errorf("units must be positive, got %v", req.Units)
	}
	if math.IsNaN(req.TrailingStopDistance) || math.IsInf(req.TrailingStopDistance, 0) || req.TrailingStopDistance < 0 {
		return broker.OrderFill{}, fmt.Errorf("invalid trailing stop distance %v", req.TrailingStopDistance)
	}
	if req.Side != broker.Buy && req.Side != broker.Sell {
		return broker.OrderFill{}, fmt.Errorf("unknown side %q", req.Side)
	}

	id, err := c.AccountID(ctx)
	if err != nil {
		return broker.OrderFill{}, err
	}

	mo := marketOrder{
		Type:         "MARKET",
		Instrument:   req.Instrument,
		Units:        strconv.FormatFloat(req.SignedUnits(), 'f', 0, 64),
		TimeInForce:  "FOK",
		PositionFill: "DEFAULT",
	}
	if req.TrailingStopDistance > 0 {
		mo.TrailingStopLossOnFill = &trailingStopDetails{
			Distance: formatDistance(req.Instrument, req.TrailingStopDistance),
		}
	}
	if req.ClientID != "" {
		mo.ClientExtensions = &clientExtensions{ID: req.ClientID}
	}

	var resp orderResponse
	path := fmt.Sprintf("/v3/accounts/%s/orders", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, nil, orderRequest{Order: mo}, &resp); err != nil {
		return broker.OrderFill{}, err
	}

	ft := resp.OrderFillTransaction
	if ft == nil {
		if resp.OrderCancelTransaction != nil {
			return broker.OrderFill{}, fmt.Errorf("order %s cancelled: %s",
				resp.OrderCreateTransaction.ID, resp.OrderCancelTransaction.Reason)
		}
		return broker.OrderFill{}, fmt.Errorf("order %s not filled", resp.OrderCreateTransaction.ID)
	}

	fill := broker.OrderFill{
		OrderID:    resp.OrderCreateTransaction.ID,
		Instrument: ft.Instrument,
	}
	if ft.TradeOpened != nil {
		fill.TradeID = ft.TradeOpened.TradeID
	}
	if ft.Units != "" {
		if fill.Units, err = parseFloat(ft.Units); err != nil {
			return fill, fmt.Errorf("parse fill units: %w", err)
		}
	}
	if ft.Price != "" {
		if fill.Price, err = parseFloat(ft.Price); err != nil {
			return fill, fmt.Errorf("parse fill price: %w", err)
		}
	}
	if ft.Time != "" {
		if fill.Time, err = time.Parse(time.RFC3339, ft.Time); err != nil {
			return fill, fmt.Errorf("parse fill time: %w", err)
		}
	}
	return fill, nil
}

func formatDistance(instrument string, d float64) string {
	meta, err := market.LookupInstrument(instrument)
	if err != nil {
		return strconv.FormatFloat(d, 'f', -1, 64)
	}
	return meta.FormatPrice(d)
}
