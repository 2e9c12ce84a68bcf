package oanda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rustyeddy/bandtrader/broker"
)

type accountsResponse struct {
	Accounts []struct {
		ID   string   `json:"id"`
		Tags []string `json:"tags"`
	} `json:"accounts"`
}

type apiOrder struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Instrument string `json:"instrument"`
	Units      string `json:"units"`
	CreateTime string `json:"createTime"`
}

type pendingOrdersResponse struct {
	Orders []apiOrder `json:"orders"`
}

// Accounts lists the account IDs the token is authorized for.
func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	var resp accountsResponse
	if err := c.do(ctx, http.MethodGet, "/v3/accounts", nil, nil, &resp); err != nil {
		return nil, &broker.FetchError{Op: "accounts", Err: err}
	}
	ids := make([]string, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// AccountID returns the configured account, or the first account listed
// for the token. The lookup result is kept for later calls.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	if c.accountID != "" {
		return c.accountID, nil
	}
	ids, err := c.Accounts(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", &broker.FetchError{Op: "accounts", Err: fmt.Errorf("no accounts for token")}
	}
	c.accountID = ids[0]
	return c.accountID, nil
}

// PendingOrders lists the orders still open on the account.
func (c *Client) PendingOrders(ctx context.Context) ([]broker.Order, error) {
	id, err := c.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var resp pendingOrdersResponse
	path := fmt.Sprintf("/v3/accounts/%s/pendingOrders", url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, &broker.FetchError{Op: "pendingOrders", Err: err}
	}

	orders := make([]broker.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		order := broker.Order{
			ID:         o.ID,
			Type:       o.Type,
			Instrument: o.Instrument,
		}
		// Dependent orders (stop loss, trailing stop) carry no units.
		if o.Units != "" {
			u, err := parseFloat(o.Units)
			if err != nil {
				return nil, &broker.FetchError{Op: "pendingOrders", Err: fmt.Errorf("parse units %q: %w", o.Units, err)}
			}
			order.Units = u
		}
		if o.CreateTime != "" {
			t, err := time.Parse(time.RFC3339, o.CreateTime)
			if err != nil {
				return nil, &broker.FetchError{Op: "pendingOrders", Err: fmt.Errorf("parse time %s: %w", o.CreateTime, err)}
			}
			order.CreateTime = t
		}
		orders = append(orders, order)
	}
	return orders, nil
}
