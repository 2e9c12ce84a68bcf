package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/bandtrader/broker"
	"github.com/rustyeddy/bandtrader/market"
	"github.com/rustyeddy/bandtrader/pkg/id"
	"github.com/rustyeddy/bandtrader/signal"
)

// Report describes what one run saw and did.
type Report struct {
	RunID      string
	Started    time.Time
	Instrument string
	Tradable   bool
	Signal     signal.Signal
	Action     signal.Action
	DryRun     bool
	Order      *broker.OrderFill
}

// Line renders the one-line run log: "### run <time>, D: -3, H12: 0, ...".
func (r Report) Line() string {
	parts := []string{"### run " + r.Started.Format(time.RFC3339)}
	if !r.Tradable {
		parts = append(parts, "not tradable")
	}
	if len(r.Signal) > 0 {
		parts = append(parts, r.Signal.String())
	}
	if r.Action != signal.Hold && r.Action != "" {
		what := string(r.Action) + " " + r.Instrument
		if r.DryRun {
			what += " (dry run)"
		}
		parts = append(parts, what)
	}
	return strings.Join(parts, ", ")
}

// Run executes one full cycle. The tradability check gates everything;
// the order is placed only for a buy or sell decision outside dry-run.
// When the order fails the report still carries the decision and the
// returned error wraps a *broker.OrderError.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	e.begin()
	rep := Report{
		RunID:      id.At(e.end),
		Started:    e.end,
		Instrument: e.cfg.Instrument,
		Action:     signal.Hold,
		DryRun:     e.cfg.DryRun,
	}
	log := e.log.With().Str("run_id", rep.RunID).Str("instrument", rep.Instrument).Logger()
	defer func() { e.metrics.RunFinished(e.now()) }()

	tradable, err := e.Tradable(ctx)
	if err != nil {
		return rep, err
	}
	rep.Tradable = tradable
	if !tradable {
		log.Info().Msg("pending orders on account, skipping run")
		e.metrics.Decision(string(signal.Hold))
		return rep, nil
	}

	sig, err := e.signal(ctx)
	if err != nil {
		return rep, err
	}
	rep.Signal = sig
	rep.Action = signal.Aggregate(sig, e.cfg.Gate)
	e.metrics.Decision(string(rep.Action))

	log.Info().
		Str("signal", sig.String()).
		Str("action", string(rep.Action)).
		Str("gate", string(e.cfg.Gate)).
		Msg("decision")

	if rep.Action == signal.Hold {
		return rep, nil
	}
	if e.cfg.DryRun {
		log.Info().Str("action", string(rep.Action)).Msg("dry run, no order placed")
		return rep, nil
	}

	fill, err := e.placeOrder(ctx, rep.RunID, sideFor(rep.Action))
	if err != nil {
		log.Error().Err(err).Msg("order failed")
		return rep, err
	}
	rep.Order = &fill
	log.Info().
		Str("order_id", fill.OrderID).
		Str("trade_id", fill.TradeID).
		Float64("units", fill.Units).
		Float64("price", fill.Price).
		Msg("order filled")
	return rep, nil
}

func sideFor(a signal.Action) broker.Side {
	if a == signal.Sell {
		return broker.Sell
	}
	return broker.Buy
}

func (e *Engine) placeOrder(ctx context.Context, runID string, side broker.Side) (broker.OrderFill, error) {
	meta, err := market.LookupInstrument(e.cfg.Instrument)
	if err != nil {
		return broker.OrderFill{}, &broker.OrderError{Instrument: e.cfg.Instrument, Side: side, Err: err}
	}

	req := broker.MarketOrderRequest{
		Instrument:           e.cfg.Instrument,
		Side:                 side,
		Units:                e.cfg.Units,
		TrailingStopDistance: meta.PipsToDistance(e.cfg.TrailingStopPips),
		ClientID:             id.ClientOrderID(runID),
	}

	fill, err := e.broker.CreateMarketOrder(ctx, req)
	if err != nil {
		e.metrics.Order(string(side), "error")
		var oe *broker.OrderError
		if !errors.As(err, &oe) {
			err = &broker.OrderError{Instrument: req.Instrument, Side: side, Err: err}
		}
		return broker.OrderFill{}, fmt.Errorf("place order: %w", err)
	}
	e.metrics.Order(string(side), "filled")
	return fill, nil
}
