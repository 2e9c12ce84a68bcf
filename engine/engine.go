// Package engine runs one signal-and-maybe-order cycle: it fetches candles
// for every configured timeframe, scores them against their bands, and
// places a market order when all timeframes agree.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/bandtrader/broker"
	"github.com/rustyeddy/bandtrader/config"
	"github.com/rustyeddy/bandtrader/indicators"
	"github.com/rustyeddy/bandtrader/market"
	"github.com/rustyeddy/bandtrader/metrics"
	"github.com/rustyeddy/bandtrader/signal"
)

// Engine is the signal engine. It is not safe for concurrent use; a run is
// strictly sequential.
type Engine struct {
	cfg     *config.Config
	broker  broker.Broker
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// per-run state, reset by begin
	end   time.Time
	cache map[string]market.CandleSeries
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine for cfg talking to b.
func New(cfg *config.Config, b broker.Broker, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("engine: config is required")
	}
	if b == nil {
		return nil, fmt.Errorf("engine: broker is required")
	}
	e := &Engine{
		cfg:    cfg,
		broker: b,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.begin()
	return e, nil
}

// begin starts a new run scope: a fresh candle cache and a fixed end time
// shared by every request of the run.
func (e *Engine) begin() {
	e.end = e.now()
	e.cache = make(map[string]market.CandleSeries)
}

func (e *Engine) candlesRequest(g market.Granularity) broker.CandlesRequest {
	return broker.CandlesRequest{
		Instrument:        e.cfg.Instrument,
		Granularity:       g,
		Count:             e.cfg.Count,
		To:                e.end,
		AlignmentTimezone: e.cfg.AlignmentTimezone,
		IncludeIncomplete: e.cfg.IncludeIncomplete,
	}
}

// Candles returns the series for g, fetching it at most once per run.
func (e *Engine) Candles(ctx context.Context, g market.Granularity) (market.CandleSeries, error) {
	req := e.candlesRequest(g)
	key := req.Key()
	if s, ok := e.cache[key]; ok {
		e.metrics.CacheHit(string(g))
		return s, nil
	}

	s, err := e.broker.Candles(ctx, req)
	if err != nil {
		var fe *broker.FetchError
		if !errors.As(err, &fe) {
			err = &broker.FetchError{Op: "candles", Instrument: req.Instrument, Granularity: g, Err: err}
		}
		return market.CandleSeries{}, err
	}
	e.metrics.CandleFetched(string(g))
	e.cache[key] = s
	return s, nil
}

// Bands computes the band set for g.
func (e *Engine) Bands(ctx context.Context, g market.Granularity) (indicators.BandSet, error) {
	s, err := e.Candles(ctx, g)
	if err != nil {
		return indicators.BandSet{}, err
	}
	return indicators.Bands(s, e.cfg.PriceField, e.cfg.Deviation)
}

// Direction scores g.
func (e *Engine) Direction(ctx context.Context, g market.Granularity) (signal.Reading, error) {
	bs, err := e.Bands(ctx, g)
	if err != nil {
		return signal.Reading{}, err
	}
	r := signal.Reading{Granularity: g, Score: signal.Classify(bs), Bands: bs}

	e.metrics.ObserveScore(e.cfg.Instrument, string(g), int(r.Score))
	e.log.Info().
		Str("granularity", string(g)).
		Int("score", int(r.Score)).
		Float64("latest", bs.Latest).
		Float64("avg", bs.Avg).
		Float64("deviation", bs.Deviation).
		Str("about", bs.About).
		Msg("direction")
	return r, nil
}

// Signal scores every configured timeframe in a fresh run scope.
func (e *Engine) Signal(ctx context.Context) (signal.Signal, error) {
	e.begin()
	return e.signal(ctx)
}

func (e *Engine) signal(ctx context.Context) (signal.Signal, error) {
	sig := make(signal.Signal, 0, len(e.cfg.Timeframes))
	for _, g := range e.cfg.Timeframes {
		r, err := e.Direction(ctx, g)
		if err != nil {
			return nil, err
		}
		sig = append(sig, r)
	}
	return sig, nil
}

// Tradable reports whether the account has no pending orders.
func (e *Engine) Tradable(ctx context.Context) (bool, error) {
	orders, err := e.broker.PendingOrders(ctx)
	if err != nil {
		var fe *broker.FetchError
		if !errors.As(err, &fe) {
			err = &broker.FetchError{Op: "pendingOrders", Err: err}
		}
		return false, err
	}
	return len(orders) == 0, nil
}
