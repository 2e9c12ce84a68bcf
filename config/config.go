package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/bandtrader/indicators"
	"github.com/rustyeddy/bandtrader/market"
	"github.com/rustyeddy/bandtrader/oanda"
	"github.com/rustyeddy/bandtrader/signal"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvToken             = "OANDA_TOKEN"
	EnvEnvironment       = "OANDA_ENV"
	EnvAccountID         = "OANDA_ACCOUNT_ID"
	EnvInstrument        = "BANDTRADER_INSTRUMENT"
	EnvCount             = "BANDTRADER_COUNT"
	EnvTimeframes        = "BANDTRADER_TIMEFRAMES"
	EnvPriceField        = "BANDTRADER_PRICE_FIELD"
	EnvUnits             = "BANDTRADER_UNITS"
	EnvTrailingStopPips  = "BANDTRADER_TRAILING_STOP_PIPS"
	EnvAlignmentTimezone = "BANDTRADER_ALIGNMENT_TZ"
	EnvDeviation         = "BANDTRADER_DEVIATION"
	EnvGate              = "BANDTRADER_GATE"
	EnvIncludeIncomplete = "BANDTRADER_INCLUDE_INCOMPLETE"
	EnvLogLevel          = "BANDTRADER_LOG_LEVEL"
	EnvDryRun            = "BANDTRADER_DRY_RUN"
)

// Config is everything one run of the bot needs. It is built once at
// startup and handed to the engine; nothing reads the environment later.
type Config struct {
	Token     string `yaml:"token"`
	Env       string `yaml:"env"`
	AccountID string `yaml:"account_id,omitempty"`

	Instrument        string                     `yaml:"instrument"`
	Count             int                        `yaml:"count"`
	Timeframes        []market.Granularity       `yaml:"timeframes"`
	PriceField        market.PriceField          `yaml:"price_field"`
	AlignmentTimezone string                     `yaml:"alignment_timezone"`
	IncludeIncomplete bool                       `yaml:"include_incomplete"`
	Deviation         indicators.DeviationMethod `yaml:"deviation"`
	Gate              signal.Gate                `yaml:"gate"`

	Units            float64 `yaml:"units"`
	TrailingStopPips float64 `yaml:"trailing_stop_pips"`

	LogLevel string `yaml:"log_level"`
	DryRun   bool   `yaml:"dry_run"`
}

// Default returns the stock settings, minus credentials.
func Default() *Config {
	return &Config{
		Instrument:        "USD_JPY",
		Count:             30,
		Timeframes:        append([]market.Granularity(nil), market.DefaultTimeframes...),
		PriceField:        market.CloseField,
		AlignmentTimezone: "Asia/Tokyo",
		Deviation:         indicators.FinalMean,
		Gate:              signal.GateExtreme,
		Units:             10_000,
		TrailingStopPips:  20,
		LogLevel:          "info",
	}
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv builds a validated Config from Default plus whatever lookup
// returns. Tests pass a map-backed lookup instead of touching the process
// environment.
func FromEnv(lookup LookupFunc) (*Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvToken, &cfg.Token)
	str(EnvEnvironment, &cfg.Env)
	str(EnvAccountID, &cfg.AccountID)
	str(EnvInstrument, &cfg.Instrument)
	str(EnvAlignmentTimezone, &cfg.AlignmentTimezone)
	str(EnvLogLevel, &cfg.LogLevel)

	var errs []error
	parse := func(key string, fn func(string) error) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if err := fn(strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	parse(EnvCount, func(v string) (err error) {
		cfg.Count, err = strconv.Atoi(v)
		return err
	})
	parse(EnvTimeframes, func(v string) (err error) {
		cfg.Timeframes, err = market.ParseTimeframes(v)
		return err
	})
	parse(EnvPriceField, func(v string) (err error) {
		cfg.PriceField, err = market.ParsePriceField(v)
		return err
	})
	parse(EnvUnits, func(v string) (err error) {
		cfg.Units, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse(EnvTrailingStopPips, func(v string) (err error) {
		cfg.TrailingStopPips, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse(EnvDeviation, func(v string) (err error) {
		cfg.Deviation, err = indicators.ParseDeviationMethod(v)
		return err
	})
	parse(EnvGate, func(v string) (err error) {
		cfg.Gate, err = signal.ParseGate(v)
		return err
	})
	parse(EnvIncludeIncomplete, func(v string) (err error) {
		cfg.IncludeIncomplete, err = strconv.ParseBool(v)
		return err
	})
	parse(EnvDryRun, func(v string) (err error) {
		cfg.DryRun, err = strconv.ParseBool(v)
		return err
	})

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads optional dotenv files (default ./.env) without overriding
// variables already set, then builds the Config from the process
// environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token: %s is required", EnvToken)
	}
	if c.Env == "" {
		return fmt.Errorf("env: %s is required", EnvEnvironment)
	}
	if _, err := oanda.BaseURL(c.Env); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	if c.Instrument == "" {
		return fmt.Errorf("instrument is required")
	}
	meta, err := market.LookupInstrument(c.Instrument)
	if err != nil {
		return fmt.Errorf("instrument: %w", err)
	}
	if c.Count < 1 || c.Count > oanda.MaxCount {
		return fmt.Errorf("count must be between 1 and %d, got %d", oanda.MaxCount, c.Count)
	}
	if len(c.Timeframes) == 0 {
		return fmt.Errorf("timeframes: at least one granularity is required")
	}
	for _, g := range c.Timeframes {
		if !g.Valid() {
			return fmt.Errorf("timeframes: unknown granularity %q", g)
		}
	}
	if _, err := market.ParsePriceField(string(c.PriceField)); err != nil {
		return fmt.Errorf("price_field: %w", err)
	}
	if c.AlignmentTimezone != "" {
		if _, err := time.LoadLocation(c.AlignmentTimezone); err != nil {
			return fmt.Errorf("alignment_timezone: %w", err)
		}
	}
	if _, err := indicators.ParseDeviationMethod(string(c.Deviation)); err != nil {
		return fmt.Errorf("deviation: %w", err)
	}
	if _, err := signal.ParseGate(string(c.Gate)); err != nil {
		return fmt.Errorf("gate: %w", err)
	}
	if !finite(c.Units) || c.Units <= 0 {
		return fmt.Errorf("units must be positive, got %v", c.Units)
	}
	if scale := math.Pow10(meta.TradeUnitsPrecision); math.Trunc(c.Units*scale) != c.Units*scale {
		return fmt.Errorf("units: %v has more than %d decimals for %s", c.Units, meta.TradeUnitsPrecision, c.Instrument)
	}
	if !finite(c.TrailingStopPips) || c.TrailingStopPips < 0 {
		return fmt.Errorf("trailing_stop_pips must be a non-negative number, got %v", c.TrailingStopPips)
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Practice reports whether the config targets the practice environment.
func (c *Config) Practice() bool {
	u, err := oanda.BaseURL(c.Env)
	return err == nil && u == oanda.PracticeURL
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Timeframes = append([]market.Granularity(nil), c.Timeframes...)
	if len(cp.Token) > 4 {
		cp.Token = strings.Repeat("*", 8) + cp.Token[len(cp.Token)-4:]
	} else if cp.Token != "" {
		cp.Token = strings.Repeat("*", 8)
	}
	return &cp
}

// YAML renders the redacted configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
