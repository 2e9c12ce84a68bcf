package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/bandtrader/indicators"
	"github.com/rustyeddy/bandtrader/market"
	"github.com/rustyeddy/bandtrader/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func lookup(env map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "USD_JPY", cfg.Instrument)
	assert.Equal(t, 30, cfg.Count)
	assert.Equal(t, market.DefaultTimeframes, cfg.Timeframes)
	assert.Equal(t, 10_000.0, cfg.Units)
	assert.Equal(t, 20.0, cfg.TrailingStopPips)
	assert.Equal(t, "Asia/Tokyo", cfg.AlignmentTimezone)
	assert.Equal(t, indicators.FinalMean, cfg.Deviation)
	assert.Equal(t, signal.GateExtreme, cfg.Gate)

	// no credentials and no environment yet
	assert.Empty(t, cfg.Env)
	require.Error(t, cfg.Validate())
	cfg.Token = "t"
	require.ErrorContains(t, cfg.Validate(), "OANDA_ENV is required")
	cfg.Env = "practice"
	assert.NoError(t, cfg.Validate())

	// mutating the copy must not touch the package default
	cfg.Timeframes[0] = market.W
	assert.Equal(t, market.D, market.DefaultTimeframes[0])
}

func TestFromEnv_Minimal(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		EnvToken:       "secret-token",
		EnvEnvironment: "live",
	}))
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Token)
	assert.Equal(t, "live", cfg.Env)
	assert.False(t, cfg.Practice())
	assert.Equal(t, "USD_JPY", cfg.Instrument)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		EnvToken:             "tok",
		EnvEnvironment:       "practice",
		EnvAccountID:         "101-1",
		EnvInstrument:        "EUR_USD",
		EnvCount:             "50",
		EnvTimeframes:        "H4, H1",
		EnvPriceField:        "high",
		EnvUnits:             "2500",
		EnvTrailingStopPips:  "15",
		EnvAlignmentTimezone: "UTC",
		EnvDeviation:         "running",
		EnvGate:              "strict",
		EnvIncludeIncomplete: "true",
		EnvLogLevel:          "debug",
		EnvDryRun:            "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "101-1", cfg.AccountID)
	assert.Equal(t, "EUR_USD", cfg.Instrument)
	assert.Equal(t, 50, cfg.Count)
	assert.Equal(t, []market.Granularity{market.H4, market.H1}, cfg.Timeframes)
	assert.Equal(t, market.HighField, cfg.PriceField)
	assert.Equal(t, 2500.0, cfg.Units)
	assert.Equal(t, 15.0, cfg.TrailingStopPips)
	assert.Equal(t, "UTC", cfg.AlignmentTimezone)
	assert.Equal(t, indicators.RunningMean, cfg.Deviation)
	assert.Equal(t, signal.GateStrict, cfg.Gate)
	assert.True(t, cfg.IncludeIncomplete)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Practice())
}

func TestFromEnv_Errors(t *testing.T) {
	base := func(extra map[string]string) map[string]string {
		m := map[string]string{EnvToken: "tok", EnvEnvironment: "practice"}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{"missing token", map[string]string{EnvEnvironment: "practice"}, "OANDA_TOKEN is required"},
		{"bad env", base(map[string]string{EnvEnvironment: "paper"}), "unknown OANDA env"},
		{"bad count", base(map[string]string{EnvCount: "thirty"}), EnvCount},
		{"zero count", base(map[string]string{EnvCount: "0"}), "count must be between"},
		{"huge count", base(map[string]string{EnvCount: "5001"}), "count must be between"},
		{"bad timeframe", base(map[string]string{EnvTimeframes: "D,H5"}), "unknown granularity"},
		{"empty timeframes", base(map[string]string{EnvTimeframes: ",,"}), "at least one granularity"},
		{"unknown instrument", base(map[string]string{EnvInstrument: "BTC_USD"}), "unknown instrument"},
		{"missing env", map[string]string{EnvToken: "tok"}, "OANDA_ENV is required"},
		{"bad units", base(map[string]string{EnvUnits: "-5"}), "units must be positive"},
		{"NaN units", base(map[string]string{EnvUnits: "NaN"}), "units must be positive"},
		{"infinite units", base(map[string]string{EnvUnits: "+Inf"}), "units must be positive"},
		{"fractional units", base(map[string]string{EnvUnits: "2500.5"}), "more than 0 decimals"},
		{"NaN trailing stop", base(map[string]string{EnvTrailingStopPips: "NaN"}), "trailing_stop_pips"},
		{"infinite trailing stop", base(map[string]string{EnvTrailingStopPips: "Inf"}), "trailing_stop_pips"},
		{"negative trailing stop", base(map[string]string{EnvTrailingStopPips: "-1"}), "trailing_stop_pips"},
		{"bad deviation", base(map[string]string{EnvDeviation: "stddev"}), "unknown deviation method"},
		{"bad gate", base(map[string]string{EnvGate: "loose"}), "unknown gate"},
		{"bad timezone", base(map[string]string{EnvAlignmentTimezone: "Mars/Olympus"}), "alignment_timezone"},
		{"bad bool", base(map[string]string{EnvDryRun: "maybe"}), EnvDryRun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookup(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OANDA_TOKEN=from-dotenv\nOANDA_ENV=practice\nBANDTRADER_COUNT=12\n"), 0o600))

	for _, k := range []string{EnvToken, EnvEnvironment, EnvCount} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Token)
	assert.Equal(t, 12, cfg.Count)
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvEnvironment, "demo")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestRedactedYAML(t *testing.T) {
	cfg := Default()
	cfg.Token = "abcdef-123456"

	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "abcdef-123456")
	assert.Contains(t, string(data), "********3456")
	assert.Equal(t, "abcdef-123456", cfg.Token)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, cfg.Timeframes, back.Timeframes)
	assert.Equal(t, cfg.Instrument, back.Instrument)

	short := Default()
	short.Token = "abc"
	assert.Equal(t, "********", short.Redacted().Token)
}
