package cli

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/bandtrader/config"
	"github.com/rustyeddy/bandtrader/internal/logging"
	"github.com/rustyeddy/bandtrader/oanda"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// RootConfig holds the flags shared by every subcommand.
type RootConfig struct {
	EnvFiles []string
	LogLevel string
	Console  bool
	BaseURL  string
}

// setup loads the configuration and builds the logger and the OANDA
// client for it.
func (rc *RootConfig) setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, *oanda.Client, error) {
	cfg, err := config.Load(rc.EnvFiles...)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	if rc.LogLevel != "" {
		cfg.LogLevel = rc.LogLevel
	}

	var log zerolog.Logger
	if rc.Console {
		log = logging.Console(cfg.LogLevel, cmd.ErrOrStderr())
	} else {
		log = logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	}

	opts := []oanda.Option{}
	if cfg.AccountID != "" {
		opts = append(opts, oanda.WithAccountID(cfg.AccountID))
	}
	if rc.BaseURL != "" {
		opts = append(opts, oanda.WithBaseURL(rc.BaseURL))
	}
	client, err := oanda.NewClientForEnv(cfg.Token, cfg.Env, opts...)
	if err != nil {
		return nil, log, nil, err
	}

	log.Debug().
		Str("env", cfg.Env).
		Str("instrument", cfg.Instrument).
		Bool("live", !cfg.Practice()).
		Msg("config loaded")
	return cfg, log, client, nil
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}
	ro := &runOptions{}

	cmd := &cobra.Command{
		Use:   "bandtrader",
		Short: "Multi-timeframe band signal bot for OANDA",
		Long: `bandtrader checks one instrument against average-deviation bands on
several timeframes and places a market order with a trailing stop when
every timeframe sits at the same extreme.

Each invocation performs exactly one run; schedule it with cron or a
systemd timer.

Configuration comes from the environment (and ./.env):
  OANDA_TOKEN, OANDA_ENV (practice|live), OANDA_ACCOUNT_ID,
  BANDTRADER_INSTRUMENT, BANDTRADER_COUNT, BANDTRADER_TIMEFRAMES, ...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, rc, ro)
		},
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringSliceVar(&rc.EnvFiles, "env-file", []string{".env"}, "dotenv files loaded before the environment is read")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error (overrides BANDTRADER_LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&rc.Console, "console", false, "Human readable log output")
	cmd.PersistentFlags().StringVar(&rc.BaseURL, "oanda-url", "", "Override the OANDA REST host")
	_ = cmd.PersistentFlags().MarkHidden("oanda-url")

	cmd.Flags().BoolVar(&ro.DryRun, "dry-run", false, "Decide but do not place orders")
	cmd.Flags().StringVar(&ro.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")

	cmd.AddCommand(
		newSignalCmd(rc),
		newConfigCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bandtrader %s\n", version)
		},
	})

	return cmd
}

func Execute() {
	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
