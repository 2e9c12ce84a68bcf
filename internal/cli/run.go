package cli

import (
	"fmt"

	"github.com/rustyeddy/bandtrader/engine"
	"github.com/rustyeddy/bandtrader/metrics"
	"github.com/spf13/cobra"
)

type runOptions struct {
	DryRun      bool
	MetricsFile string
}

func runOnce(cmd *cobra.Command, rc *RootConfig, ro *runOptions) error {
	cfg, log, client, err := rc.setup(cmd)
	if err != nil {
		return err
	}
	if ro.DryRun {
		cfg.DryRun = true
	}

	m := metrics.New()
	eng, err := engine.New(cfg, client, engine.WithLogger(log), engine.WithMetrics(m))
	if err != nil {
		return err
	}

	rep, runErr := eng.Run(cmd.Context())
	if runErr == nil || len(rep.Signal) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), rep.Line())
	}

	if ro.MetricsFile != "" {
		if err := m.WriteTextfile(ro.MetricsFile); err != nil {
			log.Error().Err(err).Str("path", ro.MetricsFile).Msg("write metrics")
			if runErr == nil {
				runErr = fmt.Errorf("write metrics: %w", err)
			}
		}
	}
	return runErr
}
