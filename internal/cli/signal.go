package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/rustyeddy/bandtrader/engine"
	"github.com/rustyeddy/bandtrader/signal"
	"github.com/spf13/cobra"
)

func newSignalCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "signal",
		Short: "Print the band scores of every timeframe without trading",
		Long: `Fetch candles for every configured timeframe and print each score
with its bands, followed by the action a run would take. Pending orders
are not checked and no order is placed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, client, err := rc.setup(cmd)
			if err != nil {
				return err
			}
			eng, err := engine.New(cfg, client, engine.WithLogger(log))
			if err != nil {
				return err
			}

			sig, err := eng.Signal(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TF\tSCORE\tLATEST\tAVG\tDEV\t-3\t+3")
			for _, r := range sig {
				b := r.Bands
				fmt.Fprintf(w, "%s\t%+d\t%.5g\t%.5g\t%.4g\t%.5g\t%.5g\n",
					r.Granularity, r.Score, b.Latest, b.Avg, b.Deviation, b.Minus3, b.Plus3)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (gate %s)\n",
				cfg.Instrument, sig, signal.Aggregate(sig, cfg.Gate), cfg.Gate)
			return nil
		},
	}
}
