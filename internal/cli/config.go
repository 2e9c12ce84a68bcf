package cli

import (
	"github.com/rustyeddy/bandtrader/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate and print the effective configuration",
		Long: `Load the configuration the same way a run does and print it as YAML
with the token redacted. Exits non-zero when the configuration is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rc.EnvFiles...)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
