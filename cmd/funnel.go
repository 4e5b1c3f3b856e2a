// File: cmd/funnel.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/funnel"
	"github.com/hogflix/hogsim/internal/observability"
)

// newFunnelCmd creates the `funnel` command: biased experiment outcomes
// captured straight to the analytics endpoint, no browser involved.
func newFunnelCmd() *cobra.Command {
	funnelCmd := &cobra.Command{
		Use:   "funnel",
		Short: "Generates biased A/B funnel outcomes for the FlixBuddy experiment",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("funnel.sessions", cmd.Flags().Lookup("sessions")); err != nil {
				return err
			}
			if err := viper.BindPFlag("funnel.concurrency", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			return viper.BindPFlag("analytics.endpoint", cmd.Flags().Lookup("endpoint"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			seed, _ := cmd.Flags().GetInt64("seed")
			rng := newRNG(seed, logger)

			sender := funnel.NewCaptureClient(cfg.Analytics)
			gen := funnel.NewGenerator(cfg, sender, logger)

			report, err := gen.Run(ctx, rng)
			if report != nil {
				fmt.Print(report.String())
			}
			// A skipped (expired) run exits zero: producing nothing was the
			// correct behavior, not a failure.
			return err
		},
	}

	funnelCmd.Flags().Int("sessions", 0, "number of synthetic sessions to generate")
	funnelCmd.Flags().Int("concurrency", 0, "maximum concurrent sessions")
	funnelCmd.Flags().String("endpoint", "", "analytics ingestion endpoint")
	funnelCmd.Flags().Int64("seed", 0, "RNG seed (0 means time-based)")
	return funnelCmd
}

func init() {
	rootCmd.AddCommand(newFunnelCmd())
}
