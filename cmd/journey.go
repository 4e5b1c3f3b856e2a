// File: cmd/journey.go
package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/observability"
	"github.com/hogflix/hogsim/internal/oracle"
	"github.com/hogflix/hogsim/internal/session"
)

// newJourneyCmd creates the `journey` command: full browser sessions walking
// the HogFlix state machine.
func newJourneyCmd() *cobra.Command {
	journeyCmd := &cobra.Command{
		Use:   "journey",
		Short: "Runs full simulated viewer sessions against the target app",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("target.base_url", cmd.Flags().Lookup("target")); err != nil {
				return err
			}
			if err := viper.BindPFlag("session.steps", cmd.Flags().Lookup("steps")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return viper.BindPFlag("browser.debug", cmd.Flags().Lookup("debug"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			count, _ := cmd.Flags().GetInt("count")
			seed, _ := cmd.Flags().GetInt64("seed")
			rng := newRNG(seed, logger)

			chooser, err := oracle.New(ctx, cfg.Oracle, logger)
			if err != nil {
				return err
			}
			runner := session.NewRunner(cfg, chooser, logger)

			var outcomes []session.Outcome
			for i := 0; i < count; i++ {
				if ctx.Err() != nil {
					break
				}
				out, err := runner.Run(ctx, rng)
				if err != nil {
					// Browser startup failures are process-fatal; a half-run
					// fleet of sessions is still reported first.
					logger.Error("Session startup failed", zap.Error(err))
					fmt.Print(session.Summarize(outcomes))
					return err
				}
				outcomes = append(outcomes, out)
			}

			fmt.Print(session.Summarize(outcomes))
			return nil
		},
	}

	journeyCmd.Flags().String("target", "", "base URL of the HogFlix deployment")
	journeyCmd.Flags().Int("steps", 0, "state-machine steps per session")
	journeyCmd.Flags().Bool("headless", true, "run the browser headless")
	journeyCmd.Flags().Bool("debug", false, "enable CDP debug logging")
	journeyCmd.Flags().Int("count", 1, "number of sessions to run sequentially")
	journeyCmd.Flags().Int64("seed", 0, "RNG seed (0 means time-based)")
	return journeyCmd
}

// newRNG builds the run's root RNG. Seeded runs reproduce their draw
// sequences exactly.
func newRNG(seed int64, logger *zap.Logger) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		logger.Info("Using fixed RNG seed", zap.Int64("seed", seed))
	}
	return rand.New(rand.NewSource(seed))
}

func init() {
	rootCmd.AddCommand(newJourneyCmd())
}
