// File: cmd/signup.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/observability"
	"github.com/hogflix/hogsim/internal/oracle"
	"github.com/hogflix/hogsim/internal/session"
)

// newSignupCmd creates the `signup` command: short sessions that only
// complete the signup form with freshly drawn identities.
func newSignupCmd() *cobra.Command {
	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Generates signup-only browser sessions",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("signup.sessions", cmd.Flags().Lookup("sessions"))
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

			// The signup flow never consults the oracle.
			runner := session.NewRunner(cfg, oracle.Disabled{}, logger)

			var outcomes []session.Outcome
			for i := 0; i < cfg.Signup.Sessions; i++ {
				if ctx.Err() != nil {
					break
				}
				out, err := runner.RunSignup(ctx, rng)
				if err != nil {
					logger.Error("Signup session startup failed", zap.Error(err))
					fmt.Print(session.Summarize(outcomes))
					return err
				}
				outcomes = append(outcomes, out)
			}

			fmt.Print(session.Summarize(outcomes))
			return nil
		},
	}

	signupCmd.Flags().Int("sessions", 0, "number of signup sessions to run")
	signupCmd.Flags().Int64("seed", 0, "RNG seed (0 means time-based)")
	return signupCmd
}

func init() {
	rootCmd.AddCommand(newSignupCmd())
}
