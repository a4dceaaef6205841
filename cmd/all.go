package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Seed farms, then onboard investors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		s, err := newSession(ctx, cmd, "all")
		if err != nil {
			return err
		}

		farms, investors := s.seeder(cmd).RunAll(ctx)
		s.finish(ctx, farms.Created(),
			farms.CallsOK()+investors.CallsOK(),
			farms.CallsFailed()+investors.CallsFailed())
		return nil
	},
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func init() {
	addSeedFlags(allCmd)
	allCmd.Flags().Bool("skip-investments", false, "Do not invest in created farms")
	allCmd.Flags().Bool("skip-orders", false, "Do not place market orders on created farms")
	rootCmd.AddCommand(allCmd)
}
