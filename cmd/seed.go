package cmd

import (
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo farms with investments and market orders",
	Long: `
Create every farm in the dataset. Each farm that is created gets four
investments and four market orders (two buys below and two sells above its
share price). A failed farm is reported and gets no dependent calls.

Examples:
  farmseed seed
  farmseed seed --skip-orders
  farmseed seed --dataset farms.yaml --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		s, err := newSession(ctx, cmd, "seed")
		if err != nil {
			return err
		}

		sum := s.seeder(cmd).RunFarms(ctx)
		s.finish(ctx, sum.Created(), sum.CallsOK(), sum.CallsFailed())
		return nil
	},
}

func init() {
	addSeedFlags(seedCmd)
	seedCmd.Flags().Bool("skip-investments", false, "Do not invest in created farms")
	seedCmd.Flags().Bool("skip-orders", false, "Do not place market orders on created farms")
	rootCmd.AddCommand(seedCmd)
}
