package cmd

import (
	"github.com/spf13/cobra"
)

var investorsCmd = &cobra.Command{
	Use:   "investors",
	Short: "Create demo investor profiles and fund them",
	Long: `
Create a profile for every investor in the dataset, then transfer tokens to
the investor's principal. The transfer is attempted even if the profile
could not be created.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		s, err := newSession(ctx, cmd, "investors")
		if err != nil {
			return err
		}

		sum := s.seeder(cmd).RunInvestors(ctx)
		s.finish(ctx, 0, sum.CallsOK(), sum.CallsFailed())
		return nil
	},
}

func init() {
	addSeedFlags(investorsCmd)
	rootCmd.AddCommand(investorsCmd)
}
