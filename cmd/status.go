package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/farmseed/internal/ledger"
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show recorded seeding runs",
	Long: `Show recent seeding runs from the ledger. With a run id (or "latest"),
show that run's farms, which can be used as ids for testing, and its calls.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Ledger.Enabled {
			return fmt.Errorf("the run ledger is disabled in config")
		}

		ctx := context.Background()
		l, err := openLedger(ctx, cfg)
		if err != nil {
			return err
		}
		defer l.Close()

		if len(args) == 1 {
			verbose, _ := cmd.Flags().GetBool("calls")
			return showRun(ctx, l, args[0], verbose)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		return listRuns(ctx, l, limit)
	},
}

func listRuns(ctx context.Context, l *ledger.Ledger, limit int) error {
	runs, err := l.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	fmt.Printf("📋 Seeding Runs\n")
	fmt.Printf("==============\n\n")
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%-36s  %-9s  %s  farms: %d  ok: %d  failed: %d%s\n",
			run.ID, run.Command, run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FarmsCreated, run.CallsOK, run.CallsFailed, runState(run))
	}
	return nil
}

func showRun(ctx context.Context, l *ledger.Ledger, id string, verbose bool) error {
	run, err := l.GetRun(ctx, id)
	if err != nil {
		return err
	}
	farms, err := l.ListFarms(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to list farms: %w", err)
	}

	fmt.Printf("📋 Run %s%s\n", run.ID, runState(*run))
	fmt.Printf("   Command:  %s\n", run.Command)
	fmt.Printf("   Endpoint: %s\n", run.Endpoint)
	fmt.Printf("   Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Printf("   Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Printf("   Calls:    %d ok, %d failed\n", run.CallsOK, run.CallsFailed)
	fmt.Println()

	if len(farms) == 0 {
		color.Yellow("⚠️  No farms were created in this run")
	} else {
		color.Cyan("Farm IDs for testing:")
		for _, farm := range farms {
			fmt.Printf("   - %s: %s (share price %s)\n", farm.Name, farm.FarmID, types.E8s(farm.SharePrice).Tokens())
		}
	}

	if !verbose {
		return nil
	}

	calls, err := l.ListCalls(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to list calls: %w", err)
	}
	fmt.Println()
	fmt.Println("Calls:")
	fmt.Println("------")
	for _, call := range calls {
		line := fmt.Sprintf("%4d  %-18s %-30s %s", call.Seq, call.Method, call.Target, call.Outcome)
		if call.Error != "" {
			color.Red("%s  %s", line, call.Error)
			continue
		}
		fmt.Println(line)
	}
	return nil
}

func runState(run ledger.Run) string {
	switch {
	case run.FinishedAt == nil:
		return " (unfinished)"
	case run.DryRun:
		return " (dry run)"
	}
	return ""
}

func init() {
	statusCmd.Flags().Int("limit", 20, "Number of runs to list (0 for all)")
	statusCmd.Flags().Bool("calls", false, "Also list every call of the run")
	rootCmd.AddCommand(statusCmd)
}
