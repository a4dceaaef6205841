package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/farmseed/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export a recorded run",
	Long: `
Export a run's farms and calls from the ledger. The run defaults to the
most recent one.
Supported formats: json (default), yaml, csv

Examples:
  farmseed export
  farmseed export 3f0c1a2b-... --csv
  farmseed export --yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Ledger.Enabled {
			return fmt.Errorf("the run ledger is disabled in config")
		}

		format := "json"
		if csv, _ := cmd.Flags().GetBool("csv"); csv {
			format = "csv"
		} else if yamlFlag, _ := cmd.Flags().GetBool("yaml"); yamlFlag {
			format = "yaml"
		}

		runID := "latest"
		if len(args) == 1 {
			runID = args[0]
		}

		ctx := context.Background()
		l, err := openLedger(ctx, cfg)
		if err != nil {
			return err
		}
		defer l.Close()

		exportPath, err := export.PerformExport(ctx, l, runID, cfg.ExportPath, format)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Export completed: %s\n", exportPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().Bool("json", false, "Export as JSON (default)")
	exportCmd.Flags().Bool("yaml", false, "Export as YAML")
	exportCmd.Flags().Bool("csv", false, "Export as CSV (farms.csv and calls.csv)")
	rootCmd.AddCommand(exportCmd)
}
