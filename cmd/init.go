package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Lumos-Labs-HQ/farmseed/internal/config"
	"github.com/Lumos-Labs-HQ/farmseed/internal/dataset"
	"github.com/Lumos-Labs-HQ/farmseed/template"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
	withDataset    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create farmseed.config.json and .env",
	Long:  `Initialize a farmseed project with a config file pointing at a local replica and a run ledger.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledgerType := template.SQLite
		flagCount := 0

		if sqliteFlag {
			ledgerType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			ledgerType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			ledgerType = template.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one ledger database (--sqlite, --postgresql, or --mysql)")
		}

		force, _ := cmd.Flags().GetBool("force")
		return initializeProject(ledgerType, force, withDataset)
	},
}

func init() {
	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Record runs in a local SQLite file (default)")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Record runs in PostgreSQL")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Record runs in MySQL")
	initCmd.Flags().BoolVar(&withDataset, "write-dataset", false, "Also write the built-in demo data to dataset.yaml")
	rootCmd.AddCommand(initCmd)
}

func initializeProject(ledgerType template.LedgerType, force, writeDataset bool) error {
	if _, err := os.Stat(config.FileName); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}

	tmpl := template.NewProjectTemplate(ledgerType)
	content := tmpl.GetConfig(config.DefaultEndpoint, config.DefaultBackendCanister, config.DefaultLedgerCanister)
	if err := os.WriteFile(config.FileName, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create file %s: %w", config.FileName, err)
	}

	if err := handleEnvFile(tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	if writeDataset {
		if err := dataset.Default().Save("dataset.yaml"); err != nil {
			return err
		}
	}

	fmt.Printf("✅ Initialized farmseed with a %s run ledger\n", ledgerType)
	fmt.Println()
	fmt.Println("📝 Files created:")
	fmt.Printf("   %s\n", config.FileName)
	fmt.Println("   .env")
	if writeDataset {
		fmt.Println("   dataset.yaml (set \"dataset\" in the config to use it)")
	}

	if os.Getenv("FARMSEED_LEDGER_URL") != "" {
		fmt.Println()
		fmt.Println("ℹ️  Using existing FARMSEED_LEDGER_URL from environment")
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   farmseed all --dry-run   # Preview the calls\n")
	fmt.Printf("   farmseed all             # Seed farms and investors\n")
	fmt.Printf("   farmseed status latest   # Farm IDs for testing\n")

	return nil
}

// handleEnvFile writes .env, or appends the ledger URL to an existing one that lacks it.
func handleEnvFile(defaultEnvContent string) error {
	envPath := ".env"

	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "FARMSEED_LEDGER_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}

	existingStr += "\n# Added by farmseed\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
