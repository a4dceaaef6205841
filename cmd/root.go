package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.3.0"
)

// envKeys are the config keys that FARMSEED_* variables can override without a config file.
var envKeys = []string{
	"dataset",
	"export_path",
	"metrics_file",
	"backend.endpoint",
	"backend.canister_id",
	"backend.ledger_canister_id",
	"backend.timeout_seconds",
	"backend.retry_attempts",
	"backend.calls_per_second",
	"seed.transfer_amount",
	"seed.transfer_fee",
	"ledger.enabled",
	"ledger.provider",
	"log.level",
	"log.format",
}

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════╗",
		"║   🌾  F A R M S E E D                            ║",
		"║                                                  ║",
		"║   Demo farms, investments and market orders      ║",
		"║   for the farm-investment canister backend       ║",
		"╚══════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("            ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "farmseed",
	Short: "Seed demo data into a farm-investment canister backend",
	Long: `
farmseed populates a farm-investment backend with demo data:

- farm listings, each funded by four investments
- buy and sell market orders around every farm's share price
- investor profiles, funded through an ICRC-1 token transfer

Every run is recorded in a local ledger database so farm ids can be
looked up and exported later.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("farmseed version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./farmseed.config.json)")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Skip confirmations")
	rootCmd.PersistentFlags().String("endpoint", "", "Backend gateway URL")
	rootCmd.PersistentFlags().String("dataset", "", "YAML or JSON dataset replacing the built-in demo data")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (console or json)")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	// Existing variables win, so .env.local is loaded first to take precedence over .env.
	godotenv.Load(".env.local")
	godotenv.Load(".env")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("farmseed.config")
	}

	viper.SetEnvPrefix("FARMSEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		viper.BindEnv(key)
	}
	flags := rootCmd.PersistentFlags()
	viper.BindPFlag("backend.endpoint", flags.Lookup("endpoint"))
	viper.BindPFlag("dataset", flags.Lookup("dataset"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			color.Yellow("⚠️  Could not read config file %s: %v", cfgFile, err)
		}
	}
}
